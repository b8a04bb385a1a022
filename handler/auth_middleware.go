package handler

import (
	"context"
	"errors"
	"go-campus-api/common"
	"go-campus-api/logger"
	"go-campus-api/model"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
	UserRoleKey  contextKey = "userRole"
)

// AccessValidator verifies an access token without any store lookup.
type AccessValidator interface {
	ValidateAccess(token string) (*model.AppClaims, error)
}

// LivenessChecker is the single authority for "is this session still alive".
type LivenessChecker interface {
	CheckAndTouch(ctx context.Context, userID int) (bool, error)
}

// AuthMiddleware authenticates every request and revalidates session
// liveness. A cryptographically valid access token is not enough: the
// activity record must still exist, and checking it extends the deadline.
type AuthMiddleware struct {
	auth     AccessValidator
	activity LivenessChecker
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(auth AccessValidator, activity LivenessChecker) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, activity: activity}
}

// Handle wraps next with token validation and the idle-liveness check.
// All authentication failures produce the same response body.
func (m *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil).Send(w)
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil).Send(w)
			return
		}

		claims, err := m.auth.ValidateAccess(headerParts[1])
		if err != nil {
			common.FromError(err).Send(w)
			return
		}

		alive, err := m.activity.CheckAndTouch(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, common.ErrUnavailable) {
				// The activity store being down must not take the API down
				// with it; let the request through and rely on token expiry.
				logger.Log.WithError(err).Warn("Liveness check unavailable, proceeding on token validity alone")
			} else {
				common.FromError(err).Send(w)
				return
			}
		} else if !alive {
			common.FromError(common.ErrIdleExpired).Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware restricts a route to admin users. It must run inside
// AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleKey).(string)

		if !ok || role != string(model.RoleAdmin) {
			common.NewAppError(http.StatusForbidden, "Access denied. Admin privileges required.", nil).Send(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
