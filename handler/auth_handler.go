// file: handler/auth_handler.go

package handler

import (
	"context"
	"encoding/json"
	"go-campus-api/common"
	"go-campus-api/logger"
	"go-campus-api/model"
	"net/http"
)

// AuthProvider is the slice of the auth service the handler needs.
type AuthProvider interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, *model.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// ActivityToucher initializes the activity record on login.
type ActivityToucher interface {
	Touch(ctx context.Context, userID int) error
}

type AuthHandler struct {
	auth     AuthProvider
	activity ActivityToucher
}

func NewAuthHandler(auth AuthProvider, activity ActivityToucher) *AuthHandler {
	return &AuthHandler{auth: auth, activity: activity}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, pair, err := h.auth.Login(r.Context(), req)
	if err != nil {
		return common.FromError(err)
	}

	// Login starts the idle-timeout window.
	if err := h.activity.Touch(r.Context(), user.ID); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("Failed to initialize activity record on login")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Refresh rotates the presented refresh token for a new pair. The old token
// is unusable afterwards.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.auth.Rotate(r.Context(), req.RefreshToken)
	if err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Logout revokes the presented refresh token. It is idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.auth.Revoke(r.Context(), req.RefreshToken); err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
	return nil
}
