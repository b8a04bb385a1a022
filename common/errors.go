package common

import (
	"encoding/json"
	"errors"
	"go-campus-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Sentinel errors returned by the service layer. Handlers translate these
// into HTTP responses via FromError.
var (
	// ErrInvalidCredential covers bad signatures, expired tokens and replayed
	// refresh tokens. It is deliberately indistinguishable from the outside.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrIdleExpired means the user's activity record has lapsed and their
	// refresh tokens have been revoked.
	ErrIdleExpired = errors.New("idle session expired")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("already exists")
	// ErrUnavailable signals an unreachable downstream (cache, broker, store).
	ErrUnavailable = errors.New("service unavailable")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromError maps a service-layer error onto an AppError. Authentication
// failures all map to the same response so callers cannot tell which
// internal check rejected them.
func FromError(err error) *AppError {
	switch {
	case errors.Is(err, ErrInvalidCredential), errors.Is(err, ErrIdleExpired):
		return NewAppError(http.StatusUnauthorized, "Invalid or expired token", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, "Access denied", err)
	case errors.Is(err, ErrConflict):
		return NewAppError(http.StatusConflict, "Resource already exists", err)
	case errors.Is(err, ErrUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		return NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
