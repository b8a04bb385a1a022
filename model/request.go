// file: model/request.go

package model

import "encoding/json"

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshRequest carries the refresh token presented for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateNotificationRequest defines the payload for creating a notification.
type CreateNotificationRequest struct {
	UserID   int              `json:"user_id" validate:"required"`
	Type     NotificationType `json:"type" validate:"required,oneof=COURSE_CREATED COURSE_UPDATED ENROLLMENT_CONFIRMED NEW_COMMENT ASSIGNMENT_POSTED GRADE_POSTED SYSTEM_ANNOUNCEMENT"`
	Title    string           `json:"title" validate:"required,max=200"`
	Message  string           `json:"message" validate:"required"`
	Metadata json.RawMessage  `json:"metadata,omitempty"`
}

// UpdateNotificationRequest defines the payload for a status transition.
type UpdateNotificationRequest struct {
	Status NotificationStatus `json:"status" validate:"required,oneof=UNREAD READ ARCHIVED"`
}
