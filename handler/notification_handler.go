// file: handler/notification_handler.go

package handler

import (
	"context"
	"encoding/json"
	"go-campus-api/common"
	"go-campus-api/model"
	"net/http"
	"time"
)

// NotificationProvider is the slice of the notification service the handler needs.
type NotificationProvider interface {
	Create(ctx context.Context, req model.CreateNotificationRequest) (*model.Notification, error)
	ListForUser(ctx context.Context, userID int, filters model.NotificationFilters) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID int, id string) (*model.Notification, error)
	Update(ctx context.Context, userID int, id string, req model.UpdateNotificationRequest) (*model.Notification, error)
}

type NotificationHandler struct {
	notifications NotificationProvider
}

func NewNotificationHandler(notifications NotificationProvider) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func userIDFromContext(r *http.Request) (int, *common.AppError) {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return 0, common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
	}
	return userID, nil
}

// parseFilters reads the optional status/type/date-window query parameters.
func parseFilters(r *http.Request) (model.NotificationFilters, *common.AppError) {
	filters := model.NotificationFilters{
		Status: model.NotificationStatus(r.URL.Query().Get("status")),
		Type:   model.NotificationType(r.URL.Query().Get("type")),
	}

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, common.NewAppError(http.StatusBadRequest, "Invalid start_date, expected RFC3339", err)
		}
		filters.StartDate = &t
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, common.NewAppError(http.StatusBadRequest, "Invalid end_date, expected RFC3339", err)
		}
		filters.EndDate = &t
	}
	return filters, nil
}

// Create persists a new notification. Restricted to admins; regular
// notifications are created by domain actions, not this endpoint.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateNotificationRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	notification, err := h.notifications.Create(r.Context(), req)
	if err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(notification)
	return nil
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	filters, appErr := parseFilters(r)
	if appErr != nil {
		return appErr
	}

	notifications, err := h.notifications.ListForUser(r.Context(), userID, filters)
	if err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
	return nil
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	notification, err := h.notifications.MarkRead(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notification)
	return nil
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateNotificationRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	notification, err := h.notifications.Update(r.Context(), userID, r.PathValue("id"), req)
	if err != nil {
		return common.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notification)
	return nil
}
