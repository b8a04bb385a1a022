// file: model/notification.go

package model

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationCourseCreated       NotificationType = "COURSE_CREATED"
	NotificationCourseUpdated       NotificationType = "COURSE_UPDATED"
	NotificationEnrollmentConfirmed NotificationType = "ENROLLMENT_CONFIRMED"
	NotificationNewComment          NotificationType = "NEW_COMMENT"
	NotificationAssignmentPosted    NotificationType = "ASSIGNMENT_POSTED"
	NotificationGradePosted         NotificationType = "GRADE_POSTED"
	NotificationSystemAnnouncement  NotificationType = "SYSTEM_ANNOUNCEMENT"
)

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationRead     NotificationStatus = "READ"
	NotificationArchived NotificationStatus = "ARCHIVED"
)

// Notification is a persisted per-user notification record. It is mutated
// only by its owner (read/archive transitions).
type Notification struct {
	ID        string             `json:"id"`
	UserID    int                `json:"user_id"`
	Type      NotificationType   `json:"type"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	Metadata  json.RawMessage    `json:"metadata,omitempty"`
	ReadAt    *time.Time         `json:"read_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NotificationFilters narrows a notification listing. Filtering happens
// in memory over the cached unfiltered list, so zero values mean "any".
type NotificationFilters struct {
	Status    NotificationStatus
	Type      NotificationType
	StartDate *time.Time
	EndDate   *time.Time
}

// Matches reports whether the notification passes every set filter.
func (f NotificationFilters) Matches(n *Notification) bool {
	if f.Status != "" && n.Status != f.Status {
		return false
	}
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if f.StartDate != nil && n.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && n.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}
