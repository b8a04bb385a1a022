// file: repository/notification_repository.go

package repository

import (
	"context"
	"database/sql"
	"go-campus-api/logger"
	"go-campus-api/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// INotificationRepository defines the contract for notification database operations.
type INotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.Notification, error)
	UpdateStatus(ctx context.Context, id string, status model.NotificationStatus) (*model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
}

// NotificationRepository implements INotificationRepository.
type NotificationRepository struct {
	DB *sql.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

const notificationColumns = `id, user_id, type, title, message, status, metadata, read_at, created_at, updated_at`

func scanNotification(row interface{ Scan(...interface{}) error }) (*model.Notification, error) {
	n := &model.Notification{}
	var metadata []byte
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Status, &metadata, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Metadata = metadata
	return n, nil
}

// Create inserts a new notification. The record id is generated here so the
// caller can cache and publish it immediately.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": n.UserID,
		"type":    n.Type,
	})
	log.Info("Executing query to create a new notification")

	n.ID = uuid.NewString()
	if n.Status == "" {
		n.Status = model.NotificationUnread
	}

	var metadata interface{}
	if len(n.Metadata) > 0 {
		metadata = []byte(n.Metadata)
	}

	query := `INSERT INTO notifications (id, user_id, type, title, message, status, metadata) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Status, metadata).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create notification query")
		return err
	}
	return nil
}

// GetByID retrieves a single notification.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get notification query")
		}
		return nil, err
	}
	return n, nil
}

// ListByUserID returns every notification owned by the user, newest first.
// Filters are deliberately not pushed down here; the service caches the
// unfiltered list and filters in memory.
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID int) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list notifications query")
		return nil, err
	}
	defer rows.Close()

	notifications := []*model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UpdateStatus applies a status transition. Moving to READ also stamps read_at.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, status model.NotificationStatus) (*model.Notification, error) {
	query := `UPDATE notifications
		SET status = $2,
		    read_at = CASE WHEN $2 = 'READ' THEN now() ELSE read_at END,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + notificationColumns
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id, status))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute update notification query")
		}
		return nil, err
	}
	return n, nil
}

// MarkRead transitions the notification to READ and stamps read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	return r.UpdateStatus(ctx, id, model.NotificationRead)
}
