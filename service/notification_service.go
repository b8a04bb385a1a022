// file: service/notification_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-campus-api/common"
	"go-campus-api/logger"
	"go-campus-api/model"
	"go-campus-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	notificationCacheTTL          = time.Hour
	notificationCachePrefix       = "notification:"
	userNotificationsCachePrefix  = "user-notifications:"
	notificationRealtimeEventName = "notification"
)

// RealtimeNotifier pushes an event to every live connection of a user,
// whatever transport carried it.
type RealtimeNotifier interface {
	SendToUser(userID int, event string, data interface{})
}

// NotificationService is the cache-backed notification store. Reads go
// through the cache layer; writes invalidate it, publish a domain event to
// the broker and push a live update to the owner's connections.
type NotificationService struct {
	repo      repository.INotificationRepository
	cache     *Cache
	publisher IEventPublisher
	realtime  RealtimeNotifier
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.INotificationRepository, cache *Cache, publisher IEventPublisher, realtime RealtimeNotifier) *NotificationService {
	return &NotificationService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		realtime:  realtime,
	}
}

func notificationCacheKey(id string) string {
	return notificationCachePrefix + id
}

func userNotificationsCacheKey(userID int) string {
	return fmt.Sprintf("%s%d", userNotificationsCachePrefix, userID)
}

// Create persists a notification, writes through the entity cache,
// invalidates the owner's list cache, publishes a creation event and pushes
// the notification to the owner's live sessions.
func (s *NotificationService) Create(ctx context.Context, req model.CreateNotificationRequest) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:   req.UserID,
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		Status:   model.NotificationUnread,
		Metadata: req.Metadata,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(ctx, notificationCacheKey(notification.ID), notification, notificationCacheTTL)
	s.cache.Invalidate(ctx, userNotificationsCacheKey(notification.UserID))

	s.publishEvent(ctx, TopicNotificationCreated, map[string]interface{}{
		"notification": notification,
		"user_id":      notification.UserID,
	})
	if s.realtime != nil {
		s.realtime.SendToUser(notification.UserID, notificationRealtimeEventName, notification)
	}

	return notification, nil
}

// ListForUser returns the user's notifications with filters applied. The
// unfiltered list is what gets cached; filters are numerous and low-value to
// cache individually, so they are applied in memory after the read-through.
func (s *NotificationService) ListForUser(ctx context.Context, userID int, filters model.NotificationFilters) ([]*model.Notification, error) {
	notifications, err := CacheOrLoad(ctx, s.cache, userNotificationsCacheKey(userID), notificationCacheTTL,
		func(ctx context.Context) ([]*model.Notification, error) {
			return s.repo.ListByUserID(ctx, userID)
		})
	if err != nil {
		return nil, err
	}

	filtered := []*model.Notification{}
	for _, n := range notifications {
		if filters.Matches(n) {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// MarkRead transitions a notification to READ on behalf of its owner.
func (s *NotificationService) MarkRead(ctx context.Context, userID int, id string) (*model.Notification, error) {
	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification %s", common.ErrNotFound, id)
		}
		return nil, err
	}

	s.afterWrite(ctx, updated, TopicNotificationRead)
	return updated, nil
}

// Update applies a status transition (read/archive) on behalf of the owner.
func (s *NotificationService) Update(ctx context.Context, userID int, id string, req model.UpdateNotificationRequest) (*model.Notification, error) {
	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification %s", common.ErrNotFound, id)
		}
		return nil, err
	}

	s.afterWrite(ctx, updated, TopicNotificationUpdated)
	return updated, nil
}

// authorize loads the notification through the entity cache and checks
// existence and ownership.
func (s *NotificationService) authorize(ctx context.Context, userID int, id string) error {
	notification, err := CacheOrLoad(ctx, s.cache, notificationCacheKey(id), notificationCacheTTL,
		func(ctx context.Context) (*model.Notification, error) {
			return s.repo.GetByID(ctx, id)
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: notification %s", common.ErrNotFound, id)
		}
		return err
	}
	if notification.UserID != userID {
		return fmt.Errorf("%w: notification %s belongs to another user", common.ErrForbidden, id)
	}
	return nil
}

// afterWrite refreshes the entity cache, invalidates the owner's list cache,
// publishes the domain event and pushes the live update. The row is already
// committed when this runs.
func (s *NotificationService) afterWrite(ctx context.Context, n *model.Notification, topic string) {
	s.cache.SetWithTTL(ctx, notificationCacheKey(n.ID), n, notificationCacheTTL)
	s.cache.Invalidate(ctx, userNotificationsCacheKey(n.UserID))

	s.publishEvent(ctx, topic, map[string]interface{}{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"status":          n.Status,
	})
	if s.realtime != nil {
		s.realtime.SendToUser(n.UserID, notificationRealtimeEventName, n)
	}
}

// publishEvent sends the event to the broker. The underlying write is
// already durable, so a broker outage is logged for external retry rather
// than failing the request.
func (s *NotificationService) publishEvent(ctx context.Context, topic string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"topic": topic,
		}).Error("Failed to publish notification event after committed write")
	}
}
