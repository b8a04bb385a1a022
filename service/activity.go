// file: service/activity.go

package service

import (
	"context"
	"fmt"
	"go-campus-api/common"
	"go-campus-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

const userActivityPrefix = "user_activity:"

// TokenRevoker is the slice of the token service the tracker needs to force
// a logout when a session has gone idle.
type TokenRevoker interface {
	RevokeAll(ctx context.Context, userID int) error
}

// ActivityTracker records last-seen time per user with a TTL equal to the
// idle timeout. An absent record is authoritative: it means the idle window
// elapsed, and is never distinguished from "never logged in".
type ActivityTracker struct {
	client      ICacheClient
	tokens      TokenRevoker
	idleTimeout time.Duration
}

// NewActivityTracker creates an ActivityTracker.
func NewActivityTracker(client ICacheClient, tokens TokenRevoker, idleTimeout time.Duration) *ActivityTracker {
	return &ActivityTracker{
		client:      client,
		tokens:      tokens,
		idleTimeout: idleTimeout,
	}
}

func activityKey(userID int) string {
	return fmt.Sprintf("%s%d", userActivityPrefix, userID)
}

// Touch unconditionally rewrites the activity record with a fresh idle-window TTL.
func (t *ActivityTracker) Touch(ctx context.Context, userID int) error {
	value := time.Now().UnixMilli()
	if err := t.client.Set(ctx, activityKey(userID), value, t.idleTimeout).Err(); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to record user activity")
		return fmt.Errorf("%w: activity store unreachable", common.ErrUnavailable)
	}
	return nil
}

// CheckAndTouch is the single authority for session liveness. If the activity
// record is absent the user's refresh tokens are revoked and false is
// returned; otherwise the deadline is extended and true is returned.
func (t *ActivityTracker) CheckAndTouch(ctx context.Context, userID int) (bool, error) {
	_, err := t.client.Get(ctx, activityKey(userID)).Result()
	if err == redis.Nil {
		logger.Log.WithField("user_id", userID).Info("User idle timeout elapsed, revoking all refresh tokens")
		if err := t.tokens.RevokeAll(ctx, userID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to read user activity")
		return false, fmt.Errorf("%w: activity store unreachable", common.ErrUnavailable)
	}

	if err := t.Touch(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}
