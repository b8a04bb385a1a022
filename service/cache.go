// file: service/cache.go

package service

import (
	"context"
	"encoding/json"
	"go-campus-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
// This abstraction allows us to decouple the services from a concrete
// Redis implementation, enabling easier testing and future flexibility.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Cache is a best-effort key-value cache shared by every cache-backed read
// path. A failing cache never fails the caller: errors are logged and the
// caller degrades to reading from the system of record.
type Cache struct {
	client ICacheClient
}

// NewCache creates a Cache on top of a Redis-compatible client.
func NewCache(client ICacheClient) *Cache {
	return &Cache{client: client}
}

// Get returns the raw cached value and whether the key was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("key", key).Warn("Cache read failed, falling through")
		}
		return "", false
	}
	return val, true
}

// SetWithTTL stores a value under key for the given TTL. Failures are logged
// and swallowed.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Failed to marshal value for cache")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).WithField("keys", keys).Warn("Cache invalidation failed")
	}
}

// InvalidatePrefix removes every key under the given prefix. It is used by
// write paths whose affected query caches cannot be enumerated up front.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			logger.Log.WithError(err).WithField("prefix", prefix).Warn("Cache prefix scan failed")
			return
		}
		if len(keys) > 0 {
			c.Invalidate(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// CacheOrLoad is the shared read-through helper: it returns the cached value
// under key, or invokes load, caches the result with the given TTL, and
// returns it. Cache trouble on either side degrades to the loader.
func CacheOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		logger.Log.WithField("key", key).Warn("Discarding undecodable cache entry")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	c.SetWithTTL(ctx, key, value, ttl)
	return value, nil
}
