// file: service/cache_test.go

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetAndGet(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	cache.SetWithTTL(ctx, "greeting", "hello", time.Minute)

	raw, ok := cache.Get(ctx, "greeting")
	assert.True(t, ok)
	assert.Equal(t, `"hello"`, raw)

	_, ok = cache.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	cache.SetWithTTL(ctx, "k1", 1, time.Minute)
	cache.SetWithTTL(ctx, "k2", 2, time.Minute)
	cache.Invalidate(ctx, "k1", "k2")

	_, ok := cache.Get(ctx, "k1")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "k2")
	assert.False(t, ok)
}

func TestCache_InvalidatePrefix(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	cache.SetWithTTL(ctx, "user-notifications:1", "a", time.Minute)
	cache.SetWithTTL(ctx, "user-notifications:2", "b", time.Minute)
	cache.SetWithTTL(ctx, "notification:xyz", "c", time.Minute)

	cache.InvalidatePrefix(ctx, "user-notifications:")

	_, ok := cache.Get(ctx, "user-notifications:1")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "user-notifications:2")
	assert.False(t, ok)
	// Keys under other prefixes are untouched.
	_, ok = cache.Get(ctx, "notification:xyz")
	assert.True(t, ok)
}

func TestCacheOrLoad(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) ([]string, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	// Miss populates the cache.
	got, err := CacheOrLoad(ctx, cache, "list", time.Minute, loader)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, loads)

	// Hit skips the loader.
	got, err = CacheOrLoad(ctx, cache, "list", time.Minute, loader)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, loads)

	// Invalidation forces a reload.
	cache.Invalidate(ctx, "list")
	_, err = CacheOrLoad(ctx, cache, "list", time.Minute, loader)
	assert.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestCacheOrLoad_LoaderError(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewCache(client)

	wantErr := errors.New("store down")
	_, err := CacheOrLoad(context.Background(), cache, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// Nothing was cached for the failed load.
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
}

// TestCache_BestEffortWhenDown: an unreachable cache degrades every read to
// the loader instead of failing the caller.
func TestCache_BestEffortWhenDown(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	mr.Close()

	cache.SetWithTTL(ctx, "k", "v", time.Minute) // logged, swallowed
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	got, err := CacheOrLoad(ctx, cache, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "from-store", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "from-store", got)
}
