package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisPositionCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client, err := NewRedisClient("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedisPositionCache(client, "test:"), s
}

func TestRedisPositionCacheStoreAndMax(t *testing.T) {
	cache, s := setupTestRedis(t)
	ctx := context.Background()

	if _, ok, err := cache.Max(ctx); err != nil || ok {
		t.Fatalf("Max() on empty cache = ok %v, err %v", ok, err)
	}

	if err := cache.Store(ctx, 5, time.Minute); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	max, ok, err := cache.Max(ctx)
	if err != nil || !ok || max != 5 {
		t.Fatalf("Max() = %d, %v, %v; want 5, true, nil", max, ok, err)
	}

	if got, _ := s.Get("test:board:max_position"); got != "5" {
		t.Fatalf("raw key = %q, want 5", got)
	}
	if ttl := s.TTL("test:board:max_position"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}

	s.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Max(ctx); ok {
		t.Fatal("Max() hit after ttl expired")
	}
}

func TestRedisPositionCacheInvalidate(t *testing.T) {
	cache, s := setupTestRedis(t)
	ctx := context.Background()

	if err := cache.Store(ctx, 9, time.Minute); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if s.Exists("test:board:max_position") {
		t.Fatal("key survived Invalidate()")
	}
}

func TestRedisPositionCacheGarbageIsMiss(t *testing.T) {
	cache, s := setupTestRedis(t)
	ctx := context.Background()

	if err := s.Set("test:board:max_position", "not-a-number"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := cache.Max(ctx); err != nil || ok {
		t.Fatalf("Max() on garbage = ok %v, err %v; want miss", ok, err)
	}
	if s.Exists("test:board:max_position") {
		t.Fatal("garbage entry not dropped")
	}
}

func TestRedisPositionCacheServerDown(t *testing.T) {
	cache, s := setupTestRedis(t)
	s.Close()

	if _, _, err := cache.Max(context.Background()); err == nil {
		t.Fatal("Max() with server down returned nil error")
	}
}

func TestNopPositionCache(t *testing.T) {
	var c NopPositionCache
	ctx := context.Background()
	if err := c.Store(ctx, 3, time.Minute); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if _, ok, _ := c.Max(ctx); ok {
		t.Fatal("NopPositionCache reported a hit")
	}
}
