// Package cache holds the Redis-backed caches used by the board.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stickyboard/core/internal/ports"
)

const maxPositionKey = "board:max_position"

// RedisPositionCache implements ports.PositionCache on a single Redis key
type RedisPositionCache struct {
	client *redis.Client
	prefix string
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisPositionCache creates a position cache from an existing client
func NewRedisPositionCache(client *redis.Client, prefix string) *RedisPositionCache {
	return &RedisPositionCache{client: client, prefix: prefix}
}

func (c *RedisPositionCache) key() string {
	return c.prefix + maxPositionKey
}

// Max returns the cached maximum, reporting false on a miss.
func (c *RedisPositionCache) Max(ctx context.Context) (int64, bool, error) {
	raw, err := c.client.Get(ctx, c.key()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get max position: %w", err)
	}

	max, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Unparseable entries are dropped and treated as a miss.
		_ = c.client.Del(ctx, c.key()).Err()
		return 0, false, nil
	}
	return max, true, nil
}

// Store records max for ttl.
func (c *RedisPositionCache) Store(ctx context.Context, max int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(), max, ttl).Err(); err != nil {
		return fmt.Errorf("store max position: %w", err)
	}
	return nil
}

// Invalidate drops the cached maximum.
func (c *RedisPositionCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("invalidate max position: %w", err)
	}
	return nil
}

// NopPositionCache always misses. It is used when no Redis URL is set.
type NopPositionCache struct{}

func (NopPositionCache) Max(context.Context) (int64, bool, error)          { return 0, false, nil }
func (NopPositionCache) Store(context.Context, int64, time.Duration) error { return nil }
func (NopPositionCache) Invalidate(context.Context) error                  { return nil }

var (
	_ ports.PositionCache = (*RedisPositionCache)(nil)
	_ ports.PositionCache = NopPositionCache{}
)
