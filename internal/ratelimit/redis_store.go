package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a fixed-window counter backed by Redis. INCR carries the
// atomicity; the expiry is set only when the key is created, so the window is
// anchored to the first request in it.
type RedisCounter struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCounter creates a RedisCounter. Keys are namespaced under prefix.
func NewRedisCounter(rdb *redis.Client, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisCounter{rdb: rdb, prefix: prefix}
}

// Incr implements port.CounterStore.
func (s *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := s.prefix + ":" + key

	pipe := s.rdb.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	ttl := pipe.PTTL(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("ratelimit: incrementing %s: %w", fullKey, err)
	}

	expiresIn := ttl.Val()
	if expiresIn < 0 {
		expiresIn = window
	}
	return incr.Val(), expiresIn, nil
}
