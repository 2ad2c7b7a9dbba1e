package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pendingBadgeKey    = "field-report:badge:pending"
	pendingBadgeGenKey = "field-report:badge:generation"
)

// BadgeCache memoizes the global pending count shown to admins.
//
// Every Invalidate bumps a generation. A miss reports the generation it saw and
// Set only stores a count computed under that same generation, so a count read
// before a concurrent write is never cached after it.
type BadgeCache interface {
	Get(ctx context.Context) (count int, generation int64, ok bool)
	Set(ctx context.Context, generation int64, count int)
	Invalidate(ctx context.Context)
}

// NoopBadgeCache never hits.
type NoopBadgeCache struct{}

func (NoopBadgeCache) Get(context.Context) (int, int64, bool) { return 0, 0, false }
func (NoopBadgeCache) Set(context.Context, int64, int)        {}
func (NoopBadgeCache) Invalidate(context.Context)             {}

// RedisBadgeCache stores the pending count in Redis with a short TTL.
// Redis failures degrade to a cache miss.
type RedisBadgeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewBadgeCache returns a Redis backed cache, or a no-op one when Redis is
// not configured or caching is disabled.
func NewBadgeCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) BadgeCache {
	if client == nil || ttl <= 0 {
		return NoopBadgeCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBadgeCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisBadgeCache) Get(ctx context.Context) (int, int64, bool) {
	values, err := c.client.MGet(ctx, pendingBadgeKey, pendingBadgeGenKey).Result()
	if err != nil {
		c.logger.Warn("badge cache read failed", zap.Error(err))
		return 0, -1, false
	}
	generation := parseRedisInt(values[1])
	if values[0] == nil {
		return 0, generation, false
	}
	count := parseRedisInt(values[0])
	if count < 0 {
		return 0, generation, false
	}
	return int(count), generation, true
}

func (c *RedisBadgeCache) Set(ctx context.Context, generation int64, count int) {
	if generation < 0 {
		return
	}
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, pendingBadgeGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, pendingBadgeKey, count, c.ttl)
			return nil
		})
		return err
	}, pendingBadgeGenKey)
	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("badge cache write skipped; invalidated concurrently")
	default:
		c.logger.Warn("badge cache write failed", zap.Error(err))
	}
}

func (c *RedisBadgeCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, pendingBadgeGenKey)
		pipe.Del(ctx, pendingBadgeKey)
		return nil
	})
	if err != nil {
		c.logger.Warn("badge cache invalidate failed", zap.Error(err))
	}
}

// parseRedisInt reads an MGET slot; missing keys count as 0 and garbage as -1.
func parseRedisInt(v any) int64 {
	switch raw := v.(type) {
	case nil:
		return 0
	case string:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return -1
		}
		return n
	default:
		return -1
	}
}
