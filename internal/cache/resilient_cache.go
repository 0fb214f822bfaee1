package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/config"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const defaultOpTimeout = 1 * time.Second

type resilientCache struct {
	client    *redis.Client
	health    *Health
	opTimeout time.Duration
}

func NewRedisClient(cfg *config.Config, health *Health) (*redis.Client, error) {

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Backend connect/ready lifecycle event.
	opt.OnConnect = func(ctx context.Context, cn *redis.Conn) error {
		health.MarkUp()
		return nil
	}

	return redis.NewClient(opt), nil
}

func NewResilientCache(client *redis.Client, health *Health, cfg *config.CacheConfig) Cache {

	opTimeout := defaultOpTimeout
	if cfg != nil && cfg.OpTimeout > 0 {
		opTimeout = cfg.OpTimeout
	}

	return &resilientCache{
		client:    client,
		health:    health,
		opTimeout: opTimeout,
	}
}

// Get fetches and unmarshals the payload stored under key. A miss, a
// backend failure, a timeout and an unreadable payload all report false.
func (c *resilientCache) Get(ctx context.Context, key string, dest any) bool {

	if !c.health.Up() {
		metrics.CacheDegradedOps.Inc()
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	type getResult struct {
		data []byte
		err  error
	}

	done := make(chan getResult, 1)

	go func() {
		data, err := c.client.Get(opCtx, key).Bytes()
		done <- getResult{data: data, err: err}
	}()

	select {
	case res := <-done:

		switch {
		case errors.Is(res.err, redis.Nil):
			c.health.MarkUp()
			return false
		case res.err != nil:
			c.health.MarkDown()
			slog.Warn("cache get failed", slog.String("key", key), slog.String("error", res.err.Error()))
			return false
		}

		c.health.MarkUp()

		if err := json.Unmarshal(res.data, dest); err != nil {
			// Unreadable payload is a data error, not a connectivity
			// signal: drop the key and treat the read as a miss.
			slog.Warn("cache payload unreadable, dropping key", slog.String("key", key), slog.String("error", err.Error()))
			c.client.Del(opCtx, key)

			return false
		}

		return true

	case <-opCtx.Done():
		// The in-flight call is abandoned, not killed: it completes into
		// the buffered channel and never touches the health flag, so a
		// slow success cannot resurrect a flag a newer failure cleared.
		c.health.MarkDown()
		slog.Warn("cache get timed out", slog.String("key", key))

		return false
	}
}

func (c *resilientCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {

	if !c.health.Up() {
		metrics.CacheDegradedOps.Inc()
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("failed to marshal cache value", slog.String("key", key), slog.String("error", err.Error()))
		return
	}

	c.attempt(ctx, "set", key, func(opCtx context.Context) error {
		return c.client.Set(opCtx, key, data, ttl).Err()
	})
}

func (c *resilientCache) Delete(ctx context.Context, key string) {

	if !c.health.Up() {
		metrics.CacheDegradedOps.Inc()
		return
	}

	c.attempt(ctx, "delete", key, func(opCtx context.Context) error {
		return c.client.Del(opCtx, key).Err()
	})
}

// Ping is the recovery probe. It deliberately bypasses the short-circuit so
// a background revalidation loop can flip the flag back up once the backend
// answers again.
func (c *resilientCache) Ping(ctx context.Context) bool {

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Ping(opCtx).Err(); err != nil {
		c.health.MarkDown()
		return false
	}

	c.health.MarkUp()

	return true
}

func (c *resilientCache) Close() error {
	return c.client.Close()
}

// attempt races fn against the operation deadline. The loser is detached:
// it finishes into the buffered channel and cannot mutate the health flag.
func (c *resilientCache) attempt(ctx context.Context, op, key string, fn func(context.Context) error) {

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- fn(opCtx)
	}()

	select {
	case err := <-done:

		if err != nil {
			c.health.MarkDown()
			slog.Warn("cache operation failed", slog.String("op", op), slog.String("key", key), slog.String("error", err.Error()))

			return
		}

		c.health.MarkUp()

	case <-opCtx.Done():
		c.health.MarkDown()
		slog.Warn("cache operation timed out", slog.String("op", op), slog.String("key", key))
	}
}
