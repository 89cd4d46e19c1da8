// Package cache stores rendered reports in Redis. Entries are keyed by a
// generation counter so a single increment invalidates every report.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/pkg/metrics"
	"github.com/Ramsey-B/dahlia/pkg/redis"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

// ReportCache caches report results by report name and filter key. Get
// returns the generation it read; Set stores under that generation so a
// result computed before an Invalidate is never visible after it.
type ReportCache interface {
	Get(ctx context.Context, report, key string, dest any) (generation int64, found bool, err error)
	Set(ctx context.Context, report, key string, generation int64, value any) error
	Invalidate(ctx context.Context) error
}

// RedisCache implements ReportCache
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger ectologger.Logger
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger ectologger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + ":reports:generation"
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, c.generationKey())
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *RedisCache) entryKey(generation int64, report, key string) string {
	return fmt.Sprintf("%s:reports:%d:%s:%s", c.prefix, generation, report, key)
}

// Get decodes a cached report into dest and reports whether it was found,
// along with the generation the lookup ran against.
func (c *RedisCache) Get(ctx context.Context, report, key string, dest any) (int64, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportCache.Get")
	defer span.End()

	generation, err := c.generation(ctx)
	if err != nil {
		metrics.ReportCacheTotal.WithLabelValues(report, "error").Inc()
		return 0, false, err
	}

	raw, err := c.client.Get(ctx, c.entryKey(generation, report, key))
	if errors.Is(err, redis.Nil) {
		metrics.ReportCacheTotal.WithLabelValues(report, "miss").Inc()
		return generation, false, nil
	}
	if err != nil {
		metrics.ReportCacheTotal.WithLabelValues(report, "error").Inc()
		return generation, false, err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		metrics.ReportCacheTotal.WithLabelValues(report, "error").Inc()
		return generation, false, err
	}

	metrics.ReportCacheTotal.WithLabelValues(report, "hit").Inc()
	return generation, true, nil
}

// Set stores value under the generation returned by the Get that missed.
func (c *RedisCache) Set(ctx context.Context, report, key string, generation int64, value any) error {
	ctx, span := tracing.StartSpan(ctx, "ReportCache.Set")
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.entryKey(generation, report, key), data, c.ttl)
}

// Invalidate moves every reader to a new generation. Old entries expire by TTL.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "ReportCache.Invalidate")
	defer span.End()

	generation, err := c.client.Incr(ctx, c.generationKey())
	if err != nil {
		return err
	}

	c.logger.WithContext(ctx).WithField("generation", generation).Debug("Invalidated report cache")
	return nil
}

// Noop never stores anything. It is used when Redis is disabled.
type Noop struct{}

func (Noop) Get(ctx context.Context, report, key string, dest any) (int64, bool, error) {
	return 0, false, nil
}

func (Noop) Set(ctx context.Context, report, key string, generation int64, value any) error {
	return nil
}

func (Noop) Invalidate(ctx context.Context) error {
	return nil
}
