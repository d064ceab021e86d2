package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/poster-threads/internal/model"
	"github.com/d60-Lab/poster-threads/pkg/logger"
	"github.com/d60-Lab/poster-threads/pkg/metrics"
)

// ThreadSummaryCache is a read-through cache of a user's thread list.
// Redis errors are never surfaced: a failed read falls back to the loader,
// a failed write or delete is logged and dropped.
// A nil *ThreadSummaryCache is valid and always calls the loader.
type ThreadSummaryCache struct {
	rdb *redis.Client
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// Loader reads the authoritative list from the database.
type Loader func(ctx context.Context) ([]model.ThreadSummary, error)

func NewThreadSummaryCache(rdb *redis.Client, ttl time.Duration) *ThreadSummaryCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ThreadSummaryCache{rdb: rdb, ttl: ttl}
}

// genKey holds the per-user generation, bumped by Invalidate. Cached lists
// live under the generation they were loaded at, so a load that races an
// Invalidate writes to a key no reader will look at again.
func genKey(userID string) string {
	return fmt.Sprintf("threads:summary:%s:gen", userID)
}

func dataKey(userID string, gen int64) string {
	return fmt.Sprintf("threads:summary:%s:v%d", userID, gen)
}

func (c *ThreadSummaryCache) generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ThreadSummaryCache) Fetch(ctx context.Context, userID string, load Loader) ([]model.ThreadSummary, error) {
	if c == nil {
		return load(ctx)
	}
	// generation is read before the load; see genKey
	gen, err := c.generation(ctx, userID)
	if err != nil {
		c.misses.Add(1)
		metrics.RecordCache("miss")
		return load(ctx)
	}
	if data, err := c.rdb.Get(ctx, dataKey(userID, gen)).Bytes(); err == nil {
		var out []model.ThreadSummary
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			c.hits.Add(1)
			metrics.RecordCache("hit")
			return out, nil
		}
	}
	c.misses.Add(1)
	metrics.RecordCache("miss")

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(rows); err == nil {
		if sErr := c.rdb.Set(ctx, dataKey(userID, gen), payload, c.ttl).Err(); sErr != nil {
			logger.Warn("thread cache set failed", zap.String("user_id", userID), zap.Error(sErr))
		}
	}
	return rows, nil
}

// Invalidate moves the user to a new generation and drops the previous
// list; called after any write that changes titles, recency or message counts.
func (c *ThreadSummaryCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	gen, err := c.rdb.Incr(ctx, genKey(userID)).Result()
	if err != nil {
		logger.Warn("thread cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := c.rdb.Del(ctx, dataKey(userID, gen-1)).Err(); err != nil {
		logger.Warn("thread cache delete failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Counters reports hit/miss totals since start.
func (c *ThreadSummaryCache) Counters() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
