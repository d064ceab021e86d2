package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/poster-threads/internal/model"
)

func setupCache(t *testing.T) (*ThreadSummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewThreadSummaryCache(rdb, time.Minute), mr
}

func TestFetch_ReadThroughAndInvalidate(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]model.ThreadSummary, error) {
		loads++
		return []model.ThreadSummary{{ID: "t1", Title: "Launch Event", MessageCount: 2}}, nil
	}

	first, err := c.Fetch(ctx, "u1", load)
	require.NoError(t, err)
	second, err := c.Fetch(ctx, "u1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.Equal(t, int64(2), second[0].MessageCount)
	assert.True(t, mr.Exists("threads:summary:u1:v0"))

	hits, misses := c.Counters()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	c.Invalidate(ctx, "u1")
	assert.False(t, mr.Exists("threads:summary:u1:v0"))
	_, err = c.Fetch(ctx, "u1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestFetch_TTL(t *testing.T) {
	c, mr := setupCache(t)
	_, err := c.Fetch(context.Background(), "u1", func(context.Context) ([]model.ThreadSummary, error) {
		return []model.ThreadSummary{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("threads:summary:u1:v0"))
}

func TestFetch_RedisDownFallsBackToLoader(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	rows, err := c.Fetch(context.Background(), "u1", func(context.Context) ([]model.ThreadSummary, error) {
		return []model.ThreadSummary{{ID: "t1"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	c.Invalidate(context.Background(), "u1")
}

func TestFetch_LoaderErrorNotCached(t *testing.T) {
	c, mr := setupCache(t)
	boom := errors.New("db down")
	_, err := c.Fetch(context.Background(), "u1", func(context.Context) ([]model.ThreadSummary, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("threads:summary:u1:v0"))
}

func TestNilCache(t *testing.T) {
	var c *ThreadSummaryCache
	assert.Nil(t, NewThreadSummaryCache(nil, time.Minute))
	rows, err := c.Fetch(context.Background(), "u1", func(context.Context) ([]model.ThreadSummary, error) {
		return []model.ThreadSummary{{ID: "x"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	c.Invalidate(context.Background(), "u1")
	h, m := c.Counters()
	assert.Zero(t, h)
	assert.Zero(t, m)
}

func TestFetch_InvalidateDuringLoadNotOverwritten(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	loads := 0
	_, err := c.Fetch(ctx, "u1", func(ctx context.Context) ([]model.ThreadSummary, error) {
		loads++
		// a write lands while the list is being read
		c.Invalidate(ctx, "u1")
		return []model.ThreadSummary{{ID: "t1", Title: "stale"}}, nil
	})
	require.NoError(t, err)

	rows, err := c.Fetch(ctx, "u1", func(context.Context) ([]model.ThreadSummary, error) {
		loads++
		return []model.ThreadSummary{{ID: "t1", Title: "fresh"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	require.Len(t, rows, 1)
	assert.Equal(t, "fresh", rows[0].Title)
}
