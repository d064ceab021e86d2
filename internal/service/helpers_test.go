package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/poster-threads/internal/algorithm"
	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/pkg/database"
)

// 每次调用前进一秒，保证时间严格递增
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeGenerator struct {
	mu     sync.Mutex
	result *algorithm.Result
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (*algorithm.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testEnv struct {
	db         *gorm.DB
	gw         *database.Gateway
	threadRepo repository.ThreadRepository
	convRepo   repository.ConversationRepository
	posterRepo repository.PosterRepository

	threads       ThreadService
	conversations ConversationService
	posters       PosterService
	generator     Generator
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.AutoMigrate(context.Background(), db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T, gen Generator) *testEnv {
	t.Helper()
	db := openTestDB(t)
	return buildEnv(db, database.NewGateway(db, database.WithRecheckInterval(0)), gen)
}

// newUnavailableEnv 数据库不可用
func newUnavailableEnv(gen Generator) *testEnv {
	return buildEnv(nil, database.NewGateway(nil), gen)
}

func buildEnv(db *gorm.DB, gw *database.Gateway, gen Generator) *testEnv {
	clock := &stepClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	env := &testEnv{
		db:         db,
		gw:         gw,
		threadRepo: repository.NewThreadRepository(db),
		convRepo:   repository.NewConversationRepository(db),
		posterRepo: repository.NewPosterRepository(db),
		generator:  gen,
	}
	env.threads = NewThreadService(gw, env.threadRepo, env.convRepo, env.posterRepo, nil, WithClock(clock.Now))
	env.conversations = NewConversationService(gw, env.threadRepo, env.convRepo, nil, WithClock(clock.Now))
	env.posters = NewPosterService(gw, gen, env.posterRepo, env.convRepo, env.threadRepo, env.conversations, nil, WithClock(clock.Now))
	return env
}

func newAvailableGateway(db *gorm.DB) *database.Gateway {
	return database.NewGateway(db, database.WithRecheckInterval(0))
}
