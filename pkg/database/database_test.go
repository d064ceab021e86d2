package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/poster-threads/config"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return db
}

func TestGateway_NilDB(t *testing.T) {
	gw := NewGateway(nil)
	ctx := context.Background()

	assert.False(t, gw.Available(ctx))
	_, err := gw.DB(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, gw.Close())
}

func TestGateway_AvailableAndClosed(t *testing.T) {
	gw := NewGateway(openSQLite(t), WithRecheckInterval(0))
	ctx := context.Background()

	require.True(t, gw.Available(ctx))
	db, err := gw.DB(ctx)
	require.NoError(t, err)
	assert.NotNil(t, db)

	require.NoError(t, gw.Close())
	assert.False(t, gw.Available(ctx))
}

func TestGateway_CachesSignal(t *testing.T) {
	gw := NewGateway(openSQLite(t), WithRecheckInterval(time.Hour))
	ctx := context.Background()

	require.True(t, gw.Available(ctx))
	require.NoError(t, gw.Close())
	// 缓存期内不重新 ping
	assert.True(t, gw.Available(ctx))
	assert.False(t, gw.Check(ctx))
	assert.False(t, gw.Available(ctx))
}

func TestGateway_OnFirstAvailable(t *testing.T) {
	calls := 0
	fail := true
	gw := NewGateway(openSQLite(t), WithRecheckInterval(0), WithOnFirstAvailable(func(ctx context.Context, db *gorm.DB) error {
		calls++
		if fail {
			return errors.New("migrate failed")
		}
		return nil
	}))
	ctx := context.Background()

	gw.Available(ctx)
	assert.Equal(t, 1, calls)

	// 失败后下次可用时重试，成功后不再执行
	fail = false
	gw.Available(ctx)
	gw.Available(ctx)
	assert.Equal(t, 2, calls)
}

func TestInitDB_SQLite(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1},
	}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	gw := NewGateway(db)
	t.Cleanup(func() { _ = gw.Close() })
	assert.True(t, gw.Available(context.Background()))
	assert.Same(t, db, gw.Handle())
}
