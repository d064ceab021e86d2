package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/poster-threads/config"
	"github.com/d60-Lab/poster-threads/pkg/logger"
)

// ErrUnavailable 数据库不可用（未连接或 ping 失败）
var ErrUnavailable = errors.New("database unavailable")

const defaultRecheck = 5 * time.Second

// InitDB 按配置打开连接池。不做启动期 ping：数据库暂时不可达时服务照常启动，
// 由 Gateway 负责可用性判断。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN())
	default:
		dialector = postgres.Open(cfg.Database.DSN())
	}

	level := gormlogger.Warn
	if cfg.Server.Mode == "release" {
		level = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)
	return db, nil
}

// Gateway 持有连接池并暴露可用性信号。可用性结果缓存 recheck 时长，
// 过期后下一次调用重新 ping。
type Gateway struct {
	db          *gorm.DB
	pingTimeout time.Duration
	recheck     time.Duration

	up        atomic.Bool
	checkedAt atomic.Int64

	onUp    func(ctx context.Context, db *gorm.DB) error
	ranOnUp atomic.Bool
}

type Option func(*Gateway)

// WithPingTimeout 单次 ping 超时
func WithPingTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.pingTimeout = d
		}
	}
}

// WithRecheckInterval 可用性缓存时长；0 表示每次都 ping
func WithRecheckInterval(d time.Duration) Option {
	return func(g *Gateway) { g.recheck = d }
}

// WithOnFirstAvailable 数据库首次可用时执行一次（如 AutoMigrate），失败则下次可用时重试
func WithOnFirstAvailable(fn func(ctx context.Context, db *gorm.DB) error) Option {
	return func(g *Gateway) { g.onUp = fn }
}

// NewGateway db 为 nil 时网关永远不可用
func NewGateway(db *gorm.DB, opts ...Option) *Gateway {
	g := &Gateway{db: db, pingTimeout: 2 * time.Second, recheck: defaultRecheck}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Check 立即 ping 并刷新可用性
func (g *Gateway) Check(ctx context.Context) bool {
	ok := g.ping(ctx)
	g.up.Store(ok)
	g.checkedAt.Store(time.Now().UnixNano())
	if ok && g.onUp != nil && g.ranOnUp.CompareAndSwap(false, true) {
		if err := g.onUp(ctx, g.db.WithContext(ctx)); err != nil {
			logger.Error("database on-available hook failed", zap.Error(err))
			g.ranOnUp.Store(false)
		}
	}
	return ok
}

// Available 返回缓存的可用性，过期时重新检查
func (g *Gateway) Available(ctx context.Context) bool {
	if g == nil || g.db == nil {
		return false
	}
	last := g.checkedAt.Load()
	if last != 0 && time.Since(time.Unix(0, last)) < g.recheck {
		return g.up.Load()
	}
	wasUp := g.up.Load()
	ok := g.Check(ctx)
	if wasUp != ok || last == 0 {
		if ok {
			logger.Info("database available")
		} else {
			logger.Warn("database unavailable, degrading")
		}
	}
	return ok
}

// DB 返回绑定 ctx 的句柄；不可用时返回 ErrUnavailable
func (g *Gateway) DB(ctx context.Context) (*gorm.DB, error) {
	if !g.Available(ctx) {
		return nil, ErrUnavailable
	}
	return g.db.WithContext(ctx), nil
}

// Handle 未绑定 ctx 的原始句柄，供 repository 构造使用；可能为 nil
func (g *Gateway) Handle() *gorm.DB {
	return g.db
}

// Close 关闭连接池
func (g *Gateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *Gateway) ping(ctx context.Context) bool {
	if g.db == nil {
		return false
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, g.pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}
