package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/poster-threads/config"
	"github.com/d60-Lab/poster-threads/internal/algorithm"
	"github.com/d60-Lab/poster-threads/internal/api"
	"github.com/d60-Lab/poster-threads/internal/api/handler"
	"github.com/d60-Lab/poster-threads/internal/cache"
	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/internal/service"
	"github.com/d60-Lab/poster-threads/pkg/database"
	"github.com/d60-Lab/poster-threads/pkg/logger"
	"github.com/d60-Lab/poster-threads/pkg/tracing"
)

// @title Poster Threads API
// @version 1.0
// @description Conversation threads with poster generation backed by an external algorithm service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.Sentry.Environment)
	if err != nil {
		logger.Warn("tracing setup failed, continuing without tracing", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	gw := openGateway(ctx, cfg)
	defer gw.Close()

	summaries := openSummaryCache(ctx, cfg)

	db := gw.Handle()
	threadRepo := repository.NewThreadRepository(db)
	convRepo := repository.NewConversationRepository(db)
	posterRepo := repository.NewPosterRepository(db)

	algo := algorithm.NewClient(cfg.Algorithm.URL,
		algorithm.WithTimeouts(cfg.Algorithm.GenerateTimeout, cfg.Algorithm.ImageTimeout))

	threads := service.NewThreadService(gw, threadRepo, convRepo, posterRepo, summaries)
	conversations := service.NewConversationService(gw, threadRepo, convRepo, summaries)
	posters := service.NewPosterService(gw, algo, posterRepo, convRepo, threadRepo, conversations, summaries)
	relay := service.NewImageRelay(algo)

	h := handler.NewHandler(threads, conversations, posters, relay, gw)
	router := api.NewRouter(ctx, cfg, h)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("algorithm_url", cfg.Algorithm.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

// openGateway 连接失败不退出：服务以降级模式启动，数据库恢复后自动迁移
func openGateway(ctx context.Context, cfg *config.Config) *database.Gateway {
	opts := []database.Option{database.WithPingTimeout(cfg.Database.PingTimeout)}
	if cfg.Database.AutoMigrate {
		opts = append(opts, database.WithOnFirstAvailable(func(ctx context.Context, db *gorm.DB) error {
			return repository.AutoMigrate(ctx, db)
		}))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("open database failed, starting degraded", zap.Error(err))
		return database.NewGateway(nil, opts...)
	}
	gw := database.NewGateway(db, opts...)
	if gw.Available(ctx) {
		logger.Info("database connected", zap.String("driver", cfg.Database.Driver))
	}
	return gw
}

// openSummaryCache 未配置 redis 时返回 nil，列表直接读库
func openSummaryCache(ctx context.Context, cfg *config.Config) *cache.ThreadSummaryCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, thread summary cache will fall back to database", zap.Error(err))
	}
	return cache.NewThreadSummaryCache(rdb, cfg.Redis.TTL)
}
