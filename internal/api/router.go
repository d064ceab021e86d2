package api

import (
	"context"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/poster-threads/config"
	_ "github.com/d60-Lab/poster-threads/docs"
	"github.com/d60-Lab/poster-threads/internal/api/handler"
	"github.com/d60-Lab/poster-threads/internal/middleware"
	"github.com/d60-Lab/poster-threads/pkg/response"
)

const (
	// imagePathPrefix 图片原样转发，不做 gzip
	imagePathPrefix = "/api/poster/image/"

	limiterCleanupEvery = 5 * time.Minute
)

// NewRouter 组装中间件与路由。ctx 结束时限流器的清理协程退出。
func NewRouter(ctx context.Context, cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{imagePathPrefix, "/metrics"})))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx, limiterCleanupEvery)
		apiGroup.Use(middleware.RateLimit(limiter))
	}
	apiGroup.Use(middleware.Auth(cfg.JWT.Secret))

	threads := apiGroup.Group("/thread")
	{
		threads.GET("/list", h.ListThreads)
		threads.POST("/create", h.CreateThread)
		threads.GET("/:threadId", h.GetThread)
		threads.PUT("/:threadId", h.UpdateThread)
		threads.DELETE("/:threadId", h.DeleteThread)
	}

	conversations := apiGroup.Group("/conversation")
	{
		conversations.POST("/new", h.NewConversation)
		conversations.GET("/history", h.ConversationHistory)
	}

	posters := apiGroup.Group("/poster")
	{
		posters.POST("/generate", h.GeneratePoster)
		posters.GET("/list", h.ListPosters)
		posters.GET("/image/:posterId", h.PosterImage)
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})
	return r
}
