// Package api 组装 HTTP 接口：中间件、文件路由、静态访问、维护与文档路由.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/handle"
	"github.com/yeisme/docshelf/pkg/internal/router"
	"github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/metrics"
	"github.com/yeisme/docshelf/pkg/middleware"
	"github.com/yeisme/docshelf/pkg/rule"
)

// NewEngine 创建注册了全部中间件与路由的 gin 引擎.
func NewEngine(cfg *configs.AppConfig, h *handle.Handlers) *gin.Engine {
	gin.DefaultWriter = log.NewGinWriter(log.Logger(), zerolog.DebugLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(log.Logger(), zerolog.ErrorLevel)

	// 让 gin 的参数绑定使用 rule 标签
	rule.Engine()

	e := gin.New()
	e.Use(gin.Recovery())

	return RegisterGroup(e, h, cfg)
}

// RegisterGroup 注册文件处理相关的路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, h *handle.Handlers, cfg *configs.AppConfig) *gin.Engine {
	publicPath := strings.TrimRight(cfg.Upload.PublicPath, "/")

	e.Use(
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(cfg.Metrics.Path),
		middleware.CORSMiddleware(cfg.Server.CORS),
		// 文件流保持原样以支持 Range
		middleware.GzipMiddleware(publicPath+"/", "/api/file/", cfg.Metrics.Path),
	)

	if cfg.Metrics.Enabled {
		e.Use(middleware.PrometheusMiddleware())
		router.RegisterMetricsRoute(e, cfg.Metrics.Path, metrics.Handler())
	}

	apiGroup := e.Group("/api", middleware.CircuitBreakerMiddleware(cfg.CircuitBreaker))

	router.RegisterFilesRoutes(apiGroup, h, middleware.RateLimitMiddleware(cfg.RateLimit))
	router.RegisterMaintenanceRoutes(apiGroup, h, handle.TestCORS)
	router.RegisterStaticRoute(e, publicPath, h)
	router.RegisterSwaggerRoute(e, cfg.Server)

	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": handle.CodeNotFound})
	})

	return e
}
