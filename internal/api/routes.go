package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config      *config.Config
	Logger      *logrus.Logger
	DB          *gorm.DB
	Queue       QueueStats
	Tracing     *Tracing
	Forms       *FormController
	Search      *SearchController
	Submissions *SubmissionController
	Now         func() time.Time // 过期判断使用的时钟,为空时使用 time.Now
}

// SetupRoutes 配置路由
func SetupRoutes(deps RouterDeps) *gin.Engine {
	router := gin.New()
	cfg := deps.Config

	// 中间件
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(deps.Logger))
	if deps.Tracing != nil {
		router.Use(deps.Tracing.Middleware())
	}
	router.Use(SecurityHeadersMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(CORSMiddleware(cfg.CORS))
	router.Use(ErrorHandlerMiddleware())

	// 运维端点
	healthController := NewHealthController(deps.DB, deps.Queue)
	router.GET("/health", healthController.Check)
	router.GET("/metrics", MetricsHandler)

	// 任务系统回调,过期请求在进入处理器之前被拒绝
	callbacks := router.Group("", ExpiryMiddleware(deps.Now, deps.Logger))
	{
		callbacks.GET("/auth", AuthPage)
		callbacks.GET("/widget", deps.Forms.Widget)

		callbacks.GET("/form/metadata", deps.Forms.Metadata)
		callbacks.POST("/form/onchange", deps.Forms.OnChange)
		callbacks.GET("/worksheet/metadata", deps.Forms.WorksheetMetadata)

		callbacks.GET("/search/typeahead", deps.Search.Typeahead)
		callbacks.POST("/search/attach", deps.Search.Attach)

		submit := callbacks.Group("")
		if cfg.RateLimit.Enabled {
			submit.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
		submit.POST("/form/submit", deps.Forms.Submit)
		submit.POST("/worksheet/submit", deps.Forms.WorksheetSubmit)
	}

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		submissions := v1.Group("/submissions")
		{
			submissions.GET("", deps.Submissions.List)
			submissions.GET("/:id", deps.Submissions.Get)
		}
	}

	return router
}
