package app

import (
	"time"

	"codeshin_backend/internal/config"
	"codeshin_backend/internal/middleware"
	"codeshin_backend/pkg/monitoring"
	"codeshin_backend/pkg/security"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 生成推荐和提交代码开销较大，按用户单独限流
		perUser := security.RateLimiter(a.ctx, 30, time.Minute, security.ByUser)

		authGroup.GET("/recommendations", c.recommendation.Get)
		authGroup.POST("/recommendations", perUser, c.recommendation.Generate)

		authGroup.GET("/submissions", c.submission.History)
		authGroup.POST("/submissions", perUser, c.submission.Submit)

		authGroup.GET("/mastery", c.mastery.Overview)
		authGroup.POST("/mastery/init", c.mastery.Init)
	}
}
