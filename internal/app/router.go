package app

import (
	"talent_assessment_backend/docs"
	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/middleware"
	"talent_assessment_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 受评者入口：访问令牌即身份，不走JWT
	interview := router.Group("/api/interview/:token")
	interview.Use(middleware.InterviewTokenMiddleware(repos.participant))
	{
		interview.GET("", c.interview.GetParticipant)
		interview.POST("/tbei", c.interview.SubmitTbei)
		interview.POST("/tbei/audio", c.interview.UploadAudio)
		interview.POST("/hipo", c.interview.SubmitHipo)
		interview.POST("/quiz", c.interview.SubmitQuiz)
	}

	// 管理端：会话编排与评估管理
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	{
		admin.POST("/sessions", c.session.CreateSession)
		admin.GET("/sessions", c.session.ListSessions)
		admin.GET("/sessions/:id", c.session.GetSession)
		admin.PATCH("/sessions/:id/status", c.session.TransitionStatus)

		admin.POST("/evaluations/tbei", c.evaluation.EvaluateTbei)
		admin.POST("/evaluations/batch", c.evaluation.BatchEvaluate)
		admin.GET("/evaluations/responses/:id/state", c.evaluation.GetResponseState)
		admin.GET("/evaluations/dead-letters", c.evaluation.ListDeadLetters)

		admin.GET("/participants/:id/overall-score", c.evaluation.GetOverallScore)
	}
}
