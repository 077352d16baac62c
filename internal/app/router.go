package app

import (
	"time"

	"eduquiz_backend/internal/middleware"
	"eduquiz_backend/internal/model"
	"eduquiz_backend/pkg/monitoring"
	"eduquiz_backend/pkg/security"
	"eduquiz_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) initEngine() {
	gin.SetMode(a.Config.Server.Mode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(security.CORS(a.Config.CORS.AllowedOrigins))
	engine.Use(security.Secure())
	engine.Use(monitoring.MetricsMiddleware())
	if a.Config.Tracing.Enabled && a.tracerProvider != nil {
		engine.Use(tracing.GinMiddleware())
	}
	if a.Config.RateLimit.MaxRequests > 0 {
		window := time.Duration(a.Config.RateLimit.WindowMinutes) * time.Minute
		engine.Use(security.RateLimiter(a.Config.RateLimit.MaxRequests, window))
	}

	a.Engine = engine
	a.registerRoutes()
}

func (a *App) registerRoutes() {
	e := a.Engine
	cfg := a.Config

	e.GET("/health", a.healthController.Check)
	e.GET("/metrics", monitoring.PrometheusHandler())
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	e.Static("/uploads", cfg.Storage.LocalPath)

	v1 := e.Group("/api/v1")

	// 公开接口
	auth := v1.Group("/auth")
	{
		auth.POST("/register", a.authController.Register)
		auth.POST("/login", a.authController.Login)
	}
	// 发现类接口匿名可访问，带合法 token 时照常挂上身份
	discover := v1.Group("")
	discover.Use(middleware.TryAuthMiddleware(cfg))
	{
		discover.GET("/classes/public", a.classController.ListPublic)
		discover.GET("/quizzes/public", a.quizController.ListPublic)
	}

	// 登录后接口
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))
	authed.Use(middleware.ActivityMiddleware(a.userRepo))
	{
		authed.GET("/auth/me", a.authController.Me)

		authed.GET("/users/profile", a.userController.GetProfile)
		authed.PUT("/users/profile", a.userController.UpdateProfile)
		authed.POST("/users/avatar", a.userController.UploadAvatar)

		authed.GET("/classes/enrolled", a.classController.ListEnrolled)
		authed.POST("/classes/join", a.classController.JoinByCode)
		authed.POST("/classes/:id/join", a.classController.JoinPublic)
		authed.POST("/classes/:id/leave", a.classController.Leave)
		authed.GET("/classes/:id/quizzes", a.quizController.ListByClass)

		authed.GET("/quizzes/:id", a.quizController.GetForStudent)
		authed.GET("/quizzes/:id/access", a.attemptController.EvaluateAccess)
		// 教师预览不产生作答记录，开始作答仅限学生
		authed.POST("/quizzes/:id/attempts", middleware.RoleMiddleware(model.Student), a.attemptController.Start)
		authed.POST("/attempts/:id/submit", a.attemptController.Submit)
		authed.GET("/attempts/:id", a.resultController.AttemptDetail)
		authed.GET("/results/mine", a.resultController.MyResults)

		authed.GET("/notifications", a.notificationController.List)
		authed.POST("/notifications/:id/read", a.notificationController.MarkRead)
		authed.POST("/notifications/read-all", a.notificationController.MarkAllRead)
	}

	// 教师/管理员接口
	teacher := v1.Group("")
	teacher.Use(middleware.AuthMiddleware(cfg))
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/classes", a.classController.Create)
		teacher.GET("/classes/mine", a.classController.ListMine)
		teacher.PUT("/classes/:id", a.classController.Update)
		teacher.DELETE("/classes/:id", a.classController.Delete)
		teacher.POST("/classes/:id/join-code", a.classController.RegenerateJoinCode)
		teacher.GET("/classes/:id/students", a.classController.Roster)

		teacher.POST("/quizzes", a.quizController.Create)
		teacher.POST("/quizzes/cover", a.quizController.UploadCover)
		teacher.GET("/quizzes/mine", a.quizController.ListMine)
		teacher.PUT("/quizzes/:id", a.quizController.Update)
		teacher.DELETE("/quizzes/:id", a.quizController.Delete)
		teacher.GET("/quizzes/:id/manage", a.quizController.GetForTeacher)
		teacher.POST("/quizzes/:id/publish", a.quizController.Publish)
		teacher.POST("/quizzes/:id/unpublish", a.quizController.Unpublish)
		teacher.POST("/quizzes/:id/reorder", a.quizController.Reorder)
		teacher.GET("/quizzes/:id/stats", a.resultController.QuizStats)
		teacher.GET("/quizzes/:id/attempts/list", a.resultController.QuizAttempts)
	}
}
