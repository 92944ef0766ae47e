package app

import (
	"goal_pilot_backend/docs"
	"goal_pilot_backend/internal/middleware"
	"goal_pilot_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, s *services) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config, s.blacklist), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.POST("/logout", c.auth.Logout)

		a.registerUserRoutes(authGroup, c)
		a.registerGoalRoutes(authGroup, c)
		a.registerGenerationRoutes(authGroup, c)
		a.registerTaskRoutes(authGroup, c)
		a.registerCalendarRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerUserRoutes(api *gin.RouterGroup, c *controllers) {
	user := api.Group("/user")
	{
		user.GET("/profile", c.user.GetProfile)
		user.PUT("/profile", c.user.UpdateProfile)
		user.GET("/preferences", c.user.GetPreferences)
		user.PUT("/preferences", c.user.UpdatePreferences)
	}
}

func (a *App) registerGoalRoutes(api *gin.RouterGroup, c *controllers) {
	goals := api.Group("/goals")
	{
		goals.POST("", c.goal.CreateGoal)
		goals.GET("", c.goal.ListGoals)
		goals.GET("/:id", c.goal.GetGoal)
		goals.PUT("/:id", c.goal.UpdateGoal)
		goals.PATCH("/:id/status", c.goal.UpdateGoalStatus)
		goals.DELETE("/:id", c.goal.DeleteGoal)
		goals.POST("/:id/regenerate", c.ai.Regenerate)
	}
}

func (a *App) registerGenerationRoutes(api *gin.RouterGroup, c *controllers) {
	ai := api.Group("/ai")
	{
		ai.POST("/generate-instant", c.ai.GenerateInstant)
		ai.POST("/generate-overview-fast", c.ai.GenerateOverviewFast)
		ai.POST("/generate-stages-fast", c.ai.GenerateStagesFast)
		ai.POST("/generate-roadmap-stream", c.ai.GenerateRoadmapStream)
	}

	stages := api.Group("/progress-stages")
	{
		stages.GET("", c.progressStage.List)
		stages.POST("/auto-create", c.progressStage.AutoCreate)
	}
}

func (a *App) registerTaskRoutes(api *gin.RouterGroup, c *controllers) {
	tasks := api.Group("/tasks")
	{
		tasks.GET("", c.task.ListTasks)
		tasks.POST("/generate-phase-fast", c.task.GeneratePhaseTasksFast)
		tasks.PATCH("/:id/complete", c.task.CompleteTask)
		tasks.PATCH("/:id/uncomplete", c.task.UncompleteTask)
		tasks.PATCH("/:id/reschedule", c.task.RescheduleTask)
		tasks.PATCH("/:id/duration", c.task.UpdateTaskDuration)
	}
}

func (a *App) registerCalendarRoutes(api *gin.RouterGroup, c *controllers) {
	calendar := api.Group("/calendar")
	{
		calendar.GET("", c.calendar.GetMonth)
		calendar.GET("/export", c.calendar.Export)
	}
}
