package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/http/handlers"
	"github.com/mediccompanion/backend/internal/http/middleware"
	"github.com/mediccompanion/backend/internal/platform/envutil"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler       *handlers.AuthHandler
	MedicationHandler *handlers.MedicationHandler
	AdherenceHandler  *handlers.AdherenceHandler
	PlanHandler       *handlers.PlanHandler
	ExpertHandler     *handlers.ExpertHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	origins := strings.Split(envutil.String("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/me", cfg.AuthHandler.Me)
		protected.PATCH("/me", cfg.AuthHandler.UpdateMe)

		protected.POST("/medications", cfg.MedicationHandler.Create)
		protected.GET("/medications", cfg.MedicationHandler.List)
		protected.GET("/medications/:id", cfg.MedicationHandler.Get)
		protected.PUT("/medications/:id", cfg.MedicationHandler.Update)
		protected.PUT("/medications/:id/schedules", cfg.MedicationHandler.UpdateSchedules)
		protected.DELETE("/medications/:id", cfg.MedicationHandler.Deactivate)

		protected.GET("/adherence/today", cfg.AdherenceHandler.Today)
		protected.POST("/adherence/mark", cfg.AdherenceHandler.MarkDose)
		protected.GET("/adherence/summary", cfg.AdherenceHandler.Summary)
		protected.GET("/adherence/history", cfg.AdherenceHandler.History)

		protected.POST("/plans/generate", cfg.PlanHandler.Generate)
		protected.POST("/plans/continue", cfg.PlanHandler.Continue)
		protected.POST("/plans/approve", cfg.PlanHandler.Approve)
		protected.GET("/plans/reviews", cfg.PlanHandler.Reviews)
	}

	expert := protected.Group("/expert")
	expert.Use(cfg.AuthMiddleware.RequireRole(domain.RoleDoctor, domain.RoleCaregiver))
	{
		expert.GET("/patients", cfg.ExpertHandler.Patients)
		expert.GET("/patients/:id/adherence-risk", cfg.ExpertHandler.PatientRisk)
	}

	return router
}
