package main

import (
	"github.com/gin-gonic/gin"
	"github.com/teachmate/backend/internal/config"
	"github.com/teachmate/backend/internal/handlers"
	"github.com/teachmate/backend/internal/middleware"
	"github.com/teachmate/backend/internal/models"
	"github.com/teachmate/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices, cfg *config.Config) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for unauthenticated endpoints
	loginLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", loginLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(models.GetDB())
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)

			// Matching requests
			matchingHandler := handlers.NewMatchingHandler(models.GetDB())
			protected.POST("/matching-requests", matchingHandler.Create)
			protected.GET("/matching-requests", matchingHandler.List)
			protected.GET("/matching-requests/state/:state", matchingHandler.ListByState)
			protected.GET("/matching-requests/:id", matchingHandler.Get)
			protected.POST("/matching-requests/:id/approve", matchingHandler.Approve)
			protected.POST("/matching-requests/:id/reject", matchingHandler.Reject)
			protected.DELETE("/matching-requests/:id", matchingHandler.Cancel)

			// Schedules
			scheduleHandler := handlers.NewScheduleHandler(models.GetDB(), cfg)
			protected.POST("/schedules", scheduleHandler.Create)
			protected.GET("/schedules", scheduleHandler.List)
			protected.POST("/schedules/:id/cancel", scheduleHandler.Cancel)
			protected.GET("/schedules/holiday-countries", scheduleHandler.GetHolidayCountries)

			// Feedbacks
			feedbackHandler := handlers.NewFeedbackHandler(models.GetDB())
			protected.POST("/feedbacks", feedbackHandler.Create)
			protected.PUT("/feedbacks/:id", feedbackHandler.Update)
			protected.GET("/feedbacks/received", feedbackHandler.ListReceived)
			protected.GET("/feedbacks/given", feedbackHandler.ListGiven)
			protected.GET("/feedbacks/eligibility/:matching_id", feedbackHandler.CheckEligibility)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.DELETE("/system-logs", systemLogHandler.Cleanup)
		}
	}
}
