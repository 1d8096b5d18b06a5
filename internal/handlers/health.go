package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teachmate/backend/internal/models"
	"github.com/teachmate/backend/internal/services"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "timer"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Approved matches waiting on the promoter
	var awaitingPromotion int64
	models.GetDB().Model(&models.MatchingRequest{}).
		Where("status = ?", models.MatchingStatusApproved).
		Count(&awaitingPromotion)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "teachmate",
		"components": gin.H{
			"database":           dbStatus,
			"queue_mode":         queueMode,
			"awaiting_promotion": awaitingPromotion,
		},
	})
}
