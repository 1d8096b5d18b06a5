package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teachmate/backend/internal/config"
	"github.com/teachmate/backend/internal/middleware"
	"github.com/teachmate/backend/internal/services"
	"github.com/teachmate/backend/pkg/response"
	"gorm.io/gorm"
)

// defaultListWindow is the calendar range returned when the caller gives no
// explicit bounds.
const defaultListWindow = 30 * 24 * time.Hour

type ScheduleHandler struct {
	schedulingService *services.SchedulingService
	holidayService    *services.HolidayService
}

func NewScheduleHandler(db *gorm.DB, cfg *config.Config) *ScheduleHandler {
	svc := services.NewSchedulingService(db)
	holiday := services.NewHolidayService()
	if cfg.Holiday.Enabled {
		svc = svc.WithHolidayCheck(holiday, cfg.Holiday.Country)
	}
	if queue := services.GetTaskQueue(); queue != nil {
		svc = svc.WithTaskQueue(queue)
	}
	return &ScheduleHandler{
		schedulingService: svc,
		holidayService:    holiday,
	}
}

// Create books a meeting for the current user and the listed participants
// POST /api/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req services.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	schedule, err := h.schedulingService.Create(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("schedule", "create", "schedule created",
		&userID, c.ClientIP(), c.Request.UserAgent(), gin.H{"schedule_id": schedule.ID})
	response.Created(c, schedule)
}

// List returns the current user's bookings inside a time range
// GET /api/schedules?from=...&to=...
func (h *ScheduleHandler) List(c *gin.Context) {
	now := time.Now()
	start, err := parseTimeParam(c.Query("from"), now.AddDate(0, 0, -7))
	if err != nil {
		response.BadRequest(c, "invalid from parameter")
		return
	}
	end, err := parseTimeParam(c.Query("to"), start.Add(defaultListWindow))
	if err != nil {
		response.BadRequest(c, "invalid to parameter")
		return
	}

	schedules, err := h.schedulingService.List(middleware.GetUserID(c), start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, schedules)
}

// Cancel marks a booking cancelled; only the organizer may do this
// POST /api/schedules/:id/cancel
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}

	userID := middleware.GetUserID(c)
	schedule, err := h.schedulingService.Cancel(uint(id), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("schedule", "cancel", "schedule cancelled",
		&userID, c.ClientIP(), c.Request.UserAgent(), gin.H{"schedule_id": schedule.ID})
	response.Success(c, schedule)
}

// GetHolidayCountries lists the country codes holiday checks support
// GET /api/schedules/holiday-countries
func (h *ScheduleHandler) GetHolidayCountries(c *gin.Context) {
	response.Success(c, gin.H{"countries": h.holidayService.SupportedCountries()})
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates.
func parseTimeParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
