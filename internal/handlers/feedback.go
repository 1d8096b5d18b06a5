package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teachmate/backend/internal/middleware"
	"github.com/teachmate/backend/internal/services"
	"github.com/teachmate/backend/pkg/response"
	"gorm.io/gorm"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(db *gorm.DB) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: services.NewFeedbackService(db),
	}
}

// Create submits feedback for a finished match
// POST /api/feedbacks
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req services.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	feedback, err := h.feedbackService.Create(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("feedback", "create", "feedback submitted",
		&userID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"feedback_id": feedback.ID, "matching_id": feedback.MatchingID})
	response.Created(c, feedback)
}

// Update revises the current user's own feedback
// PUT /api/feedbacks/:id
func (h *FeedbackHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	var req services.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbackService.Update(uint(id), middleware.GetUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, feedback)
}

// ListReceived returns feedback written about the current user
// GET /api/feedbacks/received
func (h *FeedbackHandler) ListReceived(c *gin.Context) {
	views, err := h.feedbackService.ListReceived(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, views)
}

// ListGiven returns feedback written by the current user
// GET /api/feedbacks/given
func (h *FeedbackHandler) ListGiven(c *gin.Context) {
	views, err := h.feedbackService.ListGiven(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, views)
}

// CheckEligibility reports whether the current user may rate a match yet
// GET /api/feedbacks/eligibility/:matching_id
func (h *FeedbackHandler) CheckEligibility(c *gin.Context) {
	matchingID, err := strconv.ParseUint(c.Param("matching_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid matching id")
		return
	}

	if _, err := h.feedbackService.CanSubmit(uint(matchingID), middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"eligible": true})
}
