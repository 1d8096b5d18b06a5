package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teachmate/backend/internal/middleware"
	"github.com/teachmate/backend/internal/models"
	"github.com/teachmate/backend/internal/services"
	"github.com/teachmate/backend/pkg/response"
	"gorm.io/gorm"
)

type MatchingHandler struct {
	matchingService *services.MatchingService
}

func NewMatchingHandler(db *gorm.DB) *MatchingHandler {
	return &MatchingHandler{
		matchingService: services.NewMatchingService(db),
	}
}

type createMatchingRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Message    string `json:"message"`
}

// Create opens a pending matching request to another user
// POST /api/matching-requests
func (h *MatchingHandler) Create(c *gin.Context) {
	var req createMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	request, err := h.matchingService.CreateRequest(userID, req.ReceiverID, req.Message)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("matching", "create", "matching request created",
		&userID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"request_id": request.ID, "receiver_id": req.ReceiverID})
	response.Created(c, request)
}

// Approve accepts a pending request addressed to the current user
// POST /api/matching-requests/:id/approve
func (h *MatchingHandler) Approve(c *gin.Context) {
	h.settle(c, h.matchingService.Approve, "approve")
}

// Reject declines a pending request addressed to the current user
// POST /api/matching-requests/:id/reject
func (h *MatchingHandler) Reject(c *gin.Context) {
	h.settle(c, h.matchingService.Reject, "reject")
}

func (h *MatchingHandler) settle(c *gin.Context, fn func(uint, uint) (*models.MatchingRequest, error), action string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	userID := middleware.GetUserID(c)
	request, err := fn(uint(id), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("matching", action, "matching request settled",
		&userID, c.ClientIP(), c.Request.UserAgent(), gin.H{"request_id": request.ID})
	response.Success(c, request)
}

// Cancel withdraws a pending request sent by the current user
// DELETE /api/matching-requests/:id
func (h *MatchingHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.matchingService.Cancel(uint(id), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "matching request cancelled"})
}

// Get returns one match the current user takes part in
// GET /api/matching-requests/:id
func (h *MatchingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	request, err := h.matchingService.GetForParticipant(uint(id), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// List returns the current user's requests, sent and received
// GET /api/matching-requests
func (h *MatchingHandler) List(c *gin.Context) {
	result, err := h.matchingService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ListByState returns the current user's requests in one lifecycle state
// GET /api/matching-requests/state/:state
func (h *MatchingHandler) ListByState(c *gin.Context) {
	result, err := h.matchingService.ListByState(middleware.GetUserID(c), c.Param("state"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}
