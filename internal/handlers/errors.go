package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/teachmate/backend/internal/services"
	"github.com/teachmate/backend/pkg/response"
)

// handleServiceError translates domain errors into API responses. Handlers
// call this for any error coming back from the service layer.
func handleServiceError(c *gin.Context, err error) {
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		response.Error(c, response.NewConflictWithData(
			"the requested time overlaps an existing booking", conflict.Booking))
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidInterval),
		errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrSelfRequest):
		response.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrCommentTooLong):
		response.Error(c, response.NewUnprocessable(err.Error()))

	case errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrMatchNotFinished),
		errors.Is(err, services.ErrCalendarBusy):
		response.Error(c, response.NewConflict(err.Error()))

	case errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotOwner):
		response.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrScheduleNotFound),
		errors.Is(err, services.ErrFeedbackNotFound),
		errors.Is(err, services.ErrUserNotFound):
		response.NotFound(c, err.Error())

	default:
		response.ServerError(c, err.Error())
	}
}
