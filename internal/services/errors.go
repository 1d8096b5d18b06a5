package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Domain failures of the matching and scheduling core. Handlers map these to
// HTTP statuses; the services themselves never touch the transport layer.
var (
	// Validation
	ErrInvalidInterval = errors.New("end time must be after start time")
	ErrInvalidRange    = errors.New("range start must not be after range end")
	ErrInvalidRating   = errors.New("ratings must be between 1 and 5")
	ErrCommentTooLong  = errors.New("comment exceeds 300 characters")
	ErrInvalidState    = errors.New("unknown lifecycle state")

	// State violations
	ErrSelfRequest      = errors.New("cannot send a matching request to yourself")
	ErrDuplicatePending = errors.New("a pending request for this pair already exists")
	ErrMatchNotFinished = errors.New("match is not finished")
	ErrNotParticipant   = errors.New("user is not a participant of this match")
	ErrAlreadyReviewed  = errors.New("feedback already submitted for this match")
	ErrNotOwner         = errors.New("feedback belongs to another reviewer")

	// Not found. Non-pending, non-owned and absent matching requests are
	// deliberately indistinguishable so existence never leaks.
	ErrRequestNotFound  = errors.New("matching request not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrUserNotFound     = errors.New("user not found")

	// Contention
	ErrCalendarBusy = errors.New("participant calendars are locked by another booking, try again")
)

// ConflictingBooking identifies the booking that blocks a proposed interval.
// It is surfaced to the caller so the collision can be rendered.
type ConflictingBooking struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ConflictError reports a scheduling overlap for one participant.
type ConflictError struct {
	ParticipantID uint
	Booking       ConflictingBooking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict for user %d with booking %d (%q, %s to %s)",
		e.ParticipantID, e.Booking.ID, e.Booking.Title,
		e.Booking.StartTime.Format(time.RFC3339), e.Booking.EndTime.Format(time.RFC3339))
}

// isDuplicateKey reports whether err is a unique-constraint violation. GORM
// translates driver errors when TranslateError is on; the string checks cover
// drivers that slip through untranslated.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key value") // postgres
}
