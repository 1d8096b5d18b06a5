package services

import (
	"errors"
	"time"

	"github.com/teachmate/backend/internal/models"
	"gorm.io/gorm"
)

// ConflictDetector answers whether a proposed interval collides with an
// existing booking of a participant. It is read-only; callers that need the
// check to hold across a write bind it to their transaction.
type ConflictDetector struct {
	db *gorm.DB
}

func NewConflictDetector(db *gorm.DB) *ConflictDetector {
	return &ConflictDetector{db: db}
}

// FindConflict returns the first non-cancelled booking in which participantID
// takes part (as organizer or attendee) whose interval overlaps [start, end),
// or nil when the slot is free. Intervals are half-open, so a booking ending
// exactly at start does not conflict. excludeID skips one booking, which lets
// an update check against everything except the booking being edited; pass 0
// to check against all.
//
// Ordering by start time then id makes the returned collision deterministic
// when several bookings overlap the proposed slot.
func (d *ConflictDetector) FindConflict(participantID uint, start, end time.Time, excludeID uint) (*models.Schedule, error) {
	query := d.db.Model(&models.Schedule{}).
		Joins("JOIN schedule_participants sp ON sp.schedule_id = schedules.id").
		Where("sp.user_id = ?", participantID).
		Where("schedules.status <> ?", models.ScheduleStatusCancelled).
		Where("schedules.start_time < ? AND schedules.end_time > ?", end, start).
		Order("schedules.start_time ASC, schedules.id ASC")

	if excludeID != 0 {
		query = query.Where("schedules.id <> ?", excludeID)
	}

	var booking models.Schedule
	if err := query.First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}
