package models

import "time"

// Schedule (booking) lifecycle states.
const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusConfirmed = "confirmed"
	ScheduleStatusCancelled = "cancelled"
	ScheduleStatusCompleted = "completed"
)

// Schedule is a concrete meeting instance over the half-open interval
// [StartTime, EndTime). The organizer is always present in Participants.
type Schedule struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	StartTime  time.Time `gorm:"index;not null" json:"start_time"`
	EndTime    time.Time `gorm:"index;not null" json:"end_time"`
	CreatedBy  uint      `gorm:"index;not null" json:"created_by"`
	Status     string    `gorm:"size:20;index;default:confirmed" json:"status"`
	MatchingID *uint     `gorm:"index" json:"matching_id"`
	Location   string    `gorm:"size:200" json:"location"`
	Notes      string    `gorm:"size:1000" json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Participants []ScheduleParticipant `gorm:"foreignKey:ScheduleID" json:"participants,omitempty"`

	// HolidayWarning is set on creation when the interval falls on a public
	// holiday for the configured country. Advisory only, never persisted.
	HolidayWarning string `gorm:"-" json:"holiday_warning,omitempty"`
}

// ScheduleParticipant links a user to a booking. The composite unique index
// keeps the participant set a set.
type ScheduleParticipant struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ScheduleID uint `gorm:"uniqueIndex:idx_schedule_user;not null" json:"schedule_id"`
	UserID     uint `gorm:"uniqueIndex:idx_schedule_user;index;not null" json:"user_id"`
}

func (Schedule) TableName() string            { return "schedules" }
func (ScheduleParticipant) TableName() string { return "schedule_participants" }

// IsCancelled reports whether the booking no longer occupies its interval.
func (s *Schedule) IsCancelled() bool {
	return s.Status == ScheduleStatusCancelled
}

// Overlaps reports whether [start, end) intersects this booking's interval.
// Touching boundaries do not overlap: a meeting ending exactly when another
// starts is not a conflict.
func (s *Schedule) Overlaps(start, end time.Time) bool {
	return start.Before(s.EndTime) && s.StartTime.Before(end)
}

// ParticipantIDs returns the ids of all loaded participants.
func (s *Schedule) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(s.Participants))
	for _, p := range s.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
