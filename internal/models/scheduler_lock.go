package models

import "time"

// Lock names used by the coordination services.
const (
	LockNamePromoterSweep = "promoter_sweep"
	LockNameBooking       = "booking"
)

// SchedulerLock is a database-backed advisory lock. The unique index on
// (lock_name, lock_key) makes acquisition an atomic insert: of two
// concurrent claimants at most one insert succeeds.
//
// It serves two purposes: ensuring a single instance runs the promotion
// sweep, and serializing booking check-then-insert per participant.
type SchedulerLock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LockName  string    `gorm:"uniqueIndex:idx_lock_name_key;size:100;not null" json:"lock_name"`
	LockKey   string    `gorm:"uniqueIndex:idx_lock_name_key;size:100;not null" json:"lock_key"`
	LockedBy  string    `gorm:"size:100" json:"locked_by"`
	LockedAt  time.Time `json:"locked_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (SchedulerLock) TableName() string { return "scheduler_locks" }

// Expired reports whether the lock's lease has lapsed and may be stolen.
func (l *SchedulerLock) Expired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}
