package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/teachmate/backend/internal/models"
	"gorm.io/gorm"
)

// LockManager implements advisory locking on top of the scheduler_locks
// table. Acquisition is an insert guarded by the (lock_name, lock_key)
// unique index, so of two concurrent claimants exactly one wins regardless
// of database driver.
type LockManager struct {
	db    *gorm.DB
	owner string
	now   func() time.Time
}

func NewLockManager(db *gorm.DB) *LockManager {
	return &LockManager{
		db:    db,
		owner: uuid.NewString(),
		now:   time.Now,
	}
}

// Owner returns this process instance's lock identity.
func (m *LockManager) Owner() string {
	return m.owner
}

// Acquire claims the named lock for ttl. A held, unexpired lock causes an
// immediate failure; expired leases left by crashed holders are reaped and
// acquisition is retried once.
func (m *LockManager) Acquire(name, key string, ttl time.Duration) (bool, error) {
	if ok, err := m.tryInsert(name, key, ttl); ok || err != nil {
		return ok, err
	}

	// Reap an expired lease, then retry once.
	now := m.now()
	res := m.db.Where("lock_name = ? AND lock_key = ? AND expires_at < ?", name, key, now).
		Delete(&models.SchedulerLock{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return m.tryInsert(name, key, ttl)
}

func (m *LockManager) tryInsert(name, key string, ttl time.Duration) (bool, error) {
	now := m.now()
	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  m.owner,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	err := m.db.Create(&lock).Error
	if err == nil {
		return true, nil
	}
	if isDuplicateKey(err) {
		return false, nil
	}
	return false, err
}

// Release drops a lock held by this owner. Releasing a lock that was
// reaped or stolen is a no-op.
func (m *LockManager) Release(name, key string) error {
	return m.db.Where("lock_name = ? AND lock_key = ? AND locked_by = ?", name, key, m.owner).
		Delete(&models.SchedulerLock{}).Error
}

// ReleaseAll drops every lock with the given name held by this owner.
func (m *LockManager) ReleaseAll(name string) error {
	return m.db.Where("lock_name = ? AND locked_by = ?", name, m.owner).
		Delete(&models.SchedulerLock{}).Error
}
