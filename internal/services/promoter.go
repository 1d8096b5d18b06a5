package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teachmate/backend/internal/models"
	"github.com/teachmate/backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	promoterLockKey = "global"
	promoterLockTTL = time.Minute
)

// PromoterService advances approved matches to finished once a linked,
// non-cancelled booking has ended. The sweep is a pure function of store
// state and the supplied time, so it may run on a timer, eagerly from the
// task queue, or on read with identical results.
type PromoterService struct {
	db        *gorm.DB
	locks     *LockManager
	batchSize int

	cronScheduler *cron.Cron
	entryID       cron.EntryID
	now           func() time.Time
}

func NewPromoterService(db *gorm.DB, batchSize int) *PromoterService {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &PromoterService{
		db:        db,
		locks:     NewLockManager(db),
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Sweep promotes every approved match whose linked booking ended before now
// and returns how many were promoted. Matches are processed independently:
// one failed update is logged and skipped, never aborting the batch.
// Re-running with the same or a later now is idempotent: finished matches
// are excluded by the status filter and never revisited.
func (s *PromoterService) Sweep(now time.Time) (int, error) {
	var ids []uint
	err := s.db.Model(&models.MatchingRequest{}).
		Where("status = ?", models.MatchingStatusApproved).
		Where("EXISTS (SELECT 1 FROM schedules WHERE schedules.matching_id = matching_requests.id"+
			" AND schedules.status <> ? AND schedules.end_time < ?)",
			models.ScheduleStatusCancelled, now).
		Order("matching_requests.id ASC").
		Limit(s.batchSize).
		Pluck("matching_requests.id", &ids).Error
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, id := range ids {
		res := s.db.Model(&models.MatchingRequest{}).
			Where("id = ? AND status = ?", id, models.MatchingStatusApproved).
			Update("status", models.MatchingStatusFinished)
		if res.Error != nil {
			logger.Error().Err(res.Error).Uint("matching_id", id).
				Msg("failed to promote match, continuing sweep")
			continue
		}
		if res.RowsAffected > 0 {
			promoted++
		}
	}
	return promoted, nil
}

// PromoteMatch applies the sweep predicate to a single match. Used by the
// task-queue path that fires at a booking's end time. Returns whether the
// match was promoted; an already-finished match reports false with no error.
func (s *PromoterService) PromoteMatch(matchingID uint, now time.Time) (bool, error) {
	res := s.db.Model(&models.MatchingRequest{}).
		Where("id = ? AND status = ?", matchingID, models.MatchingStatusApproved).
		Where("EXISTS (SELECT 1 FROM schedules WHERE schedules.matching_id = matching_requests.id"+
			" AND schedules.status <> ? AND schedules.end_time < ?)",
			models.ScheduleStatusCancelled, now).
		Update("status", models.MatchingStatusFinished)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// StartScheduler begins the periodic sweep on the given cron spec.
func (s *PromoterService) StartScheduler(cronSpec string) error {
	s.cronScheduler = cron.New()
	entryID, err := s.cronScheduler.AddFunc(cronSpec, s.runScheduledSweep)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cronScheduler.Start()
	logger.Infof("[Promoter] Scheduler started, spec: %s", cronSpec)
	return nil
}

// StopScheduler stops the periodic sweep.
func (s *PromoterService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// runScheduledSweep takes the sweep lock so that with several instances
// sharing one database only one runs each tick. A busy or failed lock skips
// the tick; the next one retries.
func (s *PromoterService) runScheduledSweep() {
	ok, err := s.locks.Acquire(models.LockNamePromoterSweep, promoterLockKey, promoterLockTTL)
	if err != nil {
		logger.Error().Err(err).Msg("[Promoter] sweep lock acquisition failed")
		return
	}
	if !ok {
		logger.Debug().Msg("[Promoter] sweep already running elsewhere, skipping tick")
		return
	}
	defer func() {
		if err := s.locks.Release(models.LockNamePromoterSweep, promoterLockKey); err != nil {
			logger.Warn().Err(err).Msg("[Promoter] failed to release sweep lock")
		}
	}()

	count, err := s.Sweep(s.now())
	if err != nil {
		logger.Error().Err(err).Msg("[Promoter] sweep failed")
		return
	}
	if count > 0 {
		logger.Infof("[Promoter] promoted %d matches to finished", count)
	}
}
