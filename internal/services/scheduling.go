package services

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/teachmate/backend/internal/models"
	"github.com/teachmate/backend/pkg/logger"
	"gorm.io/gorm"
)

const bookingLockTTL = 15 * time.Second

// SchedulingService orchestrates booking creation and guards calendar
// integrity across all participants of a booking.
type SchedulingService struct {
	db      *gorm.DB
	locks   *LockManager
	holiday *HolidayService
	country string
	queue   TaskQueue
	now     func() time.Time
}

func NewSchedulingService(db *gorm.DB) *SchedulingService {
	return &SchedulingService{
		db:    db,
		locks: NewLockManager(db),
		now:   time.Now,
	}
}

// WithHolidayCheck enables the advisory holiday annotation on created
// bookings for the given country code.
func (s *SchedulingService) WithHolidayCheck(holiday *HolidayService, country string) *SchedulingService {
	s.holiday = holiday
	s.country = country
	return s
}

// WithTaskQueue enables eager promotion scheduling: bookings linked to a
// match get a promotion task queued for their end time.
func (s *SchedulingService) WithTaskQueue(queue TaskQueue) *SchedulingService {
	s.queue = queue
	return s
}

type CreateScheduleRequest struct {
	Title          string    `json:"title" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	ParticipantIDs []uint    `json:"participant_ids"`
	MatchingID     *uint     `json:"matching_id"`
	Location       string    `json:"location"`
	Notes          string    `json:"notes"`
}

// Create validates the interval, checks every participant's calendar and
// persists the booking atomically. The organizer is checked first, then the
// requested participants in their listed order; the first collision aborts
// the whole operation with a ConflictError naming the blocking booking.
//
// Per-participant advisory locks bracket the check-then-insert so two
// concurrent creations for an overlapping slot cannot both pass the check.
func (s *SchedulingService) Create(organizerID uint, req *CreateScheduleRequest) (*models.Schedule, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidInterval
	}

	participants := dedupeParticipants(organizerID, req.ParticipantIDs)

	locked, err := s.lockParticipants(participants)
	if err != nil {
		return nil, err
	}
	defer s.unlockParticipants(locked)

	schedule := &models.Schedule{
		Title:      req.Title,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		CreatedBy:  organizerID,
		Status:     models.ScheduleStatusConfirmed,
		MatchingID: req.MatchingID,
		Location:   req.Location,
		Notes:      req.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		detector := NewConflictDetector(tx)
		for _, uid := range participants {
			colliding, err := detector.FindConflict(uid, req.StartTime, req.EndTime, 0)
			if err != nil {
				return err
			}
			if colliding != nil {
				return &ConflictError{
					ParticipantID: uid,
					Booking: ConflictingBooking{
						ID:        colliding.ID,
						Title:     colliding.Title,
						StartTime: colliding.StartTime,
						EndTime:   colliding.EndTime,
					},
				}
			}
		}

		if err := tx.Create(schedule).Error; err != nil {
			return err
		}
		rows := make([]models.ScheduleParticipant, 0, len(participants))
		for _, uid := range participants {
			rows = append(rows, models.ScheduleParticipant{ScheduleID: schedule.ID, UserID: uid})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	if s.holiday != nil {
		if name := s.holiday.HolidayInInterval(req.StartTime, req.EndTime, s.country); name != "" {
			schedule.HolidayWarning = name
		}
	}

	if req.MatchingID != nil && s.queue != nil {
		task := &PromotionTask{MatchingID: *req.MatchingID, RunAt: req.EndTime}
		if err := s.queue.Schedule(task); err != nil {
			// The periodic sweep will still promote; only promptness is lost.
			logger.Warn().Err(err).Uint("matching_id", *req.MatchingID).
				Msg("failed to schedule promotion task")
		}
	}

	var created models.Schedule
	if err := s.db.Preload("Participants").First(&created, schedule.ID).Error; err != nil {
		return nil, err
	}
	created.HolidayWarning = schedule.HolidayWarning
	return &created, nil
}

// List returns every booking in which userID takes part whose interval
// intersects [rangeStart, rangeEnd], ordered by start time.
func (s *SchedulingService) List(userID uint, rangeStart, rangeEnd time.Time) ([]models.Schedule, error) {
	if rangeStart.After(rangeEnd) {
		return nil, ErrInvalidRange
	}

	var schedules []models.Schedule
	err := s.db.Model(&models.Schedule{}).
		Joins("JOIN schedule_participants sp ON sp.schedule_id = schedules.id").
		Where("sp.user_id = ?", userID).
		Where("schedules.start_time <= ? AND schedules.end_time >= ?", rangeEnd, rangeStart).
		Order("schedules.start_time ASC, schedules.id ASC").
		Preload("Participants").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// Cancel marks a booking cancelled without deleting it. Only the organizer
// may cancel; for anyone else the booking is reported as absent.
func (s *SchedulingService) Cancel(scheduleID, actingUserID uint) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.Where("id = ? AND created_by = ?", scheduleID, actingUserID).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if schedule.IsCancelled() {
		return &schedule, nil
	}

	schedule.Status = models.ScheduleStatusCancelled
	if err := s.db.Model(&schedule).Update("status", models.ScheduleStatusCancelled).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// lockParticipants takes the booking lock for each participant. Locks are
// acquired in ascending id order so concurrent creations over intersecting
// participant sets cannot deadlock. On any failure every lock already taken
// is released.
func (s *SchedulingService) lockParticipants(participants []uint) ([]uint, error) {
	ordered := make([]uint, len(participants))
	copy(ordered, participants)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	locked := make([]uint, 0, len(ordered))
	for _, uid := range ordered {
		ok, err := s.locks.Acquire(models.LockNameBooking, strconv.FormatUint(uint64(uid), 10), bookingLockTTL)
		if err != nil {
			s.unlockParticipants(locked)
			return nil, err
		}
		if !ok {
			s.unlockParticipants(locked)
			return nil, ErrCalendarBusy
		}
		locked = append(locked, uid)
	}
	return locked, nil
}

func (s *SchedulingService) unlockParticipants(locked []uint) {
	for _, uid := range locked {
		if err := s.locks.Release(models.LockNameBooking, strconv.FormatUint(uint64(uid), 10)); err != nil {
			logger.Warn().Err(err).Uint("user_id", uid).Msg("failed to release booking lock")
		}
	}
}

// dedupeParticipants builds the effective participant list: the organizer
// first, then the requested ids in their listed order, duplicates removed.
func dedupeParticipants(organizerID uint, participantIDs []uint) []uint {
	seen := map[uint]bool{organizerID: true}
	out := []uint{organizerID}
	for _, uid := range participantIDs {
		if !seen[uid] {
			seen[uid] = true
			out = append(out, uid)
		}
	}
	return out
}
