package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachmate/backend/internal/models"
)

func TestScheduleCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	schedule, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:          "mentoring session",
		StartTime:      at(10, 0),
		EndTime:        at(11, 0),
		ParticipantIDs: []uint{bob.ID},
		Location:       "room 4",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusConfirmed, schedule.Status)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID}, schedule.ParticipantIDs())
}

func TestScheduleCreate_InvalidInterval(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	// An existing booking that would also conflict.
	createBooking(t, db, bob.ID, at(10, 0), at(11, 0))

	// Interval validation comes before any conflict check.
	_, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:          "backwards",
		StartTime:      at(11, 0),
		EndTime:        at(10, 0),
		ParticipantIDs: []uint{bob.ID},
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "zero length",
		StartTime: at(10, 0),
		EndTime:   at(10, 0),
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestScheduleCreate_ParticipantConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	existing := createBooking(t, db, bob.ID, at(10, 0), at(11, 0))

	_, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:          "overlapping",
		StartTime:      at(10, 30),
		EndTime:        at(11, 30),
		ParticipantIDs: []uint{bob.ID},
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, bob.ID, conflict.ParticipantID)
	assert.Equal(t, existing.ID, conflict.Booking.ID)
	assert.Equal(t, "meeting", conflict.Booking.Title)

	// Nothing was persisted.
	var count int64
	db.Model(&models.Schedule{}).Where("title = ?", "overlapping").Count(&count)
	assert.Zero(t, count)
}

func TestScheduleCreate_BackToBackAllowed(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createBooking(t, db, bob.ID, at(10, 0), at(11, 0))

	// Starting exactly when the previous booking ends is fine.
	_, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:          "back to back",
		StartTime:      at(11, 0),
		EndTime:        at(12, 0),
		ParticipantIDs: []uint{bob.ID},
	})
	assert.NoError(t, err)
}

func TestScheduleCreate_OrganizerConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	existing := createBooking(t, db, alice.ID, at(10, 0), at(11, 0))

	_, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "double booked",
		StartTime: at(10, 0),
		EndTime:   at(10, 30),
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, alice.ID, conflict.ParticipantID)
	assert.Equal(t, existing.ID, conflict.Booking.ID)
}

func TestScheduleCreate_DuplicateParticipantsCollapsed(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	schedule, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:          "deduped",
		StartTime:      at(10, 0),
		EndTime:        at(11, 0),
		ParticipantIDs: []uint{bob.ID, bob.ID, alice.ID},
	})
	require.NoError(t, err)
	assert.Len(t, schedule.Participants, 2)
}

func TestScheduleCreate_ReleasesLocks(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")

	_, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "first",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
	})
	require.NoError(t, err)

	var locks int64
	db.Model(&models.SchedulerLock{}).Count(&locks)
	assert.Zero(t, locks)

	// A conflicting attempt also leaves no locks behind.
	_, err = svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "second",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
	})
	require.Error(t, err)
	db.Model(&models.SchedulerLock{}).Count(&locks)
	assert.Zero(t, locks)
}

func TestScheduleCreate_CalendarBusy(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")

	// Another instance holds alice's booking lock.
	other := NewLockManager(db)
	ok, err := other.Acquire(models.LockNameBooking, strconv.FormatUint(uint64(alice.ID), 10), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "blocked",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
	})
	assert.ErrorIs(t, err, ErrCalendarBusy)
}

func TestScheduleCreate_HolidayWarning(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db).WithHolidayCheck(NewHolidayService(), "US")
	alice := createUser(t, db, "alice")

	christmas := time.Date(2026, 12, 25, 10, 0, 0, 0, time.UTC)
	schedule, err := svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "holiday session",
		StartTime: christmas,
		EndTime:   christmas.Add(time.Hour),
	})
	require.NoError(t, err)
	// Advisory only: the booking exists, with a warning attached.
	assert.NotEmpty(t, schedule.HolidayWarning)

	ordinary := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	schedule, err = svc.Create(alice.ID, &CreateScheduleRequest{
		Title:     "ordinary session",
		StartTime: ordinary,
		EndTime:   ordinary.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, schedule.HolidayWarning)
}

func TestScheduleList(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	inside := createBooking(t, db, alice.ID, at(10, 0), at(11, 0))
	createBooking(t, db, alice.ID, at(18, 0), at(19, 0))
	createBooking(t, db, bob.ID, at(10, 0), at(11, 0))

	schedules, err := svc.List(alice.ID, at(9, 0), at(12, 0))
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, inside.ID, schedules[0].ID)
	assert.NotEmpty(t, schedules[0].Participants)
}

func TestScheduleList_OrderedByStart(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")

	late := createBooking(t, db, alice.ID, at(15, 0), at(16, 0))
	early := createBooking(t, db, alice.ID, at(9, 0), at(10, 0))

	schedules, err := svc.List(alice.ID, at(8, 0), at(17, 0))
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, early.ID, schedules[0].ID)
	assert.Equal(t, late.ID, schedules[1].ID)
}

func TestScheduleList_InvalidRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")

	_, err := svc.List(alice.ID, at(12, 0), at(9, 0))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestScheduleCancel(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	booking := createBooking(t, db, alice.ID, at(10, 0), at(11, 0))

	cancelled, err := svc.Cancel(booking.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCancelled, cancelled.Status)

	// Cancelling twice is a no-op.
	cancelled, err = svc.Cancel(booking.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCancelled, cancelled.Status)

	// The slot is free again.
	found, err := NewConflictDetector(db).FindConflict(alice.ID, at(10, 0), at(11, 0), 0)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestScheduleCancel_OnlyOrganizer(t *testing.T) {
	db := newTestDB(t)
	svc := NewSchedulingService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	booking := createBooking(t, db, alice.ID, at(10, 0), at(11, 0), bob.ID)

	_, err := svc.Cancel(booking.ID, bob.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = svc.Cancel(9999, alice.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
