package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teachmate/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// newTestDB opens a throwaway in-memory database with the full schema. Each
// call gets its own named shared-cache database so the connection pool sees
// one schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.MatchingRequest{},
		&models.Schedule{},
		&models.ScheduleParticipant{},
		&models.Feedback{},
		&models.SchedulerLock{},
		&models.SystemLog{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		Password:    "x",
		DisplayName: username,
		Workplace:   fmt.Sprintf("%s school", username),
		Role:        "user",
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createMatch inserts a matching request directly in the given status.
func createMatch(t *testing.T, db *gorm.DB, requesterID, receiverID uint, status string) *models.MatchingRequest {
	t.Helper()
	match := &models.MatchingRequest{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      status,
	}
	if status == models.MatchingStatusPending {
		key := models.PendingPairKey(requesterID, receiverID)
		match.PendingKey = &key
	}
	require.NoError(t, db.Create(match).Error)
	return match
}

// createBooking inserts a schedule with the given participants.
func createBooking(t *testing.T, db *gorm.DB, organizerID uint, start, end time.Time, participantIDs ...uint) *models.Schedule {
	t.Helper()
	schedule := &models.Schedule{
		Title:     "meeting",
		StartTime: start,
		EndTime:   end,
		CreatedBy: organizerID,
		Status:    models.ScheduleStatusConfirmed,
	}
	require.NoError(t, db.Create(schedule).Error)

	ids := append([]uint{organizerID}, participantIDs...)
	for _, uid := range ids {
		require.NoError(t, db.Create(&models.ScheduleParticipant{
			ScheduleID: schedule.ID,
			UserID:     uid,
		}).Error)
	}
	return schedule
}

// at builds a fixed timestamp on an arbitrary reference day.
func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}
