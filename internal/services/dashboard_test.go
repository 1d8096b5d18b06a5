package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachmate/backend/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db)
	svc.now = func() time.Time { return at(12, 0) }

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	createMatch(t, db, alice.ID, bob.ID, models.MatchingStatusPending)
	createMatch(t, db, carol.ID, alice.ID, models.MatchingStatusPending)
	approved := createMatch(t, db, alice.ID, carol.ID, models.MatchingStatusApproved)
	finished := createMatch(t, db, bob.ID, alice.ID, models.MatchingStatusFinished)
	_ = approved

	createBooking(t, db, alice.ID, at(14, 0), at(15, 0)) // upcoming
	createBooking(t, db, alice.ID, at(9, 0), at(10, 0))  // already over
	cancelled := createBooking(t, db, alice.ID, at(16, 0), at(17, 0))
	require.NoError(t, db.Model(cancelled).Update("status", models.ScheduleStatusCancelled).Error)

	require.NoError(t, db.Create(&models.Feedback{
		MatchingID:          finished.ID,
		ReviewerID:          bob.ID,
		RevieweeID:          alice.ID,
		OverallRating:       4,
		KnowledgeRating:     4,
		CommunicationRating: 4,
		AttitudeRating:      4,
	}).Error)

	stats, err := svc.Stats(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.PendingSent)
	assert.EqualValues(t, 1, stats.PendingReceived)
	assert.EqualValues(t, 1, stats.ApprovedMatches)
	assert.EqualValues(t, 1, stats.FinishedMatches)
	assert.EqualValues(t, 1, stats.UpcomingMeetings)
	assert.EqualValues(t, 1, stats.FeedbackReceived)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
}

func TestDashboardStats_EmptyUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db)
	alice := createUser(t, db, "alice")

	stats, err := svc.Stats(alice.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.PendingSent)
	assert.Zero(t, stats.FeedbackReceived)
	assert.Zero(t, stats.AverageRating)
}
