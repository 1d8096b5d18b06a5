package services

import (
	"time"

	"github.com/teachmate/backend/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// DashboardStats summarizes a user's matching and meeting activity.
type DashboardStats struct {
	PendingSent      int64   `json:"pending_sent"`
	PendingReceived  int64   `json:"pending_received"`
	ApprovedMatches  int64   `json:"approved_matches"`
	FinishedMatches  int64   `json:"finished_matches"`
	UpcomingMeetings int64   `json:"upcoming_meetings"`
	FeedbackReceived int64   `json:"feedback_received"`
	AverageRating    float64 `json:"average_rating"`
}

func (s *DashboardService) Stats(userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := s.now()

	if err := s.db.Model(&models.MatchingRequest{}).
		Where("requester_id = ? AND status = ?", userID, models.MatchingStatusPending).
		Count(&stats.PendingSent).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.MatchingRequest{}).
		Where("receiver_id = ? AND status = ?", userID, models.MatchingStatusPending).
		Count(&stats.PendingReceived).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.MatchingRequest{}).
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?",
			userID, userID, models.MatchingStatusApproved).
		Count(&stats.ApprovedMatches).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.MatchingRequest{}).
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?",
			userID, userID, models.MatchingStatusFinished).
		Count(&stats.FinishedMatches).Error; err != nil {
		return nil, err
	}

	err := s.db.Model(&models.Schedule{}).
		Joins("JOIN schedule_participants sp ON sp.schedule_id = schedules.id").
		Where("sp.user_id = ?", userID).
		Where("schedules.status <> ?", models.ScheduleStatusCancelled).
		Where("schedules.end_time > ?", now).
		Count(&stats.UpcomingMeetings).Error
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Feedback{}).
		Where("reviewee_id = ?", userID).
		Count(&stats.FeedbackReceived).Error; err != nil {
		return nil, err
	}

	if stats.FeedbackReceived > 0 {
		var avg *float64
		err := s.db.Model(&models.Feedback{}).
			Where("reviewee_id = ?", userID).
			Select("AVG(overall_rating)").
			Scan(&avg).Error
		if err != nil {
			return nil, err
		}
		if avg != nil {
			stats.AverageRating = *avg
		}
	}

	return stats, nil
}
