package services

import (
	"errors"
	"time"

	"github.com/teachmate/backend/internal/models"
	"gorm.io/gorm"
)

// MatchingService owns the connection-request state machine:
// pending → approved/rejected (by the receiver), pending → deleted (cancel
// by the requester), approved → finished (promotion only, never by users).
type MatchingService struct {
	db       *gorm.DB
	profiles *ProfileService
	now      func() time.Time
}

func NewMatchingService(db *gorm.DB) *MatchingService {
	return &MatchingService{
		db:       db,
		profiles: NewProfileService(db),
		now:      time.Now,
	}
}

// MatchingRequestView is a request enriched with the counterpart's public
// profile summary for display. The enrichment is a read-side join only.
type MatchingRequestView struct {
	models.MatchingRequest
	Counterpart *ProfileSummary `json:"counterpart,omitempty"`
}

type MatchingListResponse struct {
	Sent     []MatchingRequestView `json:"sent"`
	Received []MatchingRequestView `json:"received"`
}

// CreateRequest opens a pending request from requester to receiver. The
// pending-pair invariant is enforced by the unique index on the pending key,
// so two racing creations cannot both succeed.
func (s *MatchingService) CreateRequest(requesterID, receiverID uint, message string) (*models.MatchingRequest, error) {
	if requesterID == receiverID {
		return nil, ErrSelfRequest
	}

	var receiver models.User
	if err := s.db.Select("id").First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := models.PendingPairKey(requesterID, receiverID)
	request := &models.MatchingRequest{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.MatchingStatusPending,
		Message:     message,
		PendingKey:  &key,
	}

	if err := s.db.Create(request).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}
	return request, nil
}

// Approve moves a pending request to approved. The lookup is scoped to
// (id, receiver = acting user, status = pending), so a non-receiver or a
// settled request is indistinguishable from an absent one.
func (s *MatchingService) Approve(requestID, actingUserID uint) (*models.MatchingRequest, error) {
	return s.settle(requestID, actingUserID, models.MatchingStatusApproved)
}

// Reject moves a pending request to rejected under the same lookup rule as
// Approve. The pending key is cleared, so the requester may ask again.
func (s *MatchingService) Reject(requestID, actingUserID uint) (*models.MatchingRequest, error) {
	return s.settle(requestID, actingUserID, models.MatchingStatusRejected)
}

func (s *MatchingService) settle(requestID, actingUserID uint, status string) (*models.MatchingRequest, error) {
	var request models.MatchingRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND receiver_id = ? AND status = ?",
			requestID, actingUserID, models.MatchingStatusPending).
			First(&request).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		request.Status = status
		request.PendingKey = nil
		return tx.Model(&request).Updates(map[string]interface{}{
			"status":      status,
			"pending_key": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Cancel deletes a pending request. Only the requester may cancel, and only
// while the request is still pending; anything else reads as not found.
func (s *MatchingService) Cancel(requestID, actingUserID uint) error {
	res := s.db.Where("id = ? AND requester_id = ? AND status = ?",
		requestID, actingUserID, models.MatchingStatusPending).
		Delete(&models.MatchingRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListForUser returns the user's requests partitioned into sent and
// received, each enriched with the counterpart's profile summary.
func (s *MatchingService) ListForUser(userID uint) (*MatchingListResponse, error) {
	var sent, received []models.MatchingRequest
	if err := s.db.Where("requester_id = ?", userID).
		Order("created_at DESC").Find(&sent).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("receiver_id = ?", userID).
		Order("created_at DESC").Find(&received).Error; err != nil {
		return nil, err
	}

	sentViews, err := s.enrich(userID, sent)
	if err != nil {
		return nil, err
	}
	receivedViews, err := s.enrich(userID, received)
	if err != nil {
		return nil, err
	}

	return &MatchingListResponse{Sent: sentViews, Received: receivedViews}, nil
}

// ListByState returns the user's requests (either side) in one lifecycle
// state, enriched like ListForUser.
func (s *MatchingService) ListByState(userID uint, state string) ([]MatchingRequestView, error) {
	switch state {
	case models.MatchingStatusPending, models.MatchingStatusApproved,
		models.MatchingStatusRejected, models.MatchingStatusFinished:
	default:
		return nil, ErrInvalidState
	}

	var requests []models.MatchingRequest
	err := s.db.Where("status = ?", state).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(userID, requests)
}

// GetForParticipant loads one match visible to the given participant.
func (s *MatchingService) GetForParticipant(matchingID, userID uint) (*models.MatchingRequest, error) {
	var request models.MatchingRequest
	if err := s.db.First(&request, matchingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !request.HasParticipant(userID) {
		return nil, ErrMatchNotFound
	}
	return &request, nil
}

func (s *MatchingService) enrich(userID uint, requests []models.MatchingRequest) ([]MatchingRequestView, error) {
	counterpartIDs := make([]uint, 0, len(requests))
	for i := range requests {
		if other, ok := requests[i].Counterpart(userID); ok {
			counterpartIDs = append(counterpartIDs, other)
		}
	}

	summaries, err := s.profiles.Summaries(counterpartIDs)
	if err != nil {
		return nil, err
	}

	views := make([]MatchingRequestView, 0, len(requests))
	for i := range requests {
		view := MatchingRequestView{MatchingRequest: requests[i]}
		if other, ok := requests[i].Counterpart(userID); ok {
			if summary, found := summaries[other]; found {
				cp := summary
				view.Counterpart = &cp
			}
		}
		views = append(views, view)
	}
	return views, nil
}
