package models

import (
	"fmt"
	"time"
)

// Matching request lifecycle states.
const (
	MatchingStatusPending  = "pending"
	MatchingStatusApproved = "approved"
	MatchingStatusRejected = "rejected"
	MatchingStatusFinished = "finished"
)

// MatchingRequest is a directed connection offer from requester to receiver.
//
// PendingKey holds "requesterID:receiverID" while the request is pending and
// is cleared on approval/rejection. The unique index on it enforces at most
// one pending request per ordered pair at the storage layer; NULL values do
// not collide, so any number of settled requests may exist for the same pair.
type MatchingRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequesterID uint      `gorm:"index;not null" json:"requester_id"`
	ReceiverID  uint      `gorm:"index;not null" json:"receiver_id"`
	Status      string    `gorm:"size:20;index;default:pending" json:"status"`
	Message     string    `gorm:"size:500" json:"message"`
	PendingKey  *string   `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (MatchingRequest) TableName() string { return "matching_requests" }

// PendingPairKey builds the storage key enforcing pending-pair uniqueness.
// Uniqueness is directional: a pending B→A request does not block A→B.
func PendingPairKey(requesterID, receiverID uint) string {
	return fmt.Sprintf("%d:%d", requesterID, receiverID)
}

// HasParticipant reports whether userID is one of the two sides of the match.
func (m *MatchingRequest) HasParticipant(userID uint) bool {
	return m.RequesterID == userID || m.ReceiverID == userID
}

// Counterpart returns the other participant's id. ok is false when userID
// is not a participant of this match.
func (m *MatchingRequest) Counterpart(userID uint) (uint, bool) {
	switch userID {
	case m.RequesterID:
		return m.ReceiverID, true
	case m.ReceiverID:
		return m.RequesterID, true
	}
	return 0, false
}
