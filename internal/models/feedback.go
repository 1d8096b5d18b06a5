package models

import "time"

// Rating bounds and comment limit for feedback.
const (
	RatingMin        = 1
	RatingMax        = 5
	FeedbackMaxChars = 300
)

// Feedback is one participant's post-meeting rating of the other.
// The composite unique index enforces one feedback per reviewer per match
// at the storage layer.
type Feedback struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	MatchingID uint `gorm:"uniqueIndex:idx_matching_reviewer;not null" json:"matching_id"`
	ReviewerID uint `gorm:"uniqueIndex:idx_matching_reviewer;index;not null" json:"reviewer_id"`
	RevieweeID uint `gorm:"index;not null" json:"reviewee_id"`

	OverallRating       int `gorm:"not null" json:"overall_rating"`
	KnowledgeRating     int `gorm:"not null" json:"knowledge_rating"`
	CommunicationRating int `gorm:"not null" json:"communication_rating"`
	AttitudeRating      int `gorm:"not null" json:"attitude_rating"`

	Comment   string    `gorm:"size:300" json:"comment"`
	Photo     string    `gorm:"size:500" json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Feedback) TableName() string { return "feedbacks" }
