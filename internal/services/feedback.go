package services

import (
	"errors"
	"unicode/utf8"

	"github.com/teachmate/backend/internal/models"
	"gorm.io/gorm"
)

// FeedbackService gates and stores post-meeting ratings. A reviewer may rate
// the counterpart exactly once per match, and only after the match finished.
type FeedbackService struct {
	db       *gorm.DB
	profiles *ProfileService
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{
		db:       db,
		profiles: NewProfileService(db),
	}
}

type FeedbackRatings struct {
	Overall       int `json:"overall" binding:"required"`
	Knowledge     int `json:"knowledge" binding:"required"`
	Communication int `json:"communication" binding:"required"`
	Attitude      int `json:"attitude" binding:"required"`
}

type CreateFeedbackRequest struct {
	MatchingID uint            `json:"matching_id" binding:"required"`
	Ratings    FeedbackRatings `json:"ratings" binding:"required"`
	Comment    string          `json:"comment"`
	Photo      string          `json:"photo"`
}

type UpdateFeedbackRequest struct {
	Ratings FeedbackRatings `json:"ratings" binding:"required"`
	Comment string          `json:"comment"`
	Photo   string          `json:"photo"`
}

// FeedbackView is a feedback entry enriched with the other party's profile
// summary for display.
type FeedbackView struct {
	models.Feedback
	Reviewer *ProfileSummary `json:"reviewer,omitempty"`
	Reviewee *ProfileSummary `json:"reviewee,omitempty"`
}

// CanSubmit checks the eligibility gate and returns the parent match on
// success: the match must exist and be finished, the reviewer must be a
// participant, and no feedback by this reviewer may exist yet.
func (s *FeedbackService) CanSubmit(matchingID, reviewerID uint) (*models.MatchingRequest, error) {
	var match models.MatchingRequest
	if err := s.db.First(&match, matchingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if match.Status != models.MatchingStatusFinished {
		return nil, ErrMatchNotFinished
	}
	if !match.HasParticipant(reviewerID) {
		return nil, ErrNotParticipant
	}

	var count int64
	err := s.db.Model(&models.Feedback{}).
		Where("matching_id = ? AND reviewer_id = ?", matchingID, reviewerID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyReviewed
	}

	return &match, nil
}

// Create submits feedback after passing the gate. The reviewee is computed
// as the other participant of the match. The unique index on
// (matching_id, reviewer_id) backs the gate under concurrency: a race
// between two identical submissions lets only one row in.
func (s *FeedbackService) Create(reviewerID uint, req *CreateFeedbackRequest) (*models.Feedback, error) {
	if err := validateFeedback(&req.Ratings, req.Comment); err != nil {
		return nil, err
	}

	match, err := s.CanSubmit(req.MatchingID, reviewerID)
	if err != nil {
		return nil, err
	}

	revieweeID, _ := match.Counterpart(reviewerID)
	feedback := &models.Feedback{
		MatchingID:          req.MatchingID,
		ReviewerID:          reviewerID,
		RevieweeID:          revieweeID,
		OverallRating:       req.Ratings.Overall,
		KnowledgeRating:     req.Ratings.Knowledge,
		CommunicationRating: req.Ratings.Communication,
		AttitudeRating:      req.Ratings.Attitude,
		Comment:             req.Comment,
		Photo:               req.Photo,
	}

	if err := s.db.Create(feedback).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return feedback, nil
}

// Update lets a reviewer revise their own feedback while the parent match
// remains finished.
func (s *FeedbackService) Update(feedbackID, actingUserID uint, req *UpdateFeedbackRequest) (*models.Feedback, error) {
	if err := validateFeedback(&req.Ratings, req.Comment); err != nil {
		return nil, err
	}

	var feedback models.Feedback
	if err := s.db.First(&feedback, feedbackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}

	if feedback.ReviewerID != actingUserID {
		return nil, ErrNotOwner
	}

	var match models.MatchingRequest
	if err := s.db.First(&match, feedback.MatchingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status != models.MatchingStatusFinished {
		return nil, ErrMatchNotFinished
	}

	updates := map[string]interface{}{
		"overall_rating":       req.Ratings.Overall,
		"knowledge_rating":     req.Ratings.Knowledge,
		"communication_rating": req.Ratings.Communication,
		"attitude_rating":      req.Ratings.Attitude,
		"comment":              req.Comment,
		"photo":                req.Photo,
	}
	if err := s.db.Model(&feedback).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

// ListReceived returns feedback about the user, newest first, enriched with
// the reviewer's profile summary.
func (s *FeedbackService) ListReceived(userID uint) ([]FeedbackView, error) {
	var items []models.Feedback
	err := s.db.Where("reviewee_id = ?", userID).
		Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(items)
}

// ListGiven returns feedback written by the user, newest first, enriched
// with the reviewee's profile summary.
func (s *FeedbackService) ListGiven(userID uint) ([]FeedbackView, error) {
	var items []models.Feedback
	err := s.db.Where("reviewer_id = ?", userID).
		Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return s.enrich(items)
}

func (s *FeedbackService) enrich(items []models.Feedback) ([]FeedbackView, error) {
	ids := make([]uint, 0, len(items)*2)
	for i := range items {
		ids = append(ids, items[i].ReviewerID, items[i].RevieweeID)
	}

	summaries, err := s.profiles.Summaries(ids)
	if err != nil {
		return nil, err
	}

	views := make([]FeedbackView, 0, len(items))
	for i := range items {
		view := FeedbackView{Feedback: items[i]}
		if reviewer, ok := summaries[items[i].ReviewerID]; ok {
			r := reviewer
			view.Reviewer = &r
		}
		if reviewee, ok := summaries[items[i].RevieweeID]; ok {
			r := reviewee
			view.Reviewee = &r
		}
		views = append(views, view)
	}
	return views, nil
}

func validateFeedback(ratings *FeedbackRatings, comment string) error {
	for _, r := range []int{ratings.Overall, ratings.Knowledge, ratings.Communication, ratings.Attitude} {
		if r < models.RatingMin || r > models.RatingMax {
			return ErrInvalidRating
		}
	}
	if utf8.RuneCountInString(comment) > models.FeedbackMaxChars {
		return ErrCommentTooLong
	}
	return nil
}
