package services

import (
	"errors"

	"github.com/teachmate/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileService is the read-side boundary to the profile store. The
// coordination core only reads public summaries for list enrichment and
// never writes profile data.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// ProfileSummary is the public slice of a user shown next to matches and
// feedback.
type ProfileSummary struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Workplace   string `json:"workplace"`
	Photo       string `json:"photo"`
}

// Summary returns one user's public summary.
func (s *ProfileService) Summary(userID uint) (*ProfileSummary, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &ProfileSummary{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Workplace:   user.Workplace,
		Photo:       user.Photo,
	}, nil
}

// Summaries loads public summaries for a set of user ids, keyed by id.
// Unknown ids are simply absent from the result.
func (s *ProfileService) Summaries(userIDs []uint) (map[uint]ProfileSummary, error) {
	result := make(map[uint]ProfileSummary, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var users []models.User
	if err := s.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}

	for _, u := range users {
		result[u.ID] = ProfileSummary{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			Workplace:   u.Workplace,
			Photo:       u.Photo,
		}
	}
	return result, nil
}
