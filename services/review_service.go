package services

import (
	"errors"
	"fmt"
	"log"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

type CreateReviewInput struct {
	BountyID   string
	RevieweeID string
	Rating     int
	Comment    string
	Role       string
}

// Create appends a review, recomputes the reviewee's average rating and
// notifies them. Reviews are never edited or deleted afterwards.
func (s *ReviewService) Create(callerID string, in CreateReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	role := models.ParticipantRole(in.Role)
	if role != models.RoleHunter && role != models.RolePoster {
		return nil, fmt.Errorf("%w: role must be hunter or poster", ErrInvalidInput)
	}
	if in.RevieweeID == callerID {
		return nil, fmt.Errorf("%w: cannot review yourself", ErrInvalidInput)
	}

	var review models.Review
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var reviewer, reviewee models.User
		if err := tx.First(&reviewer, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.First(&reviewee, "id = ?", in.RevieweeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("bounty_id = ? AND reviewer_id = ? AND reviewee_id = ?", in.BountyID, callerID, in.RevieweeID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReviewed
		}

		review = models.Review{
			ID:             uuid.NewString(),
			BountyID:       in.BountyID,
			ReviewerID:     reviewer.ID,
			ReviewerName:   reviewer.Name,
			ReviewerAvatar: reviewer.Avatar,
			RevieweeID:     reviewee.ID,
			RevieweeName:   reviewee.Name,
			Rating:         in.Rating,
			Comment:        in.Comment,
			Role:           role,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var avg float64
		if err := tx.Model(&models.Review{}).Where("reviewee_id = ?", reviewee.ID).
			Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", reviewee.ID).
			UpdateColumn("average_rating", avg).Error; err != nil {
			return err
		}

		return notify(tx, reviewee.ID, models.NotificationReviewReceived,
			"New Review",
			fmt.Sprintf("%s left you a %d-star review!", reviewer.Name, in.Rating),
			in.BountyID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Review %s: %s rated %s %d/5 on bounty %s", review.ID, callerID, in.RevieweeID, in.Rating, in.BountyID)
	return &review, nil
}

// ForUser lists a user's received reviews, newest first.
func (s *ReviewService) ForUser(userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.Where("reviewee_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
