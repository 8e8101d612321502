package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// EnsureUser returns the caller's profile, creating it on first sign-in.
// New accounts draw a sequential account number; the first 50 get the
// larger launch-promotion starting balance.
func (s *UserService) EnsureUser(callerID, displayName, photoURL string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", callerID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if displayName == "" {
		displayName = "Anonymous"
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// The counter row is seeded at migration time; the upsert covers
		// databases migrated before it existed without racing another
		// signup for the insert.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.AccountCounter{ID: 1, NextAccount: 1}).Error; err != nil {
			return err
		}
		// Bump in place; concurrent signups serialize on the row write.
		if err := tx.Model(&models.AccountCounter{}).Where("id = ?", 1).
			UpdateColumn("next_account", gorm.Expr("next_account + 1")).Error; err != nil {
			return err
		}
		var counter models.AccountCounter
		if err := tx.First(&counter, "id = ?", 1).Error; err != nil {
			return err
		}
		accountNumber := counter.NextAccount - 1

		now := time.Now()
		user = models.User{
			ID:            callerID,
			Name:          displayName,
			Avatar:        photoURL,
			AccountNumber: accountNumber,
			Credits:       models.StartingCreditsFor(accountNumber),
			JoinedDate:    now,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("New user %s registered as account #%d with %d credits", callerID, user.AccountNumber, user.Credits)
	return &user, nil
}

// Get returns a profile with its reviews, newest first, plus follow counts.
func (s *UserService) Get(userID string) (*models.User, int64, int64, error) {
	var user models.User
	err := s.DB.
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, 0, ErrNotFound
		}
		return nil, 0, 0, err
	}

	var followers, following int64
	if err := s.DB.Model(&models.UserFollow{}).Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return nil, 0, 0, err
	}
	if err := s.DB.Model(&models.UserFollow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return nil, 0, 0, err
	}
	return &user, followers, following, nil
}

type UpdateProfileInput struct {
	Name   *string
	Bio    *string
	Avatar *string
}

// UpdateProfile applies partial edits and refreshes the denormalized poster
// fields on the user's bounties in the same transaction.
func (s *UserService) UpdateProfile(callerID string, in UpdateProfileInput) (*models.User, error) {
	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
			}
			user.Name = name
		}
		if in.Bio != nil {
			user.Bio = *in.Bio
		}
		if in.Avatar != nil {
			user.Avatar = *in.Avatar
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Bounty{}).Where("posted_by = ?", user.ID).
			Updates(map[string]interface{}{
				"posted_by_name":   user.Name,
				"posted_by_avatar": user.Avatar,
			}).Error; err != nil {
			return err
		}
		// Thread rosters carry the same snapshot.
		return tx.Model(&models.ConversationParticipant{}).Where("user_id = ?", user.ID).
			Updates(map[string]interface{}{
				"name":   user.Name,
				"avatar": user.Avatar,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Follow adds the caller to userID's followers and notifies them.
func (s *UserService) Follow(callerID, userID string) error {
	if callerID == userID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.UserFollow{}).
			Where("follower_id = ? AND followee_id = ?", callerID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyFollowing
		}

		var caller models.User
		if err := tx.First(&caller, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Create(&models.UserFollow{
			ID:         uuid.NewString(),
			FollowerID: callerID,
			FolloweeID: userID,
		}).Error; err != nil {
			return err
		}

		return notify(tx, userID, models.NotificationFollow,
			"New Follower",
			fmt.Sprintf("%s started following you", caller.Name),
			callerID)
	})
}

// Unfollow removes the follow edge; unfollowing someone you don't follow is
// a no-op.
func (s *UserService) Unfollow(callerID, userID string) error {
	return s.DB.
		Where("follower_id = ? AND followee_id = ?", callerID, userID).
		Delete(&models.UserFollow{}).Error
}
