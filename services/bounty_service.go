package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BountyService struct {
	DB *gorm.DB
}

func NewBountyService(db *gorm.DB) *BountyService {
	return &BountyService{DB: db}
}

type CreateBountyInput struct {
	Title         string
	Description   string
	Category      *string
	Reward        int
	Duration      string
	Tags          []string
	HuntersNeeded int
}

// Create validates the input and writes the bounty, its tags and the
// poster's updated counters in one transaction.
func (s *BountyService) Create(callerID string, in CreateBountyInput) (*models.Bounty, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if in.Reward <= 0 {
		return nil, fmt.Errorf("%w: reward must be positive", ErrInvalidInput)
	}
	if in.HuntersNeeded == 0 {
		in.HuntersNeeded = 1
	}
	if in.HuntersNeeded < 1 {
		return nil, fmt.Errorf("%w: hunters_needed must be at least 1", ErrInvalidInput)
	}
	duration, ok := models.ParseDuration(in.Duration)
	if !ok {
		return nil, fmt.Errorf("%w: unknown duration %q", ErrInvalidInput, in.Duration)
	}
	var category *models.BountyCategory
	if in.Category != nil && *in.Category != "" {
		c, ok := models.ParseCategory(*in.Category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *in.Category)
		}
		category = &c
	}

	var bounty models.Bounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var poster models.User
		if err := tx.First(&poster, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		bounty = models.Bounty{
			ID:             uuid.NewString(),
			Title:          in.Title,
			Slug:           slug.Make(in.Title),
			Description:    in.Description,
			Category:       category,
			Reward:         in.Reward,
			Status:         models.BountyStatusOpen,
			Duration:       duration,
			HuntersNeeded:  in.HuntersNeeded,
			Applicants:     0,
			PostedBy:       poster.ID,
			PostedByName:   poster.Name,
			PostedByAvatar: poster.Avatar,
			CreatedAt:      time.Now(),
		}
		for i, t := range in.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			bounty.Tags = append(bounty.Tags, models.BountyTag{
				ID:       uuid.NewString(),
				BountyID: bounty.ID,
				Tag:      t,
				Position: i,
			})
		}
		if err := tx.Create(&bounty).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", poster.ID).
			UpdateColumn("bounties_posted", gorm.Expr("bounties_posted + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Bounty created: %s (%q) by %s", bounty.ID, bounty.Title, callerID)
	return &bounty, nil
}

// List returns every bounty, newest first.
func (s *BountyService) List() ([]models.Bounty, error) {
	var bounties []models.Bounty
	err := s.DB.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Hunters").
		Order("created_at DESC").
		Find(&bounties).Error
	return bounties, err
}

// MyBounties returns bounties the caller posted, newest first.
func (s *BountyService) MyBounties(callerID string) ([]models.Bounty, error) {
	var bounties []models.Bounty
	err := s.DB.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Hunters").
		Where("posted_by = ?", callerID).
		Order("created_at DESC").
		Find(&bounties).Error
	return bounties, err
}

// Accepted returns bounties the caller is currently a hunter on.
func (s *BountyService) Accepted(callerID string) ([]models.Bounty, error) {
	var bounties []models.Bounty
	err := s.DB.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Hunters").
		Where("id IN (?)", s.DB.Model(&models.BountyHunter{}).
			Select("bounty_id").Where("hunter_id = ?", callerID)).
		Order("created_at DESC").
		Find(&bounties).Error
	return bounties, err
}

// BrowseSort options for the browse feed.
const (
	SortNewest     = "newest"
	SortRewardHigh = "reward-high"
	SortRewardLow  = "reward-low"
)

type BrowseQuery struct {
	Search   string
	Category string
	Duration string
	Sort     string
}

// Browse is the home-feed filter: only open bounties the caller has not
// accepted, with optional text / category / duration filters.
func (s *BountyService) Browse(callerID string, q BrowseQuery) ([]models.Bounty, error) {
	db := s.DB.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Hunters").
		Where("status = ?", models.BountyStatusOpen).
		Where("id NOT IN (?)", s.DB.Model(&models.BountyHunter{}).
			Select("bounty_id").Where("hunter_id = ?", callerID))

	if q.Search != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(q.Search)) + "%"
		db = db.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR id IN (?)",
			term, term,
			s.DB.Model(&models.BountyTag{}).Select("bounty_id").Where("LOWER(tag) LIKE ?", term),
		)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.Duration != "" {
		db = db.Where("duration = ?", q.Duration)
	}

	switch q.Sort {
	case SortRewardHigh:
		db = db.Order("reward DESC")
	case SortRewardLow:
		db = db.Order("reward ASC")
	default:
		db = db.Order("created_at DESC")
	}

	var bounties []models.Bounty
	err := db.Find(&bounties).Error
	return bounties, err
}

// Accept adds the caller to the hunter roster, recounts applicants, flips
// the bounty to in_progress once the roster is full, opens the direct
// working thread with a system message, and notifies the poster, all in
// one transaction, so a failure anywhere leaves nothing behind.
func (s *BountyService) Accept(callerID, bountyID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.Preload("Hunters").First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if bounty.PostedBy == callerID {
			return ErrOwnBounty
		}
		if bounty.Status.IsTerminal() {
			return ErrBountyClosed
		}
		for _, h := range bounty.Hunters {
			if h.HunterID == callerID {
				return ErrAlreadyAccepted
			}
		}
		if len(bounty.Hunters) >= bounty.HuntersNeeded {
			return ErrHuntersFull
		}

		var caller models.User
		if err := tx.First(&caller, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		if err := tx.Create(&models.BountyHunter{
			ID:         uuid.NewString(),
			BountyID:   bounty.ID,
			HunterID:   callerID,
			AcceptedAt: now,
		}).Error; err != nil {
			return err
		}

		hunterCount := len(bounty.Hunters) + 1
		updates := map[string]interface{}{"applicants": hunterCount}
		if hunterCount >= bounty.HuntersNeeded {
			updates["status"] = models.BountyStatusInProgress
		}
		if err := tx.Model(&models.Bounty{}).Where("id = ?", bounty.ID).Updates(updates).Error; err != nil {
			return err
		}

		// Roster for the working thread: poster plus every hunter so far.
		participants := []models.ConversationParticipant{{
			ID:     uuid.NewString(),
			UserID: bounty.PostedBy,
			Name:   bounty.PostedByName,
			Avatar: bounty.PostedByAvatar,
			Role:   models.RolePoster,
		}}
		var earlier []models.User
		if len(bounty.Hunters) > 0 {
			ids := make([]string, 0, len(bounty.Hunters))
			for _, h := range bounty.Hunters {
				ids = append(ids, h.HunterID)
			}
			if err := tx.Where("id IN ?", ids).Find(&earlier).Error; err != nil {
				return err
			}
		}
		for _, u := range earlier {
			participants = append(participants, models.ConversationParticipant{
				ID:     uuid.NewString(),
				UserID: u.ID,
				Name:   u.Name,
				Avatar: u.Avatar,
				Role:   models.RoleHunter,
			})
		}
		participants = append(participants, models.ConversationParticipant{
			ID:     uuid.NewString(),
			UserID: caller.ID,
			Name:   caller.Name,
			Avatar: caller.Avatar,
			Role:   models.RoleHunter,
		})

		conv = models.Conversation{
			ID:              uuid.NewString(),
			Type:            models.ConversationDirect,
			BountyID:        bounty.ID,
			BountyTitle:     bounty.Title,
			OriginalReward:  bounty.Reward,
			LastMessage:     "You accepted this bounty!",
			LastMessageTime: now,
			Participants:    participants,
		}
		for i := range conv.Participants {
			conv.Participants[i].ConversationID = conv.ID
		}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}

		content := fmt.Sprintf("You accepted the bounty %q for %d. Good luck!", bounty.Title, bounty.Reward)
		if bounty.HuntersNeeded > 1 {
			content = fmt.Sprintf("You accepted the bounty %q for %d. This bounty needs %d hunters. Good luck!",
				bounty.Title, bounty.Reward, bounty.HuntersNeeded)
		}
		msg := models.NewSystemMessage(uuid.NewString(), conv.ID, content, now)
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return notify(tx, bounty.PostedBy, models.NotificationBountyAccepted,
			"Bounty Accepted!",
			fmt.Sprintf("%s accepted your bounty: %q", caller.Name, bounty.Title),
			bounty.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Bounty %s accepted by %s, conversation %s", bountyID, callerID, conv.ID)
	return &conv, nil
}

// CancelAcceptance removes the caller from the roster, recounts applicants,
// reopens the bounty if the roster is no longer full, and deletes the
// caller's two-person direct thread for this bounty. Group negotiation
// threads are untouched.
func (s *BountyService) CancelAcceptance(callerID, bountyID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.Preload("Hunters").First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		found := false
		for _, h := range bounty.Hunters {
			if h.HunterID == callerID {
				found = true
				break
			}
		}
		if !found {
			return ErrNotAccepted
		}

		if err := tx.Where("bounty_id = ? AND hunter_id = ?", bounty.ID, callerID).
			Delete(&models.BountyHunter{}).Error; err != nil {
			return err
		}

		hunterCount := len(bounty.Hunters) - 1
		updates := map[string]interface{}{"applicants": hunterCount}
		if bounty.Status == models.BountyStatusInProgress && hunterCount < bounty.HuntersNeeded {
			updates["status"] = models.BountyStatusOpen
		}
		if err := tx.Model(&models.Bounty{}).Where("id = ?", bounty.ID).Updates(updates).Error; err != nil {
			return err
		}

		// Delete only the caller's 1:1 direct thread for this bounty.
		var convs []models.Conversation
		if err := tx.Preload("Participants").
			Where("bounty_id = ? AND type = ?", bounty.ID, models.ConversationDirect).
			Find(&convs).Error; err != nil {
			return err
		}
		for _, c := range convs {
			if len(c.Participants) == 2 && c.HasParticipant(callerID) {
				if err := deleteConversationTx(tx, c.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Hunter %s left bounty %s", callerID, bountyID)
	return nil
}

// UpdateStatus is the poster's direct status control (used for cancel).
func (s *BountyService) UpdateStatus(callerID, bountyID string, status models.BountyStatus) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if bounty.PostedBy != callerID {
			return ErrNotPoster
		}
		if !models.CanTransition(bounty.Status, status) {
			return ErrInvalidTransition
		}
		return tx.Model(&models.Bounty{}).Where("id = ?", bounty.ID).
			UpdateColumn("status", status).Error
	})
}

// Delete removes the bounty and everything scoped to it: hunters, tags,
// conversations and their messages.
func (s *BountyService) Delete(callerID, bountyID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if bounty.PostedBy != callerID {
			return ErrNotPoster
		}

		if err := deleteBountyConversationsTx(tx, bounty.ID); err != nil {
			return err
		}
		if err := tx.Where("bounty_id = ?", bounty.ID).Delete(&models.BountyHunter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bounty_id = ?", bounty.ID).Delete(&models.BountyTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bounty{}, "id = ?", bounty.ID).Error
	})
	if err != nil {
		return err
	}

	log.Printf("Bounty deleted: %s by %s", bountyID, callerID)
	return nil
}

// deleteConversationTx removes one conversation with its messages and
// participant rows.
func deleteConversationTx(tx *gorm.DB, conversationID string) error {
	if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.ConversationParticipant{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Conversation{}, "id = ?", conversationID).Error
}

// deleteBountyConversationsTx removes every conversation scoped to a bounty.
// Returns nothing about counts; settlement has its own counting variant.
func deleteBountyConversationsTx(tx *gorm.DB, bountyID string) error {
	var convIDs []string
	if err := tx.Model(&models.Conversation{}).Where("bounty_id = ?", bountyID).
		Pluck("id", &convIDs).Error; err != nil {
		return err
	}
	for _, id := range convIDs {
		if err := deleteConversationTx(tx, id); err != nil {
			return err
		}
	}
	return nil
}
