package services

import (
	"errors"
	"fmt"
	"log"

	"bounty-board-system/models"

	"gorm.io/gorm"
)

type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// SettlementResult summarizes what Complete tore down.
type SettlementResult struct {
	DeletedConversations int `json:"deleted_conversations"`
	DeletedMessages      int `json:"deleted_messages"`
	HuntersPaid          int `json:"hunters_paid"`
}

// SplitReward divides an integer credit reward across n hunters. Every
// share is total/n rounded down, and the remainder is handed out one credit
// at a time starting from index 0 (earliest accepted hunter). The shares
// always sum to total, so settlement never creates or drops credits.
func SplitReward(total, n int) []int {
	if n <= 0 {
		return nil
	}
	shares := make([]int, n)
	base := total / n
	remainder := total % n
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}

// Complete settles a bounty: debit the poster, pay each accepted hunter
// their share, mark the bounty completed, and delete every conversation and
// message scoped to it. The whole procedure is one transaction, so if any
// step fails, no credit moves and nothing is deleted.
func (s *SettlementService) Complete(callerID, bountyID string) (*SettlementResult, error) {
	var result SettlementResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.Preload("Hunters", func(db *gorm.DB) *gorm.DB {
			return db.Order("accepted_at ASC")
		}).First(&bounty, "id = ?", bountyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if bounty.PostedBy != callerID {
			return ErrNotPoster
		}
		if bounty.Status == models.BountyStatusCompleted {
			return ErrAlreadyCompleted
		}
		// With nobody to pay, a debit would just destroy the credits.
		if len(bounty.Hunters) == 0 {
			return ErrNoHunters
		}

		var poster models.User
		if err := tx.First(&poster, "id = ?", bounty.PostedBy).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if poster.Credits < bounty.Reward {
			return ErrInsufficientCredits
		}

		if err := tx.Model(&models.User{}).Where("id = ?", poster.ID).
			UpdateColumn("credits", gorm.Expr("credits - ?", bounty.Reward)).Error; err != nil {
			return err
		}

		shares := SplitReward(bounty.Reward, len(bounty.Hunters))
		for i, h := range bounty.Hunters {
			share := shares[i]
			if err := tx.Model(&models.User{}).Where("id = ?", h.HunterID).
				UpdateColumns(map[string]interface{}{
					"credits":            gorm.Expr("credits + ?", share),
					"total_earned":       gorm.Expr("total_earned + ?", share),
					"bounties_completed": gorm.Expr("bounties_completed + 1"),
				}).Error; err != nil {
				return err
			}
			if err := notify(tx, h.HunterID, models.NotificationBountyCompleted,
				"Bounty Completed!",
				fmt.Sprintf("%q is done. %d credits are yours!", bounty.Title, share),
				bounty.ID); err != nil {
				return err
			}
			result.HuntersPaid++
		}

		if err := tx.Model(&models.Bounty{}).Where("id = ?", bounty.ID).
			UpdateColumn("status", models.BountyStatusCompleted).Error; err != nil {
			return err
		}

		// Tear down the whole thread history for this bounty.
		var convIDs []string
		if err := tx.Model(&models.Conversation{}).Where("bounty_id = ?", bounty.ID).
			Pluck("id", &convIDs).Error; err != nil {
			return err
		}
		for _, id := range convIDs {
			res := tx.Where("conversation_id = ?", id).Delete(&models.Message{})
			if res.Error != nil {
				return res.Error
			}
			result.DeletedMessages += int(res.RowsAffected)
			if err := tx.Where("conversation_id = ?", id).
				Delete(&models.ConversationParticipant{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Conversation{}, "id = ?", id).Error; err != nil {
				return err
			}
			result.DeletedConversations++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Bounty %s settled: %d hunter(s) paid, %d conversation(s) and %d message(s) removed",
		bountyID, result.HuntersPaid, result.DeletedConversations, result.DeletedMessages)
	return &result, nil
}
