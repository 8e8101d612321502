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
)

type ConversationService struct {
	DB *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{DB: db}
}

// List returns the caller's conversations, most recently active first.
func (s *ConversationService) List(callerID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.DB.
		Preload("Participants").
		Where("id IN (?)", s.DB.Model(&models.ConversationParticipant{}).
			Select("conversation_id").Where("user_id = ?", callerID)).
		Order("last_message_time DESC").
		Find(&convs).Error
	return convs, err
}

// Messages returns a thread's messages oldest first. Only participants may
// read a thread.
func (s *ConversationService) Messages(callerID, conversationID string) ([]models.Message, error) {
	conv, err := s.loadConversation(s.DB, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, ErrNotParticipant
	}

	var msgs []models.Message
	err = s.DB.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&msgs).Error
	return msgs, err
}

// SendMessage appends a text message and bumps the thread preview.
func (s *ConversationService) SendMessage(callerID, conversationID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}

	var msg models.Message
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		conv, err := s.loadConversation(tx, conversationID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(callerID) {
			return ErrNotParticipant
		}

		var sender models.User
		if err := tx.First(&sender, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		msg = models.Message{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			SenderName:     sender.Name,
			SenderAvatar:   sender.Avatar,
			Content:        content,
			Timestamp:      now,
			Read:           false,
			Type:           models.MessageText,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message":      content,
				"last_message_time": now,
				"unread_count":      gorm.Expr("unread_count + 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendPayRequest appends a pending pay-request message to a negotiation.
func (s *ConversationService) SendPayRequest(callerID, conversationID string, amount int) (*models.Message, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: pay request amount must be positive", ErrInvalidInput)
	}

	var msg models.Message
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		conv, err := s.loadConversation(tx, conversationID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(callerID) {
			return ErrNotParticipant
		}

		var sender models.User
		if err := tx.First(&sender, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		msg = models.Message{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			SenderName:     sender.Name,
			SenderAvatar:   sender.Avatar,
			Timestamp:      now,
			Read:           false,
			Type:           models.MessagePayRequest,
			PayRequest: models.PayRequest{
				Amount: amount,
				Status: models.PayRequestPending,
			},
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message":      fmt.Sprintf("Pay request: $%d", amount),
				"last_message_time": now,
				"unread_count":      gorm.Expr("unread_count + 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// StartNegotiation opens the mirrored negotiation pair for (bounty, caller):
// a hunter-negotiation thread plus a poster-negotiation thread with the same
// two participants, each seeded with a system message. Calling it again for
// the same pair returns the existing hunter thread untouched.
func (s *ConversationService) StartNegotiation(callerID, bountyID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", bountyID).Error; err != nil {
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

		existing, err := s.findNegotiation(tx, bounty.ID, callerID, models.ConversationHunterNegotiation)
		if err != nil {
			return err
		}
		if existing != nil {
			conv = *existing
			return nil
		}

		var hunter models.User
		if err := tx.First(&hunter, "id = ?", callerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		roster := func() []models.ConversationParticipant {
			return []models.ConversationParticipant{
				{
					ID:     uuid.NewString(),
					UserID: bounty.PostedBy,
					Name:   bounty.PostedByName,
					Avatar: bounty.PostedByAvatar,
					Role:   models.RolePoster,
				},
				{
					ID:     uuid.NewString(),
					UserID: hunter.ID,
					Name:   hunter.Name,
					Avatar: hunter.Avatar,
					Role:   models.RoleHunter,
				},
			}
		}

		conv = models.Conversation{
			ID:              uuid.NewString(),
			Type:            models.ConversationHunterNegotiation,
			BountyID:        bounty.ID,
			BountyTitle:     bounty.Title,
			OriginalReward:  bounty.Reward,
			LastMessage:     "Started negotiation",
			LastMessageTime: now,
			Participants:    roster(),
		}
		for i := range conv.Participants {
			conv.Participants[i].ConversationID = conv.ID
		}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		hunterMsg := models.NewSystemMessage(uuid.NewString(), conv.ID,
			fmt.Sprintf("Negotiation started for %q. Original offer: $%d", bounty.Title, bounty.Reward), now)
		if err := tx.Create(&hunterMsg).Error; err != nil {
			return err
		}

		// Mirror thread on the poster's side, created only once per pair.
		mirror, err := s.findNegotiation(tx, bounty.ID, callerID, models.ConversationPosterNegotiation)
		if err != nil {
			return err
		}
		if mirror == nil {
			posterConv := models.Conversation{
				ID:              uuid.NewString(),
				Type:            models.ConversationPosterNegotiation,
				BountyID:        bounty.ID,
				BountyTitle:     bounty.Title,
				OriginalReward:  bounty.Reward,
				LastMessage:     fmt.Sprintf("%s wants to negotiate", hunter.Name),
				LastMessageTime: now,
				Participants:    roster(),
			}
			for i := range posterConv.Participants {
				posterConv.Participants[i].ConversationID = posterConv.ID
			}
			if err := tx.Create(&posterConv).Error; err != nil {
				return err
			}
			posterMsg := models.NewSystemMessage(uuid.NewString(), posterConv.ID,
				fmt.Sprintf("%s wants to negotiate the price for %q. Original offer: $%d",
					hunter.Name, bounty.Title, bounty.Reward), now)
			if err := tx.Create(&posterMsg).Error; err != nil {
				return err
			}
		}

		return notify(tx, bounty.PostedBy, models.NotificationNegotiationOpened,
			"New Negotiation",
			fmt.Sprintf("%s wants to negotiate your bounty: %q", hunter.Name, bounty.Title),
			bounty.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Negotiation for bounty %s with hunter %s: conversation %s", bountyID, callerID, conv.ID)
	return &conv, nil
}

// AcceptPayRequest marks a pending pay request accepted, opens (or reuses)
// the direct working thread with the request's sender at the requested
// amount, and removes the pair's negotiation threads for the bounty.
func (s *ConversationService) AcceptPayRequest(callerID, conversationID, messageID string) (*models.Conversation, error) {
	var direct models.Conversation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		conv, err := s.loadConversation(tx, conversationID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(callerID) {
			return ErrNotParticipant
		}

		var msg models.Message
		if err := tx.First(&msg, "id = ? AND conversation_id = ?", messageID, conv.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if msg.Type != models.MessagePayRequest || msg.PayRequest.Status != models.PayRequestPending {
			return ErrNotPayRequest
		}
		if msg.SenderID == callerID {
			return ErrOwnPayRequest
		}

		if err := tx.Model(&models.Message{}).Where("id = ?", msg.ID).
			Updates(map[string]interface{}{
				"pay_status":      models.PayRequestAccepted,
				"pay_accepted_by": callerID,
			}).Error; err != nil {
			return err
		}

		sender, ok := conv.Counterparty(callerID)
		if !ok || sender.UserID != msg.SenderID {
			// The sender must still be on the roster.
			found := false
			for _, p := range conv.Participants {
				if p.UserID == msg.SenderID {
					sender = p
					found = true
					break
				}
			}
			if !found {
				return ErrNotParticipant
			}
		}

		now := time.Now()
		direct, err = findOrCreateDirectTx(tx, conv, callerID, sender, msg.PayRequest.Amount,
			"Pay request accepted! Let's get started.",
			fmt.Sprintf("Pay request of $%d accepted! The bounty is now assigned.", msg.PayRequest.Amount),
			now)
		if err != nil {
			return err
		}

		return deleteNegotiationPairTx(tx, conv.BountyID, callerID, sender.UserID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Pay request %s accepted in conversation %s, direct thread %s", messageID, conversationID, direct.ID)
	return &direct, nil
}

// AcceptOriginalPrice resolves a negotiation at the bounty's original
// reward, from either side of the mirror.
func (s *ConversationService) AcceptOriginalPrice(callerID, conversationID string) (*models.Conversation, error) {
	var direct models.Conversation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		conv, err := s.loadConversation(tx, conversationID)
		if err != nil {
			return err
		}
		if conv.Type == models.ConversationDirect {
			return fmt.Errorf("%w: not a negotiation conversation", ErrInvalidInput)
		}
		if !conv.HasParticipant(callerID) {
			return ErrNotParticipant
		}
		other, ok := conv.Counterparty(callerID)
		if !ok {
			return ErrNotParticipant
		}

		now := time.Now()
		direct, err = findOrCreateDirectTx(tx, conv, callerID, other, conv.OriginalReward,
			"Original price accepted! Let's get started.",
			fmt.Sprintf("Bounty assigned at the original price of $%d.", conv.OriginalReward),
			now)
		if err != nil {
			return err
		}

		return deleteNegotiationPairTx(tx, conv.BountyID, callerID, other.UserID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Original price accepted in conversation %s, direct thread %s", conversationID, direct.ID)
	return &direct, nil
}

// MarkRead clears the unread counter and marks every message in the thread
// read.
func (s *ConversationService) MarkRead(callerID, conversationID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		conv, err := s.loadConversation(tx, conversationID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(callerID) {
			return ErrNotParticipant
		}

		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			UpdateColumn("unread_count", 0).Error; err != nil {
			return err
		}
		return tx.Model(&models.Message{}).
			Where("conversation_id = ? AND read = ?", conv.ID, false).
			UpdateColumn("read", true).Error
	})
}

func (s *ConversationService) loadConversation(tx *gorm.DB, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := tx.Preload("Participants").First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// findNegotiation looks up a negotiation thread of the given type for
// (bounty, hunter).
func (s *ConversationService) findNegotiation(tx *gorm.DB, bountyID, hunterID string, t models.ConversationType) (*models.Conversation, error) {
	var convs []models.Conversation
	err := tx.Preload("Participants").
		Where("bounty_id = ? AND type = ?", bountyID, t).
		Where("id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.ConversationParticipant{}).
			Select("conversation_id").Where("user_id = ?", hunterID)).
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return nil, nil
	}
	return &convs[0], nil
}

// findOrCreateDirectTx returns the existing two-person direct thread between
// caller and other for the negotiation's bounty, or creates one seeded with
// a system message. The reward recorded on the thread is the agreed amount.
func findOrCreateDirectTx(tx *gorm.DB, nego *models.Conversation, callerID string, other models.ConversationParticipant, agreedReward int, preview, systemContent string, now time.Time) (models.Conversation, error) {
	var existing []models.Conversation
	if err := tx.Preload("Participants").
		Where("bounty_id = ? AND type = ?", nego.BountyID, models.ConversationDirect).
		Find(&existing).Error; err != nil {
		return models.Conversation{}, err
	}
	for _, c := range existing {
		if len(c.Participants) == 2 && c.HasParticipant(callerID) && c.HasParticipant(other.UserID) {
			return c, nil
		}
	}

	var caller models.User
	if err := tx.First(&caller, "id = ?", callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Conversation{}, ErrNotFound
		}
		return models.Conversation{}, err
	}

	// Roles carry over from the negotiation roster.
	callerRole := models.RoleHunter
	for _, p := range nego.Participants {
		if p.UserID == callerID {
			callerRole = p.Role
		}
	}

	direct := models.Conversation{
		ID:              uuid.NewString(),
		Type:            models.ConversationDirect,
		BountyID:        nego.BountyID,
		BountyTitle:     nego.BountyTitle,
		OriginalReward:  agreedReward,
		LastMessage:     preview,
		LastMessageTime: now,
		Participants: []models.ConversationParticipant{
			{ID: uuid.NewString(), UserID: caller.ID, Name: caller.Name, Avatar: caller.Avatar, Role: callerRole},
			{ID: uuid.NewString(), UserID: other.UserID, Name: other.Name, Avatar: other.Avatar, Role: other.Role},
		},
	}
	for i := range direct.Participants {
		direct.Participants[i].ConversationID = direct.ID
	}
	if err := tx.Create(&direct).Error; err != nil {
		return models.Conversation{}, err
	}

	msg := models.NewSystemMessage(uuid.NewString(), direct.ID, systemContent, now)
	if err := tx.Create(&msg).Error; err != nil {
		return models.Conversation{}, err
	}
	return direct, nil
}

// deleteNegotiationPairTx removes every negotiation thread for the bounty
// whose roster contains both members of the resolved pair. Threads the
// poster has open with other hunters are left alone.
func deleteNegotiationPairTx(tx *gorm.DB, bountyID, a, b string) error {
	var convs []models.Conversation
	if err := tx.Preload("Participants").
		Where("bounty_id = ? AND type IN ?", bountyID,
			[]models.ConversationType{models.ConversationHunterNegotiation, models.ConversationPosterNegotiation}).
		Find(&convs).Error; err != nil {
		return err
	}
	for _, c := range convs {
		if c.HasParticipant(a) && c.HasParticipant(b) {
			if err := deleteConversationTx(tx, c.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
