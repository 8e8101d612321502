package models

import (
	"time"
)

// ConversationType distinguishes the working thread from the two mirrored
// price-negotiation threads.
type ConversationType string

const (
	ConversationDirect            ConversationType = "direct"
	ConversationHunterNegotiation ConversationType = "hunter-negotiation"
	ConversationPosterNegotiation ConversationType = "poster-negotiation"
)

// ParticipantRole is a participant's side of the bounty.
type ParticipantRole string

const (
	RoleHunter ParticipantRole = "hunter"
	RolePoster ParticipantRole = "poster"
)

type Conversation struct {
	ID   string           `json:"id" gorm:"primaryKey"`
	Type ConversationType `json:"type" gorm:"index;not null"`

	BountyID       string `json:"bounty_id" gorm:"index;not null"`
	BountyTitle    string `json:"bounty_title"`
	OriginalReward int    `json:"original_reward"`

	LastMessage     string    `json:"last_message" gorm:"type:text"`
	LastMessageTime time.Time `json:"last_message_time" gorm:"index"`
	UnreadCount     int       `json:"unread_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participants []ConversationParticipant `json:"participants" gorm:"foreignKey:ConversationID"`
}

// ConversationParticipant is one member of a thread, with display fields
// snapshotted at join time.
type ConversationParticipant struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	ConversationID string          `json:"conversation_id" gorm:"index:idx_conv_user,unique;not null"`
	UserID         string          `json:"user_id" gorm:"index:idx_conv_user,unique;index;not null"`
	Name           string          `json:"name"`
	Avatar         string          `json:"avatar" gorm:"type:text"`
	Role           ParticipantRole `json:"role"`
}

// HasParticipant reports whether userID is in the loaded participant list.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Counterparty returns the first loaded participant other than userID.
func (c *Conversation) Counterparty(userID string) (ConversationParticipant, bool) {
	for _, p := range c.Participants {
		if p.UserID != userID {
			return p, true
		}
	}
	return ConversationParticipant{}, false
}
