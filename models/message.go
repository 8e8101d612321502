package models

import (
	"time"
)

// MessageType separates plain chat text from in-chat payment offers.
type MessageType string

const (
	MessageText       MessageType = "text"
	MessagePayRequest MessageType = "pay-request"
)

// PayRequestStatus tracks an in-chat payment offer. It moves from pending
// to accepted exactly once; rejected exists for the client's decline button.
type PayRequestStatus string

const (
	PayRequestPending  PayRequestStatus = "pending"
	PayRequestAccepted PayRequestStatus = "accepted"
	PayRequestRejected PayRequestStatus = "rejected"
)

// SystemSenderID marks messages authored by the app rather than a user.
const SystemSenderID = "system"

type Message struct {
	ID             string `json:"id" gorm:"primaryKey"`
	ConversationID string `json:"conversation_id" gorm:"index;not null"`

	SenderID     string `json:"sender_id" gorm:"index"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar" gorm:"type:text"`

	Content   string      `json:"content" gorm:"type:text"`
	Timestamp time.Time   `json:"timestamp" gorm:"index"`
	Read      bool        `json:"read" gorm:"default:false"`
	Type      MessageType `json:"type" gorm:"default:'text'"`

	PayRequest PayRequest `json:"pay_request" gorm:"embedded;embeddedPrefix:pay_"`
}

// PayRequest is only meaningful on messages of type pay-request.
type PayRequest struct {
	Amount     int              `json:"amount"`
	Status     PayRequestStatus `json:"status"`
	AcceptedBy string           `json:"accepted_by"`
}

// NewSystemMessage builds an app-authored text message for a thread.
func NewSystemMessage(id, conversationID, content string, at time.Time) Message {
	return Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       SystemSenderID,
		SenderName:     "System",
		Content:        content,
		Timestamp:      at,
		Read:           true,
		Type:           MessageText,
	}
}
