package models

import (
	"time"
)

// NotificationType mirrors the event kinds the mobile client renders.
type NotificationType string

const (
	NotificationBountyAccepted    NotificationType = "bounty-accepted"
	NotificationBountyCompleted   NotificationType = "bounty-completed"
	NotificationNegotiationOpened NotificationType = "negotiation-opened"
	NotificationReviewReceived    NotificationType = "review-received"
	NotificationFollow            NotificationType = "follow"
)

// Notification is one in-app alert. Delivered flips when the push worker
// has handed the row to the push delivery service.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UserID    string           `json:"user_id" gorm:"index;not null"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message" gorm:"type:text"`
	RelatedID string           `json:"related_id"`
	Read      bool             `json:"read" gorm:"default:false"`
	Delivered bool             `json:"delivered" gorm:"default:false;index"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}
