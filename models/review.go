package models

import (
	"time"
)

// Review is feedback left after a completed bounty. Rows are append-only.
type Review struct {
	ID       string `json:"id" gorm:"primaryKey"`
	BountyID string `json:"bounty_id" gorm:"index;not null"`

	ReviewerID     string `json:"reviewer_id" gorm:"index;not null"`
	ReviewerName   string `json:"reviewer_name"`
	ReviewerAvatar string `json:"reviewer_avatar" gorm:"type:text"`

	RevieweeID   string `json:"reviewee_id" gorm:"index;not null"`
	RevieweeName string `json:"reviewee_name"`

	Rating  int             `json:"rating" gorm:"check:rating >= 1 and rating <= 5"`
	Comment string          `json:"comment" gorm:"type:text"`
	Role    ParticipantRole `json:"role"` // the reviewer's role in that bounty

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
