package models

import (
	"time"
)

// User is the profile row for a signed-in student. The primary key is the
// Firebase uid, so no local id generation happens here.
type User struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null"`
	Avatar            string    `json:"avatar" gorm:"type:text"`
	Bio               string    `json:"bio" gorm:"type:text"`
	BountiesPosted    int       `json:"bounties_posted" gorm:"default:0"`
	BountiesCompleted int       `json:"bounties_completed" gorm:"default:0"`
	TotalEarned       int       `json:"total_earned" gorm:"default:0"`
	AverageRating     float64   `json:"average_rating" gorm:"default:0"`
	Credits           int       `json:"credits" gorm:"default:0"`
	AccountNumber     int       `json:"account_number" gorm:"uniqueIndex"`
	JoinedDate        time.Time `json:"joined_date"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:RevieweeID"`
}

// UserFollow links a follower to the account they follow.
type UserFollow struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	FollowerID string    `json:"follower_id" gorm:"index:idx_follow_pair,unique;not null"`
	FolloweeID string    `json:"followee_id" gorm:"index:idx_follow_pair,unique;index;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccountCounter hands out sequential account numbers. A single row is
// bumped atomically inside the signup transaction.
type AccountCounter struct {
	ID          int `gorm:"primaryKey"`
	NextAccount int `gorm:"not null"`
}

// Starting balances from the launch promotion: the first 50 accounts get 7
// credits, everyone after that gets 2.
const (
	EarlyAccountLimit    = 50
	EarlyStartingCredits = 7
	StartingCredits      = 2
)

// StartingCreditsFor returns the signup balance for a given account number.
func StartingCreditsFor(accountNumber int) int {
	if accountNumber <= EarlyAccountLimit {
		return EarlyStartingCredits
	}
	return StartingCredits
}
