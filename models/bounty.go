package models

import (
	"time"
)

// BountyStatus is the lifecycle state of a posted bounty.
type BountyStatus string

const (
	BountyStatusOpen       BountyStatus = "open"
	BountyStatusInProgress BountyStatus = "in_progress"
	BountyStatusCompleted  BountyStatus = "completed"
	BountyStatusCancelled  BountyStatus = "cancelled"
)

// BountyCategory is the fixed category set from the mobile client.
type BountyCategory string

const (
	CategoryNeedCar           BountyCategory = "need-car"
	CategoryNeedDiningDollars BountyCategory = "need-dining-dollars"
	CategoryNeedSkills        BountyCategory = "need-skills"
	CategoryPhysicalEffort    BountyCategory = "physical-effort"
	CategoryWaitingHolding    BountyCategory = "waiting-holding"
)

// TimeDuration is the rough effort estimate shown on a bounty card.
type TimeDuration string

const (
	DurationQuick  TimeDuration = "quick"
	DurationShort  TimeDuration = "short"
	DurationMedium TimeDuration = "medium"
	DurationLong   TimeDuration = "long"
)

type Bounty struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"index"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Category    *BountyCategory `json:"category"`
	Reward      int             `json:"reward" gorm:"not null"` // credits
	Status      BountyStatus    `json:"status" gorm:"default:'open';index"`
	Duration    TimeDuration    `json:"duration"`

	HuntersNeeded int `json:"hunters_needed" gorm:"default:1"`
	// Applicants is recomputed from bounty_hunters inside every transaction
	// that mutates the hunter set, so the two never drift.
	Applicants int `json:"applicants" gorm:"default:0"`

	PostedBy string `json:"posted_by" gorm:"index;not null"`
	// Poster display fields are written once at creation and refreshed in
	// bulk on profile edits. List endpoints never join users per row.
	PostedByName   string `json:"posted_by_name"`
	PostedByAvatar string `json:"posted_by_avatar" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags    []BountyTag    `json:"tags" gorm:"foreignKey:BountyID"`
	Hunters []BountyHunter `json:"hunters" gorm:"foreignKey:BountyID"`
}

// BountyTag is one tag on a bounty, kept in display order.
type BountyTag struct {
	ID       string `json:"id" gorm:"primaryKey"`
	BountyID string `json:"bounty_id" gorm:"index;not null"`
	Tag      string `json:"tag" gorm:"not null"`
	Position int    `json:"position"`
}

// BountyHunter records one accepted hunter. AcceptedAt ordering decides who
// absorbs the remainder when a reward does not split evenly.
type BountyHunter struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	BountyID   string    `json:"bounty_id" gorm:"index:idx_bounty_hunter,unique;not null"`
	HunterID   string    `json:"hunter_id" gorm:"index:idx_bounty_hunter,unique;index;not null"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// ParseBountyStatus validates a client-supplied status string.
func ParseBountyStatus(s string) (BountyStatus, bool) {
	switch BountyStatus(s) {
	case BountyStatusOpen, BountyStatusInProgress, BountyStatusCompleted, BountyStatusCancelled:
		return BountyStatus(s), true
	}
	return "", false
}

// ParseCategory validates a client-supplied category string.
func ParseCategory(s string) (BountyCategory, bool) {
	switch BountyCategory(s) {
	case CategoryNeedCar, CategoryNeedDiningDollars, CategoryNeedSkills,
		CategoryPhysicalEffort, CategoryWaitingHolding:
		return BountyCategory(s), true
	}
	return "", false
}

// ParseDuration validates a client-supplied duration string.
func ParseDuration(s string) (TimeDuration, bool) {
	switch TimeDuration(s) {
	case DurationQuick, DurationShort, DurationMedium, DurationLong:
		return TimeDuration(s), true
	}
	return "", false
}

// IsTerminal reports whether a bounty can no longer change state.
func (s BountyStatus) IsTerminal() bool {
	return s == BountyStatusCompleted || s == BountyStatusCancelled
}

// CanTransition reports whether a poster-driven status change is allowed.
// Acceptance and settlement drive their own transitions; this guards the
// direct status endpoint.
func CanTransition(from, to BountyStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case BountyStatusOpen:
		return to == BountyStatusInProgress || to == BountyStatusCancelled || to == BountyStatusCompleted
	case BountyStatusInProgress:
		return to == BountyStatusCompleted || to == BountyStatusCancelled || to == BountyStatusOpen
	default:
		return false
	}
}
