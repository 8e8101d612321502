package services

import "errors"

// Sentinel errors returned by the services. Handlers map these onto HTTP
// status codes; anything else is a 500.
var (
	ErrNotFound            = errors.New("record not found")
	ErrNotPoster           = errors.New("only the poster can do this")
	ErrNotParticipant      = errors.New("caller is not a participant in this conversation")
	ErrOwnBounty           = errors.New("cannot accept your own bounty")
	ErrAlreadyAccepted     = errors.New("already accepted this bounty")
	ErrNotAccepted         = errors.New("caller has not accepted this bounty")
	ErrHuntersFull         = errors.New("bounty already has all the hunters it needs")
	ErrBountyClosed        = errors.New("bounty is no longer open")
	ErrAlreadyCompleted    = errors.New("bounty is already completed")
	ErrNoHunters           = errors.New("bounty has no accepted hunters to pay")
	ErrInsufficientCredits = errors.New("insufficient credits to complete bounty")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("status change not allowed")
	ErrNotPayRequest       = errors.New("message is not a pending pay request")
	ErrOwnPayRequest       = errors.New("cannot accept your own pay request")
	ErrAlreadyReviewed     = errors.New("bounty already reviewed by this user")
	ErrAlreadyFollowing    = errors.New("already following this user")
)
