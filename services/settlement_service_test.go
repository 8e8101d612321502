package services_test

import (
	"errors"
	"testing"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/services"
)

func TestSplitReward(t *testing.T) {
	tests := []struct {
		name  string
		total int
		n     int
		want  []int
	}{
		{"even split", 9, 3, []int{3, 3, 3}},
		{"remainder to earliest", 10, 3, []int{4, 3, 3}},
		{"two hunters odd reward", 7, 2, []int{4, 3}},
		{"single hunter", 5, 1, []int{5}},
		{"more hunters than credits", 2, 4, []int{1, 1, 0, 0}},
		{"no hunters", 10, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.SplitReward(tt.total, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitReward(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
			}
			sum := 0
			for i, share := range got {
				if share != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, share, tt.want[i])
				}
				sum += share
			}
			if tt.n > 0 && sum != tt.total {
				t.Errorf("shares sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

// settleFixture posts a bounty and signs up two hunters through the real
// accept path, so settlement sees the same rows production would.
func settleFixture(t *testing.T, svc *services.BountyService, posterCredits, reward int) (poster, hunterA, hunterB models.User, bountyID string) {
	t.Helper()
	db := svc.DB
	poster = seedUser(t, db, "Priya", posterCredits)
	hunterA = seedUser(t, db, "Aiden", 0)
	hunterB = seedUser(t, db, "Blake", 0)

	bounty, err := svc.Create(poster.ID, services.CreateBountyInput{
		Title:         "Move a couch to North Park",
		Description:   "Two people, one flight of stairs.",
		Reward:        reward,
		Duration:      "short",
		HuntersNeeded: 2,
	})
	if err != nil {
		t.Fatalf("create bounty: %v", err)
	}
	if _, err := svc.Accept(hunterA.ID, bounty.ID); err != nil {
		t.Fatalf("hunter A accept: %v", err)
	}
	time.Sleep(2 * time.Millisecond) // keep accepted_at ordering deterministic
	if _, err := svc.Accept(hunterB.ID, bounty.ID); err != nil {
		t.Fatalf("hunter B accept: %v", err)
	}
	return poster, hunterA, hunterB, bounty.ID
}

func TestCompleteSettlesAndCascades(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	settlement := services.NewSettlementService(db)

	poster, hunterA, hunterB, bountyID := settleFixture(t, bounties, 20, 7)

	result, err := settlement.Complete(poster.ID, bountyID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.HuntersPaid != 2 {
		t.Errorf("hunters paid = %d, want 2", result.HuntersPaid)
	}
	if result.DeletedConversations == 0 {
		t.Errorf("expected conversations to be deleted, got 0")
	}

	gotPoster := reloadUser(t, db, poster.ID)
	if gotPoster.Credits != 13 {
		t.Errorf("poster credits = %d, want 13", gotPoster.Credits)
	}

	// 7 over 2 hunters: 4 to the earliest, 3 to the second.
	gotA := reloadUser(t, db, hunterA.ID)
	gotB := reloadUser(t, db, hunterB.ID)
	if gotA.Credits != 4 || gotA.TotalEarned != 4 || gotA.BountiesCompleted != 1 {
		t.Errorf("hunter A = credits %d earned %d completed %d, want 4/4/1",
			gotA.Credits, gotA.TotalEarned, gotA.BountiesCompleted)
	}
	if gotB.Credits != 3 || gotB.TotalEarned != 3 || gotB.BountiesCompleted != 1 {
		t.Errorf("hunter B = credits %d earned %d completed %d, want 3/3/1",
			gotB.Credits, gotB.TotalEarned, gotB.BountiesCompleted)
	}

	bounty := reloadBounty(t, db, bountyID)
	if bounty.Status != models.BountyStatusCompleted {
		t.Errorf("status = %s, want completed", bounty.Status)
	}

	if n := mustCount(t, db, &models.Conversation{}, "bounty_id = ?", bountyID); n != 0 {
		t.Errorf("conversations left after settlement: %d", n)
	}
	if n := mustCount(t, db, &models.Message{}, ""); n != 0 {
		t.Errorf("messages left after settlement: %d", n)
	}
	if n := mustCount(t, db, &models.ConversationParticipant{}, ""); n != 0 {
		t.Errorf("participant rows left after settlement: %d", n)
	}

	if n := mustCount(t, db, &models.Notification{},
		"type = ?", models.NotificationBountyCompleted); n != 2 {
		t.Errorf("completion notifications = %d, want 2", n)
	}
}

func TestCompleteInsufficientCreditsLeavesNothingChanged(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	settlement := services.NewSettlementService(db)

	poster, hunterA, hunterB, bountyID := settleFixture(t, bounties, 3, 7)
	convsBefore := mustCount(t, db, &models.Conversation{}, "bounty_id = ?", bountyID)

	_, err := settlement.Complete(poster.ID, bountyID)
	if !errors.Is(err, services.ErrInsufficientCredits) {
		t.Fatalf("complete = %v, want ErrInsufficientCredits", err)
	}

	if got := reloadUser(t, db, poster.ID); got.Credits != 3 {
		t.Errorf("poster credits = %d, want untouched 3", got.Credits)
	}
	if got := reloadUser(t, db, hunterA.ID); got.Credits != 0 || got.BountiesCompleted != 0 {
		t.Errorf("hunter A mutated: credits %d completed %d", got.Credits, got.BountiesCompleted)
	}
	if got := reloadUser(t, db, hunterB.ID); got.Credits != 0 {
		t.Errorf("hunter B mutated: credits %d", got.Credits)
	}
	if bounty := reloadBounty(t, db, bountyID); bounty.Status == models.BountyStatusCompleted {
		t.Errorf("bounty marked completed despite failed settlement")
	}
	if n := mustCount(t, db, &models.Conversation{}, "bounty_id = ?", bountyID); n != convsBefore {
		t.Errorf("conversations = %d, want untouched %d", n, convsBefore)
	}
}

func TestCompleteWithoutHuntersIsRejected(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	settlement := services.NewSettlementService(db)

	poster := seedUser(t, db, "Priya", 20)
	bounty, err := bounties.Create(poster.ID, services.CreateBountyInput{
		Title: "Return my library books", Description: "Baker-Berry by Friday.",
		Reward: 7, Duration: "quick",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := settlement.Complete(poster.ID, bounty.ID); !errors.Is(err, services.ErrNoHunters) {
		t.Fatalf("complete with empty roster = %v, want ErrNoHunters", err)
	}

	// No debit without a payout: the reward must not leave the poster.
	if got := reloadUser(t, db, poster.ID); got.Credits != 20 {
		t.Errorf("poster credits = %d, want untouched 20", got.Credits)
	}
	if got := reloadBounty(t, db, bounty.ID); got.Status != models.BountyStatusOpen {
		t.Errorf("status = %s, want still open", got.Status)
	}
}

func TestCompleteAuthorization(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	settlement := services.NewSettlementService(db)

	poster, hunterA, _, bountyID := settleFixture(t, bounties, 20, 7)

	if _, err := settlement.Complete(hunterA.ID, bountyID); !errors.Is(err, services.ErrNotPoster) {
		t.Errorf("hunter completing = %v, want ErrNotPoster", err)
	}
	if _, err := settlement.Complete(poster.ID, "no-such-bounty"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing bounty = %v, want ErrNotFound", err)
	}

	if _, err := settlement.Complete(poster.ID, bountyID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := settlement.Complete(poster.ID, bountyID); !errors.Is(err, services.ErrAlreadyCompleted) {
		t.Errorf("second complete = %v, want ErrAlreadyCompleted", err)
	}
}
