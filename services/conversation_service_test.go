package services_test

import (
	"errors"
	"testing"

	"bounty-board-system/models"
	"bounty-board-system/services"
)

func TestStartNegotiationCreatesMirroredPair(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	convs := services.NewConversationService(db)

	poster := seedUser(t, db, "Priya", 10)
	hunter := seedUser(t, db, "Aiden", 0)
	bounty, err := bounties.Create(poster.ID, services.CreateBountyInput{
		Title: "Fix my bike", Description: "Flat tire.", Reward: 6, Duration: "short",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := convs.StartNegotiation(poster.ID, bounty.ID); !errors.Is(err, services.ErrOwnBounty) {
		t.Errorf("poster negotiating own bounty = %v, want ErrOwnBounty", err)
	}

	conv, err := convs.StartNegotiation(hunter.ID, bounty.ID)
	if err != nil {
		t.Fatalf("start negotiation: %v", err)
	}
	if conv.Type != models.ConversationHunterNegotiation {
		t.Errorf("type = %s, want hunter-negotiation", conv.Type)
	}
	if conv.OriginalReward != 6 {
		t.Errorf("original reward = %d, want 6", conv.OriginalReward)
	}
	if !conv.HasParticipant(poster.ID) || !conv.HasParticipant(hunter.ID) {
		t.Errorf("negotiation roster missing a side")
	}

	if n := mustCount(t, db, &models.Conversation{},
		"bounty_id = ? AND type = ?", bounty.ID, models.ConversationPosterNegotiation); n != 1 {
		t.Errorf("poster mirror threads = %d, want 1", n)
	}
	if n := mustCount(t, db, &models.Notification{},
		"user_id = ? AND type = ?", poster.ID, models.NotificationNegotiationOpened); n != 1 {
		t.Errorf("poster notifications = %d, want 1", n)
	}

	// Starting again for the same pair reuses the existing thread.
	again, err := convs.StartNegotiation(hunter.ID, bounty.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if again.ID != conv.ID {
		t.Errorf("second start created a new thread: %s != %s", again.ID, conv.ID)
	}
	if n := mustCount(t, db, &models.Conversation{}, "bounty_id = ?", bounty.ID); n != 2 {
		t.Errorf("conversations for bounty = %d, want the pair only", n)
	}
}

func TestAcceptPayRequest(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	convs := services.NewConversationService(db)

	poster := seedUser(t, db, "Priya", 10)
	hunter := seedUser(t, db, "Aiden", 0)
	bounty, err := bounties.Create(poster.ID, services.CreateBountyInput{
		Title: "Fix my bike", Description: "Flat tire.", Reward: 6, Duration: "short",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	nego, err := convs.StartNegotiation(hunter.ID, bounty.ID)
	if err != nil {
		t.Fatalf("start negotiation: %v", err)
	}

	if _, err := convs.SendPayRequest(hunter.ID, nego.ID, 0); !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("zero pay request = %v, want ErrInvalidInput", err)
	}

	req, err := convs.SendPayRequest(hunter.ID, nego.ID, 9)
	if err != nil {
		t.Fatalf("send pay request: %v", err)
	}
	if req.Type != models.MessagePayRequest || req.PayRequest.Status != models.PayRequestPending {
		t.Fatalf("pay request message = type %s status %s", req.Type, req.PayRequest.Status)
	}

	text, err := convs.SendMessage(hunter.ID, nego.ID, "Does 9 work for you?")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}

	if _, err := convs.AcceptPayRequest(hunter.ID, nego.ID, req.ID); !errors.Is(err, services.ErrOwnPayRequest) {
		t.Errorf("accepting own request = %v, want ErrOwnPayRequest", err)
	}
	if _, err := convs.AcceptPayRequest(poster.ID, nego.ID, text.ID); !errors.Is(err, services.ErrNotPayRequest) {
		t.Errorf("accepting a text message = %v, want ErrNotPayRequest", err)
	}

	direct, err := convs.AcceptPayRequest(poster.ID, nego.ID, req.ID)
	if err != nil {
		t.Fatalf("accept pay request: %v", err)
	}
	if direct.Type != models.ConversationDirect {
		t.Errorf("resolved thread type = %s, want direct", direct.Type)
	}
	if direct.OriginalReward != 9 {
		t.Errorf("agreed reward = %d, want 9", direct.OriginalReward)
	}
	if !direct.HasParticipant(poster.ID) || !direct.HasParticipant(hunter.ID) {
		t.Errorf("direct thread missing a side")
	}

	// The negotiation pair is gone; only the direct thread remains.
	if n := mustCount(t, db, &models.Conversation{},
		"bounty_id = ? AND type != ?", bounty.ID, models.ConversationDirect); n != 0 {
		t.Errorf("negotiation threads left: %d", n)
	}
	if n := mustCount(t, db, &models.Conversation{}, "bounty_id = ?", bounty.ID); n != 1 {
		t.Errorf("conversations for bounty = %d, want 1", n)
	}
}

func TestAcceptOriginalPrice(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	convs := services.NewConversationService(db)

	poster := seedUser(t, db, "Priya", 10)
	hunter := seedUser(t, db, "Aiden", 0)
	bounty, err := bounties.Create(poster.ID, services.CreateBountyInput{
		Title: "Fix my bike", Description: "Flat tire.", Reward: 6, Duration: "short",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	nego, err := convs.StartNegotiation(hunter.ID, bounty.ID)
	if err != nil {
		t.Fatalf("start negotiation: %v", err)
	}

	direct, err := convs.AcceptOriginalPrice(hunter.ID, nego.ID)
	if err != nil {
		t.Fatalf("accept original price: %v", err)
	}
	if direct.OriginalReward != 6 {
		t.Errorf("reward = %d, want original 6", direct.OriginalReward)
	}
	if n := mustCount(t, db, &models.Conversation{},
		"bounty_id = ? AND type != ?", bounty.ID, models.ConversationDirect); n != 0 {
		t.Errorf("negotiation threads left: %d", n)
	}

	// The direct thread is not a negotiation, so it cannot be resolved again.
	if _, err := convs.AcceptOriginalPrice(hunter.ID, direct.ID); !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("resolving a direct thread = %v, want ErrInvalidInput", err)
	}
}

func TestMessagesAndMarkRead(t *testing.T) {
	db := openTestDB(t)
	bounties := services.NewBountyService(db)
	convs := services.NewConversationService(db)

	poster := seedUser(t, db, "Priya", 10)
	hunter := seedUser(t, db, "Aiden", 0)
	stranger := seedUser(t, db, "Blake", 0)
	bounty, err := bounties.Create(poster.ID, services.CreateBountyInput{
		Title: "Fix my bike", Description: "Flat tire.", Reward: 6, Duration: "short",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	conv, err := bounties.Accept(hunter.ID, bounty.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := convs.SendMessage(hunter.ID, conv.ID, "  "); !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("blank message = %v, want ErrInvalidInput", err)
	}
	if _, err := convs.SendMessage(stranger.ID, conv.ID, "hi"); !errors.Is(err, services.ErrNotParticipant) {
		t.Errorf("stranger message = %v, want ErrNotParticipant", err)
	}
	if _, err := convs.Messages(stranger.ID, conv.ID); !errors.Is(err, services.ErrNotParticipant) {
		t.Errorf("stranger read = %v, want ErrNotParticipant", err)
	}

	if _, err := convs.SendMessage(hunter.ID, conv.ID, "On my way"); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs, err := convs.Messages(poster.ID, conv.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	// System greeting from acceptance, then the hunter's text, oldest first.
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].SenderID != models.SystemSenderID {
		t.Errorf("first message sender = %s, want system", msgs[0].SenderID)
	}
	if msgs[1].Content != "On my way" {
		t.Errorf("second message = %q", msgs[1].Content)
	}

	listed, err := convs.List(poster.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].LastMessage != "On my way" {
		t.Fatalf("list preview = %v", listed)
	}
	if listed[0].UnreadCount == 0 {
		t.Errorf("unread count not bumped")
	}

	if err := convs.MarkRead(stranger.ID, conv.ID); !errors.Is(err, services.ErrNotParticipant) {
		t.Errorf("stranger mark read = %v, want ErrNotParticipant", err)
	}
	if err := convs.MarkRead(poster.ID, conv.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	listed, err = convs.List(poster.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listed[0].UnreadCount != 0 {
		t.Errorf("unread count = %d after mark read", listed[0].UnreadCount)
	}
	if n := mustCount(t, db, &models.Message{}, "conversation_id = ? AND read = ?", conv.ID, false); n != 0 {
		t.Errorf("unread messages left: %d", n)
	}
}
