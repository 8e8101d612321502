package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"bounty-board-system/models"

	"gorm.io/gorm"
)

// PushClient forwards stored notifications to the external push delivery
// service. Delivery is best-effort: rows stay undelivered until the service
// accepts them, so a downed push service just delays the alert.
type PushClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPushClient(db *gorm.DB) *PushClient {
	baseURL := os.Getenv("PUSH_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("PUSH_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("PUSH_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("PUSH_SERVICE_TOKEN environment variable is required")
	}

	return &PushClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type pushPayload struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Type      string `json:"type"`
	RelatedID string `json:"related_id,omitempty"`
}

// Send posts one notification to the push delivery service.
func (c *PushClient) Send(ctx context.Context, n models.Notification) error {
	payload := pushPayload{
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Message,
		Type:      string(n.Type),
		RelatedID: n.RelatedID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/v1/push", c.BaseURL), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call push service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push service returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// PollNotifications drains undelivered notifications on a fixed interval.
// A row is marked delivered only after the push service accepted it; on
// failure the same row is retried next tick.
func PollNotifications(ctx context.Context, client *PushClient, pollInterval time.Duration) {
	log.Println("Starting notification push worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification push worker stopped.")
			return
		case <-ticker.C:
			var pending []models.Notification
			if err := client.DB.Where("delivered = ?", false).
				Order("created_at ASC").
				Limit(100).
				Find(&pending).Error; err != nil {
				log.Printf("❌ Error loading undelivered notifications: %v", err)
				continue
			}
			if len(pending) == 0 {
				continue
			}

			sent := 0
			for _, n := range pending {
				if err := client.Send(ctx, n); err != nil {
					log.Printf("❌ Push delivery failed for notification %s: %v", n.ID, err)
					// Stop the batch; the service is likely down.
					break
				}
				if err := client.DB.Model(&models.Notification{}).Where("id = ?", n.ID).
					UpdateColumn("delivered", true).Error; err != nil {
					log.Printf("❌ Failed to mark notification %s delivered: %v", n.ID, err)
					break
				}
				sent++
			}
			if sent > 0 {
				log.Printf("📤 Delivered %d notification(s) to push service", sent)
			}
		}
	}
}
