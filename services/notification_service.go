package services

import (
	"errors"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// notify inserts an in-app notification inside the caller's transaction.
// The push worker picks the row up later; delivery never blocks the
// operation that produced it.
func notify(tx *gorm.DB, userID string, t models.NotificationType, title, message, relatedID string) error {
	return tx.Create(&models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      t,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}).Error
}

// ForUser lists the caller's notifications, newest first.
func (s *NotificationService) ForUser(callerID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Where("user_id = ?", callerID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(callerID, notificationID string) error {
	var n models.Notification
	if err := s.DB.First(&n, "id = ? AND user_id = ?", notificationID, callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Model(&models.Notification{}).Where("id = ?", n.ID).
		UpdateColumn("read", true).Error
}
