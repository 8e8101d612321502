package services_test

import (
	"sync/atomic"
	"testing"

	"bounty-board-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var accountSeq int64

// openTestDB gives each test its own in-memory database with the full
// schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A second connection would see an empty :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserFollow{},
		&models.AccountCounter{},
		&models.Bounty{},
		&models.BountyTag{},
		&models.BountyHunter{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Review{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, credits int) models.User {
	t.Helper()
	user := models.User{
		ID:            uuid.NewString(),
		Name:          name,
		AccountNumber: int(atomic.AddInt64(&accountSeq, 1)) + 1000,
		Credits:       credits,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

func mustCount(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	tx := db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func reloadUser(t *testing.T, db *gorm.DB, id string) models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user %s: %v", id, err)
	}
	return user
}

func reloadBounty(t *testing.T, db *gorm.DB, id string) models.Bounty {
	t.Helper()
	var bounty models.Bounty
	if err := db.Preload("Hunters").Preload("Tags").First(&bounty, "id = ?", id).Error; err != nil {
		t.Fatalf("reload bounty %s: %v", id, err)
	}
	return bounty
}
