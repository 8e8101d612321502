package services

import (
	"log"
	"time"

	"bounty-board-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartOrphanSweep runs a periodic cleanup for rows the old mobile clients
// left behind: those clients wrote bounty, conversation and message
// documents in separate non-transactional steps, so a failure partway could
// strand conversations without a bounty or messages without a conversation.
// The server's own writes are transactional and never need this.
func StartOrphanSweep(db *gorm.DB, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			res := db.Where("bounty_id NOT IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&models.Bounty{}).Select("id"),
			).Delete(&models.Conversation{})
			if res.Error != nil {
				log.Printf("[Sweep] failed to remove orphaned conversations: %v", res.Error)
				return
			}
			orphanedConvs := res.RowsAffected

			res = db.Where("conversation_id NOT IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&models.Conversation{}).Select("id"),
			).Delete(&models.ConversationParticipant{})
			if res.Error != nil {
				log.Printf("[Sweep] failed to remove orphaned participants: %v", res.Error)
				return
			}

			res = db.Where("conversation_id NOT IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&models.Conversation{}).Select("id"),
			).Delete(&models.Message{})
			if res.Error != nil {
				log.Printf("[Sweep] failed to remove orphaned messages: %v", res.Error)
				return
			}

			if orphanedConvs > 0 || res.RowsAffected > 0 {
				log.Printf("[Sweep] removed %d orphaned conversation(s) and %d orphaned message(s)",
					orphanedConvs, res.RowsAffected)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return sched, nil
}
