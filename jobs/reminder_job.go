package jobs

import (
	"log"
	"time"

	"github.com/classlearning/study_journal/models"
	"github.com/classlearning/study_journal/notifications"
	"gorm.io/gorm"
)

type ReminderJob struct {
	DB    *gorm.DB
	Email *notifications.BrevoService
}

// SendJournalReminders nudges students who have not written anything in the
// last 24 hours.
func (j *ReminderJob) SendJournalReminders() {
	log.Println("Running job: SendJournalReminders...")

	since := time.Now().Add(-24 * time.Hour)

	var idleUsers []models.User
	err := j.DB.
		Where("NOT EXISTS (SELECT 1 FROM journals WHERE journals.user_id = users.id AND journals.created_at > ?)", since).
		Find(&idleUsers).Error
	if err != nil {
		log.Printf("Error checking for idle journal writers: %v", err)
		return
	}

	if len(idleUsers) == 0 {
		return
	}

	for _, user := range idleUsers {
		log.Printf("Sending journal reminder to user: %s", user.ID)
		go j.Email.SendEmail(
			user.FullName,
			user.Email,
			"What did you learn today?",
			"<h1>Time to Journal!</h1><p>Hi there,</p><p>You haven't written a journal entry today. Write about what you learned and take a quiz on it!</p>",
		)
	}
}
