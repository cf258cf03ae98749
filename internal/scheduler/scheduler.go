package scheduler

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/helloimabid/compstudy/internal/database"
	"github.com/helloimabid/compstudy/pkg/models"
)

// Notifier delivers a due-review reminder to a user's push channel
type Notifier interface {
	SendReminder(chatID int64, dueCount int) error
}

// Scheduler runs the periodic reminder job for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	items     *database.ItemRepository
	settings  *database.SettingsRepository
	now       func() time.Time
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		items:     database.NewItemRepository(),
		settings:  database.NewSettingsRepository(),
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly sweep; per-user preferred time is matched inside the job
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders sends a push reminder to every user whose
// preferred reminder hour has arrived in their timezone and who has due
// items that were not already notified this cycle
func (s *Scheduler) checkAndSendReminders() {
	ctx := context.Background()

	users, err := s.settings.ListUsersWithPushReminders(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list reminder settings: %v", err)
		return
	}

	for i := range users {
		settings := &users[i]
		if !s.reminderDueNow(settings) {
			continue
		}

		cutoff := s.now().AddDate(0, 0, settings.ReminderDaysBefore)
		count, err := s.items.CountUnnotifiedDueItems(ctx, settings.UserID, cutoff)
		if err != nil {
			log.Printf("scheduler: failed to count due items for user %s: %v", settings.UserID, err)
			continue
		}
		if count == 0 {
			continue
		}
		if count > settings.MaxDailyReviews && settings.MaxDailyReviews > 0 {
			count = settings.MaxDailyReviews
		}

		if err := s.notifier.SendReminder(settings.NotificationChatID, count); err != nil {
			log.Printf("scheduler: failed to send reminder to user %s: %v", settings.UserID, err)
			continue
		}
		if err := s.items.MarkReminderSent(ctx, settings.UserID, true, false, cutoff); err != nil {
			log.Printf("scheduler: failed to mark reminders sent for user %s: %v", settings.UserID, err)
		}
	}
}

// reminderDueNow checks the user's preferred hour and weekend setting
// against the current time in their timezone
func (s *Scheduler) reminderDueNow(settings *models.UserSRSettings) bool {
	local := s.now().In(settings.Location())

	if !settings.WeekendReminders {
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}

	return local.Hour() == reminderHour(settings.ReminderTime)
}

// reminderHour parses the hour out of an "HH:MM" setting, defaulting
// to 9 when the value is malformed
func reminderHour(reminderTime string) int {
	parts := strings.SplitN(reminderTime, ":", 2)
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 9
	}
	return h
}

// RunManualCheck forces a reminder check for a specific user, ignoring
// the preferred-hour match
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) error {
	settings, err := s.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if !settings.PushRemindersEnabled || settings.NotificationChatID == 0 {
		return nil
	}

	cutoff := s.now().AddDate(0, 0, settings.ReminderDaysBefore)
	count, err := s.items.CountUnnotifiedDueItems(ctx, userID, cutoff)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if err := s.notifier.SendReminder(settings.NotificationChatID, count); err != nil {
		return err
	}
	return s.items.MarkReminderSent(ctx, userID, true, false, cutoff)
}
