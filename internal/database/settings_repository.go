package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/helloimabid/compstudy/pkg/models"
)

// SettingsRepository handles database operations for user review settings
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// GetOrCreate returns the user's settings, writing defaults on first
// access
func (r *SettingsRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserSRSettings, error) {
	var settings models.UserSRSettings
	err := DB.GetContext(ctx, &settings, "SELECT * FROM user_sr_settings WHERE user_id = $1", userID)
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}

	defaults := models.DefaultSettings(userID)
	now := time.Now()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now

	query := `
		INSERT INTO user_sr_settings (
			user_id, email_reminders_enabled, push_reminders_enabled,
			reminder_time, timezone, weekend_reminders, reminder_days_before,
			max_daily_reviews, default_review_mode, selected_pattern_id,
			custom_intervals, notification_chat_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = DB.ExecContext(ctx, query,
		defaults.UserID, defaults.EmailRemindersEnabled, defaults.PushRemindersEnabled,
		defaults.ReminderTime, defaults.Timezone, defaults.WeekendReminders, defaults.ReminderDaysBefore,
		defaults.MaxDailyReviews, defaults.DefaultReviewMode, defaults.SelectedPatternID,
		defaults.CustomIntervals, defaults.NotificationChatID, defaults.CreatedAt, defaults.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return defaults, nil
}

// Update writes a user's settings back. Partial edits go through
// GetOrCreate first, so this is always a full-row write.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.UserSRSettings) error {
	query := `
		UPDATE user_sr_settings SET
			email_reminders_enabled = $1,
			push_reminders_enabled = $2,
			reminder_time = $3,
			timezone = $4,
			weekend_reminders = $5,
			reminder_days_before = $6,
			max_daily_reviews = $7,
			default_review_mode = $8,
			selected_pattern_id = $9,
			custom_intervals = $10,
			notification_chat_id = $11,
			updated_at = $12
		WHERE user_id = $13
	`
	result, err := DB.ExecContext(ctx, query,
		settings.EmailRemindersEnabled, settings.PushRemindersEnabled,
		settings.ReminderTime, settings.Timezone, settings.WeekendReminders, settings.ReminderDaysBefore,
		settings.MaxDailyReviews, settings.DefaultReviewMode, settings.SelectedPatternID,
		settings.CustomIntervals, settings.NotificationChatID,
		time.Now(), settings.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("settings for user %s not found", settings.UserID)
	}
	return nil
}

// ListUsersWithPushReminders returns settings rows for users who have
// push reminders switched on, for the reminder scheduler
func (r *SettingsRepository) ListUsersWithPushReminders(ctx context.Context) ([]models.UserSRSettings, error) {
	var settings []models.UserSRSettings
	query := `
		SELECT * FROM user_sr_settings
		WHERE push_reminders_enabled = true AND notification_chat_id != 0
	`
	if err := DB.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("failed to list reminder settings: %w", err)
	}
	return settings, nil
}
