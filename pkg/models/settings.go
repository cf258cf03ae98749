package models

import "time"

// UserSRSettings holds a user's spaced-repetition preferences.
// Created lazily with defaults on first access.
type UserSRSettings struct {
	UserID string `json:"user_id" db:"user_id"`

	EmailRemindersEnabled bool   `json:"email_reminders_enabled" db:"email_reminders_enabled"`
	PushRemindersEnabled  bool   `json:"push_reminders_enabled" db:"push_reminders_enabled"`
	ReminderTime          string `json:"reminder_time" db:"reminder_time"` // "HH:MM" in the user's timezone
	Timezone              string `json:"timezone" db:"timezone"`           // IANA name, e.g. "Asia/Dhaka"
	WeekendReminders      bool   `json:"weekend_reminders" db:"weekend_reminders"`
	ReminderDaysBefore    int    `json:"reminder_days_before" db:"reminder_days_before"`

	MaxDailyReviews int `json:"max_daily_reviews" db:"max_daily_reviews"`

	DefaultReviewMode ReviewMode   `json:"default_review_mode" db:"default_review_mode"`
	SelectedPatternID string       `json:"selected_pattern_id" db:"selected_pattern_id"`
	CustomIntervals   IntervalList `json:"custom_intervals" db:"custom_intervals"`

	// Chat the push channel delivers reminders to; zero means push
	// reminders cannot be delivered even if enabled
	NotificationChatID int64 `json:"notification_chat_id" db:"notification_chat_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultSettings returns the settings written on a user's first access
func DefaultSettings(userID string) *UserSRSettings {
	return &UserSRSettings{
		UserID:                userID,
		EmailRemindersEnabled: true,
		PushRemindersEnabled:  true,
		ReminderTime:          "09:00",
		Timezone:              "UTC",
		WeekendReminders:      true,
		ReminderDaysBefore:    0,
		MaxDailyReviews:       20,
		DefaultReviewMode:     ReviewModeSM2,
		SelectedPatternID:     "standard",
	}
}

// Location resolves the user's timezone, falling back to UTC when the
// name is empty or unknown
func (s *UserSRSettings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
