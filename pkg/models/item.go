package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReviewMode selects the scheduling algorithm for an item
type ReviewMode string

const (
	// ReviewModeSM2 uses the adaptive SuperMemo-2 algorithm
	ReviewModeSM2 ReviewMode = "sm2"
	// ReviewModeCustom uses a fixed interval sequence (preset or user-defined)
	ReviewModeCustom ReviewMode = "custom"
)

// ItemStatus is the lifecycle status of a review item
type ItemStatus string

const (
	StatusActive    ItemStatus = "active"
	StatusPaused    ItemStatus = "paused"
	StatusCompleted ItemStatus = "completed"
	StatusArchived  ItemStatus = "archived"
)

// MinEaseFactor is the SM-2 lower bound for the ease factor
const MinEaseFactor = 1.3

// IntervalList is an ordered sequence of day-offsets, stored as
// comma-separated text in the database
type IntervalList []int

// Value implements driver.Valuer
func (l IntervalList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "", nil
	}
	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner
func (l *IntervalList) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into IntervalList", src)
	}
	*l = ParseIntervals(raw)
	return nil
}

// ParseIntervals parses a comma-separated list of day-offsets.
// Malformed or non-positive entries are skipped rather than failing the
// whole list.
func ParseIntervals(raw string) IntervalList {
	var out IntervalList
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 1 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SpacedRepetitionItem represents one tracked topic on a user's review list
type SpacedRepetitionItem struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Curriculum references, names denormalized for display
	TopicID     string `json:"topic_id" db:"topic_id"`
	TopicName   string `json:"topic_name" db:"topic_name"`
	SubjectID   string `json:"subject_id" db:"subject_id"`
	SubjectName string `json:"subject_name" db:"subject_name"`

	// Scheduling state
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`         // SM-2 E-Factor, never below 1.3
	Interval       int        `json:"interval" db:"interval"`               // Days until next review
	Repetitions    int        `json:"repetitions" db:"repetitions"`         // Consecutive successful reviews
	NextReviewDate time.Time  `json:"next_review_date" db:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date" db:"last_review_date"`

	// Review statistics
	TotalReviews   int `json:"total_reviews" db:"total_reviews"`
	CorrectReviews int `json:"correct_reviews" db:"correct_reviews"`

	// Mode selection
	ReviewMode      ReviewMode   `json:"review_mode" db:"review_mode"`
	PatternID       string       `json:"pattern_id" db:"pattern_id"`
	CustomIntervals IntervalList `json:"custom_intervals" db:"custom_intervals"`
	CurrentStep     int          `json:"current_step" db:"current_step"` // Index into the active interval sequence

	Status ItemStatus `json:"status" db:"status"`

	// Reminder flags, reset every time the item is graded
	EmailReminderSent bool `json:"email_reminder_sent" db:"email_reminder_sent"`
	PushReminderSent  bool `json:"push_reminder_sent" db:"push_reminder_sent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the item is scheduled for review at or before now
func (item *SpacedRepetitionItem) IsDue(now time.Time) bool {
	return item.Status == StatusActive && !item.NextReviewDate.After(now)
}

// Validate checks the scheduling invariants. Items failing validation are
// excluded from review queues rather than crashing a session.
func (item *SpacedRepetitionItem) Validate() error {
	if item.ID == "" {
		return fmt.Errorf("item has no id")
	}
	if item.UserID == "" {
		return fmt.Errorf("item %s has no user id", item.ID)
	}
	switch item.ReviewMode {
	case ReviewModeSM2:
		if item.EaseFactor < MinEaseFactor {
			return fmt.Errorf("item %s: ease factor %.2f below %.1f", item.ID, item.EaseFactor, MinEaseFactor)
		}
	case ReviewModeCustom:
		if item.CurrentStep < 0 {
			return fmt.Errorf("item %s: negative current step %d", item.ID, item.CurrentStep)
		}
	default:
		return fmt.Errorf("item %s: unknown review mode %q", item.ID, item.ReviewMode)
	}
	if item.Interval < 1 {
		return fmt.Errorf("item %s: interval %d below 1", item.ID, item.Interval)
	}
	if item.Repetitions < 0 {
		return fmt.Errorf("item %s: negative repetitions %d", item.ID, item.Repetitions)
	}
	if item.CorrectReviews > item.TotalReviews {
		return fmt.Errorf("item %s: correct reviews %d exceed total %d", item.ID, item.CorrectReviews, item.TotalReviews)
	}
	return nil
}
