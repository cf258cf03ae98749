package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helloimabid/compstudy/pkg/models"
)

// ErrItemNotFound is returned when an item id does not exist
var ErrItemNotFound = errors.New("review item not found")

// ItemRepository handles database operations for spaced-repetition items
type ItemRepository struct{}

// NewItemRepository creates a new repository instance
func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

// Create inserts a new review item for a topic with default scheduling
// state. The review mode and pattern come from the user's settings.
func (r *ItemRepository) Create(ctx context.Context, userID string, topic models.Topic, settings *models.UserSRSettings) (*models.SpacedRepetitionItem, error) {
	now := time.Now()
	item := &models.SpacedRepetitionItem{
		ID:             uuid.NewString(),
		UserID:         userID,
		TopicID:        topic.ID,
		TopicName:      topic.Name,
		SubjectID:      topic.SubjectID,
		SubjectName:    topic.SubjectName,
		EaseFactor:     2.5,
		Interval:       1,
		Repetitions:    0,
		NextReviewDate: now,
		ReviewMode:     models.ReviewModeSM2,
		Status:         models.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if settings != nil {
		item.ReviewMode = settings.DefaultReviewMode
		item.PatternID = settings.SelectedPatternID
		item.CustomIntervals = settings.CustomIntervals
	}

	query := `
		INSERT INTO spaced_repetition_items (
			id, user_id, topic_id, topic_name, subject_id, subject_name,
			ease_factor, interval, repetitions, next_review_date,
			total_reviews, correct_reviews, review_mode, pattern_id,
			custom_intervals, current_step, status,
			email_reminder_sent, push_reminder_sent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := DB.ExecContext(ctx, query,
		item.ID, item.UserID, item.TopicID, item.TopicName, item.SubjectID, item.SubjectName,
		item.EaseFactor, item.Interval, item.Repetitions, item.NextReviewDate,
		item.TotalReviews, item.CorrectReviews, item.ReviewMode, item.PatternID,
		item.CustomIntervals, item.CurrentStep, item.Status,
		item.EmailReminderSent, item.PushReminderSent, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review item: %w", err)
	}
	return item, nil
}

// GetByID returns a single item
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.SpacedRepetitionItem, error) {
	var item models.SpacedRepetitionItem
	err := DB.GetContext(ctx, &item, "SELECT * FROM spaced_repetition_items WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review item: %w", err)
	}
	return &item, nil
}

// ListByUser returns all of a user's items, soonest review first
func (r *ItemRepository) ListByUser(ctx context.Context, userID string) ([]models.SpacedRepetitionItem, error) {
	var items []models.SpacedRepetitionItem
	query := `
		SELECT * FROM spaced_repetition_items
		WHERE user_id = $1
		ORDER BY next_review_date ASC
	`
	if err := DB.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list review items: %w", err)
	}
	return items, nil
}

// ListDueItems returns active items due at or before now, ordered by due
// date ascending and capped at limit
func (r *ItemRepository) ListDueItems(ctx context.Context, userID string, limit int) ([]models.SpacedRepetitionItem, error) {
	var items []models.SpacedRepetitionItem
	query := `
		SELECT * FROM spaced_repetition_items
		WHERE user_id = $1 AND status = $2 AND next_review_date <= $3
		ORDER BY next_review_date ASC
		LIMIT $4
	`
	err := DB.SelectContext(ctx, &items, query, userID, models.StatusActive, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due items: %w", err)
	}
	return items, nil
}

// CountDueItems returns how many active items are currently due
func (r *ItemRepository) CountDueItems(ctx context.Context, userID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM spaced_repetition_items
		WHERE user_id = $1 AND status = $2 AND next_review_date <= $3
	`
	err := DB.GetContext(ctx, &count, query, userID, models.StatusActive, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}
	return count, nil
}

// UpdateItem writes an item's scheduling fields back after grading or an
// explicit edit
func (r *ItemRepository) UpdateItem(ctx context.Context, item *models.SpacedRepetitionItem) error {
	query := `
		UPDATE spaced_repetition_items SET
			ease_factor = $1,
			interval = $2,
			repetitions = $3,
			next_review_date = $4,
			last_review_date = $5,
			total_reviews = $6,
			correct_reviews = $7,
			review_mode = $8,
			pattern_id = $9,
			custom_intervals = $10,
			current_step = $11,
			status = $12,
			email_reminder_sent = $13,
			push_reminder_sent = $14,
			updated_at = $15
		WHERE id = $16
	`
	result, err := DB.ExecContext(ctx, query,
		item.EaseFactor, item.Interval, item.Repetitions,
		item.NextReviewDate, item.LastReviewDate,
		item.TotalReviews, item.CorrectReviews,
		item.ReviewMode, item.PatternID, item.CustomIntervals, item.CurrentStep,
		item.Status, item.EmailReminderSent, item.PushReminderSent,
		time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetStatus changes an item's lifecycle status (pause, resume, archive,
// complete). Status is independent of the scheduling fields.
func (r *ItemRepository) SetStatus(ctx context.Context, id string, status models.ItemStatus) error {
	result, err := DB.ExecContext(ctx,
		"UPDATE spaced_repetition_items SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set item status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ResetProgress puts an item back to its initial scheduling state
func (r *ItemRepository) ResetProgress(ctx context.Context, id string) error {
	query := `
		UPDATE spaced_repetition_items SET
			ease_factor = 2.5,
			interval = 1,
			repetitions = 0,
			current_step = 0,
			next_review_date = $1,
			last_review_date = NULL,
			email_reminder_sent = false,
			push_reminder_sent = false,
			updated_at = $1
		WHERE id = $2
	`
	result, err := DB.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to reset item progress: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete removes an item
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := DB.ExecContext(ctx, "DELETE FROM spaced_repetition_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete review item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MarkReminderSent records that a reminder went out on the given
// channels for every item of the user due before cutoff, so a cycle
// notifies at most once. Grading clears the flags again.
func (r *ItemRepository) MarkReminderSent(ctx context.Context, userID string, push, email bool, cutoff time.Time) error {
	query := `
		UPDATE spaced_repetition_items SET
			push_reminder_sent = push_reminder_sent OR $1,
			email_reminder_sent = email_reminder_sent OR $2,
			updated_at = $3
		WHERE user_id = $4 AND status = $5 AND next_review_date <= $6
	`
	_, err := DB.ExecContext(ctx, query, push, email, time.Now(), userID, models.StatusActive, cutoff)
	if err != nil {
		return fmt.Errorf("failed to mark reminders sent: %w", err)
	}
	return nil
}

// CountUnnotifiedDueItems returns items due before cutoff that have not
// had a push reminder this cycle. The cutoff is usually now, pushed
// forward by the user's reminder_days_before setting.
func (r *ItemRepository) CountUnnotifiedDueItems(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM spaced_repetition_items
		WHERE user_id = $1 AND status = $2 AND next_review_date <= $3
		AND push_reminder_sent = false
	`
	err := DB.GetContext(ctx, &count, query, userID, models.StatusActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to count unnotified due items: %w", err)
	}
	return count, nil
}

// ListUsersWithDueItems returns the ids of users who currently have at
// least one due item, for the reminder scheduler
func (r *ItemRepository) ListUsersWithDueItems(ctx context.Context) ([]string, error) {
	var userIDs []string
	query := `
		SELECT DISTINCT user_id FROM spaced_repetition_items
		WHERE status = $1 AND next_review_date <= $2
	`
	err := DB.SelectContext(ctx, &userIDs, query, models.StatusActive, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list users with due items: %w", err)
	}
	return userIDs, nil
}
