package dashboard

import (
	"context"
	"time"

	"github.com/helloimabid/compstudy/internal/database"
	"github.com/helloimabid/compstudy/pkg/models"
)

// ForUser loads a user's full item collection and settings and computes
// their dashboard statistics
func ForUser(ctx context.Context, userID string) (models.DashboardStats, error) {
	settings, err := database.NewSettingsRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	items, err := database.NewItemRepository().ListByUser(ctx, userID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return Compute(items, time.Now(), settings.Location()), nil
}

// Compute derives dashboard statistics from a user's full item
// collection. It is a pure read-side computation: nothing is persisted.
// Day boundaries (due today, streak) are evaluated in loc, the user's
// configured timezone.
func Compute(items []models.SpacedRepetitionItem, now time.Time, loc *time.Location) models.DashboardStats {
	if loc == nil {
		loc = time.UTC
	}

	var stats models.DashboardStats
	stats.TotalItems = len(items)

	endOfToday := startOfDay(now, loc).AddDate(0, 0, 1)

	for _, item := range items {
		switch item.Status {
		case models.StatusActive:
			stats.ActiveItems++
		case models.StatusPaused:
			stats.PausedItems++
		case models.StatusCompleted:
			stats.CompletedItems++
		case models.StatusArchived:
			stats.ArchivedItems++
		}

		stats.TotalReviews += item.TotalReviews
		stats.CorrectReviews += item.CorrectReviews

		if item.Status != models.StatusActive {
			continue
		}
		due := item.NextReviewDate
		switch {
		case due.Before(endOfToday):
			stats.DueToday++
		case due.Before(endOfToday.AddDate(0, 0, 1)):
			stats.DueTomorrow++
			stats.DueThisWeek++
			stats.DueThisMonth++
		case due.Before(now.AddDate(0, 0, 7)):
			stats.DueThisWeek++
			stats.DueThisMonth++
		case due.Before(now.AddDate(0, 0, 30)):
			stats.DueThisMonth++
		}
	}

	if stats.TotalReviews > 0 {
		stats.RetentionRate = float64(stats.CorrectReviews) / float64(stats.TotalReviews) * 100
	}
	stats.StreakDays = streak(items, now, loc)
	return stats
}

// streak counts consecutive days with at least one completed review,
// walking backwards from today. A day with no reviews breaks the chain;
// a streak may still be alive if today has no reviews yet, as long as
// yesterday does.
func streak(items []models.SpacedRepetitionItem, now time.Time, loc *time.Location) int {
	reviewed := make(map[time.Time]bool)
	for _, item := range items {
		if item.LastReviewDate == nil {
			continue
		}
		reviewed[startOfDay(*item.LastReviewDate, loc)] = true
	}
	if len(reviewed) == 0 {
		return 0
	}

	day := startOfDay(now, loc)
	if !reviewed[day] {
		// No review yet today: the streak counts from yesterday, if any
		day = day.AddDate(0, 0, -1)
	}

	count := 0
	for reviewed[day] {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
