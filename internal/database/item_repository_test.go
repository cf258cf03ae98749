package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helloimabid/compstudy/internal/session"
	"github.com/helloimabid/compstudy/pkg/models"
)

// The item repository is the store behind the review session engine
var _ session.Store = (*ItemRepository)(nil)

func setupTestDB(t *testing.T) {
	t.Helper()
	if err := Connect("sqlite3", ":memory:"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		Close()
		DB = nil
	})
}

func createTestItem(t *testing.T, userID string) *models.SpacedRepetitionItem {
	t.Helper()
	topics := NewTopicRepository()
	topic := &models.Topic{
		SubjectID:   "physics",
		SubjectName: "Physics",
		Name:        "Rotational dynamics " + userID,
	}
	if err := topics.Create(context.Background(), topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	item, err := NewItemRepository().Create(context.Background(), userID, *topic, nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestItemCreateDefaults(t *testing.T) {
	setupTestDB(t)
	item := createTestItem(t, "user-1")

	if item.EaseFactor != 2.5 || item.Interval != 1 || item.Repetitions != 0 {
		t.Errorf("defaults = EF %v, interval %d, reps %d", item.EaseFactor, item.Interval, item.Repetitions)
	}
	if item.Status != models.StatusActive {
		t.Errorf("status = %s, want active", item.Status)
	}

	got, err := NewItemRepository().GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TopicName != item.TopicName || got.UserID != "user-1" {
		t.Errorf("reloaded item = %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("freshly created item fails validation: %v", err)
	}
}

func TestItemCreateUsesSettingsDefaults(t *testing.T) {
	setupTestDB(t)
	settings := models.DefaultSettings("user-1")
	settings.DefaultReviewMode = models.ReviewModeCustom
	settings.SelectedPatternID = "intensive"

	topic := &models.Topic{SubjectID: "math", SubjectName: "Math", Name: "Integrals"}
	if err := NewTopicRepository().Create(context.Background(), topic); err != nil {
		t.Fatal(err)
	}
	item, err := NewItemRepository().Create(context.Background(), "user-1", *topic, settings)
	if err != nil {
		t.Fatal(err)
	}
	if item.ReviewMode != models.ReviewModeCustom || item.PatternID != "intensive" {
		t.Errorf("mode/pattern = %s/%s, want custom/intensive", item.ReviewMode, item.PatternID)
	}
}

func TestItemNotFound(t *testing.T) {
	setupTestDB(t)
	repo := NewItemRepository()
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("GetByID err = %v, want ErrItemNotFound", err)
	}
	if err := repo.Delete(context.Background(), "nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Delete err = %v, want ErrItemNotFound", err)
	}
	missing := &models.SpacedRepetitionItem{ID: "nope"}
	if err := repo.UpdateItem(context.Background(), missing); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("UpdateItem err = %v, want ErrItemNotFound", err)
	}
}

func TestListDueItemsFiltersAndOrders(t *testing.T) {
	setupTestDB(t)
	repo := NewItemRepository()
	ctx := context.Background()

	overdue := createTestItem(t, "user-1")
	overdue.NextReviewDate = time.Now().AddDate(0, 0, -5)
	if err := repo.UpdateItem(ctx, overdue); err != nil {
		t.Fatal(err)
	}

	dueNow := createTestItem(t, "user-2")
	dueNow.NextReviewDate = time.Now().Add(-time.Minute)
	if err := repo.UpdateItem(ctx, dueNow); err != nil {
		t.Fatal(err)
	}

	// Same user as overdue but paused: must not appear
	paused := createTestItem(t, "user-1x")
	paused.NextReviewDate = time.Now().AddDate(0, 0, -1)
	if err := repo.UpdateItem(ctx, paused); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetStatus(ctx, paused.ID, models.StatusPaused); err != nil {
		t.Fatal(err)
	}

	// Future item: not due
	future := createTestItem(t, "user-1y")
	future.NextReviewDate = time.Now().AddDate(0, 0, 3)
	if err := repo.UpdateItem(ctx, future); err != nil {
		t.Fatal(err)
	}

	due, err := repo.ListDueItems(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListDueItems: %v", err)
	}
	if len(due) != 1 || due[0].ID != overdue.ID {
		t.Errorf("due = %d items, want the one overdue item", len(due))
	}

	count, err := repo.CountDueItems(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestUpdateItemRoundTripsSchedulingFields(t *testing.T) {
	setupTestDB(t)
	repo := NewItemRepository()
	ctx := context.Background()

	item := createTestItem(t, "user-1")
	reviewed := time.Now().Truncate(time.Second)
	item.EaseFactor = 2.36
	item.Interval = 6
	item.Repetitions = 2
	item.TotalReviews = 2
	item.CorrectReviews = 2
	item.LastReviewDate = &reviewed
	item.NextReviewDate = reviewed.AddDate(0, 0, 6)
	item.CustomIntervals = models.IntervalList{2, 5, 9}

	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EaseFactor != 2.36 || got.Interval != 6 || got.Repetitions != 2 {
		t.Errorf("scheduling fields = EF %v, interval %d, reps %d", got.EaseFactor, got.Interval, got.Repetitions)
	}
	if got.LastReviewDate == nil || !got.LastReviewDate.Equal(reviewed) {
		t.Errorf("lastReviewDate = %v, want %v", got.LastReviewDate, reviewed)
	}
	if !got.NextReviewDate.Equal(got.LastReviewDate.AddDate(0, 0, got.Interval)) {
		t.Error("nextReviewDate != lastReviewDate + interval days")
	}
	if len(got.CustomIntervals) != 3 || got.CustomIntervals[2] != 9 {
		t.Errorf("customIntervals = %v, want [2 5 9]", got.CustomIntervals)
	}
}

func TestResetProgress(t *testing.T) {
	setupTestDB(t)
	repo := NewItemRepository()
	ctx := context.Background()

	item := createTestItem(t, "user-1")
	reviewed := time.Now()
	item.EaseFactor = 1.8
	item.Interval = 40
	item.Repetitions = 6
	item.CurrentStep = 3
	item.LastReviewDate = &reviewed
	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	if err := repo.ResetProgress(ctx, item.ID); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}
	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EaseFactor != 2.5 || got.Interval != 1 || got.Repetitions != 0 || got.CurrentStep != 0 {
		t.Errorf("after reset: EF %v, interval %d, reps %d, step %d", got.EaseFactor, got.Interval, got.Repetitions, got.CurrentStep)
	}
	if got.LastReviewDate != nil {
		t.Errorf("lastReviewDate = %v, want nil", got.LastReviewDate)
	}
}

func TestMarkAndCountReminders(t *testing.T) {
	setupTestDB(t)
	repo := NewItemRepository()
	ctx := context.Background()

	item := createTestItem(t, "user-1")
	item.NextReviewDate = time.Now().AddDate(0, 0, -1)
	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	count, err := repo.CountUnnotifiedDueItems(ctx, "user-1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("unnotified = %d, want 1", count)
	}

	if err := repo.MarkReminderSent(ctx, "user-1", true, false, time.Now()); err != nil {
		t.Fatalf("MarkReminderSent: %v", err)
	}
	count, err = repo.CountUnnotifiedDueItems(ctx, "user-1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unnotified after mark = %d, want 0", count)
	}

	users, err := repo.ListUsersWithDueItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0] != "user-1" {
		t.Errorf("users with due items = %v", users)
	}
}

func TestSettingsGetOrCreate(t *testing.T) {
	setupTestDB(t)
	repo := NewSettingsRepository()
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first.MaxDailyReviews != 20 || first.DefaultReviewMode != models.ReviewModeSM2 {
		t.Errorf("defaults = %+v", first)
	}

	second, err := repo.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if second.MaxDailyReviews != first.MaxDailyReviews || second.Timezone != first.Timezone {
		t.Errorf("second access differs: %+v vs %+v", second, first)
	}

	second.MaxDailyReviews = 5
	second.Timezone = "Asia/Dhaka"
	second.CustomIntervals = models.IntervalList{1, 3, 9}
	if err := repo.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxDailyReviews != 5 || got.Timezone != "Asia/Dhaka" || len(got.CustomIntervals) != 3 {
		t.Errorf("updated settings = %+v", got)
	}
}
