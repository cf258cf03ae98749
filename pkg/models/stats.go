package models

// DashboardStats is the read-only summary shown on the dashboard,
// computed on demand from the user's item collection
type DashboardStats struct {
	TotalItems     int `json:"total_items"`
	ActiveItems    int `json:"active_items"`
	PausedItems    int `json:"paused_items"`
	CompletedItems int `json:"completed_items"`
	ArchivedItems  int `json:"archived_items"`

	DueToday int `json:"due_today"`

	// Upcoming reviews bucketed by distance from now
	DueTomorrow  int `json:"due_tomorrow"`
	DueThisWeek  int `json:"due_this_week"`  // within 7 days
	DueThisMonth int `json:"due_this_month"` // within 30 days

	TotalReviews   int     `json:"total_reviews"`
	CorrectReviews int     `json:"correct_reviews"`
	RetentionRate  float64 `json:"retention_rate"` // 0..100, 0 when nothing reviewed yet

	StreakDays int `json:"streak_days"` // Consecutive days with at least one review
}
