package scheduler

import (
	"testing"
	"time"

	"github.com/helloimabid/compstudy/pkg/models"
)

func TestReminderHour(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"09:00", 9},
		{"21:30", 21},
		{"0:15", 0},
		{"", 9},
		{"morning", 9},
		{"99:00", 9},
	}
	for _, tt := range tests {
		if got := reminderHour(tt.in); got != tt.want {
			t.Errorf("reminderHour(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReminderDueNow(t *testing.T) {
	// Tuesday 2026-03-10 09:30 UTC
	tue := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	// Saturday 2026-03-14 09:30 UTC
	sat := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	s := &Scheduler{}

	settings := models.DefaultSettings("user-1")
	settings.ReminderTime = "09:00"
	settings.Timezone = "UTC"

	s.now = func() time.Time { return tue }
	if !s.reminderDueNow(settings) {
		t.Error("weekday at preferred hour should be due")
	}

	s.now = func() time.Time { return tue.Add(2 * time.Hour) }
	if s.reminderDueNow(settings) {
		t.Error("wrong hour should not be due")
	}

	s.now = func() time.Time { return sat }
	if !s.reminderDueNow(settings) {
		t.Error("weekend is due while weekend reminders are on")
	}
	settings.WeekendReminders = false
	if s.reminderDueNow(settings) {
		t.Error("weekend should be skipped when weekend reminders are off")
	}
}

func TestReminderDueNowUsesTimezone(t *testing.T) {
	// 03:30 UTC is 09:30 in UTC+6
	s := &Scheduler{now: func() time.Time {
		return time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC)
	}}

	settings := models.DefaultSettings("user-1")
	settings.ReminderTime = "09:00"
	settings.Timezone = "Asia/Dhaka"

	if !s.reminderDueNow(settings) {
		t.Error("09:00 reminder should fire at 09:30 local time")
	}

	settings.Timezone = "UTC"
	if s.reminderDueNow(settings) {
		t.Error("09:00 UTC reminder should not fire at 03:30 UTC")
	}
}
