package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. driver is "sqlite3"
// or "postgres"; dsn is a file path for sqlite and a connection URL for
// postgres.
func Connect(driver, dsn string) error {
	if driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Curriculum topics a user can put on their review list
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS topics (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			subject_name TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(subject_id, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create topics table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS spaced_repetition_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			topic_id TEXT NOT NULL,
			topic_name TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			subject_name TEXT NOT NULL,
			ease_factor REAL DEFAULT 2.5,
			interval INTEGER DEFAULT 1,
			repetitions INTEGER DEFAULT 0,
			next_review_date TIMESTAMP NOT NULL,
			last_review_date TIMESTAMP,
			total_reviews INTEGER DEFAULT 0,
			correct_reviews INTEGER DEFAULT 0,
			review_mode TEXT DEFAULT 'sm2',
			pattern_id TEXT DEFAULT '',
			custom_intervals TEXT DEFAULT '',
			current_step INTEGER DEFAULT 0,
			status TEXT DEFAULT 'active',
			email_reminder_sent BOOLEAN DEFAULT false,
			push_reminder_sent BOOLEAN DEFAULT false,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, topic_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create spaced_repetition_items table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS user_sr_settings (
			user_id TEXT PRIMARY KEY,
			email_reminders_enabled BOOLEAN DEFAULT true,
			push_reminders_enabled BOOLEAN DEFAULT true,
			reminder_time TEXT DEFAULT '09:00',
			timezone TEXT DEFAULT 'UTC',
			weekend_reminders BOOLEAN DEFAULT true,
			reminder_days_before INTEGER DEFAULT 0,
			max_daily_reviews INTEGER DEFAULT 20,
			default_review_mode TEXT DEFAULT 'sm2',
			selected_pattern_id TEXT DEFAULT 'standard',
			custom_intervals TEXT DEFAULT '',
			notification_chat_id INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_sr_settings table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_items_user_due
		ON spaced_repetition_items (user_id, status, next_review_date)
	`)
	if err != nil {
		return fmt.Errorf("failed to create due-items index: %v", err)
	}

	return nil
}
