package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the service
type Config struct {
	// "sqlite3" or "postgres"
	DBDriver string
	// File path for sqlite, connection URL for postgres
	DBDSN string

	TelegramToken string
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local runs
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{
		DBDriver:      getEnvOrDefault("DB_DRIVER", "sqlite3"),
		DBDSN:         os.Getenv("DB_DSN"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
	if cfg.DBDSN == "" {
		if cfg.DBDriver == "sqlite3" {
			cfg.DBDSN = "data/compstudy.db"
		} else {
			cfg.DBDSN = os.Getenv("DATABASE_URL")
		}
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
