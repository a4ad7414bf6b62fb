package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/summary"
)

// Config holds runtime settings read from the environment
type Config struct {
	DBPath         string        // empty means the XDG default
	LogFile        string        // empty means next to the database
	LogLevel       string
	GeminiAPIKey   string
	Model          string
	SummaryTimeout time.Duration
	Filter         models.FilterType // initial task filter
}

// Defaults
const (
	DefaultModel          = summary.DefaultModel
	DefaultLogLevel       = "info"
	DefaultSummaryTimeout = summary.DefaultTimeout
)

// Load reads a .env file when present, then the environment
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() *Config {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}

	timeout := DefaultSummaryTimeout
	if v := os.Getenv("TEAMSYNC_SUMMARY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		DBPath:         os.Getenv("TEAMSYNC_DB_PATH"),
		LogFile:        os.Getenv("TEAMSYNC_LOG_FILE"),
		LogLevel:       EnvOrDefault("TEAMSYNC_LOG_LEVEL", DefaultLogLevel),
		GeminiAPIKey:   apiKey,
		Model:          EnvOrDefault("TEAMSYNC_MODEL", DefaultModel),
		SummaryTimeout: timeout,
		Filter:         models.ParseFilter(os.Getenv("TEAMSYNC_FILTER")),
	}
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
