package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avelior/calex/internal/window"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HubSpot API
	HubSpotToken   string
	HubSpotBaseURL string
	PageLimit      int

	// Export range and parallelism
	RangeStart time.Time
	RangeEnd   time.Time
	Workers    int
	ExportDir  string

	// Storage sink
	ExportBucket string

	// Control API
	Port           string
	AllowedOrigins []string

	// Scheduling
	Interval   time.Duration // 0 disables the scheduler
	RunOnStart bool

	LogLevel string
}

// Load loads configuration from environment variables. The HubSpot token
// and the export bucket are required; everything else has defaults.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	token := os.Getenv("HUBSPOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("HUBSPOT_TOKEN is required")
	}

	bucket := os.Getenv("EXPORT_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("EXPORT_BUCKET is required")
	}

	config := &Config{
		HubSpotToken:   token,
		HubSpotBaseURL: getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"),
		ExportBucket:   bucket,
		ExportDir:      getEnv("EXPORT_DIR", os.TempDir()),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RunOnStart:     getEnv("RUN_ON_START", "true") == "true",
	}

	var err error
	config.RangeStart, err = parseDate(getEnv("EXPORT_START_DATE", "2024-05-23"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_START_DATE: %w", err)
	}
	config.RangeEnd, err = parseDate(getEnv("EXPORT_END_DATE", "2025-05-14"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_END_DATE: %w", err)
	}

	config.Workers, err = strconv.Atoi(getEnv("EXPORT_WORKERS", "10"))
	if err != nil || config.Workers < 1 {
		return nil, fmt.Errorf("invalid EXPORT_WORKERS: %q", getEnv("EXPORT_WORKERS", "10"))
	}

	config.PageLimit, err = strconv.Atoi(getEnv("PAGE_LIMIT", "100"))
	if err != nil || config.PageLimit < 1 {
		return nil, fmt.Errorf("invalid PAGE_LIMIT: %q", getEnv("PAGE_LIMIT", "100"))
	}

	if raw := getEnv("EXPORT_INTERVAL", "0"); raw != "0" {
		config.Interval, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPORT_INTERVAL: %w", err)
		}
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, window.ExportZone)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
