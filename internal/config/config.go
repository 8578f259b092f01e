package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken string
	GGDealsAPIKey string
	AlertChatID   int64
	CheckInterval time.Duration
	Region        string
	DataFile      string
	LogLevel      string
	Port          string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Region:   getEnvOrDefault("GG_DEALS_REGION", "us"),
		DataFile: getEnvOrDefault("DATA_FILE", "data/watchlist.json"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Port:     getEnvOrDefault("PORT", "8080"),
	}

	// Required environment variables
	if cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN"); cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	if cfg.GGDealsAPIKey = os.Getenv("GG_DEALS_API_KEY"); cfg.GGDealsAPIKey == "" {
		return nil, fmt.Errorf("GG_DEALS_API_KEY environment variable is required")
	}

	chatID := os.Getenv("ALERT_CHAT_ID")
	if chatID == "" {
		return nil, fmt.Errorf("ALERT_CHAT_ID environment variable is required")
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ALERT_CHAT_ID must be a numeric chat id: %w", err)
	}
	cfg.AlertChatID = id

	// Check interval is configured in minutes
	minutes, err := strconv.Atoi(getEnvOrDefault("CHECK_INTERVAL", "60"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL must be a positive number of minutes, got %q", os.Getenv("CHECK_INTERVAL"))
	}
	cfg.CheckInterval = time.Duration(minutes) * time.Minute

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
