// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Auth backend names accepted in AUTH_BACKEND.
const (
	AuthBackendHTTP       = "http"
	AuthBackendBrowser    = "browser"
	AuthBackendBrowserAPI = "browser-api"
)

// Config holds the application configuration.
type Config struct {
	ItandiEmail    string
	ItandiPassword string

	// Target platform endpoints. Overridable so tests can point the
	// whole flow at a local server.
	BaseURL    string
	LoginURL   string
	SearchURL  string
	StationURL string
	// DetailURL carries one %d verb for the room id.
	DetailURL string

	SpreadsheetID      string
	ServiceAccountJSON string

	DiscordWebhookURL string
	TelegramBotToken  string
	TelegramChatID    int64

	AuthBackend  string
	Headless     bool
	DatabasePath string
	LogLevel     string
	ForceNotify  bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	email := os.Getenv("ITANDI_EMAIL")
	if email == "" {
		return nil, fmt.Errorf("ITANDI_EMAIL is required")
	}
	password := os.Getenv("ITANDI_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("ITANDI_PASSWORD is required")
	}

	cfg := &Config{
		ItandiEmail:        email,
		ItandiPassword:     password,
		BaseURL:            envOrDefault("ITANDI_BASE_URL", "https://itandibb.com"),
		LoginURL:           envOrDefault("ITANDI_LOGIN_URL", "https://itandi-accounts.com/login"),
		SearchURL:          envOrDefault("ITANDI_SEARCH_URL", "https://api.itandibb.com/api/internal/v4/rent_room_buildings/search"),
		StationURL:         envOrDefault("ITANDI_STATION_URL", "https://api.itandibb.com/api/internal/v4/train_stations"),
		DetailURL:          envOrDefault("ITANDI_DETAIL_URL", "https://api.itandibb.com/api/internal/v4/rent_rooms/%d"),
		SpreadsheetID:      os.Getenv("SPREADSHEET_ID"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		DiscordWebhookURL:  os.Getenv("DISCORD_WEBHOOK_URL"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthBackend:        envOrDefault("AUTH_BACKEND", AuthBackendHTTP),
		Headless:           os.Getenv("HEADLESS") != "0",
		DatabasePath:       envOrDefault("DATABASE_PATH", "./data/watch.db"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		ForceNotify:        os.Getenv("FORCE_NOTIFY") == "1",
	}

	switch cfg.AuthBackend {
	case AuthBackendHTTP, AuthBackendBrowser, AuthBackendBrowserAPI:
	default:
		return nil, fmt.Errorf("invalid AUTH_BACKEND %q", cfg.AuthBackend)
	}

	if cfg.SpreadsheetID != "" && cfg.ServiceAccountJSON == "" {
		return nil, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is required when SPREADSHEET_ID is set")
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		var chatID int64
		if _, err := fmt.Sscanf(raw, "%d", &chatID); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
		}
		cfg.TelegramChatID = chatID
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
