package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var configEnvKeys = []string{
	"ITANDI_EMAIL", "ITANDI_PASSWORD",
	"ITANDI_BASE_URL", "ITANDI_LOGIN_URL", "ITANDI_SEARCH_URL",
	"ITANDI_STATION_URL", "ITANDI_DETAIL_URL",
	"SPREADSHEET_ID", "GOOGLE_SERVICE_ACCOUNT_JSON",
	"DISCORD_WEBHOOK_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"AUTH_BACKEND", "HEADLESS", "DATABASE_PATH", "LOG_LEVEL", "FORCE_NOTIFY",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing email",
			env:     map[string]string{"ITANDI_PASSWORD": "pw"},
			wantErr: true,
		},
		{
			name:    "missing password",
			env:     map[string]string{"ITANDI_EMAIL": "a@example.com"},
			wantErr: true,
		},
		{
			name: "credentials only, defaults applied",
			env: map[string]string{
				"ITANDI_EMAIL":    "a@example.com",
				"ITANDI_PASSWORD": "pw",
			},
			want: &Config{
				ItandiEmail:    "a@example.com",
				ItandiPassword: "pw",
				BaseURL:        "https://itandibb.com",
				LoginURL:       "https://itandi-accounts.com/login",
				SearchURL:      "https://api.itandibb.com/api/internal/v4/rent_room_buildings/search",
				StationURL:     "https://api.itandibb.com/api/internal/v4/train_stations",
				DetailURL:      "https://api.itandibb.com/api/internal/v4/rent_rooms/%d",
				AuthBackend:    AuthBackendHTTP,
				Headless:       true,
				DatabasePath:   "./data/watch.db",
				LogLevel:       "info",
			},
		},
		{
			name: "all values set",
			env: map[string]string{
				"ITANDI_EMAIL":                "a@example.com",
				"ITANDI_PASSWORD":             "pw",
				"ITANDI_BASE_URL":             "http://127.0.0.1:8080",
				"ITANDI_LOGIN_URL":            "http://127.0.0.1:8081/login",
				"ITANDI_SEARCH_URL":           "http://127.0.0.1:8080/search",
				"ITANDI_STATION_URL":          "http://127.0.0.1:8080/stations",
				"ITANDI_DETAIL_URL":           "http://127.0.0.1:8080/rooms/%d",
				"SPREADSHEET_ID":              "sheet-1",
				"GOOGLE_SERVICE_ACCOUNT_JSON": "/tmp/sa.json",
				"DISCORD_WEBHOOK_URL":         "https://discord.com/api/webhooks/1/x",
				"TELEGRAM_BOT_TOKEN":          "tok",
				"TELEGRAM_CHAT_ID":            "-100123",
				"AUTH_BACKEND":                "browser",
				"HEADLESS":                    "0",
				"DATABASE_PATH":               "/tmp/watch.db",
				"LOG_LEVEL":                   "debug",
				"FORCE_NOTIFY":                "1",
			},
			want: &Config{
				ItandiEmail:        "a@example.com",
				ItandiPassword:     "pw",
				BaseURL:            "http://127.0.0.1:8080",
				LoginURL:           "http://127.0.0.1:8081/login",
				SearchURL:          "http://127.0.0.1:8080/search",
				StationURL:         "http://127.0.0.1:8080/stations",
				DetailURL:          "http://127.0.0.1:8080/rooms/%d",
				SpreadsheetID:      "sheet-1",
				ServiceAccountJSON: "/tmp/sa.json",
				DiscordWebhookURL:  "https://discord.com/api/webhooks/1/x",
				TelegramBotToken:   "tok",
				TelegramChatID:     -100123,
				AuthBackend:        AuthBackendBrowser,
				Headless:           false,
				DatabasePath:       "/tmp/watch.db",
				LogLevel:           "debug",
				ForceNotify:        true,
			},
		},
		{
			name: "invalid auth backend",
			env: map[string]string{
				"ITANDI_EMAIL":    "a@example.com",
				"ITANDI_PASSWORD": "pw",
				"AUTH_BACKEND":    "selenium",
			},
			wantErr: true,
		},
		{
			name: "spreadsheet without service account",
			env: map[string]string{
				"ITANDI_EMAIL":    "a@example.com",
				"ITANDI_PASSWORD": "pw",
				"SPREADSHEET_ID":  "sheet-1",
			},
			wantErr: true,
		},
		{
			name: "invalid telegram chat id",
			env: map[string]string{
				"ITANDI_EMAIL":       "a@example.com",
				"ITANDI_PASSWORD":    "pw",
				"TELEGRAM_BOT_TOKEN": "tok",
				"TELEGRAM_CHAT_ID":   "abc",
			},
			wantErr: true,
		},
		{
			name: "telegram token without chat id",
			env: map[string]string{
				"ITANDI_EMAIL":       "a@example.com",
				"ITANDI_PASSWORD":    "pw",
				"TELEGRAM_BOT_TOKEN": "tok",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear relevant env vars
			for _, key := range configEnvKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMappings(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "prefecture tokyo", got: PrefectureID("東京都"), want: 13},
		{name: "prefecture hokkaido", got: PrefectureID("北海道"), want: 1},
		{name: "prefecture unknown", got: PrefectureID("江戸"), want: 0},
		{name: "layout one-room alias", got: NormalizeLayout("ワンルーム"), want: "1R"},
		{name: "layout passthrough", got: NormalizeLayout("2LDK"), want: "2LDK"},
		{name: "structure rc", got: StructureType("RC"), want: "rc"},
		{name: "structure wooden", got: StructureType("木造"), want: "wooden"},
		{name: "building mansion", got: BuildingType("マンション"), want: "mansion"},
		{name: "equipment separate bath", got: EquipmentID("バス・トイレ別"), want: 11010},
		{name: "equipment unknown", got: EquipmentID("謎の設備"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
