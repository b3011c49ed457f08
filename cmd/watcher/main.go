package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"itandi_watch/internal/auth"
	"itandi_watch/internal/config"
	"itandi_watch/internal/notify"
	"itandi_watch/internal/runner"
	"itandi_watch/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	db, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if cfg.SpreadsheetID == "" {
		log.Error("SPREADSHEET_ID is required, the criteria sheet is the only intake")
		os.Exit(1)
	}
	sheet, err := store.NewSheets(ctx, cfg.SpreadsheetID, []byte(cfg.ServiceAccountJSON), log)
	if err != nil {
		log.Error("connect to spreadsheet", "error", err)
		os.Exit(1)
	}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		log.Error("create notifier", "error", err)
		os.Exit(1)
	}
	if notifier == nil {
		log.Warn("no notifier configured, listings will only be recorded")
	}

	r := runner.New(runner.Options{
		Config:   cfg,
		Auth:     newAuthenticator(cfg, log),
		Criteria: sheet,
		Seen:     sheet,
		Threads:  db,
		Notifier: notifier,
		Log:      log,
	})

	log.Info("starting watch run", "auth_backend", cfg.AuthBackend)
	if err := r.Run(ctx); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func newAuthenticator(cfg *config.Config, log *slog.Logger) auth.Authenticator {
	opts := auth.Options{
		Email:    cfg.ItandiEmail,
		Password: cfg.ItandiPassword,
		BaseURL:  cfg.BaseURL,
		LoginURL: cfg.LoginURL,
		Headless: cfg.Headless,
		Log:      log,
	}
	switch cfg.AuthBackend {
	case config.AuthBackendBrowser:
		return auth.NewBrowser(opts)
	case config.AuthBackendBrowserAPI:
		return auth.NewBrowserAPI(opts)
	default:
		return auth.NewHTTP(opts)
	}
}

func newNotifier(cfg *config.Config, log *slog.Logger) (notify.Notifier, error) {
	if cfg.DiscordWebhookURL != "" {
		return notify.NewDiscord(cfg.DiscordWebhookURL, log), nil
	}
	if cfg.TelegramBotToken != "" {
		return notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	}
	return nil, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
