package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type mockTelegramAPI struct {
	sent []tgbotapi.MessageConfig
}

func (m *mockTelegramAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifyListings(t *testing.T) {
	api := &mockTelegramAPI{}
	n := &TelegramNotifier{
		api:    api,
		chatID: -100123,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	threadID, err := n.NotifyListings(context.Background(), "山田", "t-1", sampleListings())
	if err != nil {
		t.Fatalf("NotifyListings() error: %v", err)
	}
	if threadID != "t-1" {
		t.Errorf("thread id = %q, want passthrough t-1", threadID)
	}
	if len(api.sent) != 3 {
		t.Fatalf("sent %d messages, want 3 (header + 2 listings)", len(api.sent))
	}
	if !strings.Contains(api.sent[0].Text, "山田") {
		t.Errorf("header text = %q", api.sent[0].Text)
	}
	for _, msg := range api.sent {
		if msg.ChatID != -100123 {
			t.Errorf("message sent to chat %d", msg.ChatID)
		}
	}
}

func TestTelegramNotifyError(t *testing.T) {
	api := &mockTelegramAPI{}
	n := &TelegramNotifier{
		api:    api,
		chatID: 42,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := n.NotifyError(context.Background(), "boom"); err != nil {
		t.Fatalf("NotifyError() error: %v", err)
	}
	if len(api.sent) != 1 || !strings.Contains(api.sent[0].Text, "boom") {
		t.Errorf("sent = %+v", api.sent)
	}
}
