package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"itandi_watch/internal/model"
)

const telegramTimeout = 30 * time.Second

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers batches to a single Telegram chat. Telegram
// has no webhook threads, so thread ids pass through untouched.
type TelegramNotifier struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// NewTelegram creates a Telegram notifier posting to the given chat.
// The bot API's default client has no timeout; every send gets one.
func NewTelegram(token string, chatID int64, log *slog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint,
		&http.Client{Timeout: telegramTimeout})
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &TelegramNotifier{api: api, chatID: chatID, log: log}, nil
}

// NotifyListings sends a header followed by one message per listing.
func (n *TelegramNotifier) NotifyListings(_ context.Context, customer, threadID string, listings []model.Listing) (string, error) {
	if len(listings) == 0 {
		return threadID, nil
	}

	header := tgbotapi.NewMessage(n.chatID, FormatHeader(customer, len(listings)))
	header.DisableWebPagePreview = true
	if _, err := n.api.Send(header); err != nil {
		n.log.Error("telegram header failed", "customer", customer, "error", err)
	}

	for i, l := range listings {
		msg := tgbotapi.NewMessage(n.chatID, FormatListing(l, i+1))
		if _, err := n.api.Send(msg); err != nil {
			n.log.Error("telegram message failed",
				"customer", customer, "room_id", l.RoomID, "error", err)
		}
	}
	return threadID, nil
}

// NotifyError reports a run failure to the chat.
func (n *TelegramNotifier) NotifyError(_ context.Context, message string) error {
	msg := tgbotapi.NewMessage(n.chatID, "[itandi BB 検索エラー]\n"+message)
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram error notification: %w", err)
	}
	return nil
}
