package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"itandi_watch/internal/model"
)

const (
	discordTimeout = 15 * time.Second
	// pause between consecutive webhook posts; Discord's webhook budget
	// is roughly 30 requests per minute
	messagePacing = time.Second
	// fallback wait when a 429 response carries no retry_after
	defaultRetryAfter = 5 * time.Second
)

// DiscordNotifier posts through a single webhook. When the webhook
// targets a Forum channel each customer batch opens (or reuses) a
// thread; on a regular channel messages land inline.
type DiscordNotifier struct {
	webhookURL string
	client     *resty.Client
	log        *slog.Logger
	sleep      func(time.Duration)
}

// NewDiscord creates a Discord webhook notifier.
func NewDiscord(webhookURL string, log *slog.Logger) *DiscordNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(discordTimeout),
		log:        log,
		sleep:      time.Sleep,
	}
}

// webhookMessage is the subset of Discord's execute-webhook response we
// read back when posting with ?wait=true.
type webhookMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

type rateLimit struct {
	RetryAfter float64 `json:"retry_after"`
}

// NotifyListings posts a header message followed by one message per
// listing. Individual message failures are logged and skipped so one bad
// listing cannot silence the rest of the batch.
func (n *DiscordNotifier) NotifyListings(ctx context.Context, customer, threadID string, listings []model.Listing) (string, error) {
	if len(listings) == 0 {
		return threadID, nil
	}

	if threadID == "" {
		id, err := n.sendHeader(ctx, customer, len(listings))
		if err != nil {
			n.log.Error("discord header failed", "customer", customer, "error", err)
		}
		threadID = id
	}

	for i, l := range listings {
		if i > 0 {
			n.sleep(messagePacing)
		}
		if err := n.sendWithRetry(ctx, threadID, FormatListing(l, i+1)); err != nil {
			n.log.Error("discord message failed",
				"customer", customer, "room_id", l.RoomID, "error", err)
		}
	}
	return threadID, nil
}

// sendHeader opens the batch. ?wait=true makes Discord return the
// created message, whose channel_id is the thread id on a Forum channel.
// A 400 usually means the webhook targets a regular channel where
// thread_name is rejected, so it is retried bare.
func (n *DiscordNotifier) sendHeader(ctx context.Context, customer string, count int) (string, error) {
	payload := map[string]any{
		"content":     FormatHeader(customer, count),
		"thread_name": fmt.Sprintf("🏠 %s 様", customer),
	}

	res, err := n.post(ctx, n.webhookURL+"?wait=true", payload)
	if err != nil {
		return "", err
	}
	if res.StatusCode() == 400 {
		// regular channel: repost bare and stay unthreaded
		delete(payload, "thread_name")
		if res, err = n.post(ctx, n.webhookURL+"?wait=true", payload); err != nil {
			return "", err
		}
		if res.StatusCode() == 200 {
			return "", nil
		}
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("discord header status %d: %s", res.StatusCode(), truncate(res.String(), 200))
	}

	var msg webhookMessage
	if err := json.Unmarshal(res.Body(), &msg); err != nil {
		return "", fmt.Errorf("decode webhook response: %w", err)
	}
	return msg.ChannelID, nil
}

// sendWithRetry posts one message, retrying exactly once after a rate
// limit. A second 429 drops the message; the run must not stall on one
// webhook's budget.
func (n *DiscordNotifier) sendWithRetry(ctx context.Context, threadID, content string) error {
	url := n.webhookURL
	if threadID != "" {
		url += "?thread_id=" + threadID
	}
	payload := map[string]any{"content": content}

	res, err := n.post(ctx, url, payload)
	if err != nil {
		return err
	}
	if res.StatusCode() == 429 {
		wait := defaultRetryAfter
		var rl rateLimit
		if json.Unmarshal(res.Body(), &rl) == nil && rl.RetryAfter > 0 {
			wait = time.Duration(rl.RetryAfter * float64(time.Second))
		}
		n.log.Warn("discord rate limited", "retry_after", wait)
		n.sleep(wait)
		if res, err = n.post(ctx, url, payload); err != nil {
			return err
		}
	}
	if res.StatusCode() != 200 && res.StatusCode() != 204 {
		return fmt.Errorf("discord status %d: %s", res.StatusCode(), truncate(res.String(), 200))
	}
	return nil
}

// NotifyError posts an operational error. The thread_name retry covers
// Forum-channel webhooks, which reject bare messages with a 400.
func (n *DiscordNotifier) NotifyError(ctx context.Context, message string) error {
	payload := map[string]any{
		"content": "**[itandi BB 検索エラー]**\n" + message,
	}

	res, err := n.post(ctx, n.webhookURL, payload)
	if err != nil {
		return err
	}
	if res.StatusCode() == 400 {
		payload["thread_name"] = "⚠️ エラー通知"
		if res, err = n.post(ctx, n.webhookURL, payload); err != nil {
			return err
		}
	}
	if res.StatusCode() != 200 && res.StatusCode() != 204 {
		return fmt.Errorf("discord error notification status %d: %s",
			res.StatusCode(), truncate(res.String(), 200))
	}
	return nil
}

func (n *DiscordNotifier) post(ctx context.Context, url string, payload map[string]any) (*resty.Response, error) {
	res, err := n.client.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("discord post: %w", err)
	}
	return res, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
