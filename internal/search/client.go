package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"itandi_watch/internal/auth"
	"itandi_watch/internal/model"
)

// Search failures by API status. 401 signals the caller to treat the
// session as dead (fatal for the run, since login happens once); 422 and
// 429 are fatal for the current customer only. None is retried here —
// retry policy belongs to the run loop, and it deliberately has none
// beyond the notifier's single rate-limit retry.
var (
	ErrSessionExpired = errors.New("session invalid or expired")
	ErrBadFilter      = errors.New("search filter rejected")
	ErrRateLimited    = errors.New("rate limited by itandi BB")
)

// Options configures a search client.
type Options struct {
	Session auth.Session
	// SearchURL is the paginated search endpoint (POST JSON).
	SearchURL string
	// StationURL is the station-lookup endpoint (GET).
	StationURL string
	// DetailURL is a format string with one %d verb for the room id.
	DetailURL string
	// BaseURL builds listing display URLs.
	BaseURL string
	Log     *slog.Logger
}

// Client runs searches over an authenticated session.
type Client struct {
	opts Options
	log  *slog.Logger
	now  func() time.Time
}

// New creates a search client.
func New(opts Options) *Client {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Client{opts: opts, log: log, now: time.Now}
}

// Search returns all listings matching the criteria, following
// pagination while the response reports another bucket, capped at
// maxPages requests to bound the worst case against a runaway flag.
func (c *Client) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.Listing, error) {
	stationIDs := c.resolveStations(ctx, criteria)

	payload := BuildPayload(criteria, stationIDs, c.now())
	var all []model.Listing

	for page := 1; page <= maxPages; page++ {
		payload["page"] = map[string]any{"limit": pageLimit, "page": page}

		res, err := c.opts.Session.PostJSON(ctx, c.opts.SearchURL, payload)
		if err != nil {
			return nil, fmt.Errorf("search request (page %d): %w", page, err)
		}
		if err := statusError(res); err != nil {
			return nil, err
		}

		listings, hasNext, err := ParseResponse(res.Body, c.opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse search response (page %d): %w", page, err)
		}
		all = append(all, listings...)

		c.log.Debug("search page", "page", page, "listings", len(listings), "has_next", hasNext)
		if !hasNext {
			break
		}
	}

	return all, nil
}

func statusError(res *auth.APIResult) error {
	switch res.Status {
	case 200:
		return nil
	case 401:
		return ErrSessionExpired
	case 422:
		return fmt.Errorf("%w: %s", ErrBadFilter, truncate(string(res.Body), 200))
	case 429:
		return ErrRateLimited
	default:
		return fmt.Errorf("search api status %d: %s", res.Status, truncate(string(res.Body), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
