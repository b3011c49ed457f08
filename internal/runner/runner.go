// Package runner orchestrates one watch run: load criteria, log in,
// search per customer, and notify the new listings.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"itandi_watch/internal/auth"
	"itandi_watch/internal/config"
	"itandi_watch/internal/model"
	"itandi_watch/internal/notify"
	"itandi_watch/internal/search"
	"itandi_watch/internal/store"
)

// Options wires a Runner. Threads may be nil when no thread persistence
// is available; Notifier may be nil for dry runs.
type Options struct {
	Config   *config.Config
	Auth     auth.Authenticator
	Criteria store.CriteriaSource
	Seen     store.SeenStore
	Threads  store.ThreadStore
	Notifier notify.Notifier
	Log      *slog.Logger
}

// Runner executes watch runs.
type Runner struct {
	opts Options
	log  *slog.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, log: log}
}

// Run performs one complete run. Criteria and login failures are fatal;
// a single customer's failure is reported and the run moves on. The
// session is closed on every exit path.
func (r *Runner) Run(ctx context.Context) error {
	criteria, err := r.opts.Criteria.LoadCriteria(ctx)
	if err != nil {
		return fmt.Errorf("load criteria: %w", err)
	}
	if len(criteria) == 0 {
		r.log.Info("no criteria registered, nothing to do")
		return nil
	}
	r.log.Info("criteria loaded", "customers", len(criteria))

	exclude := r.loadExcludeSet(ctx)

	session, err := r.opts.Auth.Login(ctx)
	if err != nil {
		r.notifyError(ctx, fmt.Sprintf("itandi BB ログイン失敗: %v", err))
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.log.Warn("session close failed", "error", err)
		}
	}()

	searcher := search.New(search.Options{
		Session:    session,
		SearchURL:  r.opts.Config.SearchURL,
		StationURL: r.opts.Config.StationURL,
		DetailURL:  r.opts.Config.DetailURL,
		BaseURL:    r.opts.Config.BaseURL,
		Log:        r.log,
	})

	totalNew := 0
	for _, c := range criteria {
		n, err := r.processCustomer(ctx, searcher, c, exclude)
		if err != nil {
			if errors.Is(err, search.ErrSessionExpired) {
				r.notifyError(ctx, fmt.Sprintf("セッションが無効になりました (%s)", c.Name))
				return fmt.Errorf("customer %s: %w", c.Name, err)
			}
			r.log.Error("customer failed", "customer", c.Name, "error", err)
			r.notifyError(ctx, fmt.Sprintf("%s の検索中にエラー: %v", c.Name, err))
			continue
		}
		totalNew += n
	}

	r.log.Info("run complete", "new_listings", totalNew)
	return nil
}

// loadExcludeSet merges the seen and pending pools. Either pool failing
// to load degrades to notifying duplicates, which beats notifying
// nothing. FORCE_NOTIFY skips the pools entirely.
func (r *Runner) loadExcludeSet(ctx context.Context) map[model.SeenKey]struct{} {
	exclude := make(map[model.SeenKey]struct{})
	if r.opts.Config.ForceNotify {
		r.log.Info("FORCE_NOTIFY=1, dedup check skipped")
		return exclude
	}

	seen, err := r.opts.Seen.LoadSeen(ctx)
	if err != nil {
		r.log.Warn("load seen listings failed", "error", err)
	}
	for k := range seen {
		exclude[k] = struct{}{}
	}

	pending, err := r.opts.Seen.LoadPending(ctx)
	if err != nil {
		r.log.Warn("load pending listings failed", "error", err)
	}
	for k := range pending {
		exclude[k] = struct{}{}
	}
	return exclude
}

func (r *Runner) processCustomer(ctx context.Context, searcher *search.Client, c model.SearchCriteria, exclude map[model.SeenKey]struct{}) (int, error) {
	r.log.Info("searching", "customer", c.Name)

	listings, err := searcher.Search(ctx, c)
	if err != nil {
		return 0, err
	}

	fresh := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := exclude[l.Key(c.Name)]; ok {
			continue
		}
		fresh = append(fresh, l)
	}
	r.log.Info("search done", "customer", c.Name, "hits", len(listings), "new", len(fresh))
	if len(fresh) == 0 {
		return 0, nil
	}

	searcher.EnrichImages(ctx, fresh)

	if err := r.opts.Seen.AppendPending(ctx, toEntries(c.Name, fresh)); err != nil {
		r.log.Error("record pending listings failed", "customer", c.Name, "error", err)
	}

	r.notifyCustomer(ctx, c, fresh)

	// same-run dedup: two customers can match the same room, but one
	// customer must not hear about it twice
	for _, l := range fresh {
		exclude[l.Key(c.Name)] = struct{}{}
	}
	return len(fresh), nil
}

func (r *Runner) notifyCustomer(ctx context.Context, c model.SearchCriteria, fresh []model.Listing) {
	if r.opts.Notifier == nil {
		return
	}

	threadID := c.ThreadID
	if threadID == "" && r.opts.Threads != nil {
		id, err := r.opts.Threads.GetThread(ctx, c.Name)
		if err != nil {
			r.log.Warn("load thread id failed", "customer", c.Name, "error", err)
		}
		threadID = id
	}

	newThread, err := r.opts.Notifier.NotifyListings(ctx, c.Name, threadID, fresh)
	if err != nil {
		r.log.Error("notify failed", "customer", c.Name, "error", err)
		return
	}
	if newThread != "" && newThread != threadID && r.opts.Threads != nil {
		if err := r.opts.Threads.SetThread(ctx, c.Name, newThread); err != nil {
			r.log.Warn("save thread id failed", "customer", c.Name, "error", err)
		}
	}
}

func (r *Runner) notifyError(ctx context.Context, message string) {
	if r.opts.Notifier == nil {
		return
	}
	if err := r.opts.Notifier.NotifyError(ctx, message); err != nil {
		r.log.Warn("error notification failed", "error", err)
	}
}

func toEntries(customer string, listings []model.Listing) []model.SeenEntry {
	entries := make([]model.SeenEntry, 0, len(listings))
	for _, l := range listings {
		entries = append(entries, model.SeenEntry{
			Customer:     customer,
			BuildingID:   l.BuildingID,
			RoomID:       l.RoomID,
			BuildingName: l.BuildingName,
			Rent:         l.Rent,
			URL:          l.URL,
		})
	}
	return entries
}
