// Package store defines the persistence interfaces and their Google
// Sheets and SQLite implementations.
package store

import (
	"context"

	"itandi_watch/internal/model"
)

// CriteriaSource loads the customers' saved searches.
type CriteriaSource interface {
	LoadCriteria(ctx context.Context) ([]model.SearchCriteria, error)
}

// SeenStore tracks which listings have already been surfaced. Seen and
// pending are separate pools: seen listings were approved and notified,
// pending ones await operator approval. Both suppress re-notification.
type SeenStore interface {
	LoadSeen(ctx context.Context) (map[model.SeenKey]struct{}, error)
	LoadPending(ctx context.Context) (map[model.SeenKey]struct{}, error)
	AppendPending(ctx context.Context, entries []model.SeenEntry) error
}

// ThreadStore persists per-customer notification thread ids across runs.
type ThreadStore interface {
	GetThread(ctx context.Context, customer string) (string, error)
	SetThread(ctx context.Context, customer, threadID string) error
}
