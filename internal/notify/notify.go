// Package notify delivers new-listing notifications to chat channels.
package notify

import (
	"context"

	"itandi_watch/internal/model"
)

// Notifier posts listings for one customer and reports operational errors.
type Notifier interface {
	// NotifyListings posts the listings, threaded under threadID when the
	// channel supports threads. Returns the thread id subsequent runs
	// should post into (the input id, or a newly created one).
	NotifyListings(ctx context.Context, customer, threadID string, listings []model.Listing) (string, error)
	// NotifyError reports a run failure to the operators' channel.
	NotifyError(ctx context.Context, message string) error
}
