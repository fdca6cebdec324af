package audit

import "context"

// Store is the append-only event sink. Appends happen inside the same
// transaction as the state change they describe, so the stream never records
// an event for a write that did not commit.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
