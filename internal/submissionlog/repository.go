package submissionlog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("submissionlog: not found")

// Repository is the port for persisting submission log entries. The
// recorder depends on this abstraction, not on SQLite directly.
type Repository interface {
	// Save appends a new row.
	Save(ctx context.Context, entry *Entry) error

	// Latest returns the most recent row for an idempotency key, or
	// ErrNotFound.
	Latest(ctx context.Context, idempotencyKey string) (*Entry, error)
}
