// Package sqlite provides a SQLite-backed implementation of
// submissionlog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa: submits append rows while support tooling may be reading them.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/food-storefront/internal/submissionlog"

	// Register the pure-Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var _ submissionlog.Repository = (*Repository)(nil)

// schema is the DDL executed once on startup. The table is append-only.
const schema = `
CREATE TABLE IF NOT EXISTS submission_logs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Storefront session (sf_session cookie) the submit came from.
    session_id       TEXT        NOT NULL,

    -- Idempotency key of the draft. Retries of the same draft share it.
    idempotency_key  TEXT        NOT NULL,

    -- Token subject, empty for opaque tokens.
    subject          TEXT        NOT NULL DEFAULT '',

    -- STARTED, PLACED, FAILED or REJECTED.
    status           TEXT        NOT NULL,

    -- Backend order id, set on PLACED rows.
    order_id         TEXT        NOT NULL DEFAULT '',

    -- JSON submission. NULL on REJECTED rows.
    payload          TEXT,

    error            TEXT        NOT NULL DEFAULT '',

    trace_id         TEXT        NOT NULL DEFAULT '',
    span_id          TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, SQLite idiom.
    created_at       TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_logs_key ON submission_logs(idempotency_key, created_at);
CREATE INDEX IF NOT EXISTS idx_submission_logs_trace_id ON submission_logs(trace_id);
`

// Repository is the SQLite implementation of submissionlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/submissions.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver takes connection pragmas as _pragma query parameters.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new row. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *submissionlog.Entry) error {
	const q = `
		INSERT INTO submission_logs
			(session_id, idempotency_key, subject, status, order_id, payload, error, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SessionID,
		entry.IdempotencyKey,
		entry.Subject,
		string(entry.Status),
		entry.OrderID,
		nullableString(entry.Payload),
		entry.Error,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save submission log for %q: %w", entry.IdempotencyKey, err)
	}
	return nil
}

// Latest returns the most recent row for an idempotency key.
func (r *Repository) Latest(ctx context.Context, idempotencyKey string) (*submissionlog.Entry, error) {
	const q = `
		SELECT session_id, idempotency_key, subject, status, order_id, COALESCE(payload,''),
		       error, trace_id, span_id, created_at
		FROM   submission_logs
		WHERE  idempotency_key = ?
		ORDER  BY created_at DESC, id DESC
		LIMIT  1`

	var entry submissionlog.Entry
	var status, createdAt string
	err := r.db.QueryRowContext(ctx, q, idempotencyKey).Scan(
		&entry.SessionID,
		&entry.IdempotencyKey,
		&entry.Subject,
		&status,
		&entry.OrderID,
		&entry.Payload,
		&entry.Error,
		&entry.TraceID,
		&entry.SpanID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: submission %q: %w", idempotencyKey, submissionlog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest for %q: %w", idempotencyKey, err)
	}
	entry.Status = submissionlog.Status(status)

	entry.CreatedAt, err = parseRFC3339(createdAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
