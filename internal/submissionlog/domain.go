// Package submissionlog defines the audit trail of checkout submissions.
//
// Every submit writes at least one row: STARTED right before the order
// gateway is called, then PLACED or FAILED once it returns. A submit stopped
// by validation writes a single REJECTED row. Rows are never updated.
//
// The log serves two purposes:
//
//  1. Observability: each row carries the trace_id of the request that wrote
//     it, so a row can be joined with the distributed trace.
//
//  2. Support: given an idempotency key a customer reports, the latest row
//     tells whether the backend accepted the order and under which id.
package submissionlog

import (
	"time"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
)

type Status = ports.AttemptStatus

const (
	StatusStarted  = ports.AttemptStarted
	StatusPlaced   = ports.AttemptPlaced
	StatusFailed   = ports.AttemptFailed
	StatusRejected = ports.AttemptRejected
)

// Entry is a single row in the submission_logs table.
type Entry struct {
	// SessionID is the storefront session the submit came from.
	SessionID string

	// IdempotencyKey identifies the draft being submitted. Retries of the same
	// draft share it.
	IdempotencyKey string

	// Subject is the user the bearer token was issued for, when readable.
	Subject string

	Status Status

	// OrderID is set on PLACED rows.
	OrderID string

	// Payload is the JSON-serialised submission. Empty on REJECTED rows.
	Payload string

	// Error holds the gateway or validation error text.
	Error string

	// TraceID and SpanID come from the OpenTelemetry span active when the row
	// was written.
	TraceID string
	SpanID  string

	CreatedAt time.Time
}
