package ports

import (
	"context"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

type AttemptStatus string

const (
	// AttemptStarted is written right before the gateway call.
	AttemptStarted AttemptStatus = "STARTED"
	// AttemptPlaced means the backend accepted the order.
	AttemptPlaced AttemptStatus = "PLACED"
	// AttemptFailed means the gateway call returned an error.
	AttemptFailed AttemptStatus = "FAILED"
	// AttemptRejected means validation stopped the submission before any call.
	AttemptRejected AttemptStatus = "REJECTED"
)

// SubmissionAttempt is one transition of a checkout submission.
type SubmissionAttempt struct {
	IdempotencyKey string
	Credential     string
	Status         AttemptStatus
	Submission     *entity.Submission
	OrderID        string
	Error          string
}

// SubmissionRecorder keeps an audit trail of submission attempts. Errors are
// reported to the caller but never change the outcome of a submission.
type SubmissionRecorder interface {
	Record(ctx context.Context, attempt SubmissionAttempt) error
}
