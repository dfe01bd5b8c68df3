package submissionlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jcmexdev/food-storefront/internal/pkg/credential"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
	"go.opentelemetry.io/otel/trace"
)

var _ ports.SubmissionRecorder = (*Recorder)(nil)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx. Both fields
// are empty when ctx carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// Recorder binds a Repository to one storefront session and turns wizard
// attempts into log rows.
type Recorder struct {
	repo      Repository
	sessionID string
	now       func() time.Time
}

func NewRecorder(repo Repository, sessionID string) *Recorder {
	return &Recorder{repo: repo, sessionID: sessionID, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, a ports.SubmissionAttempt) error {
	return r.repo.Save(ctx, NewEntry(ctx, r.sessionID, a, r.now()))
}

// NewEntry builds a row for attempt with the trace info taken from ctx.
func NewEntry(ctx context.Context, sessionID string, a ports.SubmissionAttempt, at time.Time) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		SessionID:      sessionID,
		IdempotencyKey: a.IdempotencyKey,
		Subject:        credential.Subject(a.Credential),
		Status:         a.Status,
		OrderID:        a.OrderID,
		Payload:        encodePayload(a.Submission),
		Error:          a.Error,
		TraceID:        ti.TraceID,
		SpanID:         ti.SpanID,
		CreatedAt:      at.UTC(),
	}
}

type payloadItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type payload struct {
	RestaurantID     string        `json:"restaurant_id"`
	TotalAmount      string        `json:"total_amount"`
	PaymentMethod    string        `json:"payment_method"`
	DeliveryAddress  string        `json:"delivery_address"`
	DeliveryTimeType string        `json:"delivery_time_type"`
	ScheduledTime    string        `json:"scheduled_time,omitempty"`
	DocumentType     string        `json:"document_type"`
	TaxID            *string       `json:"nip"`
	Remarks          string        `json:"remarks,omitempty"`
	Items            []payloadItem `json:"items"`
}

func encodePayload(sub *entity.Submission) string {
	if sub == nil {
		return ""
	}
	p := payload{
		RestaurantID:     sub.RestaurantID,
		TotalAmount:      sub.TotalAmount.StringFixed(2),
		PaymentMethod:    string(sub.PaymentMethod),
		DeliveryAddress:  sub.DeliveryAddress,
		DeliveryTimeType: string(sub.DeliveryTimeType),
		ScheduledTime:    sub.ScheduledTime,
		DocumentType:     string(sub.DocumentType),
		TaxID:            sub.TaxID,
		Remarks:          sub.Remarks,
		Items:            make([]payloadItem, 0, len(sub.Items)),
	}
	for _, it := range sub.Items {
		p.Items = append(p.Items, payloadItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
	}
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}
