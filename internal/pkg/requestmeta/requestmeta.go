// Package requestmeta carries per-request identifiers (request id,
// idempotency key) through context.Context and onto outgoing HTTP calls.
package requestmeta

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = HeaderXRequestId
	// ContextKeyIdempotencyKey is the context key for the idempotency key.
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeyIdempotencyKey, key)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(ContextKeyIdempotencyKey).(string)
	return key
}

// Propagate copies the identifiers found in ctx onto an outgoing request.
// Headers already set on req win.
func Propagate(ctx context.Context, req *http.Request) {
	if id := RequestID(ctx); id != "" && req.Header.Get(HeaderXRequestId) == "" {
		req.Header.Set(HeaderXRequestId, id)
	}
	if key := IdempotencyKey(ctx); key != "" && req.Header.Get(HeaderXIdempotencyKey) == "" {
		req.Header.Set(HeaderXIdempotencyKey, key)
	}
}
