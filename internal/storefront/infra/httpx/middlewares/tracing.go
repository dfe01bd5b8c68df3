package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/food-storefront/internal/pkg/requestmeta"
)

// AttachTracingMetadata stores the chi request id and the caller's
// idempotency key in the context so the backend client forwards them.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(requestmeta.HeaderXIdempotencyKey)

		ctx := requestmeta.WithRequestID(r.Context(), requestID)
		if idempotencyKey != "" {
			ctx = requestmeta.WithIdempotencyKey(ctx, idempotencyKey)
		}
		w.Header().Set(requestmeta.HeaderXRequestId, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
