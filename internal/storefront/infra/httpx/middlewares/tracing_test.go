package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/food-storefront/internal/pkg/requestmeta"
	"github.com/stretchr/testify/assert"
)

func TestAttachTracingMetadata(t *testing.T) {
	var gotID, gotKey string
	h := middleware.RequestID(AttachTracingMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = requestmeta.RequestID(r.Context())
		gotKey = requestmeta.IdempotencyKey(r.Context())
	})))

	req := httptest.NewRequest(http.MethodPost, "/checkout/submit", nil)
	req.Header.Set(requestmeta.HeaderXIdempotencyKey, "key-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, gotID)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, gotID, rec.Header().Get(requestmeta.HeaderXRequestId))
}
