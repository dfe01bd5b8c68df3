package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jcmexdev/food-storefront/internal/pkg/credential"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/adapters/backend"
)

// classify maps an error to a response code and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, credential.ErrMissingToken):
		return "unauthorized", http.StatusUnauthorized
	case errors.Is(err, cart.ErrForeignRestaurant):
		return "foreign_restaurant", http.StatusConflict
	case errors.Is(err, cart.ErrInvalidProduct):
		return "invalid_product", http.StatusBadRequest
	case errors.Is(err, backend.ErrRestaurantNotFound):
		return "restaurant_not_found", http.StatusNotFound
	case errors.Is(err, checkout.ErrSubmitInFlight):
		return "submit_in_flight", http.StatusConflict
	}

	switch checkout.KindOf(err) {
	case checkout.KindValidation:
		return "validation_error", http.StatusUnprocessableEntity
	case checkout.KindState:
		return "invalid_state", http.StatusConflict
	case checkout.KindGateway:
		return "order_service_error", http.StatusBadGateway
	}

	if code := backend.StatusCode(err); code != 0 {
		if code == http.StatusUnauthorized || code == http.StatusForbidden || code == http.StatusNotFound {
			return "backend_error", code
		}
		return "backend_error", http.StatusBadGateway
	}
	return "internal_error", http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

func writeErr(w http.ResponseWriter, err error) {
	code, status := classify(err)
	writeError(w, status, code, err.Error())
}
