package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, mapCart(s.Cart.Snapshot(), s.Cart.Policy()))
}

// AddItem adds one unit of a menu product. Name and price come from the
// menu, never from the request.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)

	var req AddItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.RestaurantID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "restaurant_id and product_id are required")
		return
	}

	products, err := h.menu.Products(r.Context(), req.RestaurantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	idx := -1
	for i, p := range products {
		if p.ID == req.ProductID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "product_not_found", req.ProductID)
		return
	}
	restaurant, err := h.menu.Restaurant(r.Context(), req.RestaurantID)
	if err != nil {
		writeErr(w, err)
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.Cart.AddItem(products[idx], *restaurant); err != nil {
		h.logger.InfoContext(r.Context(), "cart add rejected",
			slog.String("session_id", s.ID), slog.String("product_id", req.ProductID), slog.Any("error", err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(s.Cart.Snapshot(), s.Cart.Policy()))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	s.Lock()
	defer s.Unlock()
	s.Cart.RemoveItem(chi.URLParam(r, "productID"))
	writeJSON(w, http.StatusOK, mapCart(s.Cart.Snapshot(), s.Cart.Policy()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	s.Lock()
	defer s.Unlock()
	s.Cart.Clear()
	writeJSON(w, http.StatusOK, mapCart(s.Cart.Snapshot(), s.Cart.Policy()))
}
