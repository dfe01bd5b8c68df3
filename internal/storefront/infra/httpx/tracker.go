package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/ws"
)

// Tracker returns the tracker snapshot for the page at ?path=. Without a
// token the tracker is hidden; a failed fetch falls back to the last order
// seen.
func (h *Handler) Tracker(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	path := r.URL.Query().Get("path")

	token, err := bearer(r, s)
	if err != nil {
		writeJSON(w, http.StatusOK, ws.NewTrackerMessage(nil, path))
		return
	}

	order, err := h.gateway.ActiveOrder(r.Context(), token)
	if err != nil {
		h.logger.WarnContext(r.Context(), "active order unavailable", "session_id", s.ID, "error", err)
		order = s.ActiveOrder()
	} else {
		s.SetActiveOrder(order)
	}
	writeJSON(w, http.StatusOK, ws.NewTrackerMessage(order, path))
}

// TrackerSocket streams tracker snapshots for the session.
func (h *Handler) TrackerSocket(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	if token, err := bearer(r, s); err == nil {
		if order, err := h.gateway.ActiveOrder(r.Context(), token); err == nil {
			s.SetActiveOrder(order)
		}
	}
	h.hub.Serve(w, r, s.ID, r.URL.Query().Get("path"), s.ActiveOrder())
}

// UpdateOrderStatus proxies a status change (a customer confirming
// delivery) and pushes the result to the session's trackers.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	token, err := bearer(r, s)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req StatusUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	req.NewStatus = strings.TrimSpace(req.NewStatus)
	if req.NewStatus == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "new_status is required")
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := h.gateway.UpdateStatus(r.Context(), token, orderID, req.NewStatus)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "order status update failed", "order_id", orderID, "error", err)
		writeErr(w, err)
		return
	}
	s.SetActiveOrder(order)
	h.hub.Publish(s.ID, order)

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// TrackerSource is the refresh source of the websocket hub: it re-reads the
// active order of sessions that have a token.
func (h *Handler) TrackerSource() ws.Source {
	return func(ctx context.Context, sessionID string) (*entity.Order, error) {
		s, ok := h.sessions.Lookup(sessionID)
		if !ok {
			return nil, nil
		}
		token := s.Token()
		if token == "" {
			return s.ActiveOrder(), nil
		}
		order, err := h.gateway.ActiveOrder(ctx, token)
		if err != nil {
			return nil, err
		}
		s.SetActiveOrder(order)
		return order, nil
	}
}
