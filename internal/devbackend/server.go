package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jcmexdev/food-storefront/internal/pkg/credential"
	"github.com/jcmexdev/food-storefront/internal/pkg/requestmeta"
)

type ctxKey struct{}

type Server struct {
	store    *Store
	secret   string
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewServer(store *Store, secret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, secret: secret, tokenTTL: 24 * time.Hour, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/token", s.issueToken)
	r.Get("/restaurants/", s.listRestaurants)
	r.Get("/restaurants/{id}/products", s.listProducts)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/users/me", s.me)
		r.Get("/users/addresses", s.addresses)
		r.Post("/orders/", s.createOrder)
		r.Get("/orders/active", s.activeOrder)
		r.Patch("/orders/{id}/status", s.updateStatus)
	})
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := credential.FromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := credential.Verify(token, s.secret)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		id, err := strconv.Atoi(claims.Subject)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		user, err := s.store.User(id)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func currentUser(r *http.Request) User {
	u, _ := r.Context().Value(ctxKey{}).(User)
	return u
}

type tokenRequest struct {
	UserID int `json:"user_id"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// issueToken hands out a token for a seeded user. There is no password
// check.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	user, err := s.store.User(req.UserID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	token, err := credential.Issue(strconv.Itoa(user.ID), string(user.Role), s.secret, s.tokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	list := s.store.Restaurants()
	out := make([]restaurantJSON, 0, len(list))
	for _, rest := range list {
		out = append(out, toRestaurantJSON(rest))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid restaurant id")
		return
	}
	list := s.store.Products(id)
	out := make([]productJSON, 0, len(list))
	for _, p := range list {
		out = append(out, productJSON{ID: p.ID, RestaurantID: p.RestaurantID, Name: p.Name, Price: p.Price, Category: p.Category})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	out := userJSON{ID: u.ID, Email: u.Email, Role: string(u.Role)}
	if u.City != "" {
		out.City = &u.City
	}
	if u.Street != "" {
		out.Street = &u.Street
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addresses(w http.ResponseWriter, r *http.Request) {
	list := s.store.Addresses(currentUser(r).ID)
	out := make([]addressJSON, 0, len(list))
	for _, a := range list {
		out = append(out, addressJSON{ID: a.ID, Name: a.Name, City: a.City, Street: a.Street, Number: a.Number})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderCreateJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "Order must contain at least one item")
		return
	}

	order := Order{
		UserID:           currentUser(r).ID,
		RestaurantID:     req.RestaurantID,
		TotalAmount:      req.TotalAmount,
		DeliveryAddress:  req.DeliveryAddress,
		DeliveryTimeType: req.DeliveryTimeType,
		ScheduledTime:    req.ScheduledTime,
		PaymentMethod:    req.PaymentMethod,
		DocumentType:     req.DocumentType,
		NIP:              req.NIP,
		Remarks:          req.Remarks,
		IdempotencyKey:   r.Header.Get(requestmeta.HeaderXIdempotencyKey),
		RequestID:        r.Header.Get(requestmeta.HeaderXRequestId),
	}
	if order.RequestID == "" {
		order.RequestID = uuid.NewString()
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}

	created, replayed, err := s.store.CreateOrder(order)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "order created",
		"order_id", created.ID,
		"user_id", created.UserID,
		"request_id", created.RequestID,
		"idempotency_key", created.IdempotencyKey,
		"replayed", replayed,
	)
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, s.orderJSON(created))
}

func (s *Server) activeOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.store.ActiveOrder(currentUser(r).ID)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.orderJSON(order))
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid order id")
		return
	}
	var req statusUpdateJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewStatus == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "new_status is required")
		return
	}
	order, err := s.store.UpdateStatus(currentUser(r), id, OrderStatus(req.NewStatus))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.orderJSON(order))
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		writeDetail(w, http.StatusForbidden, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "store failure", "error", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
