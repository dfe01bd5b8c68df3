package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/food-storefront/internal/pkg/credential"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/document"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/ws"
	"golang.org/x/sync/errgroup"
)

// Handler serves the storefront API. Each request works on the session of
// its sf_session cookie.
type Handler struct {
	sessions *session.Manager
	menu     ports.MenuSource
	gateway  ports.OrderGateway
	hub      *ws.Hub
	renderer *document.Renderer
	docOpts  []document.Option
	health   func(context.Context) error
	logger   *slog.Logger
}

type Option func(*Handler)

func WithSellerTaxID(taxID string) Option {
	return func(h *Handler) { h.docOpts = append(h.docOpts, document.WithSellerTaxID(taxID)) }
}

// WithHealthCheck adds a dependency probe to GET /healthz.
func WithHealthCheck(fn func(context.Context) error) Option {
	return func(h *Handler) { h.health = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(
	sessions *session.Manager,
	menu ports.MenuSource,
	gateway ports.OrderGateway,
	hub *ws.Hub,
	renderer *document.Renderer,
	opts ...Option,
) *Handler {
	h := &Handler{
		sessions: sessions,
		menu:     menu,
		gateway:  gateway,
		hub:      hub,
		renderer: renderer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Menu returns a restaurant and its products.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "id")

	var (
		restaurant *entity.Restaurant
		products   []entity.Product
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		restaurant, err = h.menu.Restaurant(ctx, restaurantID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = h.menu.Products(ctx, restaurantID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(r.Context(), "menu lookup failed", "restaurant_id", restaurantID, "error", err)
		writeErr(w, err)
		return
	}
	if restaurant == nil {
		writeError(w, http.StatusNotFound, "restaurant_not_found", restaurantID)
		return
	}

	resp := MenuResponse{
		Restaurant: *mapRestaurant(restaurant),
		Products:   make([]ProductResponse, len(products)),
	}
	for i, p := range products {
		resp.Products[i] = ProductResponse{ID: p.ID, Name: p.Name, Category: p.Category, Price: money(p.Price)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// bearer reads the token and remembers it on the session for background
// tracker refreshes.
func bearer(r *http.Request, s *session.Session) (string, error) {
	token, err := credential.FromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return "", err
	}
	s.SetToken(token)
	return token, nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
