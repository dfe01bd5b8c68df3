package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/pkg/credential"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/document"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/adapters/backend"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/ws"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.MenuSource   = (*fakeMenu)(nil)
	_ ports.OrderGateway = (*fakeGateway)(nil)
)

type fakeMenu struct {
	restaurants map[string]*entity.Restaurant
	products    map[string][]entity.Product
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{
		restaurants: map[string]*entity.Restaurant{
			"1": {ID: "1", Name: "Trattoria", Address: "Długa 1, Gdańsk"},
			"2": {ID: "2", Name: "Sushi Bar", Address: "Grunwaldzka 40, Sopot"},
		},
		products: map[string][]entity.Product{
			"1": {
				{ID: "10", RestaurantID: "1", Name: "Margherita", Category: "Pizza", Price: decimal.NewFromInt(10)},
				{ID: "11", RestaurantID: "1", Name: "Cola", Category: "Drinks", Price: decimal.NewFromInt(5)},
			},
			"2": {
				{ID: "20", RestaurantID: "2", Name: "Nigiri", Price: decimal.NewFromInt(18)},
			},
		},
	}
}

func (m *fakeMenu) Products(_ context.Context, id string) ([]entity.Product, error) {
	return m.products[id], nil
}

func (m *fakeMenu) Restaurant(_ context.Context, id string) (*entity.Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("restaurant %s: %w", id, backend.ErrRestaurantNotFound)
	}
	return r, nil
}

type fakeGateway struct {
	mu     sync.Mutex
	place  func(ctx context.Context, sub entity.Submission) (*entity.Order, error)
	active *entity.Order
	placed int
}

func (g *fakeGateway) PlaceOrder(ctx context.Context, _ string, sub entity.Submission, _ string) (*entity.Order, error) {
	g.mu.Lock()
	g.placed++
	place := g.place
	g.mu.Unlock()
	if place != nil {
		return place(ctx, sub)
	}
	order := &entity.Order{
		ID:              "101",
		Status:          "confirmed",
		RestaurantID:    sub.RestaurantID,
		RestaurantName:  "Trattoria",
		DeliveryAddress: sub.DeliveryAddress,
		TotalAmount:     sub.TotalAmount,
		PaymentMethod:   sub.PaymentMethod,
		DocumentType:    sub.DocumentType,
	}
	g.mu.Lock()
	g.active = order
	g.mu.Unlock()
	return order, nil
}

func (g *fakeGateway) ActiveOrder(context.Context, string) (*entity.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active, nil
}

func (g *fakeGateway) UpdateStatus(_ context.Context, _, orderID, status string) (*entity.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil || g.active.ID != orderID {
		return nil, &backend.APIError{Method: http.MethodPatch, Path: "/orders/" + orderID + "/status", StatusCode: http.StatusNotFound}
	}
	updated := *g.active
	updated.Status = status
	g.active = &updated
	return &updated, nil
}

func (g *fakeGateway) Placed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.placed
}

type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	token  string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, menu ports.MenuSource, gateway ports.OrderGateway, profiles ports.ProfileSource, opts ...Option) *testEnv {
	t.Helper()
	logger := discardLogger()
	factory := func(_ string, store *cart.Store) *checkout.Wizard {
		wopts := []checkout.Option{checkout.WithLogger(logger)}
		if profiles != nil {
			wopts = append(wopts, checkout.WithProfileSource(profiles))
		}
		return checkout.NewWizard(store, gateway, wopts...)
	}
	sessions := session.NewManager(cache.NewMemoryCache("test"), factory, session.WithLogger(logger))
	renderer, err := document.NewRenderer()
	require.NoError(t, err)

	opts = append([]Option{WithLogger(logger)}, opts...)
	h := NewHandler(sessions, menu, gateway, ws.NewHub(logger), renderer, opts...)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		token: "test-token",
	}
}

// do sends a JSON request with the session cookie. auth adds the bearer
// token.
func (e *testEnv) do(method, path string, body any, auth bool) (*http.Response, []byte) {
	e.t.Helper()
	var rdr io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", credential.Header(e.token))
	}
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp, out
}

func decodeAs[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

var errBackendDown = errors.New("connection refused")
