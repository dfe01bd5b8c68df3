package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)
	resp, _ := env.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sick := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil,
		WithHealthCheck(func(context.Context) error { return errors.New("redis down") }))
	resp, body := sick.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", decodeAs[ErrorResponse](t, body).Error)
}

func TestMenu(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, body := env.do(http.MethodGet, "/restaurants/1/menu", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	menu := decodeAs[MenuResponse](t, body)
	assert.Equal(t, "Trattoria", menu.Restaurant.Name)
	require.Len(t, menu.Products, 2)
	assert.Equal(t, "10.00", menu.Products[0].Price)

	resp, body = env.do(http.MethodGet, "/restaurants/9/menu", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "restaurant_not_found", decodeAs[ErrorResponse](t, body).Error)
}

func TestCart_AddRemoveClear(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, _ := env.do(http.MethodGet, "/cart/", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	assert.Equal(t, session.CookieName, resp.Cookies()[0].Name)

	for _, id := range []string{"10", "10", "11"} {
		resp, _ = env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: id}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	_, body := env.do(http.MethodGet, "/cart/", nil, false)
	c := decodeAs[CartResponse](t, body)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, "25.00", c.Total)
	assert.Equal(t, "reject", c.Policy)
	require.NotNil(t, c.Restaurant)
	assert.Equal(t, "1", c.Restaurant.ID)

	resp, body = env.do(http.MethodDelete, "/cart/items/10", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c = decodeAs[CartResponse](t, body)
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, "15.00", c.Total)

	resp, body = env.do(http.MethodDelete, "/cart/", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c = decodeAs[CartResponse](t, body)
	assert.True(t, c.Empty)
	assert.Nil(t, c.Restaurant)
}

func TestCart_EmptiedByRemoveAcceptsOtherRestaurant(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, _ := env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: "10"}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(http.MethodDelete, "/cart/items/10", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "2", ProductID: "20"}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	c := decodeAs[CartResponse](t, body)
	require.NotNil(t, c.Restaurant)
	assert.Equal(t, "2", c.Restaurant.ID)
	assert.Equal(t, 1, c.Count)
}

func TestCart_AddErrors(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, body := env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: "99"}, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "product_not_found", decodeAs[ErrorResponse](t, body).Error)

	resp, _ = env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1"}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(http.MethodPost, "/cart/items", map[string]string{"restaurant_id": "1", "product_id": "10", "price": "0.01"}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "client-supplied prices are refused")

	resp, _ = env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: "10"}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "2", ProductID: "20"}, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "foreign_restaurant", decodeAs[ErrorResponse](t, body).Error)

	_, body = env.do(http.MethodGet, "/cart/", nil, false)
	assert.Equal(t, 1, decodeAs[CartResponse](t, body).Count)
}

func TestCheckout_RequiresToken(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, body := env.do(http.MethodPost, "/checkout/open", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decodeAs[ErrorResponse](t, body).Error)

	resp, _ = env.do(http.MethodPost, "/checkout/submit", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckout_StateErrors(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, body := env.do(http.MethodPost, "/checkout/next", nil, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_state", decodeAs[ErrorResponse](t, body).Error)

	resp, _ = env.do(http.MethodPost, "/checkout/open", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(http.MethodPost, "/checkout/next", nil, false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "empty cart")
	assert.Equal(t, "validation_error", decodeAs[ErrorResponse](t, body).Error)

	resp, _ = env.do(http.MethodPost, "/checkout/back", nil, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(http.MethodPatch, "/checkout/draft", map[string]string{"payment_method": "cash"}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "validation_error", decodeAs[ErrorResponse](t, body).Error)

	resp, body = env.do(http.MethodDelete, "/checkout/", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeAs[CheckoutResponse](t, body).Open)
}

func TestPatchDraft_AppliesFields(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)
	env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: "10"}, false)
	env.do(http.MethodPost, "/checkout/open", nil, true)

	patch := map[string]any{
		"remarks":        "ring twice",
		"new_address":    map[string]string{"city": "Gdynia", "street": "Świętojańska", "number": "3"},
		"payment_method": "card",
		"card_number":    "4111111111111111",
		"card_expiry":    "1228",
		"card_cvc":       "12345",
		"document_type":  "invoice",
		"nip":            "5260250274",
	}
	resp, body := env.do(http.MethodPatch, "/checkout/draft", patch, false)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	d := decodeAs[CheckoutResponse](t, body).Draft
	require.NotNil(t, d)
	assert.Equal(t, "ring twice", d.Remarks)
	assert.Equal(t, "new", d.AddressID)
	assert.Equal(t, "Gdynia", d.NewAddress.City)
	assert.Equal(t, "card", d.PaymentMethod)
	assert.Equal(t, "4111 1111 1111 1111", d.CardNumber)
	assert.Equal(t, "12/28", d.CardExpiry)
	assert.Equal(t, "123", d.CardCVC)
	assert.Equal(t, "invoice", d.DocumentType)
	assert.Equal(t, "5260250274", d.TaxID)
	assert.NotEmpty(t, d.IdempotencyKey)
}

func TestPatchDraft_RejectsBadDeliveryType(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)
	env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: "10"}, false)
	env.do(http.MethodPost, "/checkout/open", nil, true)

	for _, patch := range []map[string]any{
		{"delivery_type": "SCHEDULED"},
		{"delivery_type": "tomorrow", "scheduled_time": "18:30"},
	} {
		resp, body := env.do(http.MethodPatch, "/checkout/draft", patch, false)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))
		assert.Equal(t, "validation_error", decodeAs[ErrorResponse](t, body).Error)
	}

	_, body := env.do(http.MethodGet, "/checkout/", nil, false)
	d := decodeAs[CheckoutResponse](t, body).Draft
	require.NotNil(t, d)
	assert.Equal(t, "ASAP", d.DeliveryType)
}

func openAtConfirm(t *testing.T, env *testEnv) {
	t.Helper()
	resp, _ := env.do(http.MethodPost, "/cart/items", AddItemRequest{RestaurantID: "1", ProductID: "10"}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(http.MethodPost, "/checkout/open", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(http.MethodPatch, "/checkout/draft", map[string]any{
		"new_address": map[string]string{"city": "Gdańsk", "street": "Ogarna", "number": "5"},
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for range 2 {
		resp, _ = env.do(http.MethodPost, "/checkout/next", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestSubmit_GatewayFailureKeepsDraft(t *testing.T) {
	gw := &fakeGateway{place: func(context.Context, entity.Submission) (*entity.Order, error) {
		return nil, errBackendDown
	}}
	env := newTestEnv(t, newFakeMenu(), gw, nil)
	openAtConfirm(t, env)

	resp, body := env.do(http.MethodPost, "/checkout/submit", nil, true)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "order_service_error", decodeAs[ErrorResponse](t, body).Error)

	_, body = env.do(http.MethodGet, "/checkout/", nil, false)
	view := decodeAs[CheckoutResponse](t, body)
	assert.True(t, view.Open)
	assert.Equal(t, 3, view.Step)
	require.NotNil(t, view.LastError)
	assert.Equal(t, "order_service_error", view.LastError.Error)
	assert.Equal(t, 1, view.Count)
	assert.Nil(t, view.Document)
}

func TestSubmit_SecondSubmitWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{}
	gw.place = func(_ context.Context, sub entity.Submission) (*entity.Order, error) {
		close(entered)
		<-release
		return &entity.Order{ID: "7", Status: "confirmed", TotalAmount: sub.TotalAmount}, nil
	}
	env := newTestEnv(t, newFakeMenu(), gw, nil)
	openAtConfirm(t, env)

	first := make(chan int, 1)
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/checkout/submit", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	go func() {
		resp, err := env.client.Do(req)
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first submit never reached the gateway")
	}

	resp, body := env.do(http.MethodPost, "/checkout/submit", nil, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "submit_in_flight", decodeAs[ErrorResponse](t, body).Error)

	_, body = env.do(http.MethodGet, "/checkout/", nil, false)
	assert.True(t, decodeAs[CheckoutResponse](t, body).Submitting)

	close(release)
	assert.Equal(t, http.StatusCreated, <-first)
	assert.Equal(t, 1, gw.Placed())
}

func TestDocument_PrintAndClose(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil, WithSellerTaxID("111-222-33-44"))

	resp, body := env.do(http.MethodGet, "/checkout/document", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no_document", decodeAs[ErrorResponse](t, body).Error)

	openAtConfirm(t, env)
	resp, body = env.do(http.MethodPost, "/checkout/submit", nil, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	view := decodeAs[CheckoutResponse](t, body)
	require.NotNil(t, view.Document)
	assert.Equal(t, "101", view.Document.ID)
	assert.Equal(t, "10.00", view.Document.Total)

	resp, body = env.do(http.MethodGet, "/checkout/document", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "#101")
	assert.Contains(t, string(body), "111-222-33-44")

	resp, body = env.do(http.MethodGet, "/checkout/document/print?surface=popup", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "#101")

	resp, body = env.do(http.MethodGet, "/checkout/document/print", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "#101")

	form := url.Values{"close": {"1"}}
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/checkout/document/close", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	redirect, err := env.client.Do(req)
	require.NoError(t, err)
	redirect.Body.Close()
	assert.Equal(t, http.StatusSeeOther, redirect.StatusCode)
	assert.Equal(t, "/", redirect.Header.Get("Location"))

	_, body = env.do(http.MethodGet, "/cart/", nil, false)
	assert.True(t, decodeAs[CartResponse](t, body).Empty)

	resp, _ = env.do(http.MethodPost, "/checkout/document/close", nil, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTracker(t *testing.T) {
	gw := &fakeGateway{active: &entity.Order{ID: "5", Status: "preparing", RestaurantName: "Trattoria",
		Items: []entity.OrderItem{{Name: "Margherita", Quantity: 1}}}}
	env := newTestEnv(t, newFakeMenu(), gw, nil)

	_, body := env.do(http.MethodGet, "/tracker?path=/", nil, false)
	assert.False(t, decodeAs[ws.TrackerMessage](t, body).Visible, "no token, no tracker")

	_, body = env.do(http.MethodGet, "/tracker?path=/", nil, true)
	msg := decodeAs[ws.TrackerMessage](t, body)
	require.True(t, msg.Visible)
	assert.Equal(t, "preparing", msg.Tracker.Status)
	assert.Equal(t, 1, msg.Tracker.Index)
	assert.Equal(t, "Margherita", msg.Tracker.ItemsSummary)

	_, body = env.do(http.MethodGet, "/tracker?path=/dashboard/orders", nil, true)
	assert.False(t, decodeAs[ws.TrackerMessage](t, body).Visible)

	resp, body := env.do(http.MethodPatch, "/orders/5/status", StatusUpdateRequest{NewStatus: "completed"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decodeAs[OrderResponse](t, body).Status)

	_, body = env.do(http.MethodGet, "/tracker?path=/", nil, true)
	assert.False(t, decodeAs[ws.TrackerMessage](t, body).Visible, "completed orders leave the tracker")
}

func TestUpdateOrderStatus_Errors(t *testing.T) {
	env := newTestEnv(t, newFakeMenu(), &fakeGateway{}, nil)

	resp, _ := env.do(http.MethodPatch, "/orders/5/status", StatusUpdateRequest{NewStatus: "delivered"}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(http.MethodPatch, "/orders/5/status", StatusUpdateRequest{NewStatus: "  "}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(http.MethodPatch, "/orders/5/status", StatusUpdateRequest{NewStatus: "delivered"}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "backend_error", decodeAs[ErrorResponse](t, body).Error)
}
