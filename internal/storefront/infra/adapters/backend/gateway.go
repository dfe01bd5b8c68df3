package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcmexdev/food-storefront/internal/pkg/requestmeta"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
)

var (
	_ ports.OrderGateway  = (*Client)(nil)
	_ ports.ProfileSource = (*Client)(nil)
	_ ports.MenuSource    = (*Client)(nil)
)

var errEmptyOrder = errors.New("backend: empty order in response")

// PlaceOrder posts the submission once. Retries are left to the caller.
func (c *Client) PlaceOrder(ctx context.Context, token string, sub entity.Submission, idempotencyKey string) (*entity.Order, error) {
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set(requestmeta.HeaderXIdempotencyKey, idempotencyKey)
	}

	var out orderDTO
	found, err := c.call(ctx, http.MethodPost, "/orders/", token, headers, toOrderCreate(sub), &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errEmptyOrder
	}
	return out.toEntity(), nil
}

func (c *Client) ActiveOrder(ctx context.Context, token string) (*entity.Order, error) {
	var out orderDTO
	found, err := c.call(ctx, http.MethodGet, "/orders/active", token, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return out.toEntity(), nil
}

func (c *Client) UpdateStatus(ctx context.Context, token, orderID, status string) (*entity.Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("backend: update status: order id is required")
	}
	var out orderDTO
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	found, err := c.call(ctx, http.MethodPatch, path, token, nil, statusUpdateDTO{NewStatus: status}, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errEmptyOrder
	}
	return out.toEntity(), nil
}

func (c *Client) Me(ctx context.Context, token string) (*entity.Profile, error) {
	var out userDTO
	found, err := c.call(ctx, http.MethodGet, "/users/me", token, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("backend: GET /users/me: empty response")
	}
	return out.toEntity(), nil
}

func (c *Client) Addresses(ctx context.Context, token string) ([]entity.Address, error) {
	var out []addressDTO
	if _, err := c.call(ctx, http.MethodGet, "/users/addresses", token, nil, nil, &out); err != nil {
		return nil, err
	}
	addrs := make([]entity.Address, 0, len(out))
	for _, a := range out {
		addrs = append(addrs, a.toEntity())
	}
	return addrs, nil
}
