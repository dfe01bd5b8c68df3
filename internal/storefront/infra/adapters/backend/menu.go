package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
)

var ErrRestaurantNotFound = errors.New("backend: restaurant not found")

// Products lists a restaurant's menu. The endpoint is public.
func (c *Client) Products(ctx context.Context, restaurantID string) ([]entity.Product, error) {
	var out []productDTO
	path := "/restaurants/" + url.PathEscape(restaurantID) + "/products"
	if _, err := c.call(ctx, http.MethodGet, path, "", nil, nil, &out); err != nil {
		return nil, err
	}
	products := make([]entity.Product, 0, len(out))
	for _, p := range out {
		prod := p.toEntity()
		if prod.RestaurantID == "" {
			prod.RestaurantID = restaurantID
		}
		products = append(products, prod)
	}
	return products, nil
}

// Restaurant looks the restaurant up in the public listing; the API has no
// single-restaurant read.
func (c *Client) Restaurant(ctx context.Context, restaurantID string) (*entity.Restaurant, error) {
	var out []restaurantDTO
	if _, err := c.call(ctx, http.MethodGet, "/restaurants/", "", nil, nil, &out); err != nil {
		return nil, err
	}
	for _, r := range out {
		if string(r.ID) == restaurantID {
			return r.toEntity(), nil
		}
	}
	return nil, fmt.Errorf("backend: restaurant %q: %w", restaurantID, ErrRestaurantNotFound)
}

var _ ports.MenuSource = (*CachedMenu)(nil)

// CachedMenu is a read-through cache in front of a MenuSource. Cache errors
// are logged and fall back to the source.
type CachedMenu struct {
	source ports.MenuSource
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedMenu(source ports.MenuSource, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedMenu {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedMenu{source: source, cache: c, ttl: ttl, logger: logger}
}

// menuEntry is the cached value for both the "menu" and "restaurant" keys.
type menuEntry struct {
	Restaurant *entity.Restaurant `json:"restaurant,omitempty"`
	Products   []entity.Product   `json:"products,omitempty"`
}

func (m *CachedMenu) Products(ctx context.Context, restaurantID string) ([]entity.Product, error) {
	key := m.cache.GenerateKey("menu", restaurantID)
	var entry menuEntry
	if ok := m.load(ctx, key, &entry); ok {
		return entry.Products, nil
	}
	products, err := m.source.Products(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	m.store(ctx, key, menuEntry{Products: products})
	return products, nil
}

func (m *CachedMenu) Restaurant(ctx context.Context, restaurantID string) (*entity.Restaurant, error) {
	key := m.cache.GenerateKey("restaurant", restaurantID)
	var entry menuEntry
	if ok := m.load(ctx, key, &entry); ok && entry.Restaurant != nil {
		return entry.Restaurant, nil
	}
	r, err := m.source.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	m.store(ctx, key, menuEntry{Restaurant: r})
	return r, nil
}

func (m *CachedMenu) load(ctx context.Context, key string, v any) bool {
	ok, err := cache.GetJSON(ctx, m.cache, key, v)
	if err != nil {
		m.logger.WarnContext(ctx, "menu cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (m *CachedMenu) store(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, m.cache, key, v, m.ttl); err != nil {
		m.logger.WarnContext(ctx, "menu cache write failed", "key", key, "error", err)
	}
}
