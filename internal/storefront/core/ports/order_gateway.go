package ports

import (
	"context"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

// OrderGateway is the boundary to the remote orders API. Implementations must
// not retry PlaceOrder on their own; a retry is always a new user action.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, credential string, sub entity.Submission, idempotencyKey string) (*entity.Order, error)
	// ActiveOrder returns nil, nil when the user has no order in progress.
	ActiveOrder(ctx context.Context, credential string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, credential, orderID, status string) (*entity.Order, error)
}

type ProfileSource interface {
	Me(ctx context.Context, credential string) (*entity.Profile, error)
	Addresses(ctx context.Context, credential string) ([]entity.Address, error)
}

type MenuSource interface {
	Products(ctx context.Context, restaurantID string) ([]entity.Product, error)
	Restaurant(ctx context.Context, restaurantID string) (*entity.Restaurant, error)
}
