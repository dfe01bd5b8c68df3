package devbackend

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Store holds the whole dataset in memory.
type Store struct {
	mu          sync.RWMutex
	users       map[int]User
	addresses   []Address
	restaurants []Restaurant
	products    []Product
	orders      map[int]*Order
	byKey       map[string]int
	nextOrderID int
	nextItemID  int
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int]User),
		orders:      make(map[int]*Order),
		byKey:       make(map[string]int),
		nextOrderID: 100,
		nextItemID:  1,
		now:         time.Now,
	}
}

// Seed returns a store with a demo client, an owner, two restaurants and a
// small menu.
func Seed() *Store {
	s := NewStore()
	s.users[1] = User{ID: 1, Email: "client@storefront.local", Role: RoleClient, City: "Gdańsk", Street: "Ogarna 5"}
	s.users[2] = User{ID: 2, Email: "owner@storefront.local", Role: RoleOwner}
	s.addresses = []Address{
		{ID: 1, UserID: 1, Name: "Work", City: "Sopot", Street: "Bohaterów Monte Cassino", Number: "12"},
	}
	s.restaurants = []Restaurant{
		{ID: 1, OwnerID: 2, Name: "Trattoria Napoli", City: "Gdańsk", Street: "Długa", Number: "1"},
		{ID: 2, Name: "Sushi Bar", City: "Sopot", Street: "Grunwaldzka", Number: "40"},
	}
	s.products = []Product{
		{ID: 10, RestaurantID: 1, Name: "Margherita", Category: "Pizza", Price: 10},
		{ID: 11, RestaurantID: 1, Name: "Cola", Category: "Drinks", Price: 5},
		{ID: 12, RestaurantID: 1, Name: "Tiramisu", Category: "Desserts", Price: 14.5},
		{ID: 20, RestaurantID: 2, Name: "Salmon nigiri", Category: "Sushi", Price: 18},
	}
	return s
}

func (s *Store) User(id int) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}

func (s *Store) Addresses(userID int) []Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Address, 0)
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Restaurants() []Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.restaurants)
}

func (s *Store) Restaurant(id int) (Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restaurantLocked(id)
}

func (s *Store) restaurantLocked(id int) (Restaurant, error) {
	for _, r := range s.restaurants {
		if r.ID == id {
			return r, nil
		}
	}
	return Restaurant{}, fmt.Errorf("restaurant %d: %w", id, ErrNotFound)
}

func (s *Store) Products(restaurantID int) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0)
	for _, p := range s.products {
		if p.RestaurantID == restaurantID {
			out = append(out, p)
		}
	}
	return out
}

// CreateOrder stores a confirmed order. A repeated idempotency key returns
// the order created the first time.
func (s *Store) CreateOrder(o Order) (Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.IdempotencyKey != "" {
		if id, ok := s.byKey[o.IdempotencyKey]; ok {
			return cloneOrder(s.orders[id]), true, nil
		}
	}

	if _, err := s.restaurantLocked(o.RestaurantID); err != nil {
		return Order{}, false, err
	}
	for i, it := range o.Items {
		idx := slices.IndexFunc(s.products, func(p Product) bool { return p.ID == it.ProductID })
		if idx < 0 {
			return Order{}, false, fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
		}
		o.Items[i].ID = s.nextItemID
		o.Items[i].Name = s.products[idx].Name
		s.nextItemID++
	}

	s.nextOrderID++
	o.ID = s.nextOrderID
	o.Status = StatusConfirmed
	o.CreatedAt = s.now().UTC()

	stored := cloneOrder(&o)
	s.orders[o.ID] = &stored
	if o.IdempotencyKey != "" {
		s.byKey[o.IdempotencyKey] = o.ID
	}
	return cloneOrder(&stored), false, nil
}

// ActiveOrder returns the newest active order of the user.
func (s *Store) ActiveOrder(userID int) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Order
	for _, o := range s.orders {
		if o.UserID != userID || !o.Status.Active() {
			continue
		}
		if best == nil || o.CreatedAt.After(best.CreatedAt) || (o.CreatedAt.Equal(best.CreatedAt) && o.ID > best.ID) {
			best = o
		}
	}
	if best == nil {
		return Order{}, false
	}
	return cloneOrder(best), true
}

// UpdateStatus applies the API's permission rules: an owner may change
// orders of their restaurant; a client may only confirm receipt of their
// own order.
func (s *Store) UpdateStatus(user User, orderID int, status OrderStatus) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}

	switch user.Role {
	case RoleOwner:
		r, err := s.restaurantLocked(o.RestaurantID)
		if err != nil || r.OwnerID != user.ID {
			return Order{}, fmt.Errorf("order %d belongs to another restaurant: %w", orderID, ErrForbidden)
		}
	case RoleClient:
		if o.UserID != user.ID {
			return Order{}, fmt.Errorf("order %d belongs to another user: %w", orderID, ErrForbidden)
		}
		if status != StatusDelivered && status != StatusCompleted {
			return Order{}, fmt.Errorf("a client can only confirm receipt: %w", ErrForbidden)
		}
	default:
		return Order{}, ErrForbidden
	}

	o.Status = status
	return cloneOrder(o), nil
}

// Order returns a copy of an order.
func (s *Store) Order(id int) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return cloneOrder(o), nil
}

func cloneOrder(o *Order) Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return c
}
