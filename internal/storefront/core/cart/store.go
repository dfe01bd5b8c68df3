// Package cart holds the shopping cart of a single storefront session: an
// insertion-ordered list of lines bound to at most one restaurant.
//
// Count and Total are always derived from the lines on read.
package cart

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	ErrForeignRestaurant = errors.New("cart: product belongs to another restaurant")
	ErrInvalidProduct    = errors.New("cart: invalid product")
)

// Policy decides what happens when a product from a second restaurant is
// added to a cart that is already bound.
type Policy int

const (
	// PolicyRejectForeign refuses the add and leaves the cart unchanged.
	PolicyRejectForeign Policy = iota
	// PolicyBindFirst accepts the line and keeps the first restaurant bound.
	PolicyBindFirst
)

func (p Policy) String() string {
	switch p {
	case PolicyBindFirst:
		return "bind-first"
	default:
		return "reject"
	}
}

// ParsePolicy maps a config value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "reject":
		return PolicyRejectForeign, nil
	case "bind-first":
		return PolicyBindFirst, nil
	}
	return PolicyRejectForeign, fmt.Errorf("cart: unknown policy %q", s)
}

// Snapshot is an immutable copy of the cart state.
type Snapshot struct {
	Lines      []entity.CartLine  `json:"lines"`
	Restaurant *entity.Restaurant `json:"restaurant,omitempty"`
}

func (s Snapshot) Count() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

type Option func(*Store)

func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

// Store is safe for concurrent use. Listeners registered with Subscribe are
// called after every successful mutation, outside the store lock.
type Store struct {
	mu         sync.Mutex
	lines      []entity.CartLine
	restaurant *entity.Restaurant
	policy     Policy

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func(Snapshot)
}

func New(opts ...Option) *Store {
	s := &Store{listeners: make(map[int]func(Snapshot))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Policy() Policy {
	return s.policy
}

// AddItem increments the line for product or appends a new one with quantity
// 1 and the product's current price. An unbound or empty cart binds to
// restaurant.
func (s *Store) AddItem(product entity.Product, restaurant entity.Restaurant) error {
	if product.ID == "" || product.Price.IsNegative() {
		return fmt.Errorf("cart: add %q: %w", product.ID, ErrInvalidProduct)
	}

	s.mu.Lock()
	if len(s.lines) == 0 {
		s.restaurant = nil
	}
	if s.restaurant != nil && restaurant.ID != "" && s.restaurant.ID != restaurant.ID &&
		s.policy == PolicyRejectForeign {
		bound := s.restaurant.ID
		s.mu.Unlock()
		return fmt.Errorf("cart: add %q from restaurant %s (bound to %s): %w",
			product.ID, restaurant.ID, bound, ErrForeignRestaurant)
	}

	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == product.ID {
			s.lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, entity.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
		})
	}
	if s.restaurant == nil {
		r := restaurant
		s.restaurant = &r
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// RemoveItem decrements the line for productID and drops it at zero.
// Unknown ids are ignored. The restaurant stays bound until Clear or until
// the next add into the emptied cart.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	idx := -1
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[idx].Quantity--
	if s.lines[idx].Quantity <= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Clear empties the cart and unbinds the restaurant.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.restaurant = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) Lines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) Restaurant() *entity.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restaurant == nil {
		return nil
	}
	r := *s.restaurant
	return &r
}

func (s *Store) Count() int {
	return s.Snapshot().Count()
}

func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Restore replaces the cart state with snap. Lines with a non-positive
// quantity are dropped. Listeners are not notified.
func (s *Store) Restore(snap Snapshot) {
	lines := make([]entity.CartLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		if l.Quantity > 0 && l.ProductID != "" {
			lines = append(lines, l)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	s.restaurant = nil
	if snap.Restaurant != nil {
		r := *snap.Restaurant
		s.restaurant = &r
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.lmu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(Snapshot), 0, len(ids))
	// registration order
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Lines: copyLines(s.lines)}
	if s.restaurant != nil {
		r := *s.restaurant
		snap.Restaurant = &r
	}
	return snap
}

func copyLines(lines []entity.CartLine) []entity.CartLine {
	out := make([]entity.CartLine, len(lines))
	copy(out, lines)
	return out
}
