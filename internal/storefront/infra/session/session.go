// Package session keeps the per-browser state of the storefront: one cart,
// one checkout wizard and the last known active order per sf_session cookie.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

const persistTimeout = 2 * time.Second

// Session is the state of one browser. Lock serializes request handling for
// the session; Cart and Wizard are also safe on their own.
type Session struct {
	ID     string
	Cart   *cart.Store
	Wizard *checkout.Wizard

	mu sync.Mutex

	stateMu  sync.Mutex
	token    string
	active   *entity.Order
	lastSeen time.Time
	unsub    func()
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Token returns the last bearer token seen for this session.
func (s *Session) Token() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.stateMu.Lock()
	s.token = token
	s.stateMu.Unlock()
}

// ActiveOrder returns the last order fetched for the tracker, or nil.
func (s *Session) ActiveOrder() *entity.Order {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.active
}

func (s *Session) SetActiveOrder(o *entity.Order) {
	s.stateMu.Lock()
	s.active = o
	s.stateMu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.stateMu.Lock()
	s.lastSeen = now
	s.stateMu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.lastSeen
}

// WizardFactory builds the checkout wizard of a new session.
type WizardFactory func(sessionID string, store *cart.Store) *checkout.Wizard

// persister writes cart snapshots to the cache on every cart mutation.
type persister struct {
	cache  cache.Cache
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func (p persister) save(snap cart.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if len(snap.Lines) == 0 && snap.Restaurant == nil {
		err = p.cache.Delete(ctx, p.key)
	} else {
		err = cache.SetJSON(ctx, p.cache, p.key, snap, p.ttl)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "session: failed to persist cart", "key", p.key, "error", err)
	}
}
