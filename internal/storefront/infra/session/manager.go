package session

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
)

const CookieName = "sf_session"

type Option func(*Manager)

func WithPolicy(p cart.Policy) Option {
	return func(m *Manager) { m.policy = p }
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns every live session. Sessions idle for longer than the TTL
// are dropped from memory by Sweep; their carts stay in the cache until the
// same TTL expires there.
type Manager struct {
	cache     cache.Cache
	newWizard WizardFactory
	policy    cart.Policy
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a manager that builds wizards with factory.
func NewManager(c cache.Cache, factory WizardFactory, opts ...Option) *Manager {
	m := &Manager{
		cache:     c,
		newWizard: factory,
		ttl:       24 * time.Hour,
		logger:    slog.Default(),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session with id, restoring its cart from the cache when it
// is not in memory. Invalid ids get a fresh session.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.touch(m.now())
		return s
	}
	m.mu.Unlock()

	// Read the cart outside the manager lock.
	var snap cart.Snapshot
	found, err := cache.GetJSON(ctx, m.cache, m.cartKey(id), &snap)
	if err != nil {
		m.logger.WarnContext(ctx, "session: failed to restore cart", "session_id", id, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s
	}
	s := m.build(id)
	if found {
		s.Cart.Restore(snap)
		m.logger.DebugContext(ctx, "session: cart restored", "session_id", id, "lines", len(snap.Lines))
	}
	m.sessions[id] = s
	return s
}

// FromRequest resolves the session of r and (re)issues its cookie.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	s := m.Get(r.Context(), id)
	if id != s.ID {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    s.ID,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

// Lookup returns a session only if it is in memory.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// IDs returns the ids of the sessions in memory, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// Sweep drops sessions idle for longer than the TTL and reports how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.unsub()
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.InfoContext(ctx, "session: swept idle sessions", "count", n)
			}
		}
	}
}

func (m *Manager) build(id string) *Session {
	store := cart.New(cart.WithPolicy(m.policy))
	p := persister{cache: m.cache, key: m.cartKey(id), ttl: m.ttl, logger: m.logger}
	s := &Session{
		ID:       id,
		Cart:     store,
		Wizard:   m.newWizard(id, store),
		lastSeen: m.now(),
	}
	s.unsub = store.Subscribe(p.save)
	return s
}

func (m *Manager) cartKey(id string) string {
	return m.cache.GenerateKey("cart", id)
}
