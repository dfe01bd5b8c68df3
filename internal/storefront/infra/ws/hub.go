// Package ws pushes tracker snapshots to browsers over websockets. Clients
// are grouped by storefront session; each client projects the order for the
// page path it connected from.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 16
)

// Source fetches the current active order of a session. A nil order hides
// the tracker.
type Source func(ctx context.Context, sessionID string) (*entity.Order, error)

type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	path      string
	send      chan TrackerMessage
	closeOnce sync.Once
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger,
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades the request and registers the connection for sessionID.
// initial is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID, path string, initial *entity.Order) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.WarnContext(r.Context(), "ws: upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
		path:      path,
		send:      make(chan TrackerMessage, sendBuffer),
	}
	c.send <- NewTrackerMessage(initial, path)
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// Publish sends order, projected per client, to every client of sessionID.
// Slow clients are dropped.
func (h *Hub) Publish(sessionID string, order *entity.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[sessionID] {
		select {
		case c.send <- NewTrackerMessage(order, c.path):
		default:
			h.removeLocked(c)
		}
	}
}

// Sessions returns the ids with at least one connected client.
func (h *Hub) Sessions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Run refreshes every connected session from source each interval until
// ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration, source Source) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Refresh(ctx, source)
		}
	}
}

// Refresh fetches and publishes the order of every connected session once.
// Fetch errors keep the last pushed snapshot.
func (h *Hub) Refresh(ctx context.Context, source Source) {
	for _, id := range h.Sessions() {
		order, err := source(ctx, id)
		if err != nil {
			h.logger.WarnContext(ctx, "ws: tracker refresh failed", "session_id", id, "error", err)
			continue
		}
		h.Publish(id, order)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.sessionID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.sessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.sessionID)
	}
	c.closeOnce.Do(func() { close(c.send) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; the tracker socket is push-only.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws: connection closed", "session_id", c.sessionID, "error", err)
			}
			return
		}
	}
}
