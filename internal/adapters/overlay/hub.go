// Package overlay pushes live strategy state to stream-overlay clients over
// WebSocket. The hub fans one State document per tick out to every client;
// slow clients are dropped rather than allowed to stall the broadcast.
package overlay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pitbox/pitwall/pkg/logger"
	"github.com/pitbox/pitwall/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultClientBuffer = 8
	readBufferSize      = 1024
	writeBufferSize     = 4096
)

// Hub manages overlay WebSocket clients and the latest broadcast state.
type Hub struct {
	upgrader     websocket.Upgrader
	clientBuffer int

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte

	logger logger.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub with configuration options.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// Overlays are local tooling; cross-origin browser sources are fine.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clientBuffer: defaultClientBuffer,
		clients:      make(map[*client]struct{}),
		logger:       logger.Get().Named("overlay"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Broadcast encodes the state and fans it out to all connected clients.
// Clients whose send buffer is full are disconnected.
func (h *Hub) Broadcast(ctx context.Context, st State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.latest = payload
	var dropped []*client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	if len(dropped) > 0 {
		h.logger.Warn(ctx, "dropped slow overlay clients", logger.Int("count", len(dropped)))
	}
	return nil
}

// ServeWS upgrades the request and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	// Seed the new client with the latest state so the overlay renders
	// immediately instead of waiting for the next tick.
	if h.latest != nil {
		c.send <- h.latest
	}
	h.mu.Unlock()
	metrics.UpdateOverlayClients(n)

	go h.writeLoop(c)
	go h.readLoop(c)
}

// ServeState replies with the latest state document as plain JSON.
func (h *Hub) ServeState(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	payload := h.latest
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if payload == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_, _ = w.Write(payload)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	return nil
}

func (h *Hub) writeLoop(c *client) {
	defer func() { _ = c.conn.Close() }()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readLoop drains client frames so pings are answered, and unregisters the
// client when the connection drops.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// removeLocked unregisters a client. Caller holds h.mu.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.UpdateOverlayClients(len(h.clients))
}
