package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

// Hub pushes committed events to the connected parties of a package. A user
// may hold several connections at once.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan services.Event
	// done is closed when Run returns; later registrations are no-ops.
	done chan struct{}

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan services.Event, 256),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		log:        log,
	}
}

// Register adds the client. It returns false when the hub has stopped, in
// which case the connection is closed.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		c.Conn.Close()
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues an event without blocking; it is dropped when the queue is full.
func (h *Hub) Publish(_ context.Context, e services.Event) {
	select {
	case h.broadcast <- e:
	default:
		h.log.Warn("websocket queue full, event dropped", zap.String("kind", string(e.Kind)))
	}
}

// Online reports whether the user has at least one open connection.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Run owns the client registry until ctx is cancelled. It must be called
// once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]struct{})
			}
			h.clients[client.UserID][client] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("websocket client registered", zap.String("user_id", client.UserID.String()))
		case client := <-h.unregister:
			h.remove(client)
			h.log.Debug("websocket client unregistered", zap.String("user_id", client.UserID.String()))
		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

func (h *Hub) deliver(e services.Event) {
	for _, userID := range e.Recipients() {
		h.mu.RLock()
		targets := make([]*Client, 0, len(h.clients[userID]))
		for c := range h.clients[userID] {
			targets = append(targets, c)
		}
		h.mu.RUnlock()

		for _, c := range targets {
			if err := c.Conn.WriteJSON(e); err != nil {
				h.log.Warn("websocket write failed, dropping client",
					zap.String("user_id", userID.String()), zap.Error(err))
				c.Conn.Close()
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.Conn.Close()
		}
		delete(h.clients, userID)
	}
}

type lockedConn struct {
	mu sync.Mutex
	Conn
}

// Synchronized serializes writes so the hub and the connection's own reader
// loop can both reply on it.
func Synchronized(c Conn) Conn {
	return &lockedConn{Conn: c}
}

func (c *lockedConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}
