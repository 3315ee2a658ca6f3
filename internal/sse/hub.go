package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventProductCreated EventType = "product.created"
	EventProductUpdated EventType = "product.updated"
	EventProductDeleted EventType = "product.deleted"
)

// ParseEventType returns the product event named s.
func ParseEventType(s string) (EventType, bool) {
	switch e := EventType(s); e {
	case EventProductCreated, EventProductUpdated, EventProductDeleted:
		return e, true
	}
	return "", false
}

// ProductEvent is the payload broadcast to admin SSE clients so open panels
// can refresh their product lists.
type ProductEvent struct {
	Event     EventType `json:"event"`
	ProductID int       `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Category  string    `json:"category,omitempty"`
	ActorID   int       `json:"actorId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one encoded event queued for a client. IDs increase by one per
// broadcast so a reconnecting client can tell how many events it missed.
type Message struct {
	ID    uint64
	Event EventType
	Data  []byte
}

// Client represents a connected SSE admin client.
type Client struct {
	ID     string
	Events chan Message

	kinds map[EventType]bool
}

// Wants reports whether the client subscribed to e. A client registered
// without kinds receives every event.
func (c *Client) Wants(e EventType) bool {
	return len(c.kinds) == 0 || c.kinds[e]
}

// Hub fans product events out to connected admin clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	lastID  uint64
	closed  bool
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client limited to kinds (all kinds when empty) and returns
// it for streaming. After Close the returned client's channel is already
// closed.
func (h *Hub) Register(clientID string, kinds ...EventType) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:     clientID,
		Events: make(chan Message, 64),
	}
	if len(kinds) > 0 {
		c.kinds = make(map[EventType]bool, len(kinds))
		for _, k := range kinds {
			c.kinds[k] = true
		}
	}
	if h.closed {
		close(c.Events)
		return c
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast stamps event and sends it to every client that wants its kind.
// Non-blocking: drops message if client buffer is full.
func (h *Hub) Broadcast(event *ProductEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.lastID++
	msg := Message{ID: h.lastID, Event: event.Event, Data: data}

	for _, c := range h.clients {
		if !c.Wants(event.Event) {
			continue
		}
		select {
		case c.Events <- msg:
		default:
			log.Warn().Str("client_id", c.ID).Uint64("event_id", msg.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// LastID returns the ID of the most recent broadcast, zero before the first.
func (h *Hub) LastID() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastID
}

// Close disconnects every client and stops further broadcasts. Open streams
// see their channel close and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		close(c.Events)
		delete(h.clients, id)
	}
	log.Info().Msg("SSE hub closed")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
