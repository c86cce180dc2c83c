package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event types pushed to admin clients.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
	EventImageCreated = "image.created"
	EventImageDeleted = "image.deleted"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent marshals payload into an Event.
func NewEvent(eventType string, payload interface{}) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: b}, nil
}

// Hub maintains the set of connected admin clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}

	log *zap.Logger

	// Mutex for thread-safe client access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled,
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.log.Error("marshal ws event", zap.String("type", event.Type), zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
					h.log.Warn("dropping slow ws client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every connected admin client. It never blocks;
// when the queue is full the event is dropped.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("ws broadcast queue full, dropping event", zap.String("type", event.Type))
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected admin clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
