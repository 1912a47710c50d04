package websocket

import (
	"context"
	"sync"

	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/session"
)

const broadcastBuffer = 256

// Message is sent to websocket clients.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"-"` // Not sent to client, used for routing
	Notice    *session.Notice `json:"notice,omitempty"`
	State     *session.State  `json:"state,omitempty"`
}

// Message types.
const (
	TypeNotice = "notice"
	TypeState  = "state"
)

// ConnMetrics tracks open connections. *metrics.Metrics implements it.
type ConnMetrics interface {
	IncWSConnections()
	DecWSConnections()
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients by session ID
	clients map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast channel for session messages
	broadcast chan *Message

	// Closed when Run returns
	done chan struct{}

	metrics ConnMetrics
	log     *logger.Logger

	mu sync.RWMutex
}

// NewHub creates a new Hub instance. metrics may be nil.
func NewHub(metrics ConnMetrics) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, broadcastBuffer),
		done:       make(chan struct{}),
		metrics:    metrics,
		log:        logger.Default().WithComponent("websocket"),
	}
}

// Run starts the hub's main loop. It returns when ctx is done, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]bool)
			}
			h.clients[client.sessionID][client] = true
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.IncWSConnections()
			}

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.SessionID] {
				select {
				case client.send <- message:
				default:
					// Client's buffer is full, drop the connection
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Publish queues a message for the clients of its session. It never
// blocks; messages are dropped when the queue is full.
func (h *Hub) Publish(msg *Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn(context.Background(), "dropping websocket message, queue full", map[string]any{
			"session_id": msg.SessionID,
			"type":       msg.Type,
		})
	}
}

// ClientCount returns the number of connected clients for a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// TotalClients returns the total number of connected clients.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
