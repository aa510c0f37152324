package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageType string

const (
	MessageTypeImportCompleted MessageType = "IMPORT_COMPLETED"
	MessageTypeItemCreated     MessageType = "ITEM_CREATED"
	MessageTypeItemUpdated     MessageType = "ITEM_UPDATED"
	MessageTypeItemDeleted     MessageType = "ITEM_DELETED"
	MessageTypeError           MessageType = "ERROR"
)

type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type tenantMessage struct {
	tenantID uuid.UUID
	message  WebSocketMessage
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	TenantID uuid.UUID
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan WebSocketMessage
}

// Hub fans inventory events out to the connected clients of one tenant.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan tenantMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan tenantMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled. It must
// be called at most once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
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
				close(client.Send)
			}
			h.mu.Unlock()

		case tm := <-h.broadcast:
			h.broadcastToTenant(tm.tenantID, tm.message)
		}
	}
}

// Register adds a client; it blocks until Run picks it up. Once Run has
// stopped the client's Send channel is closed right away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister is a no-op once Run has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// NotifyTenant queues an event for the tenant's clients. It never blocks the
// caller: when the queue is full the event is dropped. A nil hub is a no-op.
func (h *Hub) NotifyTenant(tenantID uuid.UUID, msgType MessageType, payload interface{}) {
	if h == nil {
		return
	}
	msg := tenantMessage{
		tenantID: tenantID,
		message:  WebSocketMessage{Type: msgType, Payload: payload, Timestamp: time.Now()},
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("WebSocket broadcast queue full, dropping event",
			zap.String("tenant_id", tenantID.String()),
			zap.String("type", string(msgType)),
		)
	}
}

func (h *Hub) broadcastToTenant(tenantID uuid.UUID, message WebSocketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.TenantID != tenantID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
