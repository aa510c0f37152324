package websocket

import (
	"time"

	"book-inventory-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WsHandler upgrades authenticated requests into tenant event subscriptions.
type WsHandler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewWsHandler(hub *Hub, logger *zap.Logger) *WsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WsHandler{hub: hub, logger: logger}
}

// HandleWebSocket must run behind middleware.ProtectedRoute.
func (h *WsHandler) HandleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			ID:       uuid.New(),
			UserID:   user.UserID,
			TenantID: user.TenantID,
			Conn:     conn,
			Hub:      h.hub,
			Send:     make(chan WebSocketMessage, 64),
		}
		h.hub.Register(client)

		h.logger.Info("WebSocket client registered",
			zap.String("clientID", client.ID.String()),
			zap.String("userID", client.UserID.String()),
			zap.String("tenant_id", client.TenantID.String()),
		)

		go client.writePump(h.logger)
		client.readPump(h.logger)
	})(c)
}

// readPump only drains control frames; the feed is server to client.
func (c *Client) readPump(logger *zap.Logger) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket unexpected close",
					zap.String("clientID", c.ID.String()),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				logger.Debug("WebSocket write error",
					zap.String("clientID", c.ID.String()),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
