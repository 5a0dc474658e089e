package ws

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Handler upgrades HTTP requests to trace stream subscriptions.
type Handler struct {
	hub            *Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowedOrigins uses the same
// list as the CORS middleware; an empty list accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	h := &Handler{hub: hub, allowedOrigins: allowedOrigins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients) and browser requests from a configured origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// RegisterRoutes registers the WebSocket route with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve subscribes the caller to a session's trace stream.
// GET /ws?session_id=...
func (h *Handler) Serve(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	wsConn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	conn := NewConnection(sessionID, wsConn)
	h.hub.Register(conn)

	go h.writePump(conn)
	go h.readPump(conn)
	return nil
}

// writePump forwards hub messages to the socket.
func (h *Handler) writePump(conn *Connection) {
	defer conn.Conn.Close()
	for data := range conn.Send {
		if err := conn.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WARN: write to %s failed: %v", conn.ID, err)
			return
		}
	}
}

// readPump drains the socket until the client disconnects.
func (h *Handler) readPump(conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		conn.Conn.Close()
	}()
	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
