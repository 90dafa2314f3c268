package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikhil/tsview/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed carries the same public data as GET /.
		return true
	},
}

// WebSocketHandler upgrades connections onto the topology feed.
type WebSocketHandler struct {
	hub *Hub
	log *logger.Logger
}

// NewWebSocketHandler creates a handler feeding subscribers from hub.
func NewWebSocketHandler(hub *Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		log: logger.NewLogger("ws-handler"),
	}
}

// HandleWebSocket handles GET /ws.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 8),
	}
	h.hub.Register <- client

	go client.writePump()
	go client.readPump()
}
