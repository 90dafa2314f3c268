package handlers

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/metrics"
	"github.com/nikhil/tsview/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from a subscriber
	maxMessageSize = 512
)

// Hub fans topology snapshots out to connected websocket subscribers.
// A newly connected subscriber immediately receives the latest snapshot,
// then one frame per successful refresh.
type Hub struct {
	// Registered subscribers.
	clients map[*wsClient]bool

	// Register requests from new connections.
	Register chan *wsClient

	// Unregister requests from closing connections.
	Unregister chan *wsClient

	// Encoded snapshot frames to fan out.
	broadcast chan []byte

	// Most recent frame, replayed to new subscribers.
	last []byte

	log *logger.Logger
}

// NewHub creates a hub; the caller starts its loop with go hub.Run().
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		Register:   make(chan *wsClient),
		Unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 1),
		log:        logger.NewLogger("ws-hub"),
	}
}

// BroadcastStatus encodes the snapshot once and queues it for all
// subscribers. Wired as the cache's refresh hook.
func (h *Hub) BroadcastStatus(info *models.ServerInfo) {
	frame, err := json.Marshal(info)
	if err != nil {
		h.log.Error("failed to encode snapshot frame", "error", err)
		return
	}
	h.broadcast <- frame
}

// Run owns the subscriber set; all membership changes go through its
// channels, so no lock is needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			metrics.WebsocketClients.Set(float64(len(h.clients)))
			if h.last != nil {
				select {
				case client.send <- h.last:
				default:
				}
			}

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebsocketClients.Set(float64(len(h.clients)))
			}

		case frame := <-h.broadcast:
			h.last = frame
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// Subscriber can't keep up; drop it.
					delete(h.clients, client)
					close(client.send)
					metrics.WebsocketClients.Set(float64(len(h.clients)))
				}
			}
		}
	}
}

// wsClient is one websocket subscription.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound messages; the feed is one-way. It keeps the
// connection's read deadline fed by pongs and unregisters on error.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
