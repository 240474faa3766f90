package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/share"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	historySize = 20
)

// Message is pushed to every connected browser
type Message struct {
	Type   string        `json:"type"`
	Notice string        `json:"notice,omitempty"`
	Label  string        `json:"label,omitempty"`
	Intent *share.Intent `json:"intent,omitempty"`
	Time   time.Time     `json:"time"`
}

// Hub fans share intents and notices out to websocket clients. It is the
// share surface and notice sink of the served session.
type Hub struct {
	next share.Launcher

	mu      sync.RWMutex
	clients map[*client]struct{}
	history []Message
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. next, when set, also receives every intent.
func NewHub(next share.Launcher) *Hub {
	return &Hub{
		next:    next,
		clients: make(map[*client]struct{}),
	}
}

// StartChooser publishes intent to the browsers, then forwards it
func (h *Hub) StartChooser(ctx context.Context, intent share.Intent, label string) error {
	h.Broadcast(Message{Type: "share", Label: label, Intent: &intent})
	if h.next != nil {
		return h.next.StartChooser(ctx, intent, label)
	}
	return nil
}

// Notify publishes a user notice
func (h *Hub) Notify(msg string) {
	h.Broadcast(Message{Type: "notice", Notice: msg})
}

// History returns the most recent messages, oldest first
func (h *Hub) History() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Message(nil), h.history...)
}

// Broadcast sends msg to every client. Clients that cannot keep up miss it.
func (h *Hub) Broadcast(msg Message) {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithComponent("server").Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal message")
		return
	}

	h.mu.Lock()
	h.history = append(h.history, msg)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logger.WithComponent("server").Warn().Str("type", msg.Type).Msg("Client too slow, message dropped")
		}
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// writePump owns all writes to the connection
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
