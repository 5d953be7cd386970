// Package realtime pushes server events to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/metrics"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBacklog  = 32
	maxMessageSize = 1024
)

// Message is the envelope every subscriber receives.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans server events out to connected websocket clients. It is an
// explicitly constructed component with a Start/Stop lifecycle; Broadcast
// before Start or after Stop is a logged no-op.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	running bool
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// NewHub constructs a hub. checkOrigin decides which websocket origins are
// accepted; nil allows all (the CORS layer gates browsers upstream).
func NewHub(log *logger.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	if log == nil {
		log = logger.NewDefault("realtime")
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// Name implements system.Service.
func (h *Hub) Name() string { return "realtime-hub" }

// Start marks the hub as accepting connections.
func (h *Hub) Start(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return fmt.Errorf("hub already started")
	}
	h.running = true
	return nil
}

// Stop disconnects every client and refuses new ones.
func (h *Hub) Stop(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return nil
	}
	h.running = false
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.SetRealtimeClients(0)
	return nil
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues an event for every connected client. Slow clients are
// dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		h.log.WithField("event", event).Debug("broadcast while hub stopped")
		return
	}

	msg := Message{Event: event, Payload: payload}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping slow realtime client")
			close(c.send)
			delete(h.clients, c)
		}
	}
	metrics.SetRealtimeClients(len(h.clients))
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		http.Error(w, "realtime unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan Message, clientBacklog)}

	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	metrics.SetRealtimeClients(len(h.clients))
	h.mu.Unlock()

	h.log.WithField("remote", conn.RemoteAddr().String()).Debug("realtime client connected")

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.log.WithError(err).Warn("marshal realtime message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains and discards client frames; the feed is one-directional.
// Reading is still required to process control frames and detect closes.
func (h *Hub) readPump(c *client) {
	defer h.detach(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		metrics.SetRealtimeClients(len(h.clients))
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
