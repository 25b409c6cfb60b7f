package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// StatusClient represents a single connected status subscriber.
type StatusClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

func NewStatusClient(conn *websocket.Conn) *StatusClient {
	return &StatusClient{Conn: conn, Send: make(chan []byte, 16)}
}

// StatusHub manages all connected status clients and broadcasts snapshots.
type StatusHub struct {
	clients    map[*StatusClient]bool
	register   chan *StatusClient
	unregister chan *StatusClient
	broadcast  chan []byte
	done       chan struct{}
	last       []byte
	heartbeat  time.Duration
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewStatusHub creates a hub that re-sends the last snapshot every heartbeat.
func NewStatusHub(logger *logging.ChanneledLogger, heartbeat time.Duration) *StatusHub {
	if heartbeat <= 0 {
		heartbeat = 20 * time.Second
	}
	return &StatusHub{
		clients:    make(map[*StatusClient]bool),
		register:   make(chan *StatusClient),
		unregister: make(chan *StatusClient),
		broadcast:  make(chan []byte, 32),
		done:       make(chan struct{}),
		heartbeat:  heartbeat,
		logger:     logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled.
func (h *StatusHub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			metrics.WebsocketClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			last := h.last
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(count))
			if last != nil {
				h.offer(client, last)
			}
			h.logger.Stream().Debug("Status client registered", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(count))
			h.logger.Stream().Debug("Status client unregistered", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			h.last = message
			h.mu.Unlock()
			h.fanOut(message)

		case <-ticker.C:
			h.mu.RLock()
			last := h.last
			h.mu.RUnlock()
			if last != nil {
				h.fanOut(last)
			}
		}
	}
}

func (h *StatusHub) fanOut(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		h.offer(client, message)
	}
}

// offer never blocks; a slow client misses a snapshot and gets the next one.
func (h *StatusHub) offer(client *StatusClient, message []byte) {
	select {
	case client.Send <- message:
	default:
	}
}

// Register queues a client for registration. It is a no-op once the hub stopped.
func (h *StatusHub) Register(client *StatusClient) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister queues a client for removal.
func (h *StatusHub) Unregister(client *StatusClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends payload to all subscribers and stores it for new ones.
func (h *StatusHub) Publish(payload StatusPayload) {
	message, err := json.Marshal(payload)
	if err != nil {
		h.logger.Stream().Error("Failed to marshal status payload", "error", err)
		return
	}
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Stream().Warn("Status broadcast queue full, dropping update")
	}
}

// ClientCount returns the number of registered clients.
func (h *StatusHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WritePump forwards hub messages to the socket and keeps it alive with pings.
func (c *StatusClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump drains client frames until the socket closes, then unregisters.
func (c *StatusClient) ReadPump(h *StatusHub) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
