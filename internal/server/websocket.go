package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings with this period to keep idle connections alive.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from a peer. Clients never send
	// anything meaningful; this just bounds abuse.
	maxMessageSize = 512
)

// Hub fans live-reload messages out to connected browsers.
type Hub struct {
	config *config.Config
	logger logging.Logger

	register   chan *client
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	doneOnce   sync.Once

	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]*client
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// NewHub creates a hub. Run must be called before Accept.
func NewHub(cfg *config.Config, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		config:     cfg,
		logger:     logger.WithComponent("websocket"),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		clients:    make(map[*websocket.Conn]*client),
	}
}

// Broadcast queues a message for every connected client. Non-blocking:
// if the hub is saturated the message is dropped.
func (h *Hub) Broadcast(message string) {
	select {
	case h.broadcast <- []byte(message):
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// Accept upgrades a request to a websocket connection and registers it.
func (h *Hub) Accept(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	go c.writePump()
	go c.readPump()

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// checkOrigin allows same-host origins plus any configured extras.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	allowed := []string{
		r.Host,
		fmt.Sprintf("%s:%d", h.config.Server.Host, h.config.Server.Port),
		fmt.Sprintf("localhost:%d", h.config.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", h.config.Server.Port),
	}
	for _, extra := range h.config.Server.AllowedOrigins {
		if extraURL, err := url.Parse(extra); err == nil && extraURL.Host != "" {
			allowed = append(allowed, extraURL.Host)
		} else {
			allowed = append(allowed, extra)
		}
	}

	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	return false
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.clientsMutex.Lock()
			h.clients[c.conn] = c
			total := len(h.clients)
			h.clientsMutex.Unlock()
			h.logger.Debug(ctx, "client connected", "total", total)

		case conn := <-h.unregister:
			h.clientsMutex.Lock()
			if c, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				close(c.send)
				_ = conn.Close(websocket.StatusNormalClosure, "")
			}
			total := len(h.clients)
			h.clientsMutex.Unlock()
			h.logger.Debug(ctx, "client disconnected", "total", total)

		case message := <-h.broadcast:
			h.clientsMutex.RLock()
			var stalled []*websocket.Conn
			for conn, c := range h.clients {
				select {
				case c.send <- message:
				default:
					stalled = append(stalled, conn)
				}
			}
			h.clientsMutex.RUnlock()

			// Drop clients whose send buffer is full.
			if len(stalled) > 0 {
				h.clientsMutex.Lock()
				for _, conn := range stalled {
					if c, ok := h.clients[conn]; ok {
						delete(h.clients, conn)
						close(c.send)
						_ = conn.Close(websocket.StatusNormalClosure, "")
					}
				}
				h.clientsMutex.Unlock()
			}
		}
	}
}

func (h *Hub) closeAll() {
	// Unblock pumps stuck handing a connection back before the clients
	// are torn down; nobody reads unregister after Run returns.
	h.doneOnce.Do(func() { close(h.done) })

	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()
	for conn, c := range h.clients {
		delete(h.clients, conn)
		close(c.send)
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// drop hands a finished connection back to the hub, giving up once the
// hub has shut down.
func (h *Hub) drop(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// readPump drains inbound frames so pings are processed and closure is
// detected.
func (c *client) readPump() {
	defer c.hub.drop(c.conn)

	c.conn.SetReadLimit(maxMessageSize)
	ctx := context.Background()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump forwards queued messages and keeps the connection alive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
