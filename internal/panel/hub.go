// Package panel serves the viewer's observable state to a side-panel page
// over websockets.
package panel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/logger"
	"github.com/Faultbox/stepview/internal/metadata"
	"github.com/Faultbox/stepview/internal/viewer"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeTimeout = 10 * time.Second

	sendBuffer      = 16
	broadcastBuffer = 64
)

// Message is the envelope of every frame pushed to clients.
type Message struct {
	Type string    `json:"type"`
	Data StateData `json:"data"`
}

// StateData is the wire form of viewer.State.
type StateData struct {
	AssetID          string                  `json:"assetId"`
	Loading          bool                    `json:"loading"`
	Error            *string                 `json:"error"`
	HoveredComponent *metadata.ComponentInfo `json:"hoveredComponent"`
	Progress         float64                 `json:"progress"`
}

// Encode returns the "state" message for s.
func Encode(s viewer.State) ([]byte, error) {
	data := StateData{
		AssetID:          s.AssetID,
		Loading:          s.Loading,
		HoveredComponent: s.Hovered,
		Progress:         s.Progress,
	}
	if s.Error != "" {
		msg := s.Error
		data.Error = &msg
	}
	return json.Marshal(Message{Type: "state", Data: data})
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub tracks connected clients and fans state messages out to them.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	mu     sync.RWMutex
	latest []byte

	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub creates a hub. Call Run to start delivering messages.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
		log: logger.Named("panel"),
	}
}

// Run delivers registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if h.latest != nil {
				c.send <- h.latest
			}
			h.mu.Unlock()
			h.log.Debug("client registered", zap.String("remote", c.conn.RemoteAddr().String()))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Debug("client unregistered", zap.String("remote", c.conn.RemoteAddr().String()))

		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.log.Warn("dropping slow client", zap.String("remote", c.conn.RemoteAddr().String()))
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish records s as the latest state and queues it for every client.
// It never blocks; when the queue is full the message is dropped and newly
// connecting clients still receive the latest state.
func (h *Hub) Publish(s viewer.State) {
	message, err := Encode(s)
	if err != nil {
		h.log.Error("failed to encode state", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.latest = message
	h.mu.Unlock()

	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("broadcast queue full, dropping state")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), hub: h}
	go c.writePump()
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
		return
	}
	go c.readPump()
}

// readPump discards client frames and keeps the read deadline alive.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sameOrigin accepts requests without an Origin header and those whose
// Origin host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
