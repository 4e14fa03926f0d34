package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default allow-all origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// OriginChecker builds a CheckOrigin func from an allowed-origin list, so the
// push channel honors the same policy as the HTTP CORS layer. Requests
// without an Origin header (non-browser clients) pass.
func OriginChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, origin := range origins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[strings.ToLower(origin)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		return allowed[strings.ToLower(origin)]
	}
}

// Client is one websocket connection registered with the hub.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	identity Identity
}

func (c *Client) wants(msg message) bool {
	if msg.role == nil && msg.userID == nil {
		return true
	}
	if msg.role != nil && c.identity.Role != nil && *c.identity.Role == *msg.role {
		return true
	}
	if msg.userID != nil && c.identity.UserID != nil && *c.identity.UserID == *msg.userID {
		return true
	}
	return false
}

// readPump consumes inbound frames so control messages keep flowing.
// Client payloads are ignored; this channel is push only.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logg.Warn(context.Background(), "websocket closed unexpectedly")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// Upgrade promotes the HTTP request to a websocket and registers the
// connection under the given identity.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, identity Identity) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logg.Error(r.Context(), "websocket upgrade failed", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), identity: identity}
	h.register <- client
	go client.writePump()
	go client.readPump()
}
