package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/enums"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// Broadcaster pushes events to connected websocket clients.
type Broadcaster interface {
	PublishToRole(role enums.Role, event string, payload any)
	PublishToUser(userID uuid.UUID, event string, payload any)
	PublishGlobal(event string, payload any)
}

// Envelope is the wire format for every outbound websocket frame.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Identity carries the optional authentication attached to a connection.
// Anonymous connections receive global events only.
type Identity struct {
	Role   *enums.Role
	UserID *uuid.UUID
}

type message struct {
	data   []byte
	role   *enums.Role
	userID *uuid.UUID
}

// Hub maintains the active websocket connections and routes published
// events to the clients whose identity matches.
type Hub struct {
	clients    map[*Client]bool
	publish    chan message
	register   chan *Client
	unregister chan *Client
	logg       *logger.Logger
}

// NewHub builds a hub. Call Run in its own goroutine at startup.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		publish:    make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logg:       logg,
	}
}

// Run drives the hub event loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case msg := <-h.publish:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) dispatch(msg message) {
	for client := range h.clients {
		if !client.wants(msg) {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			// Slow consumer. Drop the connection rather than block
			// every other subscriber.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// PublishToRole sends the event to every connection authenticated with the role.
func (h *Hub) PublishToRole(role enums.Role, event string, payload any) {
	h.enqueue(message{data: h.encode(event, payload), role: &role})
}

// PublishToUser sends the event to every connection of one user.
func (h *Hub) PublishToUser(userID uuid.UUID, event string, payload any) {
	h.enqueue(message{data: h.encode(event, payload), userID: &userID})
}

// PublishGlobal sends the event to every connection, anonymous ones included.
func (h *Hub) PublishGlobal(event string, payload any) {
	h.enqueue(message{data: h.encode(event, payload)})
}

func (h *Hub) enqueue(msg message) {
	if msg.data == nil {
		return
	}
	select {
	case h.publish <- msg:
	default:
		h.logg.Warn(context.Background(), "realtime publish queue full, dropping event")
	}
}

func (h *Hub) encode(event string, payload any) []byte {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		h.logg.Error(context.Background(), "realtime envelope encode failed", err)
		return nil
	}
	return data
}

// ClientCount returns the number of connected clients. Snapshot only;
// safe to call from the hub goroutine or tests.
func (h *Hub) ClientCount() int { return len(h.clients) }
