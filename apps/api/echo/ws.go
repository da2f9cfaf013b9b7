package echoapi

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/state"
)

// wsEnvelope is what goes down the wire to dashboard clients.
type wsEnvelope struct {
	Kind    string             `json:"kind"` // change | session | logout
	Event   *state.ChangeEvent `json:"event,omitempty"`
	Account *account.Account   `json:"account,omitempty"`
}

type wsClient struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	accountID string
}

type directMessage struct {
	accountID string
	data      []byte
	drop      bool // also disconnect the client
}

// Hub fans change events out to connected dashboard clients. It also
// implements state.AccountObserver so a session whose account was edited or
// deleted hears about it immediately.
type Hub struct {
	log        core.Logger
	clients    map[*wsClient]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *wsClient
	unregister chan *wsClient
}

var _ state.AccountObserver = (*Hub)(nil)

func NewHub(log core.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan directMessage, 16),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

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

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}

		case msg := <-h.direct:
			for client := range h.clients {
				if client.accountID != msg.accountID {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					close(client.send)
					delete(h.clients, client)
					continue
				}
				if msg.drop {
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastEvent pushes an applied change event to every connected client.
// Meant to be registered as a Reconciler OnApplied hook.
func (h *Hub) BroadcastEvent(ev state.ChangeEvent) {
	data, err := json.Marshal(wsEnvelope{Kind: "change", Event: &ev})
	if err != nil {
		h.log.Error("hub: marshaling change event", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("hub: broadcast queue full, dropping event")
	}
}

// AccountChanged tells the affected sessions to refresh their view of who
// they are (role, forced password change).
func (h *Hub) AccountChanged(acc account.Account) {
	pub := acc.Public()
	data, err := json.Marshal(wsEnvelope{Kind: "session", Account: &pub})
	if err != nil {
		h.log.Error("hub: marshaling session update", err)
		return
	}
	h.direct <- directMessage{accountID: acc.ID, data: data}
}

// AccountDeleted disconnects the affected sessions.
func (h *Hub) AccountDeleted(id string) {
	data, _ := json.Marshal(wsEnvelope{Kind: "logout"})
	h.direct <- directMessage{accountID: id, data: data, drop: true}
}

// writePump sends messages from the hub to the WebSocket connection.
func (c *wsClient) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for data := range c.send {
		if err := c.conn.Write(context.Background(), websocket.MessageText, data); err != nil {
			return
		}
	}
}

// readPump blocks until the client goes away; inbound payloads are ignored.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}
