package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"swiss-pairing-server/pairing"
	"swiss-pairing-server/tournament"
	"swiss-pairing-server/wsutil"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TournamentSource is what clients can query through the hub.
type TournamentSource interface {
	Standings(ctx context.Context) ([]pairing.Standing, error)
	Pairings(ctx context.Context) (*tournament.RoundPlan, error)
}

// Hub maintains the set of connected spectators and fans tournament events out to them.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Source     TournamentSource

	broadcast chan []byte
}

// NewHub creates a new Hub. Source may be set after construction but before Run.
func NewHub(src TournamentSource) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Source:     src,
		broadcast:  make(chan []byte, 64),
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled, every client is disconnected and Run returns.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "ws")
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
			}
			return

		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("spectator connected", "tag", "ws", "clients", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				slog.Info("spectator disconnected", "tag", "ws", "clients", len(h.Clients))
			}

		case data := <-h.broadcast:
			for client := range h.Clients {
				if !wsutil.SafeSend(client.Send, data) {
					slog.Warn("dropping event for slow spectator", "tag", "ws")
				}
			}
		}
	}
}

// Publish queues an event for every connected client. It never blocks; events
// are dropped if the hub is not keeping up.
func (h *Hub) Publish(eventType string, payload any) {
	data, err := json.Marshal(EventMsg{Type: eventType, Data: payload})
	if err != nil {
		slog.Error("marshal event", "tag", "ws", "type", eventType, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("event queue full, dropping", "tag", "ws", "type", eventType)
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "ws", "error", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
