package ws_room

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/playwrist/core/internal/model"
)

// Hub keeps the set of live connections per room and fans events out to
// them. Its lock is independent of the registry's room locks, so
// connect/disconnect never blocks game-state mutations.
type Hub struct {
	mu sync.Mutex

	rooms map[uuid.UUID]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[uuid.UUID]map[*Client]bool),
		logger: logger,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.RoomID]; !ok {
		h.rooms[client.RoomID] = make(map[*Client]bool)
	}
	h.rooms[client.RoomID][client] = true

	h.logger.Info("client registered",
		"room_id", client.RoomID,
		"user_id", client.UserID)
}

// RemoveClient detaches a connection. Removing a client that is already
// gone is a no-op, tolerating double-disconnect races.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.RoomID]
	if !ok || !room[client] {
		return
	}

	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.rooms, client.RoomID)
	}

	h.logger.Info("client unregistered",
		"room_id", client.RoomID,
		"user_id", client.UserID)
}

// Broadcast delivers an event to every connection attached to the room.
// Delivery is best-effort per connection: a client that cannot accept the
// frame is dropped without aborting delivery to the rest.
func (h *Hub) Broadcast(roomID uuid.UUID, event model.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event",
			"room_id", roomID,
			"event", event.Event,
			"error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.deliver(roomID, raw, func(*Client) bool { return true })
}

// SendToPlayer delivers an event only to the given player's connections.
func (h *Hub) SendToPlayer(roomID, playerID uuid.UUID, event model.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event",
			"room_id", roomID,
			"event", event.Event,
			"error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.deliver(roomID, raw, func(c *Client) bool { return c.UserID == playerID })
}

func (h *Hub) deliver(roomID uuid.UUID, raw []byte, match func(*Client) bool) {
	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	for client := range clients {
		if !match(client) {
			continue
		}
		select {
		case client.Send <- raw:
		default:
			close(client.Send)
			delete(clients, client)
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
}

// ConnectionCount reports the number of live connections for a room.
func (h *Hub) ConnectionCount(roomID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.rooms[roomID])
}
