package ws_room

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playwrist/core/internal/model"
)

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	RoomID uuid.UUID
	UserID uuid.UUID
}

// inboundFrame is what clients push over the socket. Frames without an
// event field are dropped silently.
type inboundFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// StartClientReading relays inbound frames to the whole room until the
// connection dies, then detaches the client and announces the departure.
func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
		h.Broadcast(client.RoomID, model.SystemEvent("leave", client.UserID))
	}()

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Event == "" {
			continue
		}

		h.Broadcast(client.RoomID, model.Event{
			Event:   model.EventMessage,
			UserID:  client.UserID.String(),
			Payload: frame.Payload,
		})
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
}
