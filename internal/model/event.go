package model

import "github.com/google/uuid"

const (
	EventPlayerJoined     = "player_joined"
	EventPlayerLeft       = "player_left"
	EventReadinessChanged = "readiness_changed"
	EventHostChanged      = "host_changed"
	EventGameStarted      = "game_started"
	EventRoleAssigned     = "role_assigned"
	EventBombAssigned     = "bomb_assigned"
	EventBombPassed       = "bomb_passed"
	EventRoundResolved    = "round_resolved"
	EventTimerStarted     = "timer_started"
	EventMessage          = "message"
	EventSystem           = "system"
)

// Event is the wire frame pushed to every live connection of a room.
type Event struct {
	Event   string      `json:"event"`
	UserID  string      `json:"user_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

func SystemEvent(action string, userID uuid.UUID) Event {
	return Event{
		Event:  EventSystem,
		UserID: userID.String(),
		Payload: map[string]interface{}{
			"action": action,
		},
	}
}
