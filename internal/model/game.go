package model

import (
	"time"

	"github.com/google/uuid"
)

// GameState is the transient per-room state, present only while a round runs.
// Roles is immutable once produced for a round.
type GameState struct {
	RoomID    uuid.UUID
	Mode      GameMode
	Holder    uuid.UUID
	StartedAt time.Time
	Location  string
	Roles     map[uuid.UUID]string
	Ordinals  []MemberView
}

type RoundResult struct {
	LoserID   uuid.UUID
	WinnerIDs []uuid.UUID
}
