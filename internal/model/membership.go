package model

import (
	"time"

	"github.com/google/uuid"
)

// Membership is the authoritative (room, player) record.
// Ordinal is presentation only, assigned when a game starts.
type Membership struct {
	RoomID   uuid.UUID
	PlayerID uuid.UUID
	Ready    bool
	Host     bool
	Ordinal  int
	JoinedAt time.Time
}

// MemberView is the read-only projection handed to clients.
type MemberView struct {
	PlayerID uuid.UUID `json:"player_id"`
	Ready    bool      `json:"ready"`
	Host     bool      `json:"host"`
	Ordinal  int       `json:"ordinal"`
}

func (m Membership) View() MemberView {
	return MemberView{
		PlayerID: m.PlayerID,
		Ready:    m.Ready,
		Host:     m.Host,
		Ordinal:  m.Ordinal,
	}
}
