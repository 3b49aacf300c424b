package model

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus = string

const (
	StatusOpen       RoomStatus = "open"
	StatusInProgress RoomStatus = "in_progress"
	StatusFinished   RoomStatus = "finished"
)

type GameMode = string

const (
	ModeBombParty GameMode = "bomb_party"
	ModeSpyfall   GameMode = "spyfall"
)

type Room struct {
	ID        uuid.UUID
	Title     string
	Mode      GameMode
	Password  string
	Capacity  int
	HostID    uuid.UUID
	Status    RoomStatus
	CreatedAt time.Time
}
