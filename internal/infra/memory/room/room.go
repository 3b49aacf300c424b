// Package infra_memory_room provides the in-memory room repository.
// Rooms are ephemeral sessions, so this is the default store; the
// postgres driver exists for deployments that want listing to survive
// restarts.
package infra_memory_room

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/playwrist/core/internal/model"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

type roomState struct {
	room    model.Room
	members []model.Membership
}

type Driver struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*roomState
}

func New() *Driver {
	return &Driver{
		rooms: make(map[uuid.UUID]*roomState),
	}
}

func (d *Driver) CreateRoom(ctx context.Context, room model.Room) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[room.ID]; ok {
		return usecase_room.ErrConflict
	}
	d.rooms[room.ID] = &roomState{room: room}
	return nil
}

func (d *Driver) RoomByID(ctx context.Context, id uuid.UUID) (model.Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	state, ok := d.rooms[id]
	if !ok {
		return model.Room{}, usecase_room.ErrNotFound
	}
	return state.room, nil
}

func (d *Driver) ListRooms(ctx context.Context, offset, limit int) ([]model.Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := make([]model.Room, 0, len(d.rooms))
	for _, state := range d.rooms {
		all = append(all, state.room)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []model.Room{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (d *Driver) SetRoomStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.rooms[id]
	if !ok {
		return usecase_room.ErrNotFound
	}
	state.room.Status = status
	return nil
}

func (d *Driver) SetRoomHost(ctx context.Context, id uuid.UUID, hostID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.rooms[id]
	if !ok {
		return usecase_room.ErrNotFound
	}
	state.room.HostID = hostID
	return nil
}

func (d *Driver) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[id]; !ok {
		return usecase_room.ErrNotFound
	}
	delete(d.rooms, id)
	return nil
}

func (d *Driver) InsertMembership(ctx context.Context, m model.Membership) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.rooms[m.RoomID]
	if !ok {
		return usecase_room.ErrNotFound
	}
	for _, existing := range state.members {
		if existing.PlayerID == m.PlayerID {
			return usecase_room.ErrConflict
		}
	}
	state.members = append(state.members, m)
	return nil
}

func (d *Driver) MembershipByID(ctx context.Context, roomID, playerID uuid.UUID) (model.Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	state, ok := d.rooms[roomID]
	if !ok {
		return model.Membership{}, usecase_room.ErrNotFound
	}
	for _, m := range state.members {
		if m.PlayerID == playerID {
			return m, nil
		}
	}
	return model.Membership{}, usecase_room.ErrNotFound
}

func (d *Driver) UpdateMembership(ctx context.Context, m model.Membership) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.rooms[m.RoomID]
	if !ok {
		return usecase_room.ErrNotFound
	}
	for i := range state.members {
		if state.members[i].PlayerID == m.PlayerID {
			m.JoinedAt = state.members[i].JoinedAt
			state.members[i] = m
			return nil
		}
	}
	return usecase_room.ErrNotFound
}

func (d *Driver) DeleteMembership(ctx context.Context, roomID, playerID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.rooms[roomID]
	if !ok {
		return usecase_room.ErrNotFound
	}
	for i := range state.members {
		if state.members[i].PlayerID == playerID {
			state.members = append(state.members[:i], state.members[i+1:]...)
			return nil
		}
	}
	return usecase_room.ErrNotFound
}

func (d *Driver) MembersByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	state, ok := d.rooms[roomID]
	if !ok {
		return nil, usecase_room.ErrNotFound
	}
	out := make([]model.Membership, len(state.members))
	copy(out, state.members)
	return out, nil
}
