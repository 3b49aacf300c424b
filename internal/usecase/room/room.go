package usecase_room

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/playwrist/core/internal/lock"
	"github.com/playwrist/core/internal/model"
)

var (
	ErrNotFound        = errors.New("no such resource")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrRoomFull        = errors.New("room is full")
	ErrPrecondition    = errors.New("precondition failed")
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrInternal        = errors.New("internal error")
)

//go:generate mockery --name=RoomRepository --output=./mocks/repository --filename=repository.go
type RoomRepository interface {
	CreateRoom(ctx context.Context, room model.Room) error
	RoomByID(ctx context.Context, id uuid.UUID) (model.Room, error)
	ListRooms(ctx context.Context, offset, limit int) ([]model.Room, error)
	SetRoomStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus) error
	SetRoomHost(ctx context.Context, id uuid.UUID, hostID uuid.UUID) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	InsertMembership(ctx context.Context, m model.Membership) error
	MembershipByID(ctx context.Context, roomID, playerID uuid.UUID) (model.Membership, error)
	UpdateMembership(ctx context.Context, m model.Membership) error
	DeleteMembership(ctx context.Context, roomID, playerID uuid.UUID) error
	// MembersByRoom returns memberships in join order.
	MembersByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error)
}

//go:generate mockery --name=Broadcaster --output=./mocks/broadcaster --filename=broadcaster.go
type Broadcaster interface {
	Broadcast(roomID uuid.UUID, event model.Event)
}

// GameNotifier lets the registry tell the game engine about membership
// changes it must react to. Called while the room is serialized.
type GameNotifier interface {
	PlayerRemoved(ctx context.Context, roomID, playerID uuid.UUID)
	RoomClosed(roomID uuid.UUID)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Usecase struct {
	repo        RoomRepository
	broadcaster Broadcaster
	locks       *lock.Keyed
	game        GameNotifier
}

func New(
	repo RoomRepository,
	broadcaster Broadcaster,
	locks *lock.Keyed,
	game GameNotifier,
) *Usecase {
	return &Usecase{
		repo:        repo,
		broadcaster: broadcaster,
		locks:       locks,
		game:        game,
	}
}

type CreateParams struct {
	Title    string
	Mode     model.GameMode
	Password string
	Capacity int
	HostID   uuid.UUID
}

func (u *Usecase) Create(ctx context.Context, p CreateParams) (model.Room, error) {
	if p.Capacity < 1 {
		return model.Room{}, ErrInvalidCapacity
	}
	if p.Mode != model.ModeBombParty && p.Mode != model.ModeSpyfall {
		return model.Room{}, ErrUnknownMode
	}

	room := model.Room{
		ID:        uuid.New(),
		Title:     p.Title,
		Mode:      p.Mode,
		Password:  p.Password,
		Capacity:  p.Capacity,
		HostID:    p.HostID,
		Status:    model.StatusOpen,
		CreatedAt: time.Now(),
	}
	if err := u.repo.CreateRoom(ctx, room); err != nil {
		return model.Room{}, errors.Join(ErrInternal, err)
	}

	host := model.Membership{
		RoomID:   room.ID,
		PlayerID: p.HostID,
		Host:     true,
		JoinedAt: room.CreatedAt,
	}
	if err := u.repo.InsertMembership(ctx, host); err != nil {
		// a room must never be observable without its host membership
		_ = u.repo.DeleteRoom(ctx, room.ID)
		return model.Room{}, errors.Join(ErrInternal, err)
	}

	return room, nil
}

func (u *Usecase) Join(ctx context.Context, roomID, playerID uuid.UUID, password string) (model.Membership, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	room, err := u.repo.RoomByID(ctx, roomID)
	if err != nil {
		return model.Membership{}, u.wrap(err)
	}
	if room.Status == model.StatusFinished {
		return model.Membership{}, ErrConflict
	}
	if room.Password != "" && room.Password != password {
		return model.Membership{}, ErrForbidden
	}
	if _, err := u.repo.MembershipByID(ctx, roomID, playerID); err == nil {
		return model.Membership{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return model.Membership{}, errors.Join(ErrInternal, err)
	}

	members, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil {
		return model.Membership{}, errors.Join(ErrInternal, err)
	}
	if len(members) >= room.Capacity {
		return model.Membership{}, ErrRoomFull
	}

	m := model.Membership{
		RoomID:   roomID,
		PlayerID: playerID,
		JoinedAt: time.Now(),
	}
	if err := u.repo.InsertMembership(ctx, m); err != nil {
		return model.Membership{}, errors.Join(ErrInternal, err)
	}

	u.broadcaster.Broadcast(roomID, model.Event{
		Event:   model.EventPlayerJoined,
		UserID:  playerID.String(),
		Payload: m.View(),
	})

	return m, nil
}

func (u *Usecase) SetReady(ctx context.Context, roomID, playerID uuid.UUID, ready bool) (model.Membership, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	room, err := u.repo.RoomByID(ctx, roomID)
	if err != nil {
		return model.Membership{}, u.wrap(err)
	}
	if room.Status == model.StatusFinished {
		return model.Membership{}, ErrConflict
	}

	m, err := u.repo.MembershipByID(ctx, roomID, playerID)
	if err != nil {
		return model.Membership{}, u.wrap(err)
	}

	m.Ready = ready
	if err := u.repo.UpdateMembership(ctx, m); err != nil {
		return model.Membership{}, errors.Join(ErrInternal, err)
	}

	u.broadcaster.Broadcast(roomID, model.Event{
		Event:   model.EventReadinessChanged,
		UserID:  playerID.String(),
		Payload: m.View(),
	})

	return m, nil
}

// Leave removes a membership. The earliest remaining member by join order
// is promoted when the host leaves; an emptied room is deleted.
func (u *Usecase) Leave(ctx context.Context, roomID, playerID uuid.UUID) error {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	if _, err := u.repo.RoomByID(ctx, roomID); err != nil {
		return u.wrap(err)
	}
	m, err := u.repo.MembershipByID(ctx, roomID, playerID)
	if err != nil {
		return u.wrap(err)
	}

	if err := u.repo.DeleteMembership(ctx, roomID, playerID); err != nil {
		return errors.Join(ErrInternal, err)
	}

	remaining, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}

	if len(remaining) == 0 {
		if err := u.repo.DeleteRoom(ctx, roomID); err != nil {
			return errors.Join(ErrInternal, err)
		}
		if u.game != nil {
			u.game.RoomClosed(roomID)
		}
		return nil
	}

	u.broadcaster.Broadcast(roomID, model.Event{
		Event:  model.EventPlayerLeft,
		UserID: playerID.String(),
	})

	if m.Host {
		successor := remaining[0]
		successor.Host = true
		if err := u.repo.UpdateMembership(ctx, successor); err != nil {
			return errors.Join(ErrInternal, err)
		}
		if err := u.repo.SetRoomHost(ctx, roomID, successor.PlayerID); err != nil {
			return errors.Join(ErrInternal, err)
		}
		u.broadcaster.Broadcast(roomID, model.Event{
			Event:  model.EventHostChanged,
			UserID: successor.PlayerID.String(),
		})
	}

	if u.game != nil {
		u.game.PlayerRemoved(ctx, roomID, playerID)
	}

	return nil
}

func (u *Usecase) Members(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error) {
	if _, err := u.repo.RoomByID(ctx, roomID); err != nil {
		return nil, u.wrap(err)
	}
	members, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil {
		return nil, u.wrap(err)
	}
	return members, nil
}

func (u *Usecase) Room(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	room, err := u.repo.RoomByID(ctx, roomID)
	if err != nil {
		return model.Room{}, u.wrap(err)
	}
	return room, nil
}

func (u *Usecase) List(ctx context.Context, offset, limit int) ([]model.Room, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	rooms, err := u.repo.ListRooms(ctx, offset, limit)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return rooms, nil
}

func (u *Usecase) wrap(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return errors.Join(ErrInternal, err)
}
