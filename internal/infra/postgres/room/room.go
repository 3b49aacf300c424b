package infra_postgres_room

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playwrist/core/internal/model"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	ID        uuid.UUID `db:"id"`
	Title     string    `db:"title"`
	Mode      string    `db:"mode"`
	Password  string    `db:"password"`
	Capacity  int       `db:"capacity"`
	HostID    uuid.UUID `db:"host_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

type membershipDTO struct {
	RoomID   uuid.UUID `db:"room_id"`
	PlayerID uuid.UUID `db:"player_id"`
	Ready    bool      `db:"ready"`
	Host     bool      `db:"host"`
	Ordinal  int       `db:"ordinal"`
	JoinedAt time.Time `db:"joined_at"`
}

func (d *Driver) CreateRoom(ctx context.Context, room model.Room) error {
	query := `
		INSERT INTO rooms (id, title, mode, password, capacity, host_id, status, created_at)
		VALUES (:id, :title, :mode, :password, :capacity, :host_id, :status, :created_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, roomDTO(room))
	if err != nil {
		if isUniqueViolation(err) {
			return usecase_room.ErrConflict
		}
		return err
	}
	return nil
}

func (d *Driver) RoomByID(ctx context.Context, id uuid.UUID) (model.Room, error) {
	var dto roomDTO

	query := `
        SELECT id, title, mode, password, capacity, host_id, status, created_at
        FROM rooms
        WHERE id = $1
    `

	err := d.db.GetContext(ctx, &dto, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrNotFound
		}
		return model.Room{}, err
	}

	return model.Room(dto), nil
}

func (d *Driver) ListRooms(ctx context.Context, offset, limit int) ([]model.Room, error) {
	var dtos []roomDTO

	query := `
        SELECT id, title, mode, password, capacity, host_id, status, created_at
        FROM rooms
        ORDER BY created_at, id
        OFFSET $1 LIMIT $2
    `

	if err := d.db.SelectContext(ctx, &dtos, query, offset, limit); err != nil {
		return nil, err
	}

	rooms := make([]model.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, model.Room(dto))
	}
	return rooms, nil
}

func (d *Driver) SetRoomStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus) error {
	query := `
        UPDATE rooms
        SET status = $1
        WHERE id = $2
    `

	return d.execExpectingRow(ctx, query, status, id)
}

func (d *Driver) SetRoomHost(ctx context.Context, id uuid.UUID, hostID uuid.UUID) error {
	query := `
        UPDATE rooms
        SET host_id = $1
        WHERE id = $2
    `

	return d.execExpectingRow(ctx, query, hostID, id)
}

func (d *Driver) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	query := `
        DELETE FROM rooms
        WHERE id = $1
    `

	return d.execExpectingRow(ctx, query, id)
}

func (d *Driver) InsertMembership(ctx context.Context, m model.Membership) error {
	query := `
		INSERT INTO room_players (room_id, player_id, ready, host, ordinal, joined_at)
		VALUES (:room_id, :player_id, :ready, :host, :ordinal, :joined_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, membershipDTO(m))
	if err != nil {
		if isUniqueViolation(err) {
			return usecase_room.ErrConflict
		}
		return err
	}
	return nil
}

func (d *Driver) MembershipByID(ctx context.Context, roomID, playerID uuid.UUID) (model.Membership, error) {
	var dto membershipDTO

	query := `
        SELECT room_id, player_id, ready, host, ordinal, joined_at
        FROM room_players
        WHERE room_id = $1 AND player_id = $2
    `

	err := d.db.GetContext(ctx, &dto, query, roomID, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Membership{}, usecase_room.ErrNotFound
		}
		return model.Membership{}, err
	}

	return model.Membership(dto), nil
}

func (d *Driver) UpdateMembership(ctx context.Context, m model.Membership) error {
	query := `
        UPDATE room_players
        SET ready = $1, host = $2, ordinal = $3
        WHERE room_id = $4 AND player_id = $5
    `

	return d.execExpectingRow(ctx, query, m.Ready, m.Host, m.Ordinal, m.RoomID, m.PlayerID)
}

func (d *Driver) DeleteMembership(ctx context.Context, roomID, playerID uuid.UUID) error {
	query := `
        DELETE FROM room_players
        WHERE room_id = $1 AND player_id = $2
    `

	return d.execExpectingRow(ctx, query, roomID, playerID)
}

func (d *Driver) MembersByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error) {
	var dtos []membershipDTO

	query := `
        SELECT room_id, player_id, ready, host, ordinal, joined_at
        FROM room_players
        WHERE room_id = $1
        ORDER BY joined_at, player_id
    `

	if err := d.db.SelectContext(ctx, &dtos, query, roomID); err != nil {
		return nil, err
	}

	members := make([]model.Membership, 0, len(dtos))
	for _, dto := range dtos {
		members = append(members, model.Membership(dto))
	}
	return members, nil
}

func (d *Driver) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "unique constraint") ||
		strings.Contains(err.Error(), "duplicate key")
}
