package infra_postgres_room

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"

	"github.com/playwrist/core/internal/model"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

type RoomInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	db     *sqlx.DB
	mock   sqlmock.Sqlmock
	driver *Driver
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	driver := New(sqlxDB)

	return &resources{
		db:     sqlxDB,
		mock:   mock,
		driver: driver,
		ctx:    context.Background(),
	}
}

func validRoom() model.Room {
	return model.Room{
		ID:        uuid.New(),
		Title:     "friday night",
		Mode:      model.ModeBombParty,
		Capacity:  8,
		HostID:    uuid.New(),
		Status:    model.StatusOpen,
		CreatedAt: time.Now(),
	}
}

func (suite *RoomInfraUnitSuite) TestCreateRoom(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources, room model.Room)
		expectedErr error
	}{
		{
			name: "Should insert the room",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectExec("INSERT INTO rooms").
					WithArgs(room.ID, room.Title, room.Mode, room.Password,
						room.Capacity, room.HostID, room.Status, room.CreatedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "Should map unique violations to conflict",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectExec("INSERT INTO rooms").
					WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "rooms_pkey"`))
			},
			expectedErr: usecase_room.ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom()
			tc.setupMocks(r, room)

			err := r.driver.CreateRoom(r.ctx, room)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestRoomByID(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources, room model.Room)
		expectedErr error
	}{
		{
			name: "Should return the stored room",
			setupMocks: func(r *resources, room model.Room) {
				rows := sqlmock.NewRows([]string{
					"id", "title", "mode", "password", "capacity", "host_id", "status", "created_at",
				}).AddRow(room.ID.String(), room.Title, room.Mode, room.Password,
					room.Capacity, room.HostID.String(), room.Status, room.CreatedAt)
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.ID).
					WillReturnRows(rows)
			},
		},
		{
			name: "Should map missing rows to not found",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.ID).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: usecase_room.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom()
			tc.setupMocks(r, room)

			got, err := r.driver.RoomByID(r.ctx, room.ID)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, room.ID, got.ID)
				assert.Equal(t, room.Title, got.Title)
				assert.Equal(t, room.HostID, got.HostID)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestSetRoomStatus(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources, roomID uuid.UUID)
		expectedErr error
	}{
		{
			name: "Should update the status",
			setupMocks: func(r *resources, roomID uuid.UUID) {
				r.mock.ExpectExec("UPDATE rooms").
					WithArgs(model.StatusInProgress, roomID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "Should map zero affected rows to not found",
			setupMocks: func(r *resources, roomID uuid.UUID) {
				r.mock.ExpectExec("UPDATE rooms").
					WithArgs(model.StatusInProgress, roomID).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: usecase_room.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			roomID := uuid.New()
			tc.setupMocks(r, roomID)

			err := r.driver.SetRoomStatus(r.ctx, roomID, model.StatusInProgress)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestInsertMembership(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources, m model.Membership)
		expectedErr error
	}{
		{
			name: "Should insert the membership",
			setupMocks: func(r *resources, m model.Membership) {
				r.mock.ExpectExec("INSERT INTO room_players").
					WithArgs(m.RoomID, m.PlayerID, m.Ready, m.Host, m.Ordinal, m.JoinedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "Should map duplicate joins to conflict",
			setupMocks: func(r *resources, m model.Membership) {
				r.mock.ExpectExec("INSERT INTO room_players").
					WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "room_players_pkey"`))
			},
			expectedErr: usecase_room.ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			m := model.Membership{
				RoomID:   uuid.New(),
				PlayerID: uuid.New(),
				Host:     true,
				JoinedAt: time.Now(),
			}
			tc.setupMocks(r, m)

			err := r.driver.InsertMembership(r.ctx, m)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestMembersByRoom(t provider.T) {
	t.Parallel()

	t.Run("Should scan members in join order", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		roomID := uuid.New()
		first := uuid.New()
		second := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"room_id", "player_id", "ready", "host", "ordinal", "joined_at",
		}).
			AddRow(roomID.String(), first.String(), true, true, 1, now).
			AddRow(roomID.String(), second.String(), false, false, 2, now.Add(time.Second))
		r.mock.ExpectQuery("SELECT (.+) FROM room_players").
			WithArgs(roomID).
			WillReturnRows(rows)

		members, err := r.driver.MembersByRoom(r.ctx, roomID)

		assert.NoError(t, err)
		assert.Len(t, members, 2)
		assert.Equal(t, first, members[0].PlayerID)
		assert.Equal(t, second, members[1].PlayerID)
		assert.True(t, members[0].Host)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})
}

func (suite *RoomInfraUnitSuite) TestDeleteMembership(t provider.T) {
	t.Parallel()

	t.Run("Should map zero affected rows to not found", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		roomID, playerID := uuid.New(), uuid.New()

		r.mock.ExpectExec("DELETE FROM room_players").
			WithArgs(roomID, playerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := r.driver.DeleteMembership(r.ctx, roomID, playerID)

		assert.ErrorIs(t, err, usecase_room.ErrNotFound)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})
}

func TestRoomInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(RoomInfraUnitSuite))
}
