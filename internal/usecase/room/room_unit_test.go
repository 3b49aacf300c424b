package usecase_room_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra_memory_room "github.com/playwrist/core/internal/infra/memory/room"
	"github.com/playwrist/core/internal/lock"
	"github.com/playwrist/core/internal/model"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

type recorderBroadcaster struct {
	mu     sync.Mutex
	events []model.Event
}

func (b *recorderBroadcaster) Broadcast(roomID uuid.UUID, event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recorderBroadcaster) SendToPlayer(roomID, playerID uuid.UUID, event model.Event) {
	b.Broadcast(roomID, event)
}

func (b *recorderBroadcaster) kinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Event)
	}
	return out
}

type failingRepository struct {
	usecase_room.RoomRepository
	insertMembershipErr error
}

func (r *failingRepository) InsertMembership(ctx context.Context, m model.Membership) error {
	if r.insertMembershipErr != nil {
		return r.insertMembershipErr
	}
	return r.RoomRepository.InsertMembership(ctx, m)
}

type resources struct {
	usecase     *usecase_room.Usecase
	broadcaster *recorderBroadcaster
	ctx         context.Context
}

func initResources() *resources {
	broadcaster := &recorderBroadcaster{}
	usecase := usecase_room.New(infra_memory_room.New(), broadcaster, lock.NewKeyed(), nil)

	return &resources{
		usecase:     usecase,
		broadcaster: broadcaster,
		ctx:         context.Background(),
	}
}

func validParams(host uuid.UUID) usecase_room.CreateParams {
	return usecase_room.CreateParams{
		Title:    "friday night",
		Mode:     model.ModeBombParty,
		Capacity: 4,
		HostID:   host,
	}
}

type UsecaseRoomUnitSuite struct {
	suite.Suite
}

func (s *UsecaseRoomUnitSuite) TestCreate(t provider.T) {
	t.Parallel()

	t.Run("Should create room with host auto-joined", func(t provider.T) {
		r := initResources()
		host := uuid.New()

		room, err := r.usecase.Create(r.ctx, validParams(host))

		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, room.Status)
		assert.Equal(t, host, room.HostID)

		members, err := r.usecase.Members(r.ctx, room.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, host, members[0].PlayerID)
		assert.True(t, members[0].Host)
		assert.False(t, members[0].Ready)
	})

	t.Run("Should reject capacity below one", func(t provider.T) {
		r := initResources()
		p := validParams(uuid.New())
		p.Capacity = 0

		_, err := r.usecase.Create(r.ctx, p)

		assert.ErrorIs(t, err, usecase_room.ErrInvalidCapacity)
	})

	t.Run("Should reject unknown game mode", func(t provider.T) {
		r := initResources()
		p := validParams(uuid.New())
		p.Mode = "chess"

		_, err := r.usecase.Create(r.ctx, p)

		assert.ErrorIs(t, err, usecase_room.ErrUnknownMode)
	})

	t.Run("Should not leave a hostless room behind when the host insert fails", func(t provider.T) {
		repo := &failingRepository{
			RoomRepository:      infra_memory_room.New(),
			insertMembershipErr: errors.New("insert failed"),
		}
		usecase := usecase_room.New(repo, &recorderBroadcaster{}, lock.NewKeyed(), nil)
		ctx := context.Background()

		_, err := usecase.Create(ctx, validParams(uuid.New()))
		require.ErrorIs(t, err, usecase_room.ErrInternal)

		rooms, err := usecase.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})
}

func (s *UsecaseRoomUnitSuite) TestJoin(t provider.T) {
	t.Parallel()

	t.Run("Should join open room and broadcast", func(t provider.T) {
		r := initResources()
		room, err := r.usecase.Create(r.ctx, validParams(uuid.New()))
		require.NoError(t, err)

		player := uuid.New()
		m, err := r.usecase.Join(r.ctx, room.ID, player, "")

		require.NoError(t, err)
		assert.Equal(t, player, m.PlayerID)
		assert.False(t, m.Ready)
		assert.False(t, m.Host)
		assert.Contains(t, r.broadcaster.kinds(), model.EventPlayerJoined)
	})

	t.Run("Should fail on absent room", func(t provider.T) {
		r := initResources()

		_, err := r.usecase.Join(r.ctx, uuid.New(), uuid.New(), "")

		assert.ErrorIs(t, err, usecase_room.ErrNotFound)
	})

	t.Run("Should fail on wrong password", func(t provider.T) {
		r := initResources()
		p := validParams(uuid.New())
		p.Password = "hunter2"
		room, err := r.usecase.Create(r.ctx, p)
		require.NoError(t, err)

		_, err = r.usecase.Join(r.ctx, room.ID, uuid.New(), "wrong")
		assert.ErrorIs(t, err, usecase_room.ErrForbidden)

		_, err = r.usecase.Join(r.ctx, room.ID, uuid.New(), "hunter2")
		assert.NoError(t, err)
	})

	t.Run("Should fail on duplicate join", func(t provider.T) {
		r := initResources()
		host := uuid.New()
		room, err := r.usecase.Create(r.ctx, validParams(host))
		require.NoError(t, err)

		_, err = r.usecase.Join(r.ctx, room.ID, host, "")

		assert.ErrorIs(t, err, usecase_room.ErrConflict)
	})

	t.Run("Should fail once capacity reached", func(t provider.T) {
		r := initResources()
		p := validParams(uuid.New())
		p.Capacity = 2
		room, err := r.usecase.Create(r.ctx, p)
		require.NoError(t, err)

		_, err = r.usecase.Join(r.ctx, room.ID, uuid.New(), "")
		require.NoError(t, err)

		_, err = r.usecase.Join(r.ctx, room.ID, uuid.New(), "")
		assert.ErrorIs(t, err, usecase_room.ErrRoomFull)
	})

	t.Run("Should never exceed capacity under concurrent joins", func(t provider.T) {
		r := initResources()
		p := validParams(uuid.New())
		p.Capacity = 5
		room, err := r.usecase.Create(r.ctx, p)
		require.NoError(t, err)

		const attempts = 32
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = r.usecase.Join(r.ctx, room.ID, uuid.New(), "")
			}()
		}
		wg.Wait()

		members, err := r.usecase.Members(r.ctx, room.ID)
		require.NoError(t, err)
		assert.Len(t, members, 5)
	})
}

func (s *UsecaseRoomUnitSuite) TestSetReady(t provider.T) {
	t.Parallel()

	t.Run("Should update flag idempotently", func(t provider.T) {
		r := initResources()
		host := uuid.New()
		room, err := r.usecase.Create(r.ctx, validParams(host))
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			m, err := r.usecase.SetReady(r.ctx, room.ID, host, true)
			require.NoError(t, err)
			assert.True(t, m.Ready)
		}

		m, err := r.usecase.SetReady(r.ctx, room.ID, host, false)
		require.NoError(t, err)
		assert.False(t, m.Ready)
	})

	t.Run("Should fail for non-member", func(t provider.T) {
		r := initResources()
		room, err := r.usecase.Create(r.ctx, validParams(uuid.New()))
		require.NoError(t, err)

		_, err = r.usecase.SetReady(r.ctx, room.ID, uuid.New(), true)

		assert.ErrorIs(t, err, usecase_room.ErrNotFound)
	})
}

func (s *UsecaseRoomUnitSuite) TestLeave(t provider.T) {
	t.Parallel()

	t.Run("Should promote earliest remaining member when host leaves", func(t provider.T) {
		r := initResources()
		host := uuid.New()
		second := uuid.New()
		third := uuid.New()
		room, err := r.usecase.Create(r.ctx, validParams(host))
		require.NoError(t, err)
		_, err = r.usecase.Join(r.ctx, room.ID, second, "")
		require.NoError(t, err)
		_, err = r.usecase.Join(r.ctx, room.ID, third, "")
		require.NoError(t, err)

		require.NoError(t, r.usecase.Leave(r.ctx, room.ID, host))

		updated, err := r.usecase.Room(r.ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, second, updated.HostID)

		members, err := r.usecase.Members(r.ctx, room.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.True(t, members[0].Host)
		assert.Equal(t, second, members[0].PlayerID)

		kinds := r.broadcaster.kinds()
		assert.Contains(t, kinds, model.EventPlayerLeft)
		assert.Contains(t, kinds, model.EventHostChanged)
	})

	t.Run("Should delete room once last member leaves", func(t provider.T) {
		r := initResources()
		host := uuid.New()
		room, err := r.usecase.Create(r.ctx, validParams(host))
		require.NoError(t, err)

		require.NoError(t, r.usecase.Leave(r.ctx, room.ID, host))

		_, err = r.usecase.Room(r.ctx, room.ID)
		assert.ErrorIs(t, err, usecase_room.ErrNotFound)
	})

	t.Run("Should fail for non-member", func(t provider.T) {
		r := initResources()
		room, err := r.usecase.Create(r.ctx, validParams(uuid.New()))
		require.NoError(t, err)

		err = r.usecase.Leave(r.ctx, room.ID, uuid.New())

		assert.ErrorIs(t, err, usecase_room.ErrNotFound)
	})
}

func (s *UsecaseRoomUnitSuite) TestList(t provider.T) {
	t.Parallel()

	t.Run("Should paginate with clamped limit", func(t provider.T) {
		r := initResources()
		for i := 0; i < 3; i++ {
			p := validParams(uuid.New())
			p.Title = fmt.Sprintf("room-%d", i)
			_, err := r.usecase.Create(r.ctx, p)
			require.NoError(t, err)
		}

		rooms, err := r.usecase.List(r.ctx, 0, 2)
		require.NoError(t, err)
		assert.Len(t, rooms, 2)

		rooms, err = r.usecase.List(r.ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, rooms, 1)

		// limit <= 0 falls back to the default page size
		rooms, err = r.usecase.List(r.ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, rooms, 3)

		rooms, err = r.usecase.List(r.ctx, 10, 20)
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})
}

func TestUsecaseRoomUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRoomUnitSuite))
}
