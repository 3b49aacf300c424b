package usecase_game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwrist/core/internal/lock"
	"github.com/playwrist/core/internal/model"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

// Shared error taxonomy with the room registry.
var (
	ErrNotFound     = usecase_room.ErrNotFound
	ErrForbidden    = usecase_room.ErrForbidden
	ErrConflict     = usecase_room.ErrConflict
	ErrPrecondition = usecase_room.ErrPrecondition
	ErrInternal     = usecase_room.ErrInternal
)

// RoundDuration is the fixed length of a timed round.
const RoundDuration = 5 * time.Minute

const RoleSpy = "SPY"

var locations = map[string][]string{
	"hospital": {"doctor", "nurse", "patient", "paramedic", "visitor"},
	"school":   {"teacher", "student", "janitor", "cafeteria cook", "principal"},
	"airport":  {"pilot", "flight attendant", "passenger", "ground staff", "customs officer"},
}

//go:generate mockery --name=Repository --output=./mocks/repository --filename=repository.go
type Repository interface {
	RoomByID(ctx context.Context, id uuid.UUID) (model.Room, error)
	SetRoomStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus) error
	MembershipByID(ctx context.Context, roomID, playerID uuid.UUID) (model.Membership, error)
	UpdateMembership(ctx context.Context, m model.Membership) error
	MembersByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Membership, error)
}

//go:generate mockery --name=Broadcaster --output=./mocks/broadcaster --filename=broadcaster.go
type Broadcaster interface {
	Broadcast(roomID uuid.UUID, event model.Event)
	SendToPlayer(roomID, playerID uuid.UUID, event model.Event)
}

// Usecase runs the per-room state machine on top of registry state.
// Transient round state lives here only while a round is in progress.
type Usecase struct {
	repo        Repository
	broadcaster Broadcaster
	locks       *lock.Keyed

	// mu guards states and each state's mutable fields (Holder, StartedAt).
	// The keyed lock serializes mutations per room; snapshot reads hold mu only.
	mu     sync.RWMutex
	states map[uuid.UUID]*model.GameState
}

func New(
	repo Repository,
	broadcaster Broadcaster,
	locks *lock.Keyed,
) *Usecase {
	return &Usecase{
		repo:        repo,
		broadcaster: broadcaster,
		locks:       locks,
		states:      make(map[uuid.UUID]*model.GameState),
	}
}

func (u *Usecase) Start(ctx context.Context, roomID, requester uuid.UUID) (model.GameState, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	room, err := u.repo.RoomByID(ctx, roomID)
	if err != nil {
		return model.GameState{}, u.wrap(err)
	}
	if room.HostID != requester {
		return model.GameState{}, ErrForbidden
	}
	if room.Status != model.StatusOpen {
		return model.GameState{}, ErrConflict
	}

	members, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil {
		return model.GameState{}, errors.Join(ErrInternal, err)
	}
	if len(members) == 0 {
		return model.GameState{}, ErrPrecondition
	}
	for _, m := range members {
		if !m.Ready {
			return model.GameState{}, ErrPrecondition
		}
	}

	if err := u.repo.SetRoomStatus(ctx, roomID, model.StatusInProgress); err != nil {
		return model.GameState{}, errors.Join(ErrInternal, err)
	}

	shuffled := make([]model.Membership, len(members))
	copy(shuffled, members)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	views := make([]model.MemberView, 0, len(shuffled))
	for i := range shuffled {
		shuffled[i].Ordinal = i + 1
		if err := u.repo.UpdateMembership(ctx, shuffled[i]); err != nil {
			_ = u.repo.SetRoomStatus(ctx, roomID, model.StatusOpen)
			return model.GameState{}, errors.Join(ErrInternal, err)
		}
		views = append(views, shuffled[i].View())
	}

	state := &model.GameState{
		RoomID:    roomID,
		Mode:      room.Mode,
		StartedAt: time.Now(),
		Ordinals:  views,
	}

	switch room.Mode {
	case model.ModeBombParty:
		state.Holder = shuffled[rand.Intn(len(shuffled))].PlayerID
	case model.ModeSpyfall:
		u.assignRoles(state, shuffled)
	default:
		_ = u.repo.SetRoomStatus(ctx, roomID, model.StatusOpen)
		return model.GameState{}, ErrConflict
	}

	u.mu.Lock()
	u.states[roomID] = state
	u.mu.Unlock()

	u.broadcaster.Broadcast(roomID, model.Event{
		Event: model.EventGameStarted,
		Payload: map[string]interface{}{
			"mode":    state.Mode,
			"players": views,
			"holder":  holderOrEmpty(state),
		},
	})

	if state.Mode == model.ModeSpyfall {
		u.deliverRoles(state)
	}

	return snapshot(state), nil
}

// assignRoles picks a location and hands out roles to at most len(roles)
// members. Members beyond the role-set size spectate the round. Exactly one
// of the assigned members becomes the spy; the rest draw with replacement
// from the location's role set.
func (u *Usecase) assignRoles(state *model.GameState, members []model.Membership) {
	names := make([]string, 0, len(locations))
	for name := range locations {
		names = append(names, name)
	}
	location := names[rand.Intn(len(names))]
	roles := locations[location]

	assigned := members
	if len(assigned) > len(roles) {
		assigned = assigned[:len(roles)]
	}
	spy := assigned[rand.Intn(len(assigned))].PlayerID

	assignments := make(map[uuid.UUID]string, len(assigned))
	for _, m := range assigned {
		if m.PlayerID == spy {
			assignments[m.PlayerID] = RoleSpy
			continue
		}
		assignments[m.PlayerID] = roles[rand.Intn(len(roles))]
	}

	state.Location = location
	state.Roles = assignments
}

// deliverRoles sends each assigned player their own role privately. The spy
// learns only that they are the spy, never the location.
func (u *Usecase) deliverRoles(state *model.GameState) {
	for playerID, role := range state.Roles {
		payload := map[string]interface{}{
			"role": role,
		}
		if role != RoleSpy {
			payload["location"] = state.Location
		}
		u.broadcaster.SendToPlayer(state.RoomID, playerID, model.Event{
			Event:   model.EventRoleAssigned,
			UserID:  playerID.String(),
			Payload: payload,
		})
	}
}

// AssignBomb re-deals the bomb uniformly among current members, a host-only
// action while a bomb round is in progress.
func (u *Usecase) AssignBomb(ctx context.Context, roomID, requester uuid.UUID) (uuid.UUID, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	room, err := u.repo.RoomByID(ctx, roomID)
	if err != nil {
		return uuid.Nil, u.wrap(err)
	}
	if room.HostID != requester {
		return uuid.Nil, ErrForbidden
	}

	state, ok := u.state(roomID)
	if !ok || state.Mode != model.ModeBombParty {
		return uuid.Nil, ErrConflict
	}

	members, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInternal, err)
	}
	if len(members) == 0 {
		return uuid.Nil, ErrPrecondition
	}

	holder := members[rand.Intn(len(members))].PlayerID
	u.mu.Lock()
	state.Holder = holder
	u.mu.Unlock()

	u.broadcaster.Broadcast(roomID, model.Event{
		Event:  model.EventBombAssigned,
		UserID: holder.String(),
	})

	return holder, nil
}

func (u *Usecase) PassBomb(ctx context.Context, roomID, from, to uuid.UUID) (uuid.UUID, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	state, ok := u.state(roomID)
	if !ok || state.Mode != model.ModeBombParty {
		return uuid.Nil, ErrConflict
	}
	if state.Holder != from {
		return uuid.Nil, ErrConflict
	}

	if _, err := u.repo.MembershipByID(ctx, roomID, to); err != nil {
		return uuid.Nil, u.wrap(err)
	}

	u.mu.Lock()
	state.Holder = to
	u.mu.Unlock()

	u.broadcaster.Broadcast(roomID, model.Event{
		Event:  model.EventBombPassed,
		UserID: to.String(),
		Payload: map[string]interface{}{
			"from": from.String(),
			"to":   to.String(),
		},
	})

	return to, nil
}

// Resolve ends the round: the holder at detonation loses, everyone else wins.
func (u *Usecase) Resolve(ctx context.Context, roomID, holder uuid.UUID) (model.RoundResult, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	room, err := u.repo.RoomByID(ctx, roomID)
	if err != nil {
		return model.RoundResult{}, u.wrap(err)
	}
	if room.Status != model.StatusInProgress {
		return model.RoundResult{}, ErrConflict
	}

	members, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil {
		return model.RoundResult{}, errors.Join(ErrInternal, err)
	}

	found := false
	winners := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m.PlayerID == holder {
			found = true
			continue
		}
		winners = append(winners, m.PlayerID)
	}
	if !found {
		return model.RoundResult{}, ErrConflict
	}

	if err := u.repo.SetRoomStatus(ctx, roomID, model.StatusFinished); err != nil {
		return model.RoundResult{}, errors.Join(ErrInternal, err)
	}

	u.mu.Lock()
	delete(u.states, roomID)
	u.mu.Unlock()

	result := model.RoundResult{
		LoserID:   holder,
		WinnerIDs: winners,
	}

	winnerIDs := make([]string, 0, len(winners))
	for _, id := range winners {
		winnerIDs = append(winnerIDs, id.String())
	}
	u.broadcaster.Broadcast(roomID, model.Event{
		Event:  model.EventRoundResolved,
		UserID: holder.String(),
		Payload: map[string]interface{}{
			"loser_id":   holder.String(),
			"winner_ids": winnerIDs,
		},
	})

	return result, nil
}

// StartTimer records the wall-clock start of the fixed round. Calling it
// again overwrites the previous start. Expiry detection is the caller's job.
func (u *Usecase) StartTimer(ctx context.Context, roomID uuid.UUID) (time.Time, error) {
	u.locks.Lock(roomID)
	defer u.locks.Unlock(roomID)

	state, ok := u.state(roomID)
	if !ok {
		return time.Time{}, ErrConflict
	}

	startedAt := time.Now()
	u.mu.Lock()
	state.StartedAt = startedAt
	u.mu.Unlock()

	u.broadcaster.Broadcast(roomID, model.Event{
		Event: model.EventTimerStarted,
		Payload: map[string]interface{}{
			"started_at":       startedAt.Unix(),
			"duration_seconds": int(RoundDuration.Seconds()),
		},
	})

	return startedAt, nil
}

// State returns a copy of the transient round state, if any.
func (u *Usecase) State(roomID uuid.UUID) (model.GameState, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	state, ok := u.states[roomID]
	if !ok {
		return model.GameState{}, false
	}
	return snapshot(state), true
}

// PlayerRemoved keeps the holder reference valid when a member leaves
// mid-round. The caller already holds the room's exclusion scope.
func (u *Usecase) PlayerRemoved(ctx context.Context, roomID, playerID uuid.UUID) {
	state, ok := u.state(roomID)
	if !ok || state.Mode != model.ModeBombParty || state.Holder != playerID {
		return
	}

	members, err := u.repo.MembersByRoom(ctx, roomID)
	if err != nil || len(members) == 0 {
		return
	}

	holder := members[rand.Intn(len(members))].PlayerID
	u.mu.Lock()
	state.Holder = holder
	u.mu.Unlock()

	u.broadcaster.Broadcast(roomID, model.Event{
		Event:  model.EventBombAssigned,
		UserID: holder.String(),
	})
}

// RoomClosed drops any transient state for a deleted room.
func (u *Usecase) RoomClosed(roomID uuid.UUID) {
	u.mu.Lock()
	delete(u.states, roomID)
	u.mu.Unlock()
}

func (u *Usecase) state(roomID uuid.UUID) (*model.GameState, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	state, ok := u.states[roomID]
	return state, ok
}

func (u *Usecase) wrap(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return errors.Join(ErrInternal, err)
}

func snapshot(state *model.GameState) model.GameState {
	out := *state
	if state.Roles != nil {
		out.Roles = make(map[uuid.UUID]string, len(state.Roles))
		for k, v := range state.Roles {
			out.Roles[k] = v
		}
	}
	return out
}

func holderOrEmpty(state *model.GameState) string {
	if state.Holder == uuid.Nil {
		return ""
	}
	return state.Holder.String()
}
