package app

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"

	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
	"github.com/dkeye/Rooms/internal/protocol"
)

// Deliverer fans an event out to a set of recipients.
type Deliverer interface {
	Deliver(roomID domain.RoomID, recipients []core.Recipient, event string, payload any) core.PublishResult
}

type roomEntry struct {
	room *domain.Room
}

type playerEntry struct {
	player *domain.Player
	conn   core.SignalConnection
}

// SessionRegistry owns every live room and player. It is the only writer
// of Room.Members and Player.RoomID, and keeps them in agreement: a room
// with no members is removed in the same operation that emptied it.
//
// All operations are serialized by one mutex. Notifications are enqueued
// while it is held, so observers see them in mutation order. Game type
// hooks also run under it and must not call back into the registry.
type SessionRegistry struct {
	mu      sync.Mutex
	rooms   map[domain.RoomID]*roomEntry
	players map[domain.PlayerID]*playerEntry

	games          *core.GameTypes
	out            Deliverer
	strictGameType bool
	now            func() time.Time
}

type RegistryOption func(*SessionRegistry)

// WithStrictGameType rejects joins naming a game type different from the
// one the room is bound to.
func WithStrictGameType(strict bool) RegistryOption {
	return func(r *SessionRegistry) { r.strictGameType = strict }
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *SessionRegistry) { r.now = now }
}

func NewSessionRegistry(games *core.GameTypes, out Deliverer, opts ...RegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		rooms:   make(map[domain.RoomID]*roomEntry),
		players: make(map[domain.PlayerID]*playerEntry),
		games:   games,
		out:     out,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom returns the room named id, creating it bound to gameType when
// it does not exist yet. An existing room is returned unchanged.
func (r *SessionRegistry) CreateRoom(id domain.RoomID, gameType domain.GameType) domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, _ := r.createRoomLocked(id, gameType)
	return e.room.Snapshot()
}

func (r *SessionRegistry) createRoomLocked(id domain.RoomID, gameType domain.GameType) (*roomEntry, bool) {
	if e, ok := r.rooms[id]; ok {
		return e, false
	}
	bound, desc := r.games.Resolve(gameType)
	e := &roomEntry{
		room: domain.NewRoom(id, bound, desc.InitializeState(), r.now()),
	}
	r.rooms[id] = e
	log.Info().
		Str("module", "app.registry").
		Str("room_id", string(id)).
		Str("game_type", string(bound)).
		Str("requested_game_type", string(gameType)).
		Msg("room created")
	return e, true
}

// Joined is the state observed by a join, captured atomically with it.
type Joined struct {
	Room   domain.Room
	Player domain.Player
	// Others are the members present before the joiner.
	Others []core.PlayerDTO
}

// JoinRoom binds the player to roomID, creating the room on first use.
// gameType only matters when the room is created. A player already in
// another room leaves it first; a rejoin of the same room keeps the room
// and only replaces the player record. The other members are notified
// with playerJoined.
// The boolean is false when the join was refused.
func (r *SessionRegistry) JoinRoom(
	pid domain.PlayerID,
	conn core.SignalConnection,
	roomID domain.RoomID,
	data domain.Values,
	gameType domain.GameType,
) (Joined, bool) {
	logger := log.With().Str("module", "app.registry").Str("player_id", string(pid)).Str("room_id", string(roomID)).Logger()
	if err := domain.ValidateRoomID(roomID); err != nil {
		logger.Warn().Err(err).Msg("join refused")
		return Joined{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.rooms[roomID]; ok && gameType != "" {
		if requested, _ := r.games.Resolve(gameType); requested != e.room.GameType {
			logger.Debug().
				Str("game_type", string(e.room.GameType)).
				Str("requested_game_type", string(gameType)).
				Msg("game type mismatch on join")
			if r.strictGameType {
				return Joined{}, false
			}
		}
	}

	if pe, ok := r.players[pid]; ok {
		if pe.player.RoomID == roomID {
			delete(r.players, pid)
			if e, ok := r.rooms[roomID]; ok {
				delete(e.room.Members, pid)
			}
			logger.Debug().Msg("rejoin of current room")
		} else {
			r.leaveLocked(pid)
		}
	}

	e, _ := r.createRoomLocked(roomID, gameType)
	room := e.room

	others := r.playersLocked(room)
	recipients := r.recipientsLocked(room)

	player := domain.NewPlayer(pid, roomID, data, r.now())
	r.players[pid] = &playerEntry{player: player, conn: conn}
	room.Members[pid] = struct{}{}
	logger.Info().Int("members", len(room.Members)).Msg("player joined")

	if len(recipients) > 0 {
		r.out.Deliver(roomID, recipients, protocol.EventPlayerJoined, protocol.PlayerJoined{
			PlayerID:   pid,
			PlayerData: player.Data,
			RoomState:  room.State,
		})
	}

	return Joined{
		Room:   room.Snapshot(),
		Player: player.Snapshot(),
		Others: others,
	}, true
}

// LeaveRoom removes the player and, when it was the last member, its room.
// Remaining members are notified with playerLeft. Unknown players are a
// no-op; the boolean reports whether a record was removed.
func (r *SessionRegistry) LeaveRoom(pid domain.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(pid)
}

func (r *SessionRegistry) leaveLocked(pid domain.PlayerID) bool {
	pe, ok := r.players[pid]
	if !ok {
		return false
	}
	delete(r.players, pid)

	roomID := pe.player.RoomID
	logger := log.With().Str("module", "app.registry").Str("player_id", string(pid)).Str("room_id", string(roomID)).Logger()

	e, ok := r.rooms[roomID]
	if !ok {
		logger.Warn().Msg("player left a room that no longer exists")
		return true
	}
	delete(e.room.Members, pid)
	logger.Info().Int("members", len(e.room.Members)).Msg("player left")

	if len(e.room.Members) == 0 {
		delete(r.rooms, roomID)
		logger.Info().Msg("room closed")
		return true
	}

	r.out.Deliver(roomID, r.recipientsLocked(e.room), protocol.EventPlayerLeft, protocol.PlayerLeft{
		PlayerID:   pid,
		PlayerData: pe.player.Data,
	})
	return true
}

// UpdatePlayerData shallow-merges delta into the player's data and sends
// the merged data to the whole room, the player included.
func (r *SessionRegistry) UpdatePlayerData(pid domain.PlayerID, delta domain.Values) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pe, ok := r.players[pid]
	if !ok {
		return false
	}
	pe.player.Data = pe.player.Data.Merge(delta)

	if e, ok := r.rooms[pe.player.RoomID]; ok {
		r.out.Deliver(e.room.ID, r.recipientsLocked(e.room), protocol.EventPlayerUpdated, protocol.PlayerUpdated{
			PlayerID:   pid,
			PlayerData: pe.player.Data,
		})
	}
	return true
}

// UpdateRoomState shallow-merges delta into the room state, then runs the
// bound game type's hook with the delta. Hook faults are logged only.
func (r *SessionRegistry) UpdateRoomState(roomID domain.RoomID, delta domain.Values) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	e.room.State = e.room.State.Merge(delta)
	r.runHookLocked(e, delta)
	return true
}

// runHookLocked resolves the descriptor on every call, so a game type
// registered again later applies to rooms that already exist.
func (r *SessionRegistry) runHookLocked(e *roomEntry, delta domain.Values) {
	_, desc := r.games.Resolve(e.room.GameType)
	hook, ok := desc.(core.StateUpdateHook)
	if !ok {
		return
	}
	view := core.HookRoom{
		ID:        e.room.ID,
		GameType:  e.room.GameType,
		CreatedAt: e.room.CreatedAt,
		Members:   e.room.MemberIDs(),
		State:     e.room.State,
	}

	var err error
	var pc panics.Catcher
	pc.Try(func() { err = hook.OnStateUpdate(view, delta) })

	logger := log.With().Str("module", "app.registry").Str("room_id", string(e.room.ID)).Str("game_type", string(e.room.GameType)).Logger()
	if rec := pc.Recovered(); rec != nil {
		logger.Error().Err(rec.AsError()).Msg("state update hook panicked")
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("state update hook failed")
	}
}

// PlayersInRoom lists the current members, oldest join first. Unknown
// rooms give an empty list.
func (r *SessionRegistry) PlayersInRoom(roomID domain.RoomID) []core.PlayerDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[roomID]
	if !ok {
		return []core.PlayerDTO{}
	}
	return r.playersLocked(e.room)
}

func (r *SessionRegistry) membersLocked(room *domain.Room, exclude ...domain.PlayerID) []*playerEntry {
	out := make([]*playerEntry, 0, len(room.Members))
	for pid := range room.Members {
		if slices.Contains(exclude, pid) {
			continue
		}
		if pe, ok := r.players[pid]; ok {
			out = append(out, pe)
		}
	}
	slices.SortFunc(out, func(a, b *playerEntry) int {
		if c := a.player.JoinedAt.Compare(b.player.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.player.ID, b.player.ID)
	})
	return out
}

func (r *SessionRegistry) playersLocked(room *domain.Room, exclude ...domain.PlayerID) []core.PlayerDTO {
	members := r.membersLocked(room, exclude...)
	out := make([]core.PlayerDTO, 0, len(members))
	for _, pe := range members {
		out = append(out, core.PlayerDTO{ID: pe.player.ID, Data: pe.player.Data.Clone()})
	}
	return out
}

func (r *SessionRegistry) recipientsLocked(room *domain.Room, exclude ...domain.PlayerID) []core.Recipient {
	members := r.membersLocked(room, exclude...)
	out := make([]core.Recipient, 0, len(members))
	for _, pe := range members {
		out = append(out, core.Recipient{PlayerID: pe.player.ID, Conn: pe.conn})
	}
	return out
}

// Recipients returns the channels of the room's members minus exclude.
func (r *SessionRegistry) Recipients(roomID domain.RoomID, exclude ...domain.PlayerID) ([]core.Recipient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	return r.recipientsLocked(e.room, exclude...), true
}

func (r *SessionRegistry) Player(pid domain.PlayerID) (domain.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pe, ok := r.players[pid]
	if !ok {
		return domain.Player{}, false
	}
	return pe.player.Snapshot(), true
}

func (r *SessionRegistry) RoomOf(pid domain.PlayerID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pe, ok := r.players[pid]
	if !ok {
		return "", false
	}
	return pe.player.RoomID, true
}

func (r *SessionRegistry) Room(id domain.RoomID) (domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return e.room.Snapshot(), true
}

func (r *SessionRegistry) Rooms() []core.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for _, e := range r.rooms {
		out = append(out, core.RoomInfo{
			ID:          e.room.ID,
			GameType:    e.room.GameType,
			MemberCount: len(e.room.Members),
			CreatedAt:   e.room.CreatedAt,
		})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
