package domain

import (
	"errors"
	"time"
)

const MaxRoomIDLen = 64

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

type (
	RoomID   string
	GameType string
)

// Room is a named group of players sharing a state blob.
// Members and State are owned by the session registry.
type Room struct {
	ID        RoomID
	GameType  GameType
	Members   map[PlayerID]struct{}
	State     Values
	CreatedAt time.Time
}

func NewRoom(id RoomID, gameType GameType, state Values, now time.Time) *Room {
	if state == nil {
		state = Values{}
	}
	return &Room{
		ID:        id,
		GameType:  gameType,
		Members:   make(map[PlayerID]struct{}),
		State:     state,
		CreatedAt: now,
	}
}

// MemberIDs returns a copy of the member set.
func (r *Room) MemberIDs() []PlayerID {
	out := make([]PlayerID, 0, len(r.Members))
	for id := range r.Members {
		out = append(out, id)
	}
	return out
}

// Snapshot copies the room so it can leave the registry lock.
// State is cloned shallowly.
func (r *Room) Snapshot() Room {
	members := make(map[PlayerID]struct{}, len(r.Members))
	for id := range r.Members {
		members[id] = struct{}{}
	}
	return Room{
		ID:        r.ID,
		GameType:  r.GameType,
		Members:   members,
		State:     r.State.Clone(),
		CreatedAt: r.CreatedAt,
	}
}

func ValidateRoomID(id RoomID) error {
	if len(id) == 0 {
		return ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}
