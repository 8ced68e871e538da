// Package domain contains entity without logic, just meta-data
package domain

import "time"

type PlayerID string

// Player is one connected client inside its current room.
// A record lives from join to leave; a rejoin creates a new one.
type Player struct {
	ID       PlayerID
	RoomID   RoomID
	Data     Values
	JoinedAt time.Time
}

func NewPlayer(id PlayerID, roomID RoomID, data Values, now time.Time) *Player {
	return &Player{
		ID:       id,
		RoomID:   roomID,
		Data:     data.Clone(),
		JoinedAt: now,
	}
}

func (p *Player) Snapshot() Player {
	cp := *p
	cp.Data = p.Data.Clone()
	return cp
}
