package core

import (
	"time"

	"github.com/dkeye/Rooms/internal/domain"
)

// Recipient pairs a player with the channel used to reach it.
type Recipient struct {
	PlayerID domain.PlayerID
	Conn     SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Recipient
}

// PlayerDTO is a read-only view for APIs (no transport fields).
type PlayerDTO struct {
	ID   domain.PlayerID `json:"id"`
	Data domain.Values   `json:"data"`
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	GameType    domain.GameType `json:"gameType"`
	MemberCount int             `json:"memberCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}
