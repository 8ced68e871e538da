// Package protocol describes the events exchanged with clients and the
// JSON envelope that carries them.
package protocol

import (
	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
)

// Inbound events.
const (
	EventJoinRoom     = "joinRoom"
	EventLeaveRoom    = "leaveRoom"
	EventRoomAction   = "roomAction"
	EventPlayerUpdate = "playerUpdate"
	EventMessage      = "message"
	EventPing         = "ping"
)

// Outbound events.
const (
	EventRoomJoined    = "roomJoined"
	EventPlayerJoined  = "playerJoined"
	EventPlayerLeft    = "playerLeft"
	EventPlayerUpdated = "playerUpdated"
	EventRoomLeft      = "roomLeft"
	EventPong          = "pong"
)

// ActionUpdateState is the one room action with a built-in side effect.
const ActionUpdateState = "updateState"

type JoinRoomRequest struct {
	RoomID     domain.RoomID   `json:"roomId"`
	PlayerData domain.Values   `json:"playerData"`
	GameType   domain.GameType `json:"gameType,omitempty"`
}

type RoomActionRequest struct {
	RoomID  domain.RoomID `json:"roomId"`
	Action  string        `json:"action"`
	Payload RawMessage    `json:"payload"`
}

type MessageRequest struct {
	Message any `json:"message"`
}

type RoomJoined struct {
	RoomID        domain.RoomID    `json:"roomId"`
	PlayerID      domain.PlayerID  `json:"playerId"`
	RoomState     domain.Values    `json:"roomState"`
	PlayersInRoom []core.PlayerDTO `json:"playersInRoom"`
}

type PlayerJoined struct {
	PlayerID   domain.PlayerID `json:"playerId"`
	PlayerData domain.Values   `json:"playerData"`
	RoomState  domain.Values   `json:"roomState"`
}

type PlayerLeft struct {
	PlayerID   domain.PlayerID `json:"playerId"`
	PlayerData domain.Values   `json:"playerData"`
}

type PlayerUpdated struct {
	PlayerID   domain.PlayerID `json:"playerId"`
	PlayerData domain.Values   `json:"playerData"`
}

type RoomAction struct {
	PlayerID  domain.PlayerID `json:"playerId"`
	Action    string          `json:"action"`
	Payload   RawMessage      `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

type Message struct {
	PlayerID   domain.PlayerID `json:"playerId"`
	PlayerData domain.Values   `json:"playerData"`
	Message    any             `json:"message"`
	Timestamp  int64           `json:"timestamp"`
}

type RoomLeft struct {
	PlayerID domain.PlayerID `json:"playerId"`
}

type Pong struct{}
