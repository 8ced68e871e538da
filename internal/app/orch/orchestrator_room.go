package orch

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rooms/internal/domain"
	"github.com/dkeye/Rooms/internal/protocol"
)

func (o *Orchestrator) handleFrame(in Inbound) {
	logger := log.With().Str("module", "orch").Str("player_id", string(in.PlayerID)).Logger()

	env, err := protocol.Decode(in.Frame)
	if err != nil {
		logger.Warn().Err(err).Msg("bad frame")
		return
	}
	if !o.Limiter.Allow(in.PlayerID) {
		logger.Warn().Str("event", env.Event).Msg("rate limited")
		return
	}

	switch env.Event {
	case protocol.EventJoinRoom:
		o.join(logger, in, env.Data)
	case protocol.EventLeaveRoom:
		o.leave(logger, in)
	case protocol.EventRoomAction:
		o.roomAction(logger, in, env.Data)
	case protocol.EventPlayerUpdate:
		o.playerUpdate(logger, in, env.Data)
	case protocol.EventMessage:
		o.message(logger, in, env.Data)
	case protocol.EventPing:
		o.Broadcaster.Reply(in.PlayerID, in.Conn, protocol.EventPong, protocol.Pong{})
	default:
		logger.Warn().Str("event", env.Event).Msg("unknown event")
	}
}

func (o *Orchestrator) join(logger zerolog.Logger, in Inbound, data protocol.RawMessage) {
	var req protocol.JoinRoomRequest
	if err := protocol.DecodeData(data, &req); err != nil {
		logger.Warn().Err(err).Msg("bad joinRoom payload")
		return
	}

	joined, ok := o.Registry.JoinRoom(in.PlayerID, in.Conn, req.RoomID, req.PlayerData, req.GameType)
	if !ok {
		return
	}
	o.Broadcaster.Reply(in.PlayerID, in.Conn, protocol.EventRoomJoined, protocol.RoomJoined{
		RoomID:        joined.Room.ID,
		PlayerID:      in.PlayerID,
		RoomState:     joined.Room.State,
		PlayersInRoom: joined.Others,
	})
}

// leave always answers roomLeft, even when the player was in no room.
func (o *Orchestrator) leave(logger zerolog.Logger, in Inbound) {
	if !o.Registry.LeaveRoom(in.PlayerID) {
		logger.Debug().Msg("leave without a room")
	}
	o.Broadcaster.Reply(in.PlayerID, in.Conn, protocol.EventRoomLeft, protocol.RoomLeft{PlayerID: in.PlayerID})
}

// roomAction rebroadcasts the raw action to the whole room first; only
// then is an updateState payload merged into the room state.
func (o *Orchestrator) roomAction(logger zerolog.Logger, in Inbound, data protocol.RawMessage) {
	var req protocol.RoomActionRequest
	if err := protocol.DecodeData(data, &req); err != nil {
		logger.Warn().Err(err).Msg("bad roomAction payload")
		return
	}
	if roomID, ok := o.Registry.RoomOf(in.PlayerID); !ok || roomID != req.RoomID {
		logger.Debug().Str("room_id", string(req.RoomID)).Msg("roomAction from non member")
		return
	}

	o.Broadcaster.Broadcast(req.RoomID, protocol.EventRoomAction, protocol.RoomAction{
		PlayerID:  in.PlayerID,
		Action:    req.Action,
		Payload:   req.Payload,
		Timestamp: protocol.Timestamp(o.now()),
	})

	if req.Action != protocol.ActionUpdateState {
		return
	}
	var delta domain.Values
	if err := protocol.DecodeData(req.Payload, &delta); err != nil || delta == nil {
		logger.Debug().Str("room_id", string(req.RoomID)).Msg("updateState payload is not an object")
		return
	}
	o.Registry.UpdateRoomState(req.RoomID, delta)
}

func (o *Orchestrator) playerUpdate(logger zerolog.Logger, in Inbound, data protocol.RawMessage) {
	var delta domain.Values
	if err := protocol.DecodeData(data, &delta); err != nil {
		logger.Warn().Err(err).Msg("bad playerUpdate payload")
		return
	}
	if !o.Registry.UpdatePlayerData(in.PlayerID, delta) {
		logger.Debug().Msg("playerUpdate without a room")
	}
}

func (o *Orchestrator) message(logger zerolog.Logger, in Inbound, data protocol.RawMessage) {
	var req protocol.MessageRequest
	if err := protocol.DecodeData(data, &req); err != nil {
		logger.Warn().Err(err).Msg("bad message payload")
		return
	}
	player, ok := o.Registry.Player(in.PlayerID)
	if !ok {
		logger.Debug().Msg("message without a room")
		return
	}
	o.Broadcaster.Broadcast(player.RoomID, protocol.EventMessage, protocol.Message{
		PlayerID:   in.PlayerID,
		PlayerData: player.Data,
		Message:    req.Message,
		Timestamp:  protocol.Timestamp(o.now()),
	})
}
