package games

import (
	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultRoundTime = 300 // seconds

type HideAndSeek struct{}

func (HideAndSeek) InitializeState() domain.Values {
	return domain.Values{
		"hider":            nil,
		"seekers":          []any{},
		"treasureLocation": nil,
		"gameStarted":      false,
		"roundTime":        defaultRoundTime,
	}
}

func (HideAndSeek) OnStateUpdate(room core.HookRoom, delta domain.Values) error {
	if loc, ok := delta["treasureLocation"]; ok && loc != nil {
		log.Info().
			Str("module", "games.hide_and_seek").
			Str("room_id", string(room.ID)).
			Interface("treasure_location", loc).
			Msg("treasure hidden")
	}
	return nil
}
