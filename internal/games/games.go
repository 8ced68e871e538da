// Package games holds the built-in game types a room can be bound to.
package games

import (
	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
)

const (
	TypeHideAndSeek domain.GameType = "hideAndSeek"
	TypeChatRoom    domain.GameType = "chatRoom"
	TypeDrawingGame domain.GameType = "drawingGame"
)

// NewRegistry returns a registry with every built-in game type.
func NewRegistry() *core.GameTypes {
	reg := core.NewGameTypes(Generic{})
	reg.Register(TypeHideAndSeek, HideAndSeek{})
	reg.Register(TypeChatRoom, ChatRoom{})
	reg.Register(TypeDrawingGame, DrawingGame{})
	return reg
}

type Generic struct{}

func (Generic) InitializeState() domain.Values {
	return domain.Values{
		"players":  map[string]any{},
		"objects":  map[string]any{},
		"settings": map[string]any{},
	}
}

type ChatRoom struct{}

func (ChatRoom) InitializeState() domain.Values {
	return domain.Values{
		"messages": []any{},
		"users":    map[string]any{},
		"settings": map[string]any{
			"maxMessages": 100,
		},
	}
}

type DrawingGame struct{}

func (DrawingGame) InitializeState() domain.Values {
	return domain.Values{
		"canvas":        map[string]any{},
		"currentDrawer": nil,
		"wordToDraw":    nil,
		"scores":        map[string]any{},
	}
}
