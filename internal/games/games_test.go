package games

import (
	"testing"

	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_BuiltIns(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t,
		[]domain.GameType{TypeChatRoom, TypeDrawingGame, core.GenericGameType, TypeHideAndSeek},
		reg.List(),
	)
}

func TestInitializeState(t *testing.T) {
	tests := map[string]struct {
		gt  domain.GameType
		exp domain.Values
	}{
		"generic": {
			gt: core.GenericGameType,
			exp: domain.Values{
				"players":  map[string]any{},
				"objects":  map[string]any{},
				"settings": map[string]any{},
			},
		},
		"chat room": {
			gt: TypeChatRoom,
			exp: domain.Values{
				"messages": []any{},
				"users":    map[string]any{},
				"settings": map[string]any{"maxMessages": 100},
			},
		},
		"hide and seek": {
			gt: TypeHideAndSeek,
			exp: domain.Values{
				"hider":            nil,
				"seekers":          []any{},
				"treasureLocation": nil,
				"gameStarted":      false,
				"roundTime":        300,
			},
		},
		"drawing game": {
			gt: TypeDrawingGame,
			exp: domain.Values{
				"canvas":        map[string]any{},
				"currentDrawer": nil,
				"wordToDraw":    nil,
				"scores":        map[string]any{},
			},
		},
	}

	reg := NewRegistry()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, ok := reg.Lookup(tt.gt)
			require.True(t, ok)
			assert.Equal(t, tt.exp, d.InitializeState())
		})
	}
}

func TestInitializeState_NoSharedSubstructure(t *testing.T) {
	first := ChatRoom{}.InitializeState()
	second := ChatRoom{}.InitializeState()

	first["users"].(map[string]any)["p1"] = "Alice"
	first["settings"].(map[string]any)["maxMessages"] = 1

	assert.Empty(t, second["users"])
	assert.Equal(t, 100, second["settings"].(map[string]any)["maxMessages"])
}

func TestHideAndSeek_OnStateUpdate(t *testing.T) {
	var g core.Descriptor = HideAndSeek{}
	hook, ok := g.(core.StateUpdateHook)
	require.True(t, ok)

	room := core.HookRoom{ID: "r1", GameType: TypeHideAndSeek, State: domain.Values{}}
	assert.NoError(t, hook.OnStateUpdate(room, domain.Values{"treasureLocation": map[string]any{"x": 5, "y": 7}}))
	assert.NoError(t, hook.OnStateUpdate(room, domain.Values{"gameStarted": true}))
}

func TestGeneric_HasNoHook(t *testing.T) {
	var g core.Descriptor = Generic{}
	_, ok := g.(core.StateUpdateHook)
	assert.False(t, ok)
}
