package core

import (
	"testing"

	"github.com/dkeye/Rooms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constDescriptor(key string) Descriptor {
	return DescriptorFunc(func() domain.Values { return domain.Values{key: true} })
}

func TestGameTypes_Resolve(t *testing.T) {
	reg := NewGameTypes(constDescriptor("generic"))
	reg.Register("chatRoom", constDescriptor("chat"))

	tests := map[string]struct {
		gt      domain.GameType
		expType domain.GameType
		expKey  string
	}{
		"registered":   {gt: "chatRoom", expType: "chatRoom", expKey: "chat"},
		"empty":        {gt: "", expType: GenericGameType, expKey: "generic"},
		"unregistered": {gt: "poker", expType: GenericGameType, expKey: "generic"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gt, d := reg.Resolve(tt.gt)
			assert.Equal(t, tt.expType, gt)
			assert.Contains(t, d.InitializeState(), tt.expKey)
		})
	}
}

func TestGameTypes_RegisterLastWriteWins(t *testing.T) {
	reg := NewGameTypes(constDescriptor("generic"))
	reg.Register("drawing", constDescriptor("first"))
	reg.Register("drawing", constDescriptor("second"))

	d, ok := reg.Lookup("drawing")
	require.True(t, ok)
	assert.Equal(t, domain.Values{"second": true}, d.InitializeState())
}

func TestGameTypes_LookupMiss(t *testing.T) {
	reg := NewGameTypes(constDescriptor("generic"))

	_, ok := reg.Lookup("nope")
	assert.False(t, ok)
}

func TestGameTypes_OverrideGeneric(t *testing.T) {
	reg := NewGameTypes(constDescriptor("old"))
	reg.Register(GenericGameType, constDescriptor("new"))

	_, d := reg.Resolve("unknown")
	assert.Equal(t, domain.Values{"new": true}, d.InitializeState())
}

func TestGameTypes_List(t *testing.T) {
	reg := NewGameTypes(constDescriptor("generic"))
	reg.Register("hideAndSeek", constDescriptor("h"))
	reg.Register("chatRoom", constDescriptor("c"))

	assert.Equal(t, []domain.GameType{"chatRoom", GenericGameType, "hideAndSeek"}, reg.List())
}
