package core

import (
	"time"

	"github.com/dkeye/Rooms/internal/domain"
)

const GenericGameType domain.GameType = "generic"

// Descriptor is the pluggable logic bound to a room at creation time.
// InitializeState must return a value sharing nothing with earlier calls.
type Descriptor interface {
	InitializeState() domain.Values
}

// StateUpdateHook is an optional Descriptor capability, invoked after
// every accepted state mutation with the delta that was applied.
type StateUpdateHook interface {
	OnStateUpdate(room HookRoom, delta domain.Values) error
}

// HookRoom is what a hook may see of a room. State is the live map;
// Members is a copy.
type HookRoom struct {
	ID        domain.RoomID
	GameType  domain.GameType
	CreatedAt time.Time
	Members   []domain.PlayerID
	State     domain.Values
}

// DescriptorFunc adapts a plain initializer to Descriptor.
type DescriptorFunc func() domain.Values

func (f DescriptorFunc) InitializeState() domain.Values { return f() }
