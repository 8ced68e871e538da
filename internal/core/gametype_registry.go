package core

import (
	"slices"
	"sync"

	"github.com/dkeye/Rooms/internal/domain"
	"github.com/rs/zerolog/log"
)

// GameTypes maps game type names to descriptors. Registration is last
// write wins. Lookups that miss fall back to the generic descriptor.
type GameTypes struct {
	mu      sync.RWMutex
	types   map[domain.GameType]Descriptor
	generic Descriptor
}

func NewGameTypes(generic Descriptor) *GameTypes {
	return &GameTypes{
		types:   map[domain.GameType]Descriptor{GenericGameType: generic},
		generic: generic,
	}
}

func (g *GameTypes) Register(gt domain.GameType, d Descriptor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.types[gt]; ok {
		log.Debug().Str("module", "core.gametypes").Str("game_type", string(gt)).Msg("overwriting game type")
	}
	g.types[gt] = d
	if gt == GenericGameType {
		g.generic = d
	}
}

func (g *GameTypes) Lookup(gt domain.GameType) (Descriptor, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.types[gt]
	return d, ok
}

// Resolve returns the descriptor for gt and the name it is bound under.
// Empty or unknown names resolve to the generic type.
func (g *GameTypes) Resolve(gt domain.GameType) (domain.GameType, Descriptor) {
	if gt != "" {
		if d, ok := g.Lookup(gt); ok {
			return gt, d
		}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GenericGameType, g.generic
}

func (g *GameTypes) List() []domain.GameType {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.GameType, 0, len(g.types))
	for gt := range g.types {
		out = append(out, gt)
	}
	slices.Sort(out)
	return out
}
