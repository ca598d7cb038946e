package structures

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/factories"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/services"
)

// Builders returns the structures placement tools can build with f, keyed by
// tool id.
func Builders(f *factories.Factory) map[string]BuildFunc {
	return map[string]BuildFunc{
		"wall": func(pos mgl64.Vec2, _ *entity.Entity) (*entity.Entity, error) {
			return f.Wall(pos)
		},
		"gate": func(pos mgl64.Vec2, player *entity.Entity) (*entity.Entity, error) {
			e, _, err := f.Gate(pos, player)
			return e, err
		},
	}
}

// NewTools creates one placement tool per configured id. Every id needs a
// builder.
func NewTools(cfg ToolConfigs, builders map[string]BuildFunc, grid services.Placement, terrain services.Terrain, store *gamestate.Store) (map[string]Tool, error) {
	tools := make(map[string]Tool, len(cfg.Tools))
	for id, tc := range cfg.Tools {
		build, ok := builders[id]
		if !ok {
			return nil, fmt.Errorf("tool %q: %w", id, ErrUnknownTool)
		}
		tools[id] = NewPlacementTool(tc, grid, terrain, store, build)
	}
	return tools, nil
}
