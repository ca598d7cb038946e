package structures

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/geom"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/services"
)

// Player bus events used by tools.
const (
	EventDisplayWarning = "displayWarningAtPosition"
	EventSelectTool     = "selectTool"
	EventUseTool        = "useTool"
)

// Status classifies a tool response.
type Status uint8

const (
	StatusValid Status = iota
	// StatusWarning is shown to the player.
	StatusWarning
	// StatusError is logged.
	StatusError
)

// Response is the outcome of checking a tool interaction.
type Response struct {
	Status  Status
	Message string
}

func Valid() Response             { return Response{Status: StatusValid} }
func Warning(msg string) Response { return Response{Status: StatusWarning, Message: msg} }
func Failure(msg string) Response { return Response{Status: StatusError, Message: msg} }

func (r Response) IsValid() bool { return r.Status == StatusValid }
func (r Response) IsError() bool { return r.Status == StatusError }

// Tool acts on a grid position on behalf of the player.
type Tool interface {
	Config() ToolConfig
	CanInteract(player *entity.Entity, pos geom.GridPoint) Response
	Perform(player *entity.Entity, pos geom.GridPoint) error
}

// Interact checks t against pos and performs it when valid. Warnings are
// shown to the player at half the tile coordinates; errors are logged.
func Interact(t Tool, player *entity.Entity, pos geom.GridPoint, logger log.Log) Response {
	logger = log.OrNop(logger)
	res := t.CanInteract(player, pos)
	switch res.Status {
	case StatusError:
		logger.Error(res.Message, log.String("tool", t.Config().Name), log.String("position", pos.String()))
		return res
	case StatusWarning:
		player.Events().Trigger(EventDisplayWarning, res.Message, mgl64.Vec2{float64(pos.X) / 2, float64(pos.Y) / 2})
		return res
	}
	if err := t.Perform(player, pos); err != nil {
		logger.Error("tool interaction failed", log.String("tool", t.Config().Name), log.Error(err))
		return Failure(err.Error())
	}
	return res
}

// BuildFunc creates the structure a placement tool puts down at world
// position pos.
type BuildFunc func(pos mgl64.Vec2, player *entity.Entity) (*entity.Entity, error)

// PlacementTool places a new structure on a free tile and charges its cost
// from the game state.
type PlacementTool struct {
	config  ToolConfig
	grid    services.Placement
	terrain services.Terrain
	store   *gamestate.Store
	build   BuildFunc
}

// NewPlacementTool creates a tool. terrain may be nil, in which case tiles
// map to world units one to one.
func NewPlacementTool(cfg ToolConfig, grid services.Placement, terrain services.Terrain, store *gamestate.Store, build BuildFunc) *PlacementTool {
	return &PlacementTool{config: cfg, grid: grid, terrain: terrain, store: store, build: build}
}

func (t *PlacementTool) Config() ToolConfig { return t.config }

// CanInteract requires a free tile and enough of every resource.
func (t *PlacementTool) CanInteract(_ *entity.Entity, pos geom.GridPoint) Response {
	if t.grid == nil || t.build == nil {
		return Failure(fmt.Sprintf("%s tool is not configured", t.config.Name))
	}
	if _, ok := t.grid.At(pos); ok {
		return Warning("Invalid position")
	}
	for _, res := range slices.Sorted(maps.Keys(t.config.Cost)) {
		if t.store.Resource(res) < t.config.Cost[res] {
			return Warning("Not enough " + res)
		}
	}
	return Valid()
}

// Perform builds the structure, claims the tile and then pays for it.
func (t *PlacementTool) Perform(player *entity.Entity, pos geom.GridPoint) error {
	world := pos.Vec2()
	if t.terrain != nil {
		world = t.terrain.TileToWorld(pos)
	}
	e, err := t.build(world, player)
	if err != nil {
		return fmt.Errorf("%s: %w", t.config.Name, err)
	}
	if err := t.grid.Place(pos, e); err != nil {
		if r := e.Registry(); r != nil {
			r.Unregister(e)
		} else {
			e.Dispose()
		}
		return fmt.Errorf("%s: %w", t.config.Name, err)
	}
	for res, n := range t.config.Cost {
		if _, err := t.store.UpdateResource(res, -n); err != nil {
			return fmt.Errorf("%s: charge %s: %w", t.config.Name, res, err)
		}
	}
	return nil
}

// ToolBelt is the player's set of tools, one of which is selected. It
// listens for "selectTool"(name) and "useTool"(GridPoint) on the player.
type ToolBelt struct {
	entity.Base

	tools    map[string]Tool
	selected string
	subs     []bus.Subscription
	logger   log.Log
}

func NewToolBelt(tools map[string]Tool, logger log.Log) *ToolBelt {
	return &ToolBelt{tools: tools, logger: log.OrNop(logger).With(log.Component("tools"))}
}

func (b *ToolBelt) Kind() entity.Kind { return entity.KindTool }

func (b *ToolBelt) Create() error {
	events := b.Entity().Events()
	b.subs = append(b.subs,
		bus.Listen1(events, EventSelectTool, func(name string) {
			if err := b.Select(name); err != nil {
				b.logger.Warn("tool selection failed", log.Error(err))
			}
		}),
		bus.Listen1(events, EventUseTool, func(pos geom.GridPoint) { b.Use(pos) }),
	)
	return nil
}

func (b *ToolBelt) Dispose() {
	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
}

// Select makes name the active tool. An empty name deselects.
func (b *ToolBelt) Select(name string) error {
	if name == "" {
		b.selected = ""
		return nil
	}
	if _, ok := b.tools[name]; !ok {
		return fmt.Errorf("select %q: %w", name, ErrUnknownTool)
	}
	b.selected = name
	return nil
}

// Selected returns the active tool, nil when none is selected.
func (b *ToolBelt) Selected() Tool { return b.tools[b.selected] }

// Names lists the tools in sorted order.
func (b *ToolBelt) Names() []string { return slices.Sorted(maps.Keys(b.tools)) }

// Use interacts with the selected tool at pos.
func (b *ToolBelt) Use(pos geom.GridPoint) Response {
	t := b.Selected()
	if t == nil {
		return Failure("no tool selected")
	}
	return Interact(t, b.Entity(), pos, b.logger)
}
