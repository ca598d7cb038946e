// Package area builds a playable map from its config: assets first, then the
// terrain services, then every entity in a fixed order.
package area

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/factories"
	"github.com/zeusync/outpost/internal/core/geom"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/services"
	"github.com/zeusync/outpost/internal/core/structures"
)

// LoadSliceMillis is the asset loading budget per poll.
const LoadSliceMillis = 10

// PowerupOffset is where companion-spawned powerups land relative to the
// player.
var PowerupOffset = mgl64.Vec2{1.5, 0}

var ErrNotCreated = errors.New("area not created")

// Source supplies the map config.
type Source func() (MapConfig, error)

// FromFile loads the config from path when the area is created.
func FromFile(path string) Source {
	return func() (MapConfig, error) { return LoadFile(path) }
}

// FromConfig uses an already decoded config, validating it on creation.
func FromConfig(cfg MapConfig) Source {
	return func() (MapConfig, error) { return cfg, cfg.Validate() }
}

type Option func(*GameArea)

// WithTools gives the player a tool belt built from cfg.
func WithTools(cfg structures.ToolConfigs) Option {
	return func(a *GameArea) { a.tools = &cfg }
}

func WithLogger(l log.Log) Option {
	return func(a *GameArea) { a.logger = log.OrNop(l) }
}

// GameArea owns the entities of one map.
type GameArea struct {
	locator *services.Locator
	source  Source
	tools   *structures.ToolConfigs
	logger  log.Log

	cfg       MapConfig
	factory   *factories.Factory
	terrain   Terrain
	grid      *structures.Grid
	lab       *Laboratory
	player    *entity.Entity
	companion *entity.Entity
	spawned   []*entity.Entity
	subs      []bus.Subscription
	created   bool
}

func New(loc *services.Locator, source Source, opts ...Option) *GameArea {
	a := &GameArea{locator: loc, source: source, logger: log.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(log.Component("area"))
	return a
}

// Create loads the config and assets and spawns the map. Any failure undoes
// what was spawned and sends the player back to the main menu.
func (a *GameArea) Create(ctx context.Context) error {
	if err := a.create(ctx); err != nil {
		a.logger.Error("area creation failed", log.Error(err))
		a.teardown()
		a.fallback()
		return err
	}
	a.created = true
	a.logger.Info("area created",
		log.String("map", a.cfg.MapName), log.Int("entities", len(a.spawned)))
	return nil
}

func (a *GameArea) create(ctx context.Context) error {
	cfg, err := a.source()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.terrain = cfg.Terrain

	if a.factory, err = factories.New(a.locator, a.logger); err != nil {
		return err
	}
	if err := a.loadAssets(ctx); err != nil {
		return err
	}

	a.grid = structures.NewGrid(a.terrain.Bounds())
	a.locator.Register(services.RoleTerrain, a.terrain)
	a.locator.Register(services.RolePlacement, a.grid)

	for _, step := range []func() error{
		a.spawnEnvironment,
		a.spawnPowerups,
		a.spawnUpgradeBench,
		a.spawnExtractors,
		a.spawnShip,
		a.spawnPlayer,
		a.spawnCompanion,
		a.spawnLaboratory,
		a.spawnEnemies,
		a.spawnDefences,
	} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}

	a.subs = append(a.subs,
		bus.Listen1(a.companion.Events(), components.EventSpawnPotion, func(t components.PotionType) {
			if _, err := a.SpawnPotion(t); err != nil {
				a.logger.Error("potion spawn failed", log.Error(err))
			}
		}),
		bus.Listen1(a.companion.Events(), components.EventSpawnPowerup, func(t components.PowerupType) {
			if _, err := a.SpawnPowerup(t); err != nil {
				a.logger.Error("powerup spawn failed", log.Error(err))
			}
		}),
	)
	return nil
}

func (a *GameArea) loadAssets(ctx context.Context) error {
	paths := a.cfg.Assets()
	if len(paths) == 0 {
		return nil
	}
	res, err := a.locator.Resources()
	if err != nil {
		return err
	}
	res.Load(paths...)
	for {
		done, err := res.LoadForMillis(ctx, LoadSliceMillis)
		if err != nil {
			return fmt.Errorf("load assets: %w", err)
		}
		a.logger.Debug("loading assets", log.Int("progress", res.Progress()))
		if done {
			return nil
		}
	}
}

func (a *GameArea) fallback() {
	screens, err := a.locator.Screens()
	if err != nil {
		a.logger.Warn("no screen to fall back to", log.Error(err))
		return
	}
	screens.SetScreen(services.ScreenMainMenu)
}

// track records e as part of the area and hands it to the renderer.
func (a *GameArea) track(e *entity.Entity, err error) (*entity.Entity, error) {
	if err != nil {
		return nil, err
	}
	a.spawned = append(a.spawned, e)
	if r := a.locator.Render(); r != nil {
		r.Track(e)
	}
	return e, nil
}

func (a *GameArea) at(p geom.GridPoint) mgl64.Vec2 { return a.terrain.TileToWorld(p) }

func (a *GameArea) entities() EntityConfigs {
	if a.cfg.Entities == nil {
		return EntityConfigs{}
	}
	return *a.cfg.Entities
}

func (a *GameArea) spawnEnvironment() error {
	for _, p := range a.entities().Walls {
		e, err := a.track(a.factory.Wall(a.at(p)))
		if err != nil {
			return err
		}
		if err := a.grid.Place(p, e); err != nil {
			return err
		}
	}
	return nil
}

func (a *GameArea) spawnPowerups() error {
	for _, p := range a.entities().Powerups {
		if _, err := a.track(a.factory.Powerup(p.Type, a.at(p.Position))); err != nil {
			return err
		}
	}
	return nil
}

func (a *GameArea) spawnUpgradeBench() error {
	if b := a.entities().UpgradeBench; b != nil {
		_, err := a.track(a.factory.UpgradeBench(a.at(b.Position)))
		return err
	}
	return nil
}

func (a *GameArea) spawnExtractors() error {
	for _, x := range a.entities().Extractors {
		if _, err := a.track(a.factory.Extractor(a.at(x.Position), x.Health, x.Resource, x.TickRate, x.TickSize)); err != nil {
			return err
		}
	}
	return nil
}

func (a *GameArea) spawnShip() error {
	if s := a.entities().Ship; s != nil {
		_, err := a.track(a.factory.Ship(a.at(s.Position), a.cfg.WinConditions.Solstite))
		return err
	}
	return nil
}

func (a *GameArea) spawnPlayer() error {
	pos := a.terrain.Center()
	if a.cfg.Player != nil {
		pos = a.cfg.Player.Position
	}

	var extra []entity.Component
	if a.tools != nil {
		tools, err := structures.NewTools(*a.tools, structures.Builders(a.factory), a.grid, a.terrain, a.factory.Store())
		if err != nil {
			return err
		}
		extra = append(extra, structures.NewToolBelt(tools, a.logger))
	}

	var err error
	a.player, err = a.track(a.factory.Player(a.at(pos), extra...))
	return err
}

func (a *GameArea) spawnCompanion() error {
	pos := a.terrain.Center().Add(geom.Pt(1, 0))
	if a.cfg.Companion != nil {
		pos = a.cfg.Companion.Position
	}
	var err error
	a.companion, err = a.track(a.factory.Companion(a.at(pos), a.player))
	return err
}

func (a *GameArea) spawnLaboratory() error {
	pos := DefaultLaboratory
	if l := a.entities().Laboratory; l != nil {
		pos = l.Position
	}
	a.lab = newLaboratory(a)
	e, err := a.track(a.factory.Laboratory(a.at(pos), a.lab.Open))
	if err != nil {
		return err
	}
	a.lab.entity = e
	return nil
}

func (a *GameArea) spawnEnemies() error {
	for _, p := range a.entities().Enemies {
		if _, err := a.track(a.factory.Enemy(a.at(p.Position), a.player)); err != nil {
			return err
		}
	}
	return nil
}

func (a *GameArea) spawnDefences() error {
	es := a.entities()
	for _, p := range es.Turrets {
		if _, err := a.track(a.factory.Turret(a.at(p.Position))); err != nil {
			return err
		}
	}
	for _, p := range es.Portals {
		if _, err := a.track(a.factory.Portal(a.at(p.Position), a.player)); err != nil {
			return err
		}
	}
	return nil
}

// SpawnPotion places a freshly brewed potion on its laboratory tile.
func (a *GameArea) SpawnPotion(t components.PotionType) (*entity.Entity, error) {
	if a.factory == nil {
		return nil, ErrNotCreated
	}
	tile, err := t.Tile()
	if err != nil {
		return nil, fmt.Errorf("spawn potion: %w", err)
	}
	return a.track(a.factory.Potion(t, a.at(tile)))
}

// SpawnPowerup drops a powerup next to the player.
func (a *GameArea) SpawnPowerup(t components.PowerupType) (*entity.Entity, error) {
	if a.factory == nil || a.player == nil {
		return nil, ErrNotCreated
	}
	return a.track(a.factory.Powerup(t, a.player.Position().Add(PowerupOffset)))
}

// RemoveItemOnMap disables e and disposes it at the end of the frame.
func (a *GameArea) RemoveItemOnMap(e *entity.Entity) { components.RemoveFromMap(e) }

func (a *GameArea) Config() MapConfig           { return a.cfg }
func (a *GameArea) Terrain() Terrain            { return a.terrain }
func (a *GameArea) Grid() *structures.Grid      { return a.grid }
func (a *GameArea) Player() *entity.Entity      { return a.player }
func (a *GameArea) Companion() *entity.Entity   { return a.companion }
func (a *GameArea) Laboratory() *Laboratory     { return a.lab }
func (a *GameArea) Factory() *factories.Factory { return a.factory }
func (a *GameArea) Created() bool               { return a.created }

// Entities returns the live entities the area spawned.
func (a *GameArea) Entities() []*entity.Entity {
	return slices.DeleteFunc(slices.Clone(a.spawned), (*entity.Entity).IsDisposed)
}

// Dispose removes every entity the area spawned and unloads its assets.
func (a *GameArea) Dispose() {
	a.teardown()
	if res, err := a.locator.Resources(); err == nil {
		res.Unload(a.cfg.Assets()...)
	}
	a.created = false
}

func (a *GameArea) teardown() {
	for _, s := range a.subs {
		s.Cancel()
	}
	a.subs = nil
	if a.lab != nil {
		a.lab.Close()
	}

	render := a.locator.Render()
	var registry *entity.Registry
	if a.factory != nil {
		registry = a.factory.Registry()
	}
	for _, e := range slices.Backward(a.spawned) {
		if render != nil {
			render.Untrack(e)
		}
		if registry != nil {
			registry.Unregister(e)
		} else {
			e.Dispose()
		}
	}
	a.spawned = nil
	a.player, a.companion, a.lab = nil, nil, nil
}
