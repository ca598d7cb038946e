// Package factories assembles entities from components.
//
// Every constructor builds a fresh entity, attaches its components and
// registers it. Nothing is subclassed: a gate is an entity with a hitbox, a
// proximity trigger and combat stats.
package factories

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/input"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/physics"
	"github.com/zeusync/outpost/internal/core/services"
	"github.com/zeusync/outpost/internal/core/timer"
)

// Factory builds entities against one session's services.
type Factory struct {
	locator   *services.Locator
	registry  *entity.Registry
	scheduler *timer.Scheduler
	world     *physics.World
	input     *input.Service
	store     *gamestate.Store
	effects   *components.Effects
	logger    log.Log
}

// New resolves the services every factory needs. Missing roles fail here
// rather than on the first spawn.
func New(loc *services.Locator, logger log.Log) (*Factory, error) {
	registry, errE := loc.Entities()
	scheduler, errS := loc.Scheduler()
	world, errP := loc.Physics()
	in, errI := loc.Input()
	store, errG := loc.GameState()
	if err := errors.Join(errE, errS, errP, errI, errG); err != nil {
		return nil, fmt.Errorf("factories: %w", err)
	}

	logger = log.OrNop(logger).With(log.Component("factory"))
	return &Factory{
		locator:   loc,
		registry:  registry,
		scheduler: scheduler,
		world:     world,
		input:     in,
		store:     store,
		effects:   components.NewEffects(registry, scheduler, logger),
		logger:    logger,
	}, nil
}

func (f *Factory) Registry() *entity.Registry   { return f.registry }
func (f *Factory) Effects() *components.Effects { return f.effects }
func (f *Factory) Scheduler() *timer.Scheduler  { return f.scheduler }
func (f *Factory) Store() *gamestate.Store      { return f.store }
func (f *Factory) Input() *input.Service        { return f.input }
func (f *Factory) Physics() *physics.World      { return f.world }
func (f *Factory) Locator() *services.Locator   { return f.locator }
func (f *Factory) Logger() log.Log              { return f.logger }

// build attaches cs to e and registers it. On failure e is disposed.
func (f *Factory) build(e *entity.Entity, cs ...entity.Component) (*entity.Entity, error) {
	for _, c := range cs {
		if err := e.AddComponent(c); err != nil {
			e.Dispose()
			return nil, fmt.Errorf("build %s: %w", e, err)
		}
	}
	if err := f.registry.Register(e); err != nil {
		return nil, fmt.Errorf("build %s: %w", e, err)
	}
	f.logger.Debug("entity spawned", log.String("entity", e.String()))
	return e, nil
}

func (f *Factory) newEntity(typ string, pos mgl64.Vec2, opts ...entity.Option) *entity.Entity {
	opts = append([]entity.Option{entity.WithPosition(pos), entity.WithLogger(f.logger)}, opts...)
	return entity.New(typ, opts...)
}
