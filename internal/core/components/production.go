package components

import (
	"time"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/timer"
)

// Production adds tickSize units of a resource to the game state every
// tickRate while its entity is alive. A dead (broken) producer pauses and
// resumes counting from the moment it is repaired.
type Production struct {
	entity.Base

	store    *gamestate.Store
	clock    timer.Clock
	resource string
	tickRate time.Duration
	tickSize int

	combat *CombatStats
	last   time.Time
	logger log.Log
}

func NewProduction(store *gamestate.Store, clock timer.Clock, resource string, tickRate time.Duration, tickSize int) *Production {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	return &Production{
		store:    store,
		clock:    clock,
		resource: resource,
		tickRate: tickRate,
		tickSize: tickSize,
		logger:   log.NewNop(),
	}
}

func (p *Production) Kind() entity.Kind { return entity.KindProduction }

func (p *Production) Create() error {
	p.combat, _ = entity.Lookup[*CombatStats](p.Entity(), entity.KindCombatStats)
	p.logger = p.Entity().Logger().With(log.Component("production"), log.String("resource", p.resource))
	p.last = p.clock.Now()
	return nil
}

func (p *Production) Update() {
	now := p.clock.Now()
	if p.Broken() || p.tickRate <= 0 {
		p.last = now
		return
	}
	ticks := int(now.Sub(p.last) / p.tickRate)
	if ticks <= 0 {
		return
	}
	p.last = p.last.Add(time.Duration(ticks) * p.tickRate)
	if _, err := p.store.UpdateResource(p.resource, ticks*p.tickSize); err != nil {
		p.logger.Error("production failed", log.Error(err))
	}
}

// Broken reports whether the producer is dead.
func (p *Production) Broken() bool { return p.combat != nil && p.combat.IsDead() }

func (p *Production) Resource() string        { return p.resource }
func (p *Production) TickRate() time.Duration { return p.tickRate }
func (p *Production) TickSize() int           { return p.tickSize }
