package components

import (
	"fmt"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/geom"
)

// ProximityFunc is called with the entity that entered or left the radius.
type ProximityFunc func(target *entity.Entity)

// Proximity is the shared enter/exit edge detector.
//
// A was-outside to now-inside tick fires entered; was-inside to now-outside
// fires exited; staying inside re-fires entered every tick; staying outside
// fires nothing.
type Proximity struct {
	radius  float64
	entered ProximityFunc
	exited  ProximityFunc
}

func newProximity(radius float64, entered, exited ProximityFunc) (Proximity, error) {
	if radius <= 0 {
		return Proximity{}, fmt.Errorf("radius %v: %w", radius, ErrInvalidRadius)
	}
	return Proximity{radius: radius, entered: entered, exited: exited}, nil
}

func (p Proximity) Radius() float64 { return p.radius }

// step applies the edge rules and returns the new in-range state.
func (p Proximity) step(wasInside, inside bool, target *entity.Entity) bool {
	switch {
	case inside:
		if p.entered != nil {
			p.entered(target)
		}
	case wasInside:
		if p.exited != nil {
			p.exited(target)
		}
	}
	return inside
}

func (p Proximity) within(self, target *entity.Entity) bool {
	return geom.Distance(self.Center(), target.Center()) <= p.radius
}

// ProximityActivation tracks one reference entity. A disposed reference
// counts as having left the radius.
type ProximityActivation struct {
	entity.Base
	Proximity

	target *entity.Entity
	inside bool
}

func NewProximityActivation(radius float64, target *entity.Entity, entered, exited ProximityFunc) (*ProximityActivation, error) {
	p, err := newProximity(radius, entered, exited)
	if err != nil {
		return nil, err
	}
	return &ProximityActivation{Proximity: p, target: target}, nil
}

func (p *ProximityActivation) Kind() entity.Kind { return entity.KindProximity }

func (p *ProximityActivation) Update() {
	if p.target == nil {
		return
	}
	inside := !p.target.IsDisposed() && p.within(p.Entity(), p.target)
	if !inside && !p.inside {
		return
	}
	p.inside = p.step(p.inside, inside, p.target)
}

// Inside reports the last computed state.
func (p *ProximityActivation) Inside() bool { return p.inside }

func (p *ProximityActivation) Target() *entity.Entity { return p.target }

// SetTarget switches the reference entity and resets the state without
// firing callbacks.
func (p *ProximityActivation) SetTarget(t *entity.Entity) {
	p.target = t
	p.inside = false
}

// TurretTargetable marks an entity as a candidate for FOV scans.
type TurretTargetable struct {
	entity.Base

	watchers int
}

func NewTurretTargetable() *TurretTargetable { return &TurretTargetable{} }

func (t *TurretTargetable) Kind() entity.Kind { return entity.KindTargetable }

// InFOV reports whether at least one FOV currently sees the entity.
func (t *TurretTargetable) InFOV() bool { return t.watchers > 0 }

func (t *TurretTargetable) seen(v bool) {
	if v {
		t.watchers++
	} else if t.watchers > 0 {
		t.watchers--
	}
}

// FOV applies the proximity edge rules to every targetable entity of the
// registry, tracking the in-range state per candidate.
type FOV struct {
	entity.Base
	Proximity

	registry *entity.Registry
	inside   map[entity.ID]*entity.Entity
}

func NewFOV(radius float64, registry *entity.Registry, entered, exited ProximityFunc) (*FOV, error) {
	p, err := newProximity(radius, entered, exited)
	if err != nil {
		return nil, err
	}
	return &FOV{Proximity: p, registry: registry, inside: make(map[entity.ID]*entity.Entity)}, nil
}

func (f *FOV) Kind() entity.Kind { return entity.KindFOV }

func (f *FOV) Update() {
	self := f.Entity()
	seen := make(map[entity.ID]struct{}, len(f.inside))

	for candidate := range f.registry.EntitiesByComponent(entity.KindTargetable).Seq() {
		if candidate == self {
			continue
		}
		tt, ok := entity.Lookup[*TurretTargetable](candidate, entity.KindTargetable)
		if !ok {
			continue
		}
		seen[candidate.ID()] = struct{}{}

		_, wasInside := f.inside[candidate.ID()]
		inside := f.within(self, candidate)
		if !inside && !wasInside {
			continue
		}
		if f.step(wasInside, inside, candidate) {
			if !wasInside {
				f.inside[candidate.ID()] = candidate
				tt.seen(true)
			}
		} else {
			delete(f.inside, candidate.ID())
			tt.seen(false)
		}
	}

	// candidates that vanished from the registry left the field of view
	for id, candidate := range f.inside {
		if _, ok := seen[id]; ok {
			continue
		}
		delete(f.inside, id)
		if tt, ok := entity.Lookup[*TurretTargetable](candidate, entity.KindTargetable); ok {
			tt.seen(false)
		}
		f.step(true, false, candidate)
	}
}

func (f *FOV) Dispose() {
	for id, candidate := range f.inside {
		if tt, ok := entity.Lookup[*TurretTargetable](candidate, entity.KindTargetable); ok {
			tt.seen(false)
		}
		delete(f.inside, id)
	}
}

// Tracking returns how many candidates are currently inside.
func (f *FOV) Tracking() int { return len(f.inside) }

// Sees reports whether e is currently inside.
func (f *FOV) Sees(e *entity.Entity) bool {
	_, ok := f.inside[e.ID()]
	return ok
}
