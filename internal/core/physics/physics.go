// Package physics provides opaque contact handles and a broad-phase overlap
// detector that raises collision events on entity buses.
package physics

import (
	"sync"
	"sync/atomic"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/geom"
	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Collision events fired on the owning entity's bus with (own, other *Fixture).
const (
	EventCollisionStart = "collisionStart"
	EventCollisionEnd   = "collisionEnd"
)

// Layer is a collision category bitmask.
type Layer uint16

const (
	LayerNone     Layer = 0
	LayerPlayer   Layer = 1 << 0
	LayerObstacle Layer = 1 << 1
	LayerNPC      Layer = 1 << 2
	LayerItem     Layer = 1 << 3
	LayerWeapon   Layer = 1 << 4
	LayerAll      Layer = ^Layer(0)
)

// Fixture is the contact handle of one entity's hitbox. Handlers compare
// fixtures by pointer to decide whether a contact concerns them.
type Fixture struct {
	id      uint64
	owner   *entity.Entity
	layer   Layer
	mask    Layer
	enabled atomic.Bool
}

var fixtureIDs atomic.Uint64

// NewFixture creates an enabled fixture on layer that collides with mask.
func NewFixture(owner *entity.Entity, layer, mask Layer) *Fixture {
	f := &Fixture{id: fixtureIDs.Add(1), owner: owner, layer: layer, mask: mask}
	f.enabled.Store(true)
	return f
}

func (f *Fixture) ID() uint64            { return f.id }
func (f *Fixture) Owner() *entity.Entity { return f.owner }
func (f *Fixture) Layer() Layer          { return f.layer }
func (f *Fixture) Enabled() bool         { return f.enabled.Load() }

// SetEnabled toggles participation in collisions. Open gates disable theirs.
func (f *Fixture) SetEnabled(v bool) { f.enabled.Store(v) }

// Bounds is the owner's bounding box.
func (f *Fixture) Bounds() geom.Rect {
	return geom.Rect{Min: f.owner.Position(), Size: f.owner.Scale()}
}

func (f *Fixture) accepts(o *Fixture) bool {
	return f.mask&o.layer != 0 || o.mask&f.layer != 0
}

type pair struct{ a, b *Fixture }

func key(a, b *Fixture) pair {
	if a.id > b.id {
		a, b = b, a
	}
	return pair{a, b}
}

// World tracks fixtures and turns overlap transitions into collision events.
type World struct {
	mu       sync.Mutex
	fixtures []*Fixture
	contacts map[pair]struct{}
	logger   log.Log
}

func NewWorld(logger log.Log) *World {
	return &World{
		contacts: make(map[pair]struct{}),
		logger:   log.OrNop(logger).With(log.Component("physics")),
	}
}

// Add starts tracking f.
func (w *World) Add(f *Fixture) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fixtures = append(w.fixtures, f)
}

// Remove stops tracking f. Open contacts are dropped without an end event.
func (w *World) Remove(f *Fixture) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, g := range w.fixtures {
		if g == f {
			w.fixtures = append(w.fixtures[:i:i], w.fixtures[i+1:]...)
			break
		}
	}
	for p := range w.contacts {
		if p.a == f || p.b == f {
			delete(w.contacts, p)
		}
	}
}

// Len returns the number of tracked fixtures.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.fixtures)
}

// Step compares every pair of enabled fixtures and fires collisionStart on
// new overlaps and collisionEnd on separations. Events are dispatched after
// the world lock is released, so handlers may add or remove fixtures.
func (w *World) Step() {
	type event struct {
		name string
		a, b *Fixture
	}
	var events []event

	w.mu.Lock()
	seen := make(map[pair]struct{}, len(w.contacts))
	for i, a := range w.fixtures {
		if !live(a) {
			continue
		}
		for _, b := range w.fixtures[i+1:] {
			if !live(b) || a.owner == b.owner || !a.accepts(b) {
				continue
			}
			if !a.Bounds().Overlaps(b.Bounds()) {
				continue
			}
			k := key(a, b)
			seen[k] = struct{}{}
			if _, ok := w.contacts[k]; !ok {
				w.contacts[k] = struct{}{}
				events = append(events, event{EventCollisionStart, a, b})
			}
		}
	}
	for k := range w.contacts {
		if _, ok := seen[k]; !ok {
			delete(w.contacts, k)
			events = append(events, event{EventCollisionEnd, k.a, k.b})
		}
	}
	w.mu.Unlock()

	for _, ev := range events {
		Dispatch(ev.name, ev.a, ev.b)
	}
}

func live(f *Fixture) bool {
	return f.Enabled() && f.owner != nil && f.owner.IsActive()
}

// Dispatch fires name on both owners' buses, each receiving its own fixture
// first.
func Dispatch(name string, a, b *Fixture) {
	if a.owner != nil && !a.owner.IsDisposed() {
		a.owner.Events().Trigger(name, a, b)
	}
	if b.owner != nil && !b.owner.IsDisposed() {
		b.owner.Events().Trigger(name, b, a)
	}
}
