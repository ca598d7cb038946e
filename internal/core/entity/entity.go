package entity

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/looplab/fsm"

	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/observability/log"
)

// ID is the opaque entity handle.
type ID uint64

var nextID atomic.Uint64

// Entity owns an ordered set of components, at most one per Kind, and an
// event bus. Position and scale are in world units.
//
// Apart from the lifecycle state, an Entity is owned by the frame loop and is
// not safe for concurrent mutation.
type Entity struct {
	id       ID
	typ      string
	events   *bus.Bus
	position mgl64.Vec2
	scale    mgl64.Vec2

	table [kindCount]Component
	order []Component

	lifecycle    *fsm.FSM
	registry     *Registry
	disposeLater atomic.Bool
	logger       log.Log
}

type Option func(*Entity)

func WithPosition(p mgl64.Vec2) Option {
	return func(e *Entity) { e.position = p }
}

func WithScale(s mgl64.Vec2) Option {
	return func(e *Entity) { e.scale = s }
}

func WithLogger(l log.Log) Option {
	return func(e *Entity) { e.logger = log.OrNop(l) }
}

// New creates a detached entity tagged with typ.
func New(typ string, opts ...Option) *Entity {
	e := &Entity{
		id:     ID(nextID.Add(1)),
		typ:    typ,
		scale:  mgl64.Vec2{1, 1},
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(log.Uint64("entity", uint64(e.id)), log.String("type", typ))
	e.events = bus.New(bus.WithLogger(e.logger))
	e.lifecycle = newLifecycle(e.logger)
	return e
}

func (e *Entity) ID() ID              { return e.id }
func (e *Entity) Type() string        { return e.typ }
func (e *Entity) Events() *bus.Bus    { return e.events }
func (e *Entity) Logger() log.Log     { return e.logger }
func (e *Entity) Registry() *Registry { return e.registry }

func (e *Entity) String() string { return fmt.Sprintf("%s#%d", e.typ, e.id) }

func (e *Entity) Position() mgl64.Vec2     { return e.position }
func (e *Entity) SetPosition(p mgl64.Vec2) { e.position = p }
func (e *Entity) Scale() mgl64.Vec2        { return e.scale }
func (e *Entity) SetScale(s mgl64.Vec2)    { e.scale = s }

// ScaleHeight sets the height and keeps the current aspect ratio.
func (e *Entity) ScaleHeight(h float64) {
	ratio := 1.0
	if e.scale.Y() != 0 {
		ratio = e.scale.X() / e.scale.Y()
	}
	e.scale = mgl64.Vec2{h * ratio, h}
}

// Center is the middle of the entity's bounding box.
func (e *Entity) Center() mgl64.Vec2 {
	return e.position.Add(e.scale.Mul(0.5))
}

// AddComponent attaches c. It fails once the entity is active unless c is a
// LateAttacher that opts in, in which case c is created immediately.
func (e *Entity) AddComponent(c Component) error {
	k := c.Kind()
	if !k.Valid() {
		return fmt.Errorf("add %T to %s: invalid kind %d", c, e, k)
	}

	late := false
	switch e.lifecycle.Current() {
	case StateDisposed:
		return fmt.Errorf("add %s to %s: %w", k, e, ErrDisposed)
	case StateActive, StateDisabled:
		la, ok := c.(LateAttacher)
		if !ok || !la.AttachLate() {
			return fmt.Errorf("add %s to %s: %w", k, e, ErrComponentSetFrozen)
		}
		late = true
	}
	if e.table[k] != nil {
		return fmt.Errorf("add %s to %s: %w", k, e, ErrDuplicateComponent)
	}

	e.table[k] = c
	e.order = append(e.order, c)
	c.Attach(e)
	e.transition(eventAttach)

	if late {
		if err := c.Create(); err != nil {
			return fmt.Errorf("create late %s on %s: %w", k, e, err)
		}
	}
	return nil
}

// MustAdd attaches every component and panics on the first error. Meant for
// factories whose component sets are fixed at compile time.
func (e *Entity) MustAdd(cs ...Component) *Entity {
	for _, c := range cs {
		if err := e.AddComponent(c); err != nil {
			panic(err)
		}
	}
	return e
}

// Component returns the component of kind k, if present.
func (e *Entity) Component(k Kind) (Component, bool) {
	if !k.Valid() || e.table[k] == nil {
		return nil, false
	}
	return e.table[k], true
}

func (e *Entity) Has(k Kind) bool {
	return k.Valid() && e.table[k] != nil
}

// Components returns the components in attachment order.
func (e *Entity) Components() []Component {
	out := make([]Component, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Entity) State() string    { return e.lifecycle.Current() }
func (e *Entity) IsActive() bool   { return e.lifecycle.Is(StateActive) }
func (e *Entity) IsDisposed() bool { return e.lifecycle.Is(StateDisposed) }

// Enabled reports whether the entity receives updates.
func (e *Entity) Enabled() bool { return e.IsActive() }

// SetEnabled toggles between active and disabled. It has no effect before
// registration or after disposal.
func (e *Entity) SetEnabled(enabled bool) {
	if enabled {
		e.transition(eventEnable)
	} else {
		e.transition(eventDisable)
	}
}

// create runs Create on every component in attachment order.
func (e *Entity) create() error {
	if !e.transition(eventActivate) {
		return fmt.Errorf("activate %s from %s: %w", e, e.State(), ErrAlreadyRegistered)
	}
	for _, c := range e.order {
		if err := c.Create(); err != nil {
			return fmt.Errorf("create %s on %s: %w", c.Kind(), e, err)
		}
	}
	return nil
}

// Update ticks every component. Skipped unless active.
func (e *Entity) Update() {
	if !e.IsActive() {
		return
	}
	for _, c := range e.order {
		c.Update()
		if !e.IsActive() {
			// a component disabled or disposed the entity mid-frame
			return
		}
	}
}

// Dispose releases every component exactly once and clears the bus. It does
// not remove the entity from its registry; use Registry.Unregister for that.
// A second call is a no-op.
func (e *Entity) Dispose() {
	if !e.transition(eventDispose) {
		return
	}
	for _, c := range e.order {
		c.Dispose()
	}
	e.events.Clear()
}

// DisposeLater marks the entity for removal at the end of the current frame.
// Without a registry the entity is disposed immediately.
func (e *Entity) DisposeLater() {
	if e.IsDisposed() || !e.disposeLater.CompareAndSwap(false, true) {
		return
	}
	if e.registry == nil {
		e.Dispose()
		return
	}
	e.registry.deferDispose(e)
}

// MarkedForDisposal reports whether DisposeLater was called.
func (e *Entity) MarkedForDisposal() bool { return e.disposeLater.Load() }
