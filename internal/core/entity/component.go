package entity

import "fmt"

// Component is a unit of behavior or data attached to exactly one Entity.
//
// Attach is called when the component is added. Create runs once after every
// component of the entity is attached, so cross-component lookups are valid
// from there on. Update runs once per frame while the entity is active.
// Dispose runs exactly once when the entity is disposed.
type Component interface {
	Kind() Kind
	Attach(e *Entity)
	Create() error
	Update()
	Dispose()
}

// LateAttacher is implemented by components that may be added to an entity
// that is already active. Such a component is created immediately.
type LateAttacher interface {
	AttachLate() bool
}

// Base provides no-op lifecycle hooks and the owner back-reference.
type Base struct {
	owner *Entity
}

func (b *Base) Attach(e *Entity) { b.owner = e }

// Entity returns the owning entity.
func (b *Base) Entity() *Entity { return b.owner }

func (b *Base) Create() error { return nil }
func (b *Base) Update()       {}
func (b *Base) Dispose()      {}

// Lookup returns the component of kind k on e, asserted to T.
// A missing component or a type mismatch both yield false.
func Lookup[T Component](e *Entity, k Kind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.Component(k)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Require is Lookup for mandatory components.
func Require[T Component](e *Entity, k Kind) (T, error) {
	t, ok := Lookup[T](e, k)
	if !ok {
		var zero T
		if e == nil {
			return zero, fmt.Errorf("%s on nil entity: %w", k, ErrComponentMissing)
		}
		return zero, fmt.Errorf("%s on %s#%d: %w", k, e.Type(), e.ID(), ErrComponentMissing)
	}
	return t, nil
}
