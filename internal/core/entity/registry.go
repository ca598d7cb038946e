package entity

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/pkg/sequence"
)

// Role names a well-known entity looked up by other components.
type Role uint8

const (
	RolePlayer Role = iota
	RoleCompanion
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleCompanion:
		return "companion"
	default:
		return "unknown"
	}
}

// Registry owns the live entities of a session and drives their frame updates.
//
// The entity list is copy-on-write: traversals work on a snapshot, so entities
// registered or unregistered mid-iteration never break a running loop.
// Disposal requested through DisposeLater is applied at the end of Update.
type Registry struct {
	mu       sync.RWMutex
	entities []*Entity
	roles    map[Role]*Entity
	pending  []*Entity

	report func(error)
	logger log.Log
}

type RegistryOption func(*Registry)

// WithReporter receives errors recovered from entity updates.
func WithReporter(report func(error)) RegistryOption {
	return func(r *Registry) { r.report = report }
}

func WithRegistryLogger(l log.Log) RegistryOption {
	return func(r *Registry) { r.logger = log.OrNop(l) }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		roles:  make(map[Role]*Entity),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register activates e, runs Create on its components and adds it to the
// frame-tick list. If a component fails to create, the entity is disposed and
// the error returned.
func (r *Registry) Register(e *Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if e.IsDisposed() {
		return fmt.Errorf("register %s: %w", e, ErrDisposed)
	}
	if e.registry != nil {
		return fmt.Errorf("register %s: %w", e, ErrAlreadyRegistered)
	}

	e.registry = r
	if err := e.create(); err != nil {
		e.registry = nil
		e.Dispose()
		r.logger.Error("entity creation failed", log.String("entity", e.String()), log.Error(err))
		return err
	}

	r.mu.Lock()
	r.entities = append(r.entities, e)
	r.mu.Unlock()
	return nil
}

// Unregister removes e and disposes it immediately.
func (r *Registry) Unregister(e *Entity) {
	if e == nil {
		return
	}
	r.mu.Lock()
	if i := slices.Index(r.entities, e); i >= 0 {
		r.entities = slices.Delete(slices.Clone(r.entities), i, i+1)
	}
	for role, held := range r.roles {
		if held == e {
			delete(r.roles, role)
		}
	}
	r.mu.Unlock()

	e.Dispose()
}

// DisposeLater schedules e for removal at the end of the current frame.
func (r *Registry) DisposeLater(e *Entity) {
	if e == nil {
		return
	}
	if e.registry != r {
		e.Dispose()
		return
	}
	e.DisposeLater()
}

func (r *Registry) deferDispose(e *Entity) {
	r.mu.Lock()
	r.pending = append(r.pending, e)
	r.mu.Unlock()
}

// Update ticks every active entity once, then flushes deferred disposals.
// A panicking entity is reported and does not stop the frame.
func (r *Registry) Update() {
	for _, e := range r.snapshot() {
		if !e.IsActive() || e.MarkedForDisposal() {
			continue
		}
		r.update(e)
	}
	r.Flush()
}

func (r *Registry) update(e *Entity) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("update %s: panic: %v", e, rec)
			r.logger.Error("entity update failed", log.Error(err))
			if r.report != nil {
				r.report(err)
			}
		}
	}()
	e.Update()
}

// Flush applies pending DisposeLater requests. Disposals requested while
// flushing are applied in the same call.
func (r *Registry) Flush() {
	for {
		r.mu.Lock()
		pending := r.pending
		r.pending = nil
		r.mu.Unlock()
		if len(pending) == 0 {
			return
		}
		for _, e := range pending {
			r.Unregister(e)
		}
	}
}

// EntitiesByComponent lazily yields the active entities holding a component of
// kind k. Liveness is checked as each entity is yielded, so an entity
// unregistered mid-iteration is never observed.
func (r *Registry) EntitiesByComponent(k Kind) *sequence.Iterator[*Entity] {
	return sequence.FromSeq(func(yield func(*Entity) bool) {
		for _, e := range r.snapshot() {
			if !e.IsActive() || !e.Has(k) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	})
}

// Entities yields every registered entity that is not disposed.
func (r *Registry) Entities() *sequence.Iterator[*Entity] {
	return sequence.FromSeq(func(yield func(*Entity) bool) {
		for _, e := range r.snapshot() {
			if e.IsDisposed() {
				continue
			}
			if !yield(e) {
				return
			}
		}
	})
}

// Designate binds role to e. Last write wins.
func (r *Registry) Designate(role Role, e *Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if e.IsDisposed() {
		return fmt.Errorf("designate %s as %s: %w", e, role, ErrDisposed)
	}
	r.mu.Lock()
	r.roles[role] = e
	r.mu.Unlock()
	return nil
}

// Lookup returns the entity designated for role.
func (r *Registry) Lookup(role Role) (*Entity, error) {
	r.mu.RLock()
	e, ok := r.roles[role]
	r.mu.RUnlock()
	if !ok || e.IsDisposed() {
		return nil, fmt.Errorf("%s: %w", role, ErrRoleNotDesignated)
	}
	return e, nil
}

func (r *Registry) Player() (*Entity, error)    { return r.Lookup(RolePlayer) }
func (r *Registry) Companion() (*Entity, error) { return r.Lookup(RoleCompanion) }

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Dispose unregisters and disposes every entity. Used on session teardown.
func (r *Registry) Dispose() {
	r.mu.Lock()
	entities := r.entities
	r.entities = nil
	r.pending = nil
	clear(r.roles)
	r.mu.Unlock()

	for _, e := range entities {
		e.Dispose()
	}
}

func (r *Registry) snapshot() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities
}
