// Package services holds the per-session service table.
//
// A Locator is created at session start and passed explicitly to factories
// and areas. It is not a package-level singleton; each role still holds at most
// one instance.
package services

import (
	"fmt"
	"sync"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/input"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/physics"
	"github.com/zeusync/outpost/internal/core/resource"
	"github.com/zeusync/outpost/internal/core/timer"
)

// Role identifies one slot of the locator.
type Role uint8

const (
	RoleEntity Role = iota
	RoleInput
	RoleResource
	RoleGameState
	RoleRender
	RoleTerrain
	RoleScheduler
	RolePlacement
	RoleScreens
	RolePhysics

	roleCount
)

var roleNames = [roleCount]string{
	RoleEntity:    "EntityService",
	RoleInput:     "InputService",
	RoleResource:  "ResourceService",
	RoleGameState: "GameStateObserver",
	RoleRender:    "RenderService",
	RoleTerrain:   "TerrainService",
	RoleScheduler: "TimedEffectScheduler",
	RolePlacement: "StructurePlacementService",
	RoleScreens:   "ScreenService",
	RolePhysics:   "PhysicsService",
}

func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return "UnknownService"
}

// Locator maps roles to service instances for one session.
type Locator struct {
	mu     sync.RWMutex
	slots  [roleCount]any
	logger log.Log
}

func NewLocator(logger log.Log) *Locator {
	return &Locator{logger: log.OrNop(logger).With(log.Component("locator"))}
}

// Register stores svc for role, replacing any previous instance.
func (l *Locator) Register(role Role, svc any) {
	if role >= roleCount {
		panic(fmt.Sprintf("services: register unknown role %d", role))
	}
	l.mu.Lock()
	replaced := l.slots[role] != nil
	l.slots[role] = svc
	l.mu.Unlock()

	if replaced {
		l.logger.Debug("service replaced", log.String("role", role.String()))
	}
}

func (l *Locator) lookup(role Role) (any, bool) {
	if role >= roleCount {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	svc := l.slots[role]
	return svc, svc != nil
}

// Has reports whether role is registered.
func (l *Locator) Has(role Role) bool {
	_, ok := l.lookup(role)
	return ok
}

// Clear resets every role. Called on session teardown.
func (l *Locator) Clear() {
	l.mu.Lock()
	clear(l.slots[:])
	l.mu.Unlock()
}

// Get returns the service registered for role as T.
func Get[T any](l *Locator, role Role) (T, error) {
	var zero T
	svc, ok := l.lookup(role)
	if !ok {
		return zero, fmt.Errorf("%s: %w", role, ErrNotRegistered)
	}
	t, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("%s holds %T: %w", role, svc, ErrWrongType)
	}
	return t, nil
}

// Must is Get for roles whose absence is a programming error.
func Must[T any](l *Locator, role Role) T {
	t, err := Get[T](l, role)
	if err != nil {
		panic(err)
	}
	return t
}

func (l *Locator) Entities() (*entity.Registry, error) {
	return Get[*entity.Registry](l, RoleEntity)
}

func (l *Locator) GameState() (*gamestate.Store, error) {
	return Get[*gamestate.Store](l, RoleGameState)
}

func (l *Locator) Scheduler() (*timer.Scheduler, error) {
	return Get[*timer.Scheduler](l, RoleScheduler)
}

func (l *Locator) Physics() (*physics.World, error) {
	return Get[*physics.World](l, RolePhysics)
}

func (l *Locator) Input() (*input.Service, error) {
	return Get[*input.Service](l, RoleInput)
}

func (l *Locator) Resources() (*resource.Service, error) {
	return Get[*resource.Service](l, RoleResource)
}

func (l *Locator) Terrain() (Terrain, error)     { return Get[Terrain](l, RoleTerrain) }
func (l *Locator) Placement() (Placement, error) { return Get[Placement](l, RolePlacement) }
func (l *Locator) Screens() (Screens, error)     { return Get[Screens](l, RoleScreens) }

// Render is optional; a nil result means nothing is drawn.
func (l *Locator) Render() Render {
	r, err := Get[Render](l, RoleRender)
	if err != nil {
		return nil
	}
	return r
}
