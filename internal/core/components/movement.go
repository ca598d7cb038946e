package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/geom"
)

// TimeStep is the simulated seconds per frame.
const TimeStep = 1.0 / 60.0

// Baseline movement speeds in world units per second.
var (
	PlayerSpeed    = mgl64.Vec2{3, 3}
	CompanionSpeed = mgl64.Vec2{4, 4}
)

// DefaultFollowSpeed is the companion's baseline follow speed.
const DefaultFollowSpeed = 2.5

// Actions moves its entity in the direction of the last "walk" event until
// "walkStop".
type Actions struct {
	entity.Base

	baseSpeed mgl64.Vec2
	speed     mgl64.Vec2
	direction mgl64.Vec2
	moving    bool
	subs      []bus.Subscription
}

// NewActions creates movement with base as both baseline and current speed.
func NewActions(base mgl64.Vec2) *Actions {
	return &Actions{baseSpeed: base, speed: base}
}

func (a *Actions) Kind() entity.Kind { return entity.KindActions }

func (a *Actions) Create() error {
	events := a.Entity().Events()
	a.subs = append(a.subs,
		bus.Listen1(events, EventWalk, a.Walk),
		bus.Listen0(events, EventWalkStop, a.StopWalking),
	)
	return nil
}

func (a *Actions) Update() {
	if !a.moving {
		return
	}
	e := a.Entity()
	step := mgl64.Vec2{a.direction.X() * a.speed.X(), a.direction.Y() * a.speed.Y()}.Mul(TimeStep)
	e.SetPosition(e.Position().Add(step))
}

func (a *Actions) Dispose() {
	for _, s := range a.subs {
		s.Cancel()
	}
	a.subs = nil
}

// Walk starts moving along direction.
func (a *Actions) Walk(direction mgl64.Vec2) {
	a.direction = direction
	a.moving = direction.Len() > 0
}

func (a *Actions) StopWalking() {
	a.direction = mgl64.Vec2{}
	a.moving = false
}

func (a *Actions) Moving() bool          { return a.moving }
func (a *Actions) Direction() mgl64.Vec2 { return a.direction }
func (a *Actions) Speed() mgl64.Vec2     { return a.speed }
func (a *Actions) BaseSpeed() mgl64.Vec2 { return a.baseSpeed }
func (a *Actions) SetSpeed(x, y float64) { a.speed = mgl64.Vec2{x, y} }
func (a *Actions) ResetSpeed()           { a.speed = a.baseSpeed }

// Follow moves its entity towards a leader until within keepDistance.
type Follow struct {
	entity.Base

	leader       *entity.Entity
	baseSpeed    float64
	speed        float64
	keepDistance float64
}

func NewFollow(leader *entity.Entity, keepDistance float64) *Follow {
	return &Follow{
		leader:       leader,
		baseSpeed:    DefaultFollowSpeed,
		speed:        DefaultFollowSpeed,
		keepDistance: keepDistance,
	}
}

func (f *Follow) Kind() entity.Kind { return entity.KindFollow }

func (f *Follow) Update() {
	if f.leader == nil || f.leader.IsDisposed() {
		return
	}
	e := f.Entity()
	from, to := e.Center(), f.leader.Center()
	dist := geom.Distance(from, to)
	if dist <= f.keepDistance {
		return
	}
	step := min(f.speed*TimeStep, dist-f.keepDistance)
	e.SetPosition(e.Position().Add(geom.Direction(from, to).Mul(step)))
}

func (f *Follow) Leader() *entity.Entity     { return f.leader }
func (f *Follow) SetLeader(l *entity.Entity) { f.leader = l }
func (f *Follow) FollowSpeed() float64       { return f.speed }
func (f *Follow) SetFollowSpeed(v float64)   { f.speed = v }
func (f *Follow) ResetFollowSpeed()          { f.speed = f.baseSpeed }
