package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/entity"
)

type transitions struct {
	log []string
}

func (tr *transitions) entered(e *entity.Entity) { tr.log = append(tr.log, "in:"+e.Type()) }
func (tr *transitions) exited(e *entity.Entity)  { tr.log = append(tr.log, "out:"+e.Type()) }

func at(x, y float64) entity.Option { return entity.WithPosition(mgl64.Vec2{x, y}) }

func TestProximityEdges(t *testing.T) {
	w := newWorld(t)
	target := w.spawn(entity.New(entity.TypePlayer, at(10, 0)))
	tr := &transitions{}
	p, err := NewProximityActivation(1.5, target, tr.entered, tr.exited)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), p)

	// outside, crossing in, holding, crossing out, outside, crossing in again
	for _, x := range []float64{10, 1, 0.5, 3, 4, 1} {
		target.SetPosition(mgl64.Vec2{x, 0})
		w.registry.Update()
	}

	assert.Equal(t, []string{"in:player", "in:player", "out:player", "in:player"}, tr.log)
	assert.True(t, p.Inside())
	assert.Equal(t, 1.5, p.Radius())
}

func TestProximityBoundaryIsInside(t *testing.T) {
	w := newWorld(t)
	target := w.spawn(entity.New(entity.TypePlayer, at(1.5, 0)))
	tr := &transitions{}
	p, err := NewProximityActivation(1.5, target, tr.entered, nil)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), p)

	w.registry.Update()
	target.SetPosition(mgl64.Vec2{5, 0})
	assert.NotPanics(t, w.registry.Update, "nil exit callback is allowed")

	assert.Equal(t, []string{"in:player"}, tr.log)
	assert.False(t, p.Inside())
}

func TestProximityDisposedTargetExits(t *testing.T) {
	w := newWorld(t)
	target := w.spawn(entity.New(entity.TypePlayer))
	tr := &transitions{}
	p, err := NewProximityActivation(2, target, tr.entered, tr.exited)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), p)

	w.registry.Update()
	w.registry.Unregister(target)
	w.registry.Update()
	w.registry.Update()

	assert.Equal(t, []string{"in:player", "out:player"}, tr.log)
}

func TestProximityRejectsBadRadius(t *testing.T) {
	_, err := NewProximityActivation(0, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = NewFOV(-1, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestProximitySetTargetResets(t *testing.T) {
	w := newWorld(t)
	a := w.spawn(entity.New(entity.TypePlayer))
	b := w.spawn(entity.New(entity.TypeCompanion, at(50, 50)))
	tr := &transitions{}
	p, err := NewProximityActivation(2, a, tr.entered, tr.exited)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), p)

	w.registry.Update()
	p.SetTarget(b)
	w.registry.Update()

	assert.Same(t, b, p.Target())
	assert.Equal(t, []string{"in:player"}, tr.log)
}

func TestFOVTracksCandidatesIndependently(t *testing.T) {
	w := newWorld(t)
	near := w.spawn(entity.New(entity.TypeEnemy, at(1, 0)), NewTurretTargetable())
	far := w.spawn(entity.New(entity.TypeEnemy, at(20, 0)), NewTurretTargetable())
	w.spawn(entity.New(entity.TypeObstacle, at(0.5, 0)))

	tr := &transitions{}
	fov, err := NewFOV(5, w.registry, tr.entered, tr.exited)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), fov)

	w.registry.Update()
	assert.Equal(t, []string{"in:enemy"}, tr.log)
	assert.True(t, fov.Sees(near))
	assert.False(t, fov.Sees(far))

	nearT, _ := entity.Lookup[*TurretTargetable](near, entity.KindTargetable)
	assert.True(t, nearT.InFOV())

	tr.log = nil
	far.SetPosition(mgl64.Vec2{2, 0})
	near.SetPosition(mgl64.Vec2{30, 0})
	w.registry.Update()

	assert.ElementsMatch(t, []string{"in:enemy", "out:enemy"}, tr.log)
	assert.False(t, nearT.InFOV())
	assert.Equal(t, 1, fov.Tracking())
}

func TestFOVReFiresWhileInside(t *testing.T) {
	w := newWorld(t)
	w.spawn(entity.New(entity.TypeEnemy, at(1, 0)), NewTurretTargetable())
	entered := 0
	fov, err := NewFOV(5, w.registry, func(*entity.Entity) { entered++ }, nil)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), fov)

	for i := 0; i < 4; i++ {
		w.registry.Update()
	}
	assert.Equal(t, 4, entered)
}

func TestFOVCandidateRemovedCountsAsExit(t *testing.T) {
	w := newWorld(t)
	enemy := w.spawn(entity.New(entity.TypeEnemy, at(1, 0)), NewTurretTargetable())
	tr := &transitions{}
	fov, err := NewFOV(5, w.registry, tr.entered, tr.exited)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeStructure), fov)

	w.registry.Update()
	w.registry.Unregister(enemy)
	w.registry.Update()

	assert.Equal(t, []string{"in:enemy", "out:enemy"}, tr.log)
	assert.Zero(t, fov.Tracking())
}

func TestFOVIgnoresItself(t *testing.T) {
	w := newWorld(t)
	entered := 0
	fov, err := NewFOV(5, w.registry, func(*entity.Entity) { entered++ }, nil)
	require.NoError(t, err)
	w.spawn(entity.New(entity.TypeEnemy), fov, NewTurretTargetable())

	w.registry.Update()
	assert.Zero(t, entered)
}
