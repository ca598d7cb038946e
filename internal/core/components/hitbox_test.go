package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/physics"
)

func TestHitboxRegistersWithWorld(t *testing.T) {
	w := newWorld(t)
	pw := physics.NewWorld(nil)
	h := NewHitbox(pw, physics.LayerObstacle, physics.LayerPlayer)
	e := w.spawn(entity.New(entity.TypeStructure), h)

	require.NotNil(t, h.Fixture())
	assert.Same(t, e, h.Fixture().Owner())
	assert.Equal(t, 1, pw.Len())
	assert.True(t, h.Owns(h.Fixture()))

	h.SetEnabled(false)
	assert.False(t, h.Fixture().Enabled())

	w.registry.Unregister(e)
	assert.Zero(t, pw.Len())
}

func TestDeathDisposesOnOwnContactEnd(t *testing.T) {
	w := newWorld(t)
	stats := NewCombatStats(10, 0, 0, false)
	h := NewHitbox(nil, physics.LayerNPC, physics.LayerWeapon)
	e := w.spawn(entity.New(entity.TypeEnemy), stats, h, NewDeath())
	other := physics.NewFixture(w.spawn(entity.New(entity.TypePlayerWeapon)), physics.LayerWeapon, physics.LayerNPC)

	physics.Dispatch(physics.EventCollisionEnd, h.Fixture(), other)
	w.registry.Update()
	assert.False(t, e.IsDisposed(), "alive entities stay")

	stats.SetHealth(0)
	physics.Dispatch(physics.EventCollisionEnd, physics.NewFixture(e, physics.LayerNPC, physics.LayerAll), other)
	w.registry.Update()
	assert.False(t, e.IsDisposed(), "contacts on other fixtures are ignored")

	physics.Dispatch(physics.EventCollisionEnd, h.Fixture(), other)
	w.registry.Update()
	assert.True(t, e.IsDisposed())
}

func TestDeathRequiresSiblings(t *testing.T) {
	w := newWorld(t)
	e := entity.New(entity.TypeEnemy)
	require.NoError(t, e.AddComponent(NewDeath()))

	err := w.registry.Register(e)
	assert.ErrorIs(t, err, entity.ErrComponentMissing)
	assert.True(t, e.IsDisposed())
}

func TestWorldStepDrivesPickup(t *testing.T) {
	w := newWorld(t).withParty()
	pw := physics.NewWorld(nil)
	require.NoError(t, w.player.AddComponent(lateHitbox{NewHitbox(pw, physics.LayerPlayer, physics.LayerItem)}))

	p := NewPowerup(TempImmunity, w.effects)
	item := w.spawn(entity.New(entity.TypePowerup, entity.WithPosition(mgl64.Vec2{10, 10})),
		p, NewHitbox(pw, physics.LayerItem, physics.LayerPlayer))

	pw.Step()
	assert.False(t, p.Applied())

	w.player.SetPosition(item.Position())
	pw.Step()
	w.registry.Update()

	assert.True(t, p.Applied())
	assert.True(t, item.IsDisposed())
	assert.Equal(t, 1, pw.Len(), "disposed hitbox left the world")
}
