package components

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/gamestate"
)

func TestProductionTicks(t *testing.T) {
	w := newWorld(t)
	store := gamestate.New()
	p := NewProduction(store, w.clock, "Solstite", time.Second, 2)
	w.spawn(entity.New(entity.TypeStructure), NewCombatStats(100, 0, 0, false), p)

	w.clock.Advance(500 * time.Millisecond)
	w.registry.Update()
	assert.Zero(t, store.Resource("Solstite"))

	w.clock.Advance(2600 * time.Millisecond)
	w.registry.Update()
	assert.Equal(t, 6, store.Resource("Solstite"), "three whole ticks elapsed")

	w.clock.Advance(900 * time.Millisecond)
	w.registry.Update()
	assert.Equal(t, 8, store.Resource("Solstite"), "the remainder carries over")
}

func TestProductionPausesWhileBroken(t *testing.T) {
	w := newWorld(t)
	store := gamestate.New()
	stats := NewCombatStats(0, 0, 0, false, WithMaxHealth(100))
	p := NewProduction(store, w.clock, "Nebulite", time.Second, 1)
	w.spawn(entity.New(entity.TypeStructure), stats, p)
	assert.True(t, p.Broken())

	w.clock.Advance(5 * time.Second)
	w.registry.Update()
	assert.Zero(t, store.Resource("Nebulite"))

	stats.SetHealth(100)
	assert.False(t, p.Broken())
	w.clock.Advance(1500 * time.Millisecond)
	w.registry.Update()
	assert.Equal(t, 1, store.Resource("Nebulite"), "the broken stretch is not paid out")
}

func TestProductionNotifiesListeners(t *testing.T) {
	w := newWorld(t)
	store := gamestate.New()
	var got []any
	store.AddListener(gamestate.EventUpdateResource, func(args ...any) { got = args })
	w.spawn(entity.New(entity.TypeStructure), NewProduction(store, w.clock, "Solstite", time.Second, 3))

	w.clock.Advance(time.Second)
	w.registry.Update()
	assert.Equal(t, []any{"Solstite", 3}, got)
}
