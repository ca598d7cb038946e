package components

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/timer"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type world struct {
	t         *testing.T
	clock     *timer.ManualClock
	scheduler *timer.Scheduler
	registry  *entity.Registry
	effects   *Effects

	player, companion *entity.Entity
}

func newWorld(t *testing.T) *world {
	t.Helper()
	clock := timer.NewManualClock(epoch)
	w := &world{
		t:         t,
		clock:     clock,
		scheduler: timer.NewScheduler(clock),
		registry:  entity.NewRegistry(),
	}
	w.effects = NewEffects(w.registry, w.scheduler, nil)
	return w
}

// withParty spawns a player and a companion with the components powerups target.
func (w *world) withParty() *world {
	w.t.Helper()
	w.player = w.spawn(entity.New(entity.TypePlayer),
		NewCombatStats(100, 10, 1, false, WithDeathScheduler(w.scheduler)),
		NewActions(PlayerSpeed),
	)
	w.companion = w.spawn(entity.New(entity.TypeCompanion, entity.WithPosition(mgl64.Vec2{1, 0})),
		NewCombatStats(50, 5, 1, false),
		NewActions(CompanionSpeed),
		NewFollow(w.player, 1),
	)
	require.NoError(w.t, w.registry.Designate(entity.RolePlayer, w.player))
	require.NoError(w.t, w.registry.Designate(entity.RoleCompanion, w.companion))
	return w
}

func (w *world) spawn(e *entity.Entity, cs ...entity.Component) *entity.Entity {
	w.t.Helper()
	for _, c := range cs {
		require.NoError(w.t, e.AddComponent(c))
	}
	require.NoError(w.t, w.registry.Register(e))
	return e
}

// advance moves time forward and runs whatever became due.
func (w *world) advance(d time.Duration) {
	w.clock.Advance(d)
	w.scheduler.RunDue()
}

func combatOf(t *testing.T, e *entity.Entity) *CombatStats {
	t.Helper()
	c, err := entity.Require[*CombatStats](e, entity.KindCombatStats)
	require.NoError(t, err)
	return c
}

func actionsOf(t *testing.T, e *entity.Entity) *Actions {
	t.Helper()
	a, err := entity.Require[*Actions](e, entity.KindActions)
	require.NoError(t, err)
	return a
}

func record(e *entity.Entity, event string) *[][]any {
	var calls [][]any
	e.Events().AddListener(event, func(args ...any) { calls = append(calls, args) })
	return &calls
}
