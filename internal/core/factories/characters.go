package factories

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/physics"
)

// Character stats.
const (
	PlayerHealth    = 100
	PlayerAttack    = 10
	CompanionHealth = 50
	CompanionAttack = 5
	EnemyHealth     = 50
	EnemyAttack     = 10

	// CompanionDistance is how close the companion trails the player.
	CompanionDistance = 1.0
	// EnemyReach is how close enemies get to their target.
	EnemyReach = 0.5
)

var (
	EnemySpeed = mgl64.Vec2{2, 2}
	CarSpeed   = mgl64.Vec2{6, 6}
)

// Player spawns the keyboard-driven player and designates it. Pressing the
// interact key triggers the nearest interactable in range. extra components
// are attached before registration.
func (f *Factory) Player(pos mgl64.Vec2, extra ...entity.Component) (*entity.Entity, error) {
	e := f.newEntity(entity.TypePlayer, pos)
	cs := append([]entity.Component{
		components.NewCombatStats(PlayerHealth, PlayerAttack, 1, false,
			components.WithDeathScheduler(f.scheduler), components.WithCombatLogger(f.logger)),
		components.NewActions(components.PlayerSpeed),
		components.NewHitbox(f.world, physics.LayerPlayer, physics.LayerObstacle|physics.LayerItem|physics.LayerNPC),
		components.NewKeyboardInput(f.input, components.WASD),
	}, extra...)

	bus.Listen0(e.Events(), components.EventInteract, func() {
		components.InteractNearest(f.registry, e)
	})

	if _, err := f.build(e, cs...); err != nil {
		return nil, err
	}
	if err := f.registry.Designate(entity.RolePlayer, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Companion spawns the companion trailing leader and designates it.
func (f *Factory) Companion(pos mgl64.Vec2, leader *entity.Entity) (*entity.Entity, error) {
	e := f.newEntity(entity.TypeCompanion, pos)
	if _, err := f.build(e,
		components.NewCombatStats(CompanionHealth, CompanionAttack, 1, false, components.WithCombatLogger(f.logger)),
		components.NewActions(components.CompanionSpeed),
		components.NewFollow(leader, CompanionDistance),
		components.NewHitbox(f.world, physics.LayerPlayer, physics.LayerObstacle|physics.LayerNPC),
	); err != nil {
		return nil, err
	}
	if err := f.registry.Designate(entity.RoleCompanion, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Enemy spawns a hostile that chases target, shows up in turret sights and is
// removed once dead and out of contact.
func (f *Factory) Enemy(pos mgl64.Vec2, target *entity.Entity) (*entity.Entity, error) {
	stats := components.NewCombatStats(EnemyHealth, EnemyAttack, 1, false, components.WithCombatLogger(f.logger))
	e := f.newEntity(entity.TypeEnemy, pos)

	// enemies strike whatever combatant they run into
	bus.Listen2(e.Events(), physics.EventCollisionStart, func(_, other *physics.Fixture) {
		if stats.IsDead() {
			return
		}
		if victim, ok := entity.Lookup[*components.CombatStats](other.Owner(), entity.KindCombatStats); ok {
			victim.Hit(stats)
		}
	})

	return f.build(e,
		stats,
		components.NewActions(EnemySpeed),
		components.NewFollow(target, EnemyReach),
		components.NewHitbox(f.world, physics.LayerNPC, physics.LayerPlayer|physics.LayerWeapon|physics.LayerObstacle),
		components.NewDeath(),
		components.NewTurretTargetable(),
	)
}

// Car spawns a drivable vehicle. Its keyboard input starts silent and is
// enabled by whoever takes the wheel.
func (f *Factory) Car(pos mgl64.Vec2) (*entity.Entity, *components.KeyboardInput, error) {
	keys := components.NewKeyboardInput(f.input, components.WASD)
	keys.SetSilent(true)
	e, err := f.build(f.newEntity(entity.TypeCar, pos),
		components.NewActions(CarSpeed),
		keys,
	)
	if err != nil {
		return nil, nil, err
	}
	return e, keys, nil
}
