package factories

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/physics"
	"github.com/zeusync/outpost/internal/core/services"
)

// Structure stats.
const (
	WallHealth   = 300
	GateHealth   = 200
	TurretHealth = 150
	TurretAttack = 5

	// GateReach and PortalReach are the proximity radii that open gates and
	// trigger portals.
	GateReach   = 1.5
	PortalReach = 1.5
	// StructureReach is the interaction radius of extractors and the ship.
	StructureReach = 5.0
	BenchReach     = 0.5

	TurretRange    = 6.0
	TurretCooldown = time.Second
)

// Structure events.
const (
	EventShowPopup    = "showPopup"
	EventOpenUpgrades = "openUpgrades"
	EventRepair       = "repair"
)

// ExplosionEffect is played when a gate opens.
const ExplosionEffect = "explosion"

// Footprints.
var (
	GateScale      = mgl64.Vec2{2, 2}
	ExtractorScale = mgl64.Vec2{1.8, 2}
	ShipScale      = mgl64.Vec2{5, 4.5}
	BenchScale     = mgl64.Vec2{0.6, 0.6}

	// PortalExit is where portals send the player.
	PortalExit = mgl64.Vec2{5, 5}
)

// Wall spawns a one-tile obstacle that is removed when destroyed.
func (f *Factory) Wall(pos mgl64.Vec2) (*entity.Entity, error) {
	return f.build(f.newEntity(entity.TypeStructure, pos),
		components.NewCombatStats(WallHealth, 0, 0, false),
		components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerAll),
		components.NewDeath(),
	)
}

// Gate is a wall that opens for the player.
type Gate struct {
	hitbox *components.Hitbox
	open   bool
}

// Open reports whether the gate lets the player through.
func (g *Gate) Open() bool { return g.open }

// enter runs every frame the player is near. Only the first opens the gate
// and plays the effect.
func (g *Gate) enter(e *entity.Entity) func(*entity.Entity) {
	return func(*entity.Entity) {
		if g.open {
			return
		}
		g.open = true
		g.hitbox.SetEnabled(false)
		e.Events().Trigger(components.EventStartEffect, ExplosionEffect)
	}
}

func (g *Gate) exit(*entity.Entity) {
	g.open = false
	g.hitbox.SetEnabled(true)
}

// Gate spawns a gate on pos that opens while player is within reach.
func (f *Factory) Gate(pos mgl64.Vec2, player *entity.Entity) (*entity.Entity, *Gate, error) {
	e := f.newEntity(entity.TypeStructure, pos, entity.WithScale(GateScale))
	g := &Gate{hitbox: components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerAll)}
	prox, err := components.NewProximityActivation(GateReach, player, g.enter(e), g.exit)
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.build(e,
		components.NewCombatStats(GateHealth, 0, 0, false),
		g.hitbox,
		prox,
		components.NewDeath(),
	); err != nil {
		return nil, nil, err
	}
	return e, g, nil
}

// Portal spawns a pad that teleports player to PortalExit.
func (f *Factory) Portal(pos mgl64.Vec2, player *entity.Entity) (*entity.Entity, error) {
	prox, err := components.NewProximityActivation(PortalReach, player, func(p *entity.Entity) {
		p.SetPosition(PortalExit)
	}, nil)
	if err != nil {
		return nil, err
	}
	return f.build(f.newEntity(entity.TypeStructure, pos), prox)
}

// Extractor spawns a broken resource producer. Interacting with it while
// broken repairs it to full health.
func (f *Factory) Extractor(pos mgl64.Vec2, health int, resource string, tickRate time.Duration, tickSize int) (*entity.Entity, error) {
	stats := components.NewCombatStats(0, 0, 0, false, components.WithMaxHealth(health))
	e := f.newEntity(entity.TypeStructure, pos, entity.WithScale(ExtractorScale))
	repair := func(*entity.Entity) {
		if !stats.IsDead() {
			return
		}
		stats.SetHealth(stats.MaxHealth())
		e.Events().Trigger(EventRepair, resource)
	}
	return f.build(e,
		stats,
		components.NewProduction(f.store, f.scheduler.Clock(), resource, tickRate, tickSize),
		components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerNPC),
		components.NewInteractable(StructureReach, repair),
	)
}

// Ship spawns the player's ship. Interacting with it leaves the planet once
// more than threshold Solstite has been gathered, or shows a popup.
func (f *Factory) Ship(pos mgl64.Vec2, threshold int) (*entity.Entity, error) {
	e := f.newEntity(entity.TypeShip, pos, entity.WithScale(ShipScale))
	board := func(*entity.Entity) {
		if f.store.Resource("Solstite") <= threshold {
			e.Events().Trigger(EventShowPopup)
			return
		}
		screens, err := f.locator.Screens()
		if err != nil {
			f.logger.Error("cannot leave planet", log.Error(err))
			return
		}
		screens.SetScreen(services.ScreenNavigation)
	}
	return f.build(e,
		components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerNPC),
		components.NewInteractable(StructureReach, board),
	)
}

// UpgradeBench spawns the bench that opens the upgrade tree.
func (f *Factory) UpgradeBench(pos mgl64.Vec2) (*entity.Entity, error) {
	e := f.newEntity(entity.TypeStructure, pos, entity.WithScale(BenchScale))
	return f.build(e,
		components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerNPC),
		components.NewInteractable(BenchReach, func(p *entity.Entity) {
			e.Events().Trigger(EventOpenUpgrades, p)
		}),
	)
}

// Laboratory spawns the lab. open runs when the player interacts with it.
func (f *Factory) Laboratory(pos mgl64.Vec2, open func(player *entity.Entity)) (*entity.Entity, error) {
	return f.build(f.newEntity(entity.TypeStructure, pos),
		components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerNPC),
		components.NewInteractable(StructureReach, open),
	)
}

// Turret spawns a defence that hits every targetable in range at most once
// per TurretCooldown.
func (f *Factory) Turret(pos mgl64.Vec2) (*entity.Entity, error) {
	stats := components.NewCombatStats(TurretHealth, TurretAttack, 1, false)
	clock := f.scheduler.Clock()
	ready := make(map[*entity.Entity]time.Time)

	fire := func(target *entity.Entity) {
		if target.Type() != entity.TypeEnemy || stats.IsDead() {
			return
		}
		now := clock.Now()
		if next, ok := ready[target]; ok && now.Before(next) {
			return
		}
		victim, ok := entity.Lookup[*components.CombatStats](target, entity.KindCombatStats)
		if !ok {
			return
		}
		ready[target] = now.Add(TurretCooldown)
		victim.Hit(stats)
	}
	forget := func(target *entity.Entity) { delete(ready, target) }

	fov, err := components.NewFOV(TurretRange, f.registry, fire, forget)
	if err != nil {
		return nil, err
	}
	return f.build(f.newEntity(entity.TypeStructure, pos),
		stats,
		fov,
		components.NewHitbox(f.world, physics.LayerObstacle, physics.LayerNPC),
		components.NewDeath(),
	)
}
