package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/physics"
	"github.com/zeusync/outpost/internal/core/timer"
)

// PowerupType selects the effect a powerup applies.
type PowerupType uint8

const (
	PowerupUnknown PowerupType = iota
	HealthBoost
	SpeedBoost
	ExtraLife
	TempImmunity
	DoubleDamage
)

var powerupNames = map[PowerupType]string{
	HealthBoost:  "HEALTH_BOOST",
	SpeedBoost:   "SPEED_BOOST",
	ExtraLife:    "EXTRA_LIFE",
	TempImmunity: "TEMP_IMMUNITY",
	DoubleDamage: "DOUBLE_DAMAGE",
}

func (t PowerupType) String() string {
	if n, ok := powerupNames[t]; ok {
		return n
	}
	return fmt.Sprintf("PowerupType(%d)", uint8(t))
}

// ParsePowerupType accepts the upper snake case names.
func ParsePowerupType(s string) (PowerupType, error) {
	for t, n := range powerupNames {
		if strings.EqualFold(n, s) {
			return t, nil
		}
	}
	return PowerupUnknown, fmt.Errorf("%q: %w", s, ErrInvalidPowerupType)
}

// UnmarshalText lets configs name powerups directly.
func (t *PowerupType) UnmarshalText(b []byte) error {
	v, err := ParsePowerupType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Valid reports whether t is a known powerup.
func (t PowerupType) Valid() bool {
	_, ok := powerupNames[t]
	return ok
}

func (t PowerupType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Effect durations.
const (
	SpeedBoostDuration   = 8000 * time.Millisecond
	ImmunityDuration     = 6000 * time.Millisecond
	DoubleDamageDuration = 12000 * time.Millisecond
)

// Effect values.
const (
	PlayerBoostHealth    = 100
	CompanionBoostHealth = 50
	BoostedFollowSpeed   = 5
)

var (
	PlayerBoostSpeed    = [2]float64{6, 6}
	CompanionBoostSpeed = [2]float64{7, 7}
)

// Duration is how long the effect of t lasts; zero for instant effects.
func (t PowerupType) Duration() time.Duration {
	switch t {
	case SpeedBoost:
		return SpeedBoostDuration
	case TempImmunity:
		return ImmunityDuration
	case DoubleDamage:
		return DoubleDamageDuration
	default:
		return 0
	}
}

// Effects applies powerup effects to the designated player and companion.
//
// Reversals are scheduled per target and effect. Re-applying an effect while
// its reversal is pending restarts the duration. Reversal callbacks hold the
// target components, not the powerup that triggered them, and do nothing once
// the target entity is disposed.
type Effects struct {
	registry  *entity.Registry
	scheduler *timer.Scheduler
	logger    log.Log
}

func NewEffects(registry *entity.Registry, scheduler *timer.Scheduler, logger log.Log) *Effects {
	return &Effects{
		registry:  registry,
		scheduler: scheduler,
		logger:    log.OrNop(logger).With(log.Component("powerup")),
	}
}

// Apply dispatches on t. source receives sound cues and may be nil. Missing
// targets or components are logged and skipped.
func (fx *Effects) Apply(t PowerupType, source *entity.Entity) error {
	if !t.Valid() {
		return fmt.Errorf("apply %s: %w", t, ErrInvalidPowerupType)
	}
	player, err := fx.registry.Player()
	if err != nil {
		return fmt.Errorf("apply %s: %w", t, err)
	}
	companion, _ := fx.registry.Companion()

	switch t {
	case HealthBoost:
		if c, ok := fx.combat(player, t); ok {
			c.SetHealth(PlayerBoostHealth)
		}
		if c, ok := fx.combat(companion, t); ok {
			c.SetHealth(CompanionBoostHealth)
		}
		if source != nil {
			source.Events().Trigger(EventPlaySound, "healthPowerup")
		}

	case SpeedBoost:
		if a, ok := fx.actions(player, t); ok {
			a.SetSpeed(PlayerBoostSpeed[0], PlayerBoostSpeed[1])
			fx.revert(player, t, a.ResetSpeed)
		}
		if a, ok := fx.actions(companion, t); ok {
			a.SetSpeed(CompanionBoostSpeed[0], CompanionBoostSpeed[1])
			fx.revert(companion, t, a.ResetSpeed)
		}
		if f, ok := entity.Lookup[*Follow](companion, entity.KindFollow); ok {
			f.SetFollowSpeed(BoostedFollowSpeed)
			fx.revertKeyed(companion, t, "follow", f.ResetFollowSpeed)
		}

	case ExtraLife:
		if c, ok := fx.combat(player, t); ok {
			c.AddLife()
		}

	case TempImmunity:
		for _, target := range []*entity.Entity{player, companion} {
			if c, ok := fx.combat(target, t); ok {
				c.SetImmunity(true)
				fx.revert(target, t, func() { c.SetImmunity(false) })
			}
		}

	case DoubleDamage:
		if c, ok := fx.combat(player, t); ok {
			c.SetAttackMultiplier(2)
			fx.revert(player, t, func() { c.SetAttackMultiplier(1) })
		}

	}
	return nil
}

func (fx *Effects) combat(target *entity.Entity, t PowerupType) (*CombatStats, bool) {
	c, ok := entity.Lookup[*CombatStats](target, entity.KindCombatStats)
	if !ok && target != nil {
		fx.logger.Warn("powerup target has no combat stats",
			log.String("powerup", t.String()), log.String("target", target.String()))
	}
	return c, ok
}

func (fx *Effects) actions(target *entity.Entity, t PowerupType) (*Actions, bool) {
	a, ok := entity.Lookup[*Actions](target, entity.KindActions)
	if !ok && target != nil {
		fx.logger.Warn("powerup target has no actions",
			log.String("powerup", t.String()), log.String("target", target.String()))
	}
	return a, ok
}

func (fx *Effects) revert(target *entity.Entity, t PowerupType, fn func()) {
	fx.revertKeyed(target, t, "", fn)
}

func (fx *Effects) revertKeyed(target *entity.Entity, t PowerupType, part string, fn func()) {
	if fx.scheduler == nil {
		fx.logger.Warn("no scheduler, effect is permanent", log.String("powerup", t.String()))
		return
	}
	key := fmt.Sprintf("powerup/%d/%s/%s", target.ID(), t, part)
	fx.scheduler.AfterKeyed(key, t.Duration(), func() {
		if target.IsDisposed() {
			return
		}
		fn()
	})
}

// Powerup is a pickup that applies its effect when the player touches its
// hitbox, then removes its entity at the end of the frame.
type Powerup struct {
	entity.Base

	typ     PowerupType
	effects *Effects
	applied bool
	sub     bus.Subscription
	logger  log.Log
}

func NewPowerup(t PowerupType, effects *Effects) *Powerup {
	return &Powerup{typ: t, effects: effects, logger: effects.logger}
}

func (p *Powerup) Kind() entity.Kind { return entity.KindPowerup }

func (p *Powerup) Type() PowerupType       { return p.typ }
func (p *Powerup) Duration() time.Duration { return p.typ.Duration() }
func (p *Powerup) Applied() bool           { return p.applied }

// Create subscribes to pickups when the entity has a hitbox.
func (p *Powerup) Create() error {
	e := p.Entity()
	hitbox, ok := entity.Lookup[*Hitbox](e, entity.KindHitbox)
	if !ok {
		return nil
	}
	p.sub = bus.Listen2(e.Events(), physics.EventCollisionStart, func(me, other *physics.Fixture) {
		if !hitbox.Owns(me) || other == nil || other.Owner() == nil {
			return
		}
		if other.Owner().Type() != entity.TypePlayer {
			return
		}
		if err := p.ApplyEffect(); err != nil {
			p.logger.Error("powerup pickup failed", log.Error(err))
		}
	})
	return nil
}

func (p *Powerup) Dispose() {
	if p.sub != nil {
		p.sub.Cancel()
	}
}

// ApplyEffect applies the effect once and defers disposal of the powerup
// entity. An unknown type is an error and leaves the powerup in place.
func (p *Powerup) ApplyEffect() error {
	if p.applied {
		return nil
	}
	if err := p.effects.Apply(p.typ, p.Entity()); err != nil {
		return err
	}
	p.applied = true
	if e := p.Entity(); e != nil {
		e.DisposeLater()
	}
	return nil
}
