package components

import (
	"time"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/timer"
)

// PlayerDeathDelay separates a player's health reaching zero from the death event.
const PlayerDeathDelay = 500 * time.Millisecond

const (
	DefaultLives    = 3
	DefaultMaxLives = 4
)

// CombatStats holds health, attack and immunity.
//
// Health is clamped to [0, MaxHealth]. Entering death schedules a delayed
// "death" event for players and fires it immediately, with payload 0, for
// player weapons. Other entity types only see "updateHealth".
type CombatStats struct {
	entity.Base

	health           int
	maxHealth        int
	baseAttack       int
	attackMultiplier int
	immune           bool

	lives    int
	maxLives int

	scope  *timer.Scope
	death  *timer.Handle
	logger log.Log
}

type CombatOption func(*CombatStats)

// WithDeathScheduler provides the scheduler for the delayed player death.
// Without one the player's death event fires immediately.
func WithDeathScheduler(s *timer.Scheduler) CombatOption {
	return func(c *CombatStats) {
		if s != nil {
			c.scope = timer.NewScope(s)
		}
	}
}

func WithLives(lives, maxLives int) CombatOption {
	return func(c *CombatStats) {
		c.lives, c.maxLives = lives, maxLives
	}
}

// WithMaxHealth raises the health cap above the initial health. Structures
// that start broken use it.
func WithMaxHealth(n int) CombatOption {
	return func(c *CombatStats) { c.maxHealth = max(c.maxHealth, n) }
}

func WithCombatLogger(l log.Log) CombatOption {
	return func(c *CombatStats) { c.logger = log.OrNop(l) }
}

// NewCombatStats creates stats with health as both initial and max health
// unless WithMaxHealth raises the cap.
// Negative attack values are rejected as in SetBaseAttack.
func NewCombatStats(health, baseAttack, attackMultiplier int, immune bool, opts ...CombatOption) *CombatStats {
	c := &CombatStats{
		maxHealth: max(health, 0),
		immune:    immune,
		lives:     DefaultLives,
		maxLives:  DefaultMaxLives,
		logger:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(log.Component("combat"))
	c.health = c.clamp(health)
	c.SetBaseAttack(baseAttack)
	c.SetAttackMultiplier(attackMultiplier)
	return c
}

func (c *CombatStats) Kind() entity.Kind { return entity.KindCombatStats }

func (c *CombatStats) Dispose() {
	if c.scope != nil {
		c.scope.Close()
	}
}

func (c *CombatStats) Health() int    { return c.health }
func (c *CombatStats) MaxHealth() int { return c.maxHealth }
func (c *CombatStats) IsDead() bool   { return c.health == 0 }

func (c *CombatStats) clamp(v int) int {
	return min(max(v, 0), c.maxHealth)
}

// SetHealth clamps v and fires "updateHealth" with the result.
func (c *CombatStats) SetHealth(v int) {
	wasDead := c.IsDead()
	c.health = c.clamp(v)

	e := c.Entity()
	if e == nil {
		return
	}
	e.Events().Trigger(EventUpdateHealth, c.health)

	if wasDead || !c.IsDead() {
		return
	}
	switch e.Type() {
	case entity.TypePlayer:
		c.scheduleDeath(e)
	case entity.TypePlayerWeapon:
		e.Events().Trigger(EventDeath, 0)
	}
}

func (c *CombatStats) scheduleDeath(e *entity.Entity) {
	if c.death.Pending() {
		return
	}
	if c.scope == nil {
		e.Events().Trigger(EventDeath)
		return
	}
	c.death = c.scope.After(PlayerDeathDelay, func() {
		if e.IsDisposed() {
			return
		}
		e.Events().Trigger(EventDeath)
	})
}

// DeathPending reports whether a delayed death event is scheduled.
func (c *CombatStats) DeathPending() bool { return c.death.Pending() }

// AddHealth is SetHealth(Health()+delta).
func (c *CombatStats) AddHealth(delta int) { c.SetHealth(c.health + delta) }

func (c *CombatStats) BaseAttack() int { return c.baseAttack }

// SetBaseAttack ignores negative values.
func (c *CombatStats) SetBaseAttack(v int) {
	if v < 0 {
		c.logger.Error("cannot set base attack to a negative value", log.Int("attack", v))
		return
	}
	c.baseAttack = v
}

func (c *CombatStats) AttackMultiplier() int { return c.attackMultiplier }

// SetAttackMultiplier ignores negative values.
func (c *CombatStats) SetAttackMultiplier(v int) {
	if v < 0 {
		c.logger.Error("cannot set attack multiplier to a negative value", log.Int("multiplier", v))
		return
	}
	c.attackMultiplier = v
}

// Attack is baseAttack * attackMultiplier.
func (c *CombatStats) Attack() int { return c.baseAttack * c.attackMultiplier }

func (c *CombatStats) Immune() bool       { return c.immune }
func (c *CombatStats) SetImmunity(v bool) { c.immune = v }
func (c *CombatStats) ToggleImmunity()    { c.immune = !c.immune }

// Hit subtracts the attacker's attack unless immune.
func (c *CombatStats) Hit(attacker *CombatStats) {
	if c.immune || attacker == nil {
		return
	}
	c.SetHealth(c.health - attacker.Attack())
}

func (c *CombatStats) Lives() int    { return c.lives }
func (c *CombatStats) MaxLives() int { return c.maxLives }

// AddLife grants a life up to MaxLives, firing "updateLives". At the cap it
// fires "maxLivesAlert" instead.
func (c *CombatStats) AddLife() {
	e := c.Entity()
	if c.lives >= c.maxLives {
		if e != nil {
			e.Events().Trigger(EventMaxLivesAlert)
		}
		return
	}
	c.lives++
	if e != nil {
		e.Events().Trigger(EventUpdateLives, c.lives)
	}
}

// LoseLife removes a life, never going below zero, and fires "updateLives".
func (c *CombatStats) LoseLife() {
	if c.lives == 0 {
		return
	}
	c.lives--
	if e := c.Entity(); e != nil {
		e.Events().Trigger(EventUpdateLives, c.lives)
	}
}
