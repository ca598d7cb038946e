// Package components implements the gameplay components attached to entities.
package components

import "errors"

// Entity bus events raised or consumed by components.
const (
	EventUpdateHealth  = "updateHealth"
	EventDeath         = "death"
	EventUpdateLives   = "updateLives"
	EventMaxLivesAlert = "maxLivesAlert"
	EventPlaySound     = "playSound"
	EventStartEffect   = "startEffect"
	EventWalk          = "walk"
	EventWalkStop      = "walkStop"
	EventInteract      = "interact"
	EventSpawnPotion   = "SpawnPotion"
	EventSpawnPowerup  = "SpawnPowerup"
)

var (
	ErrInvalidPowerupType = errors.New("invalid powerup type")
	ErrInvalidPotionType  = errors.New("invalid potion type")
	ErrInvalidRadius      = errors.New("radius must be positive")
)
