package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/geom"
)

// Interactable runs an action when the player interacts within range.
type Interactable struct {
	entity.Base

	radius float64
	action func(player *entity.Entity)
}

func NewInteractable(radius float64, action func(player *entity.Entity)) *Interactable {
	return &Interactable{radius: radius, action: action}
}

func (i *Interactable) Kind() entity.Kind { return entity.KindInteractable }

func (i *Interactable) Radius() float64 { return i.radius }

// InRange reports whether player is close enough to interact.
func (i *Interactable) InRange(player *entity.Entity) bool {
	return geom.Within(i.Entity().Center(), player.Center(), i.radius)
}

// Interact runs the action if player is in range.
func (i *Interactable) Interact(player *entity.Entity) bool {
	if i.action == nil || !i.InRange(player) {
		return false
	}
	i.action(player)
	return true
}

// InteractNearest triggers the closest interactable in range of player and
// reports whether one was found.
func InteractNearest(registry *entity.Registry, player *entity.Entity) bool {
	var (
		best     *Interactable
		bestDist = math.Inf(1)
	)
	for e := range registry.EntitiesByComponent(entity.KindInteractable).Seq() {
		if e == player {
			continue
		}
		in, ok := entity.Lookup[*Interactable](e, entity.KindInteractable)
		if !ok || !in.InRange(player) {
			continue
		}
		if d := geom.Distance(e.Center(), player.Center()); d < bestDist {
			best, bestDist = in, d
		}
	}
	if best == nil {
		return false
	}
	return best.Interact(player)
}

// PotionType is brewed in the laboratory.
type PotionType uint8

const (
	PotionUnknown PotionType = iota
	DeathPotion
	SpeedPotion
	HealthPotion
	InvincibilityPotion
)

var potionNames = map[PotionType]string{
	DeathPotion:         "DEATH_POTION",
	SpeedPotion:         "SPEED_POTION",
	HealthPotion:        "HEALTH_POTION",
	InvincibilityPotion: "INVINCIBILITY_POTION",
}

func (t PotionType) String() string {
	if n, ok := potionNames[t]; ok {
		return n
	}
	return fmt.Sprintf("PotionType(%d)", uint8(t))
}

func ParsePotionType(s string) (PotionType, error) {
	for t, n := range potionNames {
		if strings.EqualFold(n, s) {
			return t, nil
		}
	}
	return PotionUnknown, fmt.Errorf("%q: %w", s, ErrInvalidPotionType)
}

// Valid reports whether t is a known potion.
func (t PotionType) Valid() bool {
	_, ok := potionNames[t]
	return ok
}

// Effect is the powerup a potion applies when drunk.
func (t PotionType) Effect() (PowerupType, error) {
	switch t {
	case DeathPotion:
		return DoubleDamage, nil
	case SpeedPotion:
		return SpeedBoost, nil
	case HealthPotion:
		return HealthBoost, nil
	case InvincibilityPotion:
		return TempImmunity, nil
	default:
		return PowerupUnknown, fmt.Errorf("%s: %w", t, ErrInvalidPotionType)
	}
}

// Tile is where the laboratory places a freshly brewed potion.
func (t PotionType) Tile() (geom.GridPoint, error) {
	if !t.Valid() {
		return geom.GridPoint{}, fmt.Errorf("%s: %w", t, ErrInvalidPotionType)
	}
	return geom.Pt(38+int(t), 21), nil
}

// Potion applies its effect when the player drinks it.
type Potion struct {
	entity.Base

	typ     PotionType
	effects *Effects
	drunk   bool
}

func NewPotion(t PotionType, effects *Effects) (*Potion, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("new potion %s: %w", t, ErrInvalidPotionType)
	}
	return &Potion{typ: t, effects: effects}, nil
}

func (p *Potion) Kind() entity.Kind { return entity.KindPotion }

func (p *Potion) Type() PotionType { return p.typ }

// Drink applies the effect once and removes the potion from the map.
func (p *Potion) Drink() error {
	if p.drunk {
		return nil
	}
	effect, err := p.typ.Effect()
	if err != nil {
		return err
	}
	if err := p.effects.Apply(effect, p.Entity()); err != nil {
		return err
	}
	p.drunk = true
	RemoveFromMap(p.Entity())
	return nil
}

// RemoveFromMap disables e and disposes it at the end of the frame.
func RemoveFromMap(e *entity.Entity) {
	if e == nil {
		return
	}
	e.SetEnabled(false)
	e.DisposeLater()
}
