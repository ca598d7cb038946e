package factories

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/physics"
)

// PotionReach is how close the player must be to drink a potion.
const PotionReach = 1.5

// ItemScale is the footprint of pickups.
var ItemScale = mgl64.Vec2{0.6, 0.6}

// Powerup spawns a pickup applying t on contact with the player.
func (f *Factory) Powerup(t components.PowerupType, pos mgl64.Vec2) (*entity.Entity, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("powerup %s: %w", t, components.ErrInvalidPowerupType)
	}
	return f.build(f.newEntity(entity.TypePowerup, pos, entity.WithScale(ItemScale)),
		components.NewPowerup(t, f.effects),
		components.NewHitbox(f.world, physics.LayerItem, physics.LayerPlayer),
	)
}

// Potion spawns a potion the player drinks by interacting with it.
func (f *Factory) Potion(t components.PotionType, pos mgl64.Vec2) (*entity.Entity, error) {
	potion, err := components.NewPotion(t, f.effects)
	if err != nil {
		return nil, err
	}
	drink := func(*entity.Entity) {
		if err := potion.Drink(); err != nil {
			f.logger.Error("drinking potion failed", log.String("potion", t.String()), log.Error(err))
		}
	}
	return f.build(f.newEntity(entity.TypePotion, pos, entity.WithScale(ItemScale)),
		potion,
		components.NewInteractable(PotionReach, drink),
	)
}
