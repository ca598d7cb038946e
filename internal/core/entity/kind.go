package entity

// Kind is the closed set of component variants an entity can hold. An entity
// stores at most one component per Kind in a fixed-size table.
type Kind uint8

const (
	KindCombatStats Kind = iota
	KindPowerup
	KindProximity
	KindFOV
	KindTargetable
	KindHitbox
	KindDeath
	KindActions
	KindFollow
	KindInteractable
	KindProduction
	KindPotion
	KindInput
	KindTool

	kindCount
)

var kindNames = [kindCount]string{
	KindCombatStats:  "CombatStats",
	KindPowerup:      "Powerup",
	KindProximity:    "ProximityActivation",
	KindFOV:          "FOV",
	KindTargetable:   "TurretTargetable",
	KindHitbox:       "Hitbox",
	KindDeath:        "Death",
	KindActions:      "Actions",
	KindFollow:       "Follow",
	KindInteractable: "Interactable",
	KindProduction:   "Production",
	KindPotion:       "Potion",
	KindInput:        "KeyboardInput",
	KindTool:         "Tool",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k < kindCount }

// Well-known entity type tags.
const (
	TypePlayer       = "player"
	TypePlayerWeapon = "playerWeapon"
	TypeCompanion    = "companion"
	TypeEnemy        = "enemy"
	TypeStructure    = "structure"
	TypePowerup      = "powerup"
	TypePotion       = "potion"
	TypeObstacle     = "obstacle"
	TypeShip         = "ship"
	TypeCar          = "car"
)
