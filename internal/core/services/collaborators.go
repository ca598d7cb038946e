package services

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/geom"
)

// ScreenType names the top-level screens a session can switch between.
type ScreenType uint8

const (
	ScreenMainMenu ScreenType = iota
	ScreenPlanet
	ScreenSpaceMap
	ScreenSpaceMini
	ScreenNavigation
)

func (s ScreenType) String() string {
	switch s {
	case ScreenMainMenu:
		return "MAIN_MENU"
	case ScreenPlanet:
		return "PLANET"
	case ScreenSpaceMap:
		return "SPACE_MAP"
	case ScreenSpaceMini:
		return "SPACE_MINI"
	case ScreenNavigation:
		return "NAVIGATION_SCREEN"
	default:
		return "UNKNOWN"
	}
}

// Screens switches the visible screen. Implemented by the UI layer.
type Screens interface {
	SetScreen(ScreenType)
}

// Render tracks the entities that have something to draw.
type Render interface {
	Track(e *entity.Entity)
	Untrack(e *entity.Entity)
}

// Terrain converts between tiles and world units.
type Terrain interface {
	TileSize() float64
	Bounds() geom.GridPoint
	TileToWorld(p geom.GridPoint) mgl64.Vec2
}

// Placement maps grid cells to the structures placed on them.
type Placement interface {
	At(p geom.GridPoint) (*entity.Entity, bool)
	Place(p geom.GridPoint, e *entity.Entity) error
	Remove(p geom.GridPoint) (*entity.Entity, bool)
}
