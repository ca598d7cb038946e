package area

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/geom"
)

// Terrain is a rectangular tile map. A zero tile size means unit tiles.
type Terrain struct {
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	Tile   float64 `json:"tileSize,omitempty" yaml:"tileSize,omitempty"`
}

func (t Terrain) TileSize() float64 {
	if t.Tile <= 0 {
		return 1
	}
	return t.Tile
}

// Bounds is the map size in tiles.
func (t Terrain) Bounds() geom.GridPoint { return geom.Pt(t.Width, t.Height) }

// Center is the middle tile.
func (t Terrain) Center() geom.GridPoint { return geom.Pt(t.Width/2, t.Height/2) }

// TileToWorld returns the world position of the tile's lower left corner.
func (t Terrain) TileToWorld(p geom.GridPoint) mgl64.Vec2 { return p.Vec2().Mul(t.TileSize()) }
