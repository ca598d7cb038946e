// Package geom holds grid coordinates and the vector helpers shared by
// movement, proximity and placement code.
package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GridPoint is an integer tile coordinate.
type GridPoint struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func Pt(x, y int) GridPoint { return GridPoint{X: x, Y: y} }

func (p GridPoint) Add(o GridPoint) GridPoint { return GridPoint{X: p.X + o.X, Y: p.Y + o.Y} }
func (p GridPoint) Sub(o GridPoint) GridPoint { return GridPoint{X: p.X - o.X, Y: p.Y - o.Y} }

// Vec2 converts the tile coordinate to a world vector with unit tiles.
func (p GridPoint) Vec2() mgl64.Vec2 { return mgl64.Vec2{float64(p.X), float64(p.Y)} }

func (p GridPoint) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// FromVec2 floors a world vector to its containing tile.
func FromVec2(v mgl64.Vec2) GridPoint {
	return GridPoint{X: int(math.Floor(v.X())), Y: int(math.Floor(v.Y()))}
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b mgl64.Vec2) float64 {
	return a.Sub(b).Len()
}

// Within reports whether a and b are at most radius apart.
func Within(a, b mgl64.Vec2, radius float64) bool {
	d := a.Sub(b)
	return d.Dot(d) <= radius*radius
}

// Direction returns the unit vector from a towards b, or zero when they
// coincide.
func Direction(a, b mgl64.Vec2) mgl64.Vec2 {
	d := b.Sub(a)
	if d.Len() == 0 {
		return mgl64.Vec2{}
	}
	return d.Normalize()
}

// Half is v scaled by one half.
func Half(v mgl64.Vec2) mgl64.Vec2 { return v.Mul(0.5) }

// Rect is an axis-aligned box given by its minimum corner and size.
type Rect struct {
	Min  mgl64.Vec2
	Size mgl64.Vec2
}

func (r Rect) Max() mgl64.Vec2 { return r.Min.Add(r.Size) }

// Overlaps reports whether r and o intersect with positive area.
func (r Rect) Overlaps(o Rect) bool {
	rMax, oMax := r.Max(), o.Max()
	return r.Min.X() < oMax.X() && o.Min.X() < rMax.X() &&
		r.Min.Y() < oMax.Y() && o.Min.Y() < rMax.Y()
}
