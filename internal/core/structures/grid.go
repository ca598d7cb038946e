// Package structures implements the placement grid and the building tools
// the player uses on it.
package structures

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/geom"
)

var (
	ErrOccupied    = errors.New("position occupied")
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrUnknownTool = errors.New("unknown tool")
)

// Grid maps tiles to the structures placed on them. Disposed structures
// free their tile.
type Grid struct {
	mu     sync.RWMutex
	bounds geom.GridPoint
	cells  map[geom.GridPoint]*entity.Entity
}

// NewGrid creates a grid of bounds tiles. A zero bound on an axis leaves it
// unbounded.
func NewGrid(bounds geom.GridPoint) *Grid {
	return &Grid{bounds: bounds, cells: make(map[geom.GridPoint]*entity.Entity)}
}

func (g *Grid) inBounds(p geom.GridPoint) bool {
	if p.X < 0 || p.Y < 0 {
		return false
	}
	return (g.bounds.X == 0 || p.X < g.bounds.X) && (g.bounds.Y == 0 || p.Y < g.bounds.Y)
}

// At returns the live structure on p.
func (g *Grid) At(p geom.GridPoint) (*entity.Entity, bool) {
	g.mu.RLock()
	e, ok := g.cells[p]
	g.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.IsDisposed() {
		g.mu.Lock()
		if g.cells[p] == e {
			delete(g.cells, p)
		}
		g.mu.Unlock()
		return nil, false
	}
	return e, true
}

// Place puts e on p.
func (g *Grid) Place(p geom.GridPoint, e *entity.Entity) error {
	if !g.inBounds(p) {
		return fmt.Errorf("place %s at %s: %w", e, p, ErrOutOfBounds)
	}
	if _, ok := g.At(p); ok {
		return fmt.Errorf("place %s at %s: %w", e, p, ErrOccupied)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.cells[p]; ok && !cur.IsDisposed() {
		return fmt.Errorf("place %s at %s: %w", e, p, ErrOccupied)
	}
	g.cells[p] = e
	return nil
}

// Remove clears p and returns what was there.
func (g *Grid) Remove(p geom.GridPoint) (*entity.Entity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.cells[p]
	delete(g.cells, p)
	if !ok || e.IsDisposed() {
		return nil, false
	}
	return e, true
}

// Len counts live structures.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, e := range g.cells {
		if !e.IsDisposed() {
			n++
		}
	}
	return n
}
