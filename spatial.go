package main

import "math"

// SpatialCellSize is comparable to the largest contact range (boss radius 46 +
// player radius 15 + bullet radius) so a 3x3 neighborhood never misses a hit.
const SpatialCellSize = 180.0

// EntityKind selects one layer of the grid
type EntityKind uint8

const (
	KindEnemy EntityKind = iota
	KindPlayerBullet
	KindEnemyBullet
	KindGem
	KindHeart
	kindCount
)

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind EntityKind
	Idx  int // index into the corresponding World slice
}

// SpatialGrid is a uniform grid for broad-phase collision queries. It covers
// the arena plus one cell of margin on every side; positions further out are
// clamped into the border cells.
type SpatialGrid struct {
	cols, rows int
	cells      [kindCount][][]EntityRef
	scratch    []EntityRef
}

// NewSpatialGrid creates a grid covering a width x height arena
func NewSpatialGrid(width, height float64) *SpatialGrid {
	g := &SpatialGrid{
		cols: int(math.Ceil(width/SpatialCellSize)) + 2,
		rows: int(math.Ceil(height/SpatialCellSize)) + 2,
	}
	for k := range g.cells {
		g.cells[k] = make([][]EntityRef, g.cols*g.rows)
	}
	return g
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for k := range g.cells {
		layer := g.cells[k]
		for i := range layer {
			layer[i] = layer[i][:0]
		}
	}
}

// cellCoords buckets a position as floor(x/cell), floor(y/cell), shifted by the
// one-cell margin and clamped to the grid.
func (g *SpatialGrid) cellCoords(x, y float64) (int, int) {
	cx := int(math.Floor(x/SpatialCellSize)) + 1
	cy := int(math.Floor(y/SpatialCellSize)) + 1
	if cx < 0 {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cx, cy
}

// Insert adds an entity reference at the given position
func (g *SpatialGrid) Insert(x, y float64, ref EntityRef) {
	cx, cy := g.cellCoords(x, y)
	idx := cy*g.cols + cx
	g.cells[ref.Kind][idx] = append(g.cells[ref.Kind][idx], ref)
}

// Rebuild clears the grid and reinserts every live entity of the world
func (g *SpatialGrid) Rebuild(w *World) {
	g.Clear()
	for i, e := range w.Enemies {
		if e.Alive {
			g.Insert(e.X, e.Y, EntityRef{Kind: KindEnemy, Idx: i})
		}
	}
	for i, b := range w.Bullets {
		if b.Alive {
			g.Insert(b.X, b.Y, EntityRef{Kind: KindPlayerBullet, Idx: i})
		}
	}
	for i, b := range w.EnemyBullets {
		if b.Alive {
			g.Insert(b.X, b.Y, EntityRef{Kind: KindEnemyBullet, Idx: i})
		}
	}
	for i, gem := range w.Gems {
		if gem.Alive {
			g.Insert(gem.X, gem.Y, EntityRef{Kind: KindGem, Idx: i})
		}
	}
	for i, h := range w.Hearts {
		if h.Alive {
			g.Insert(h.X, h.Y, EntityRef{Kind: KindHeart, Idx: i})
		}
	}
}

// Query returns all entities of kind in the 3x3 cell neighborhood around (x,y).
// The returned slice is reused by the next Query call.
func (g *SpatialGrid) Query(x, y float64, kind EntityKind) []EntityRef {
	g.scratch = g.QueryBuf(x, y, kind, g.scratch[:0])
	return g.scratch
}

// QueryBuf appends the 3x3 neighborhood of (x,y) to buf, avoiding per-call allocation
func (g *SpatialGrid) QueryBuf(x, y float64, kind EntityKind, buf []EntityRef) []EntityRef {
	cx, cy := g.cellCoords(x, y)
	layer := g.cells[kind]
	for row := cy - 1; row <= cy+1; row++ {
		if row < 0 || row >= g.rows {
			continue
		}
		for col := cx - 1; col <= cx+1; col++ {
			if col < 0 || col >= g.cols {
				continue
			}
			buf = append(buf, layer[row*g.cols+col]...)
		}
	}
	return buf
}

// QueryRadius appends every entity of kind whose cell overlaps the bounding box
// of the circle (x, y, radius). Used for areas larger than one cell.
func (g *SpatialGrid) QueryRadius(x, y, radius float64, kind EntityKind, buf []EntityRef) []EntityRef {
	minCX, minCY := g.cellCoords(x-radius, y-radius)
	maxCX, maxCY := g.cellCoords(x+radius, y+radius)
	layer := g.cells[kind]
	for row := minCY; row <= maxCY; row++ {
		for col := minCX; col <= maxCX; col++ {
			buf = append(buf, layer[row*g.cols+col]...)
		}
	}
	return buf
}
