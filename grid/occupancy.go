package grid

import "github.com/pthm-cable/citycore/ids"

// OccupancyGrid maps tiles to the building entity whose footprint
// covers them; 0 means empty (§3.2).
type OccupancyGrid struct {
	*Dense[ids.EntityID]
}

// NewOccupancyGrid creates a zero-initialized (empty) occupancy grid.
func NewOccupancyGrid(side int) *OccupancyGrid {
	return &OccupancyGrid{Dense: NewDense[ids.EntityID](side)}
}

// IsFree reports whether every cell in the w*h footprint rooted at
// (x, y) is empty and in-bounds.
func (g *OccupancyGrid) IsFree(x, y, w, h int) bool {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			tx, ty := x+dx, y+dy
			if !g.InBounds(tx, ty) {
				return false
			}
			if g.At(tx, ty) != ids.InvalidEntityID {
				return false
			}
		}
	}
	return true
}

// MarkFootprint sets every cell in the w*h footprint rooted at (x, y) to id.
func (g *OccupancyGrid) MarkFootprint(x, y, w, h int, id ids.EntityID) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			g.Set(x+dx, y+dy, id)
		}
	}
}

// ClearFootprint clears every cell in the w*h footprint rooted at (x, y).
// Idempotent: clearing an already-empty footprint is a no-op (§9 open
// question on duplicate clearing).
func (g *OccupancyGrid) ClearFootprint(x, y, w, h int) {
	g.MarkFootprint(x, y, w, h, ids.InvalidEntityID)
}
