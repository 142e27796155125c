package grid

import "github.com/pthm-cable/citycore/ids"

// RoadType enumerates pathway tile kinds.
type RoadType uint8

const (
	RoadNone RoadType = iota
	RoadLocal
	RoadArterial
	RoadHighway
)

// PathwayCell holds the road presence/type/owner at a tile. The zero
// value means "no pathway" (§3.2).
type PathwayCell struct {
	Type  RoadType
	Owner ids.PlayerID
	Road  ids.EntityID // the road entity at this tile, 0 if none
}

// Present reports whether a pathway occupies this cell.
func (c PathwayCell) Present() bool { return c.Type != RoadNone }

// PathwayGrid is the dense road-presence grid.
type PathwayGrid struct {
	*Dense[PathwayCell]
}

// NewPathwayGrid creates an empty pathway grid.
func NewPathwayGrid(side int) *PathwayGrid {
	return &PathwayGrid{Dense: NewDense[PathwayCell](side)}
}
