package grid

import "github.com/pthm-cable/citycore/ids"

// ZoneType mirrors components.ZoneType; duplicated here (rather than
// imported) so the grid package has no dependency on components,
// matching the teacher's layering where systems/terrain.go and
// components never import each other.
type ZoneType uint8

const (
	ZoneHabitation ZoneType = iota
	ZoneExchange
	ZoneFabrication
)

// Density mirrors components.Density.
type Density uint8

const (
	DensityLow Density = iota
	DensityHigh
)

// ZoneCell is the per-tile zoning designation painted by an overseer.
type ZoneCell struct {
	ZoneType ZoneType
	Density  Density
	Owner    ids.PlayerID
	Zoned    bool
}

// ZoneGrid is the dense zoning-designation grid the building subsystem's
// spawn loop scans each tick (§4.10).
type ZoneGrid struct {
	*Dense[ZoneCell]
}

// NewZoneGrid creates an all-unzoned zoning grid.
func NewZoneGrid(side int) *ZoneGrid {
	return &ZoneGrid{Dense: NewDense[ZoneCell](side)}
}
