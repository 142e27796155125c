package grid

// TerrainType enumerates the base map surface at a tile (§3.2, §4.10).
type TerrainType uint8

const (
	Substrate TerrainType = iota // default buildable land
	DeepVoid                     // open ocean
	FlowChannel                  // river / flowing water
	StillBasin                   // lake / still water
	BlightMires                  // terraformable contamination hazard
	EmberCrust                   // terraformable contamination hazard
)

// IsWater reports whether t is one of the three water terrain types
// (§3.4: water_body_id(x,y) != 0 iff terrain(x,y) is a water type).
func (t TerrainType) IsWater() bool {
	return t == DeepVoid || t == FlowChannel || t == StillBasin
}

// IsTerraformable reports whether t is a source type the building
// subsystem's terraform operation can convert to Substrate (§4.10).
func (t TerrainType) IsTerraformable() bool {
	return t == BlightMires || t == EmberCrust
}

// TerraformDuration returns the number of ticks a terraform operation on
// this source type takes, per §4.10 ("blight 100 ticks, ember 50").
func (t TerrainType) TerraformDuration() int {
	switch t {
	case BlightMires:
		return 100
	case EmberCrust:
		return 50
	default:
		return 0
	}
}

// TerrainFlag bits packed into TerrainCell.Flags.
type TerrainFlag uint8

const (
	FlagCleared   TerrainFlag = 1 << 0 // terraform has been applied at least once
	FlagBuildable TerrainFlag = 1 << 1 // explicitly marked buildable by the generator
)

// TerrainCell is the 4-byte per-tile terrain record (§3.2).
type TerrainCell struct {
	Type      TerrainType
	Elevation uint8 // 0..31
	Moisture  uint8
	Flags     TerrainFlag
}

// HasFlag reports whether f is set on the cell.
func (c TerrainCell) HasFlag(f TerrainFlag) bool { return c.Flags&f != 0 }

// TerrainGrid is the base-map dense grid.
type TerrainGrid struct {
	*Dense[TerrainCell]
}

// NewTerrainGrid creates a zero-initialized terrain grid of the given side.
func NewTerrainGrid(side int) *TerrainGrid {
	return &TerrainGrid{Dense: NewDense[TerrainCell](side)}
}
