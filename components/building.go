package components

// BuildingState is the five-state lifecycle of a building entity (§3.3,
// §3.4: a building exists in exactly one of these at all times).
type BuildingState uint8

const (
	Materializing BuildingState = iota
	Active
	Abandoned
	Derelict
	Deconstructed
)

// String returns the display name of the state.
func (s BuildingState) String() string {
	switch s {
	case Materializing:
		return "Materializing"
	case Active:
		return "Active"
	case Abandoned:
		return "Abandoned"
	case Derelict:
		return "Derelict"
	case Deconstructed:
		return "Deconstructed"
	default:
		return "Unknown"
	}
}

// ZoneType is the demand category a building belongs to.
type ZoneType uint8

const (
	ZoneHabitation ZoneType = iota
	ZoneExchange
	ZoneFabrication
)

// Density is the zoning density tier (low-rise vs high-rise).
type Density uint8

const (
	DensityLow Density = iota
	DensityHigh
)

// Building is the core building component (§3.3).
type Building struct {
	TemplateID       uint32
	State            BuildingState
	ZoneType         ZoneType
	Density          Density
	Level            uint8
	Health           uint8 // 0..255, scaled to 0..100% for display
	Capacity         uint32
	CurrentOccupancy uint32
	FootprintW       uint8
	FootprintH       uint8
	Rotation         uint8 // 0..3
	ColorAccent      uint8
	AbandonTimer     int32
	StateChangedTick uint64

	// Per-entity grace-period overrides for the Active->Abandoned
	// transition (§4.10). Zero means "inherit the configured default"
	// (§9's UINT32_MAX-sentinel open question, resolved so the zero
	// value needs no sentinel at all).
	EnergyGraceTicks    uint32
	FluidGraceTicks     uint32
	TransportGraceTicks uint32
}

// FootprintCovers reports whether tile (x, y) falls within the
// building's footprint rooted at (originX, originY).
func (b *Building) FootprintCovers(originX, originY, x, y int32) bool {
	return x >= originX && x < originX+int32(b.FootprintW) &&
		y >= originY && y < originY+int32(b.FootprintH)
}
