package components

import "github.com/pthm-cable/citycore/ids"

// Template is an immutable building template record, loaded once at
// startup from config and indexed by the template registry (§4.10).
// Templates are plain data, never entities: no ark component mapper
// sees this type.
type Template struct {
	ID                uint32
	Name              string
	ZoneType          ZoneType
	Density           Density
	FootprintW        uint8
	FootprintH        uint8
	ConstructionTicks uint32
	ConstructionCost  ids.Credits
	MinLandValue      uint8
	MinLevel          uint8
	MaxLevel          uint8
	BaseCapacity      uint32
	EnergyRequired    float32
	FluidRequired     float32
	ContaminationOut  float32
	ColorAccentCount  uint8
	SelectionWeight   float32
}
