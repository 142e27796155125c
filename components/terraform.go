package components

import "github.com/pthm-cable/citycore/ids"

// TerraformKind distinguishes a multi-tick grade (elevation change) from
// a multi-tick terraform (source-type conversion) operation (§4.10).
type TerraformKind uint8

const (
	OpGrade TerraformKind = iota
	OpTerraform
)

// TerrainModification is the transient operation entity backing
// multi-tick grade/terraform operations (§4.10).
type TerrainModification struct {
	Kind          TerraformKind
	X, Y          int32
	Owner         ids.PlayerID
	TicksTotal    uint32
	TicksElapsed  uint32
	TargetElevation uint8 // OpGrade only: desired elevation, 1 level/tick
	Cancelled     bool
}

// PercentComplete returns progress in [0, 100].
func (m *TerrainModification) PercentComplete() float32 {
	if m.TicksTotal == 0 {
		return 100
	}
	return 100 * float32(m.TicksElapsed) / float32(m.TicksTotal)
}

// IsComplete reports whether the operation has run its full duration.
func (m *TerrainModification) IsComplete() bool {
	return !m.Cancelled && m.TicksElapsed >= m.TicksTotal
}
