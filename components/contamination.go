package components

import "github.com/pthm-cable/citycore/grid"

// DefaultSpreadRadius and DefaultSpreadDecayRate are the §3.3 defaults
// for a ContaminationSource.
const (
	DefaultSpreadRadius    uint8   = 4
	DefaultSpreadDecayRate float32 = 0.35 // fraction lost per Chebyshev step
)

// ContaminationSource marks an entity as a contamination emitter (§3.3,
// §4.8).
type ContaminationSource struct {
	BaseOutput      float32
	CurrentOutput   float32
	SpreadRadius    uint8
	SpreadDecayRate float32
	Type            grid.ContaminationType
	IsActive        bool
}
