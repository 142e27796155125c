package components

import "github.com/pthm-cable/citycore/ids"

// ConstructionPhase is the visual/progress phase of a Materializing
// building (§3.3).
type ConstructionPhase uint8

const (
	PhaseFoundation ConstructionPhase = iota
	PhaseFramework
	PhaseExterior
	PhaseFinalization
)

// PhaseForPercent returns the construction phase for a percent-complete
// value in [0, 100] (§4.10: <25 Foundation, <50 Framework, <75 Exterior,
// else Finalization).
func PhaseForPercent(percent float32) ConstructionPhase {
	switch {
	case percent < 25:
		return PhaseFoundation
	case percent < 50:
		return PhaseFramework
	case percent < 75:
		return PhaseExterior
	default:
		return PhaseFinalization
	}
}

// Construction is the transient component present iff a building is
// Materializing (§3.3, §3.4).
type Construction struct {
	TicksTotal       uint32
	TicksElapsed     uint32
	Phase            ConstructionPhase
	PhaseProgress    uint8 // 0..255
	IsPaused         bool
	ConstructionCost ids.Credits
}

// PercentComplete returns progress in [0, 100].
func (c *Construction) PercentComplete() float32 {
	if c.TicksTotal == 0 {
		return 100
	}
	return 100 * float32(c.TicksElapsed) / float32(c.TicksTotal)
}

// IsComplete reports whether construction has reached its total tick count.
func (c *Construction) IsComplete() bool {
	return c.TicksElapsed >= c.TicksTotal
}
