package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
)

func testRailConfig() config.RailConfig {
	return config.RailConfig{
		TerminalCoverageRadius: 8,
		TerminalMaxReduction:   0.5,
	}
}

func TestTerminalPlacementValidation(t *testing.T) {
	h := newHarness(t, 128)
	rs := NewRailSystem(h.world, h.store, testRailConfig())

	// No adjacent rail yet.
	if _, err := rs.PlaceTerminal(10, 10, components.TerminalPassenger, 1); err != ErrNoAdjacentRail {
		t.Fatalf("terminal without rail: got %v, want ErrNoAdjacentRail", err)
	}

	if _, err := rs.PlaceRail(11, 10, components.RailSurface, 1); err != nil {
		t.Fatalf("PlaceRail: %v", err)
	}
	if _, err := rs.PlaceTerminal(10, 10, components.TerminalPassenger, 1); err != nil {
		t.Fatalf("PlaceTerminal: %v", err)
	}

	// Another player may not stack a terminal on the same tile.
	if _, err := rs.PlaceTerminal(10, 10, components.TerminalFreight, 2); err != ErrTerminalExists {
		t.Fatalf("stacked terminal: got %v, want ErrTerminalExists", err)
	}
}

// Terminal coverage: full reduction at the terminal, linear falloff to
// zero at the radius, max-aggregated across terminals (§4.5).
func TestTerminalTrafficReductionField(t *testing.T) {
	h := newHarness(t, 128)
	rs := NewRailSystem(h.world, h.store, testRailConfig())

	rs.PlaceRail(21, 20, components.RailSurface, 1)
	if _, err := rs.PlaceTerminal(20, 20, components.TerminalFreight, 1); err != nil {
		t.Fatalf("PlaceTerminal: %v", err)
	}
	rs.Tick(h.ctx()) // energy stub powered -> terminal active

	if got := rs.TrafficReductionAt(20, 20); got != 0.5 {
		t.Fatalf("reduction at terminal = %f, want 0.5", got)
	}
	at4 := rs.TrafficReductionAt(24, 20)
	if at4 <= 0 || at4 >= 0.5 {
		t.Fatalf("reduction at distance 4 = %f, want linear falloff between 0 and 0.5", at4)
	}
	if got := rs.TrafficReductionAt(30, 20); got != 0 {
		t.Fatalf("reduction beyond radius = %f, want 0", got)
	}

	// An unpowered terminal projects nothing.
	h.energy.available = false
	rs.Tick(h.ctx())
	if got := rs.TrafficReductionAt(20, 20); got != 0 {
		t.Fatalf("unpowered terminal reduction = %f, want 0", got)
	}
}
