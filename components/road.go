package components

import "github.com/pthm-cable/citycore/grid"

// Road is the per-entity road record, mirrored by a PathwayCell on the
// dense pathway grid (§3.3, §3.4 — no orphan pathways).
type Road struct {
	Type         grid.RoadType
	Health       uint8 // 0..255
	BaseCapacity float32
}

// HealthThresholds are the crossing points that emit a
// PathwayStateChanged event (§4.4).
var HealthThresholds = [...]uint8{255, 200, 150, 100, 50, 0}

// Traffic tracks per-tick flow accounting for a road entity (§3.3).
type Traffic struct {
	FlowCurrent float32
	accumulator float32
}

// Accumulate adds to this tick's flow accumulator.
func (t *Traffic) Accumulate(amount float32) { t.accumulator += amount }

// Commit moves the accumulator into FlowCurrent and resets it, called
// once per tick by the transport subsystem.
func (t *Traffic) Commit() {
	t.FlowCurrent = t.accumulator
	t.accumulator = 0
}
