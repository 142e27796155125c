package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/grid"
)

func testTransportConfig() config.TransportConfig {
	return config.TransportConfig{
		GracePeriodTicks:         0, // most tests want authoritative behavior immediately
		DecayInterval:            100,
		BaseDecay:                1,
		ProximityMaxRange:        16,
		FlowInjectionPerOccupant: 0.05,
	}
}

func TestTransportNetworkConnectivity(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTransportSystem(h.world, h.store, testTransportConfig())

	// Two disjoint road runs.
	for x := int32(10); x <= 14; x++ {
		if _, err := ts.PlacePathway(x, 10, grid.RoadLocal, 1); err != nil {
			t.Fatalf("PlacePathway(%d,10): %v", x, err)
		}
	}
	for x := int32(40); x <= 44; x++ {
		ts.PlacePathway(x, 10, grid.RoadLocal, 1)
	}

	ts.Tick(h.ctx())

	if !ts.AreConnected(10, 10, 14, 10) {
		t.Fatal("cells on the same run should be connected")
	}
	if ts.AreConnected(10, 10, 40, 10) {
		t.Fatal("disjoint runs should not be connected")
	}
	if ts.GetNetworkIDAt(10, 10) == 0 || ts.GetNetworkIDAt(40, 10) == 0 {
		t.Fatal("road cells missing network ids")
	}
	if ts.GetNetworkIDAt(10, 10) == ts.GetNetworkIDAt(40, 10) {
		t.Fatal("disjoint runs share a network id")
	}
	if ts.GetNetworkIDAt(0, 0) != 0 {
		t.Fatal("empty cell reports a network id")
	}
}

// §8 invariant: pathway cells have proximity 0; other cells carry the
// true 4-connected BFS distance capped at the configured max.
func TestTransportProximityBFS(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTransportSystem(h.world, h.store, testTransportConfig())

	ts.PlacePathway(64, 64, grid.RoadLocal, 1)
	ts.Tick(h.ctx())

	if d := ts.GetNearestRoadDistance(64, 64); d != 0 {
		t.Fatalf("proximity at pathway = %d, want 0", d)
	}
	if d := ts.GetNearestRoadDistance(64, 66); d != 2 {
		t.Fatalf("proximity two steps away = %d, want 2", d)
	}
	// Diagonal neighbor is two 4-connected steps, not one.
	if d := ts.GetNearestRoadDistance(65, 65); d != 2 {
		t.Fatalf("diagonal proximity = %d, want 2", d)
	}
	// Beyond the max range the cache reports "none".
	if d := ts.GetNearestRoadDistance(64, 64+30); d != int(grid.ProximityUnknown) {
		t.Fatalf("far proximity = %d, want %d", d, grid.ProximityUnknown)
	}
}

// §8 round-trip: re-placing and re-removing a pathway leaves network
// ids bit-stable after a rebuild.
func TestTransportReplaceRemoveBitStableNetworkIDs(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTransportSystem(h.world, h.store, testTransportConfig())

	for x := int32(10); x <= 20; x++ {
		ts.PlacePathway(x, 10, grid.RoadLocal, 1)
	}
	ts.Tick(h.ctx())

	before := make([]uint16, 0, 11)
	for x := 10; x <= 20; x++ {
		before = append(before, h.world.Network.At(x, 10))
	}

	if err := ts.RemovePathway(15, 10, 1); err != nil {
		t.Fatalf("RemovePathway: %v", err)
	}
	ts.Tick(h.ctx())
	if ts.AreConnected(10, 10, 20, 10) {
		t.Fatal("severed runs still connected")
	}

	if _, err := ts.PlacePathway(15, 10, grid.RoadLocal, 1); err != nil {
		t.Fatalf("re-place: %v", err)
	}
	ts.Tick(h.ctx())

	for i, x := range []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20} {
		if got := h.world.Network.At(x, 10); got != before[i] {
			t.Fatalf("network id at (%d,10) = %d, want %d", x, got, before[i])
		}
	}
}

func TestTransportPlacementValidation(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTransportSystem(h.world, h.store, testTransportConfig())

	if _, err := ts.PlacePathway(-1, 0, grid.RoadLocal, 1); err != ErrOutOfBounds {
		t.Fatalf("out-of-bounds placement: got %v, want ErrOutOfBounds", err)
	}
	if _, err := ts.PlacePathway(5, 5, grid.RoadLocal, 1); err != nil {
		t.Fatalf("placement: %v", err)
	}
	if _, err := ts.PlacePathway(5, 5, grid.RoadLocal, 1); err != ErrOccupied {
		t.Fatalf("double placement: got %v, want ErrOccupied", err)
	}
	if err := ts.RemovePathway(5, 5, 2); err != ErrNotOwned {
		t.Fatalf("foreign removal: got %v, want ErrNotOwned", err)
	}
	if err := ts.RemovePathway(6, 6, 1); err != ErrNoPathway {
		t.Fatalf("removing empty tile: got %v, want ErrNoPathway", err)
	}
}

// During the grace window every accessibility query passes; afterwards
// out-of-range queries fail (§4.4).
func TestTransportGracePeriod(t *testing.T) {
	h := newHarness(t, 128)
	cfg := testTransportConfig()
	cfg.GracePeriodTicks = 5
	ts := NewTransportSystem(h.world, h.store, cfg)

	ts.Tick(h.ctx()) // becomes authoritative at tick 1

	if !ts.IsRoadAccessibleAt(100, 100, 4) {
		t.Fatal("query during grace window should pass")
	}

	for i := 0; i < 5; i++ {
		ts.Tick(h.ctx())
	}
	if ts.IsRoadAccessibleAt(100, 100, 4) {
		t.Fatal("roadless tile accessible after grace expired")
	}

	drained := false
	ts.Tick(h.ctx())
	for _, ev := range h.bus.TransportAccessLost.Drain() {
		if ev.X == 100 && ev.Y == 100 {
			drained = true
		}
	}
	if !drained {
		t.Fatal("TransportAccessLost not emitted for failing query")
	}
}

func TestTransportCongestionClamped(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTransportSystem(h.world, h.store, testTransportConfig())

	ts.PlacePathway(10, 10, grid.RoadLocal, 1)
	ts.Tick(h.ctx())

	if c := ts.GetCongestionAt(10, 10); c < 0 || c > 1 {
		t.Fatalf("congestion = %f, want within [0,1]", c)
	}
	if c := ts.GetCongestionAt(50, 50); c != 0 {
		t.Fatalf("congestion off-road = %f, want 0", c)
	}
}
