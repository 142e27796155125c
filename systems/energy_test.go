package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/query"
)

func testEnergyConfig() config.EnergyConfig {
	return config.EnergyConfig{
		MarginalSurplusRatio: 0.2,
		CollapseDeficitTicks: 10,
		AgingHalfLifeTicks:   40000,
		AgingFloorPct:        0.6,
		SupplyRadius:         6,
	}
}

func TestEnergyPoolStateMachine(t *testing.T) {
	h := newHarness(t, 128)
	es := NewEnergySystem(h.world, h.store, testRegistry(t), testEnergyConfig())

	// A clean nexus with plenty of output: Healthy.
	if _, err := es.PlaceNexus(10, 10, components.NexusClean, 100, 1); err != nil {
		t.Fatalf("PlaceNexus: %v", err)
	}
	es.Tick(h.ctx())
	if got := es.PoolState(1); got != query.Healthy {
		t.Fatalf("pool state = %v, want Healthy", got)
	}
	if es.PoolSurplus(1) <= 0 {
		t.Fatalf("surplus = %f, want positive", es.PoolSurplus(1))
	}

	// Pile on demand past generation: Deficit, surplus sign preserved.
	for i := int32(0); i < 120; i++ {
		id := h.store.NewEntity(components.Position{X: 20 + i%10, Y: 20 + i/10}, components.Ownership{Owner: 1})
		e, _ := h.store.Entity(id)
		h.store.Building.Add(e, &components.Building{
			TemplateID: 1,
			State:      components.Active,
			ZoneType:   components.ZoneHabitation,
			Capacity:   10,
		})
	}

	es.Tick(h.ctx())
	if got := es.PoolState(1); got != query.Deficit {
		t.Fatalf("pool state = %v, want Deficit", got)
	}
	if es.PoolSurplus(1) >= 0 {
		t.Fatalf("deficit surplus = %f, want negative", es.PoolSurplus(1))
	}
	ev := h.bus.EnergyStateChanged.Drain()
	if len(ev) == 0 {
		t.Fatal("no EnergyStateChanged events for Healthy->Deficit")
	}

	// Sustained deficit collapses the pool.
	for i := 0; i < 12; i++ {
		es.Tick(h.ctx())
	}
	if got := es.PoolState(1); got != query.Collapse {
		t.Fatalf("pool state after sustained deficit = %v, want Collapse", got)
	}
}

// Consumers are powered only inside the producer/conduit supply reach
// while the pool meets demand (§4.7).
func TestEnergySupplyConnectivity(t *testing.T) {
	h := newHarness(t, 128)
	es := NewEnergySystem(h.world, h.store, testRegistry(t), testEnergyConfig())

	es.PlaceNexus(50, 50, components.NexusClean, 100, 1)
	es.Tick(h.ctx())

	if !es.IsAvailableAt(1, 52, 50) {
		t.Fatal("tile inside supply radius should be powered")
	}
	if es.IsAvailableAt(1, 80, 80) {
		t.Fatal("tile far outside supply radius should be unpowered")
	}

	// A conduit run extends reach at no radius cost.
	for x := int32(51); x <= 70; x++ {
		es.PlaceConduit(x, 50, 1)
	}
	es.Tick(h.ctx())
	if !es.IsAvailableAt(1, 72, 50) {
		t.Fatal("tile near conduit end should be powered")
	}
}

// Nexus aging decays output toward the floor, never below it.
func TestNexusAgingApproachesFloor(t *testing.T) {
	h := newHarness(t, 128)
	cfg := testEnergyConfig()
	cfg.AgingHalfLifeTicks = 10
	es := NewEnergySystem(h.world, h.store, testRegistry(t), cfg)

	id, _ := es.PlaceNexus(10, 10, components.NexusCarbon, 100, 1)
	e, _ := h.store.Entity(id)

	for i := 0; i < 200; i++ {
		es.Tick(h.ctx())
	}
	nexus := h.store.EnergyNexus.Get(e)
	floor := nexus.BaseOutput * nexus.AgingFloorPct
	if nexus.CurrentOutput < floor-0.01 {
		t.Fatalf("output %f fell below aging floor %f", nexus.CurrentOutput, floor)
	}
	if nexus.CurrentOutput > floor+1 {
		t.Fatalf("output %f did not converge toward floor %f", nexus.CurrentOutput, floor)
	}
	if len(h.bus.NexusAged.Drain()) == 0 {
		t.Fatal("no NexusAged events across a 40%% output decline")
	}
}

// Reservoirs buffer fluid shortfalls and count toward availability.
func TestFluidReservoirBuffering(t *testing.T) {
	h := newHarness(t, 128)
	fs := NewFluidSystem(h.world, h.store, testRegistry(t), config.FluidConfig{
		MarginalSurplusRatio:      0.2,
		CollapseDeficitTicks:      10,
		SupplyRadius:              6,
		ExtractorMaxWaterDistance: 3,
	})

	// Extractors need water nearby.
	if _, err := fs.PlaceExtractor(10, 10, 50, 1); err != ErrNoWaterNearby {
		t.Fatalf("dry placement: got %v, want ErrNoWaterNearby", err)
	}
	h.world.WaterBody.Set(11, 10, 1)
	if _, err := fs.PlaceExtractor(10, 10, 50, 1); err != nil {
		t.Fatalf("wet placement: %v", err)
	}

	rid, err := fs.PlaceReservoir(12, 10, 1000, 1)
	if err != nil {
		t.Fatalf("PlaceReservoir: %v", err)
	}
	re, _ := h.store.Entity(rid)

	// With no consumers the surplus fills the reservoir.
	fs.Tick(h.ctx())
	if stored := h.store.FluidReservoir.Get(re).Stored; stored <= 0 {
		t.Fatalf("reservoir stored = %f, want filled from surplus", stored)
	}
}
