package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
)

// §8 scenario 3: the full building lifecycle from spawn through
// deconstruction, driven tick by tick with a switchable energy stub.
func TestBuildingLifecycleEndToEnd(t *testing.T) {
	h := newHarness(t, 128)
	bs := NewBuildingSystem(h.world, h.store, testRegistry(t), testBuildingConfig(), 1)

	if err := bs.PaintZone(10, 10, grid.ZoneHabitation, grid.DensityLow, 1); err != nil {
		t.Fatalf("PaintZone: %v", err)
	}

	// Tick 1000: the spawn loop materializes a building.
	bs.Tick(h.ctxAt(1000))
	id, ok := bs.GetBuildingAt(10, 10)
	if !ok {
		t.Fatal("no building spawned on zoned tile")
	}
	e, _ := h.store.Entity(id)
	if !h.store.Construction.HasAll(e) {
		t.Fatal("Materializing building missing Construction bundle")
	}
	if got := h.store.Building.Get(e).State; got != components.Materializing {
		t.Fatalf("state after spawn = %v, want Materializing", got)
	}

	// Construction_ticks = 40: BuildingConstructed fires at tick 1040.
	var constructedAt ids.Tick
	for tick := ids.Tick(1001); tick <= 1040; tick++ {
		bs.Tick(h.ctxAt(tick))
		for _, ev := range h.bus.BuildingConstructed.Drain() {
			if ev.Entity == id {
				constructedAt = ev.Tick
			}
		}
	}
	if constructedAt != 1040 {
		t.Fatalf("BuildingConstructed at tick %d, want 1040", constructedAt)
	}
	if h.store.Construction.HasAll(e) {
		t.Fatal("Construction bundle survived completion")
	}
	if got := h.store.Building.Get(e).State; got != components.Active {
		t.Fatalf("state after construction = %v, want Active", got)
	}

	// Cut energy: grace = 100 ticks, so BuildingAbandoned at 1140.
	h.energy.available = false
	var abandonedAt ids.Tick
	for tick := ids.Tick(1041); tick <= 1140; tick++ {
		bs.Tick(h.ctxAt(tick))
		for _, ev := range h.bus.BuildingAbandoned.Drain() {
			if ev.Entity == id {
				abandonedAt = ev.Tick
			}
		}
	}
	if abandonedAt != 1140 {
		t.Fatalf("BuildingAbandoned at tick %d, want 1140", abandonedAt)
	}
	if got := h.store.Building.Get(e).AbandonTimer; got != 200 {
		t.Fatalf("abandon timer = %d, want 200", got)
	}

	// Leave energy off: abandon timer 200 runs out at 1340.
	var derelictAt ids.Tick
	for tick := ids.Tick(1141); tick <= 1340; tick++ {
		bs.Tick(h.ctxAt(tick))
		for _, ev := range h.bus.BuildingDerelict.Drain() {
			if ev.Entity == id {
				derelictAt = ev.Tick
			}
		}
	}
	if derelictAt != 1340 {
		t.Fatalf("BuildingDerelict at tick %d, want 1340", derelictAt)
	}

	// Derelict timer 500: deconstruction at 1840 clears the footprint.
	var deconstructedAt ids.Tick
	for tick := ids.Tick(1341); tick <= 1840; tick++ {
		bs.Tick(h.ctxAt(tick))
		for _, ev := range h.bus.BuildingDeconstructed.Drain() {
			if ev.Entity == id {
				deconstructedAt = ev.Tick
				if ev.WasPlayerInitiated {
					t.Fatal("derelict timeout flagged as player-initiated")
				}
			}
		}
	}
	if deconstructedAt != 1840 {
		t.Fatalf("BuildingDeconstructed at tick %d, want 1840", deconstructedAt)
	}
	if h.world.Occupancy.At(10, 10).IsValid() {
		t.Fatal("occupancy not cleared after deconstruction")
	}
	if !h.store.Debris.HasAll(e) {
		t.Fatal("Debris bundle missing after deconstruction")
	}

	// Debris clears after its 60-tick timer and emits DebrisCleared.
	var cleared bool
	for tick := ids.Tick(1841); tick <= 1901 && !cleared; tick++ {
		bs.Tick(h.ctxAt(tick))
		for _, ev := range h.bus.DebrisCleared.Drain() {
			if ev.Entity == id {
				cleared = true
			}
		}
	}
	if !cleared {
		t.Fatal("DebrisCleared never fired")
	}
	if h.store.Alive(id) {
		t.Fatal("debris entity still alive after clear")
	}
}

// Restoring services before the abandon timer expires flips the
// building back to Active and resets the timer (§4.10, §8).
func TestBuildingRestoredBeforeTimerExpires(t *testing.T) {
	h := newHarness(t, 128)
	bs := NewBuildingSystem(h.world, h.store, testRegistry(t), testBuildingConfig(), 1)

	bs.PaintZone(10, 10, grid.ZoneHabitation, grid.DensityLow, 1)
	bs.Tick(h.ctxAt(1000))
	id, _ := bs.GetBuildingAt(10, 10)
	e, _ := h.store.Entity(id)

	for tick := ids.Tick(1001); tick <= 1040; tick++ {
		bs.Tick(h.ctxAt(tick))
	}
	h.bus.BuildingConstructed.Drain()

	h.energy.available = false
	for tick := ids.Tick(1041); tick <= 1140; tick++ {
		bs.Tick(h.ctxAt(tick))
	}
	if got := h.store.Building.Get(e).State; got != components.Abandoned {
		t.Fatalf("state = %v, want Abandoned", got)
	}
	h.bus.BuildingAbandoned.Drain()

	// Restore on the very next tick, before the abandon timer has run down.
	h.energy.available = true
	bs.Tick(h.ctxAt(1141))
	restored := h.bus.BuildingRestored.Drain()
	if len(restored) != 1 || restored[0].Entity != id {
		t.Fatalf("expected one BuildingRestored for %d, got %v", id, restored)
	}
	b := h.store.Building.Get(e)
	if b.State != components.Active {
		t.Fatalf("state = %v, want Active", b.State)
	}
	if b.AbandonTimer != 0 {
		t.Fatalf("abandon timer = %d, want reset", b.AbandonTimer)
	}
}

// Demolition rejections surface as structured errors (§4.10, §7).
func TestDemolitionValidation(t *testing.T) {
	h := newHarness(t, 128)
	bs := NewBuildingSystem(h.world, h.store, testRegistry(t), testBuildingConfig(), 1)

	bs.PaintZone(20, 20, grid.ZoneHabitation, grid.DensityLow, 2)
	bs.Tick(h.ctxAt(1))
	id, ok := bs.GetBuildingAt(20, 20)
	if !ok {
		t.Fatal("no building spawned")
	}

	if err := bs.Demolish(h.ctxAt(2), ids.EntityID(9999), 2); err != ErrEntityNotFound {
		t.Fatalf("unknown entity: got %v, want ErrEntityNotFound", err)
	}
	if err := bs.Demolish(h.ctxAt(3), id, 1); err != ErrNotOwned {
		t.Fatalf("wrong owner: got %v, want ErrNotOwned", err)
	}

	if err := bs.Demolish(h.ctxAt(4), id, 2); err != nil {
		t.Fatalf("legitimate demolition failed: %v", err)
	}
	ev := h.bus.BuildingDeconstructed.Drain()
	if len(ev) != 1 || !ev[0].WasPlayerInitiated {
		t.Fatalf("expected one player-initiated BuildingDeconstructed, got %v", ev)
	}
	if h.world.Occupancy.At(20, 20).IsValid() {
		t.Fatal("occupancy not cleared by demolition")
	}

	if err := bs.Demolish(h.ctxAt(5), id, 2); err != ErrAlreadyDeconstructed {
		t.Fatalf("double demolition: got %v, want ErrAlreadyDeconstructed", err)
	}
}

// A Materializing building demolishes at half cost, scaled by the base
// cost ratio (§4.10).
func TestDemolitionCostByState(t *testing.T) {
	h := newHarness(t, 128)
	bs := NewBuildingSystem(h.world, h.store, testRegistry(t), testBuildingConfig(), 1)

	bs.PaintZone(30, 30, grid.ZoneHabitation, grid.DensityLow, 1)
	bs.Tick(h.ctxAt(1))
	id, _ := bs.GetBuildingAt(30, 30)

	// construction cost 100, Materializing x0.5, ratio 0.25 => 12.
	cost, err := bs.DemolitionCost(id)
	if err != nil {
		t.Fatalf("DemolitionCost: %v", err)
	}
	if cost != 12 {
		t.Fatalf("materializing demolition cost = %d, want 12", cost)
	}
}
