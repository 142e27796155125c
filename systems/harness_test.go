package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/providers"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// stubPool is a switchable energy/fluid provider for lifecycle tests.
type stubPool struct{ available bool }

func (s *stubPool) IsAvailableAt(owner ids.PlayerID, x, y int32) bool { return s.available }

func (s *stubPool) PoolState(owner ids.PlayerID) query.PoolState {
	if s.available {
		return query.Healthy
	}
	return query.Deficit
}

func (s *stubPool) PoolSurplus(owner ids.PlayerID) float32 {
	if s.available {
		return 1
	}
	return -1
}

// harness bundles the shared state a single-system test needs.
type harness struct {
	world *grid.World
	store *worldstore.Store
	bus   *events.Bus

	energy *stubPool
	fluid  *stubPool

	tick ids.Tick
}

func newHarness(t *testing.T, side int) *harness {
	t.Helper()
	return &harness{
		world:  grid.NewWorld(side),
		store:  worldstore.New(),
		bus:    events.NewBus(),
		energy: &stubPool{available: true},
		fluid:  &stubPool{available: true},
	}
}

// ctx builds a TickCtx for the harness's next tick.
func (h *harness) ctx() sim.TickCtx {
	h.tick++
	return h.ctxAt(h.tick)
}

func (h *harness) ctxAt(tick ids.Tick) sim.TickCtx {
	h.tick = tick
	return sim.TickCtx{
		Tick:  tick,
		Delta: ids.TickDelta,
		World: h.world,
		Store: h.store,
		Bus:   h.bus,
		Providers: providers.Providers{
			Energy: h.energy,
			Fluid:  h.fluid,
		},
	}
}

func testBuildingConfig() config.BuildingConfig {
	return config.BuildingConfig{
		ServiceGraceTicks:       100,
		AbandonTimerTicks:       200,
		DerelictTicks:           500,
		DebrisClearTicks:        60,
		MaxRoadDistance:         4,
		DemolitionBaseCostRatio: 0.25,
		MaxSpawnsPerTick:        8,
		TerraformRefundRatio:    0.5,
		TerraformCostPerTick:    10,
	}
}

func testRegistry(t *testing.T) *TemplateRegistry {
	t.Helper()
	reg, err := NewTemplateRegistry([]config.TemplateConfig{
		{
			ID: 1, Name: "cabin", Zone: "habitation", Density: "low",
			FootprintW: 1, FootprintH: 1,
			ConstructionTicks: 40, ConstructionCost: 100,
			MinLandValue: 64, MaxLevel: 3, BaseCapacity: 10,
			EnergyRequired: 1, FluidRequired: 1, ColorAccentCount: 4,
			SelectionWeight: 1,
		},
		{
			ID: 2, Name: "works", Zone: "fabrication", Density: "low",
			FootprintW: 1, FootprintH: 1,
			ConstructionTicks: 20, ConstructionCost: 80,
			MinLandValue: 32, MaxLevel: 2, BaseCapacity: 8,
			EnergyRequired: 2, FluidRequired: 1, ContaminationOut: 100,
			ColorAccentCount: 2, SelectionWeight: 1,
		},
	})
	if err != nil {
		t.Fatalf("building test registry: %v", err)
	}
	return reg
}
