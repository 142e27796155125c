package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
)

func testPortConfig() config.PortConfig {
	return config.PortConfig{
		IncomeWindowPhases: 12,
		BaseIncomePerTier:  []int64{100, 250, 600},
	}
}

func TestAquaPortRequiresAdjacentWater(t *testing.T) {
	h := newHarness(t, 128)
	ps := NewPortSystem(h.world, h.store, testPortConfig())

	if _, err := ps.PlacePort(10, 10, components.PortAqua, 500, 1); err != ErrNoWaterNearby {
		t.Fatalf("landlocked aqua port: got %v, want ErrNoWaterNearby", err)
	}
	h.world.WaterBody.Set(11, 10, 1)
	if _, err := ps.PlacePort(10, 10, components.PortAqua, 500, 1); err != nil {
		t.Fatalf("aqua port beside water: %v", err)
	}
	// Aero ports place anywhere in bounds.
	if _, err := ps.PlacePort(60, 60, components.PortAero, 200, 1); err != nil {
		t.Fatalf("aero port: %v", err)
	}

	if n := ps.Count(query.PortAqua, 1); n != 1 {
		t.Fatalf("aqua count = %d, want 1", n)
	}
	if c := ps.Capacity(query.PortAero, 1); c != 200 {
		t.Fatalf("aero capacity = %d, want 200", c)
	}
}

// Agreements settle on cycle boundaries, credit income windowed over
// the last phases, and expire at cycles_remaining == 0 (§4.6).
func TestTradeAgreementSettlementAndExpiry(t *testing.T) {
	h := newHarness(t, 128)
	ps := NewPortSystem(h.world, h.store, testPortConfig())

	h.world.WaterBody.Set(11, 10, 1)
	ps.PlacePort(10, 10, components.PortAqua, 500, 1)

	aid := ps.OpenTradeAgreement(components.TradeAgreement{
		PartyA:          1,
		PartyB:          ids.NeutralPlayer, // game-world neighbor NPC
		Tier:            components.TradeTierStandard,
		CyclesRemaining: 2,
		DemandBonusA:    10,
		IncomeBonusPct:  150, // x1.5
	})

	cycle := ids.Tick(ids.TicksPerPhase * ids.PhasesPerCycle)

	// First cycle boundary: 250 * 150% = 375 credited to player 1.
	ps.Tick(h.ctxAt(cycle))
	if got := ps.TradeIncome(1); got != 375 {
		t.Fatalf("income after one cycle = %d, want 375", got)
	}
	if got := ps.DemandBonus(1, query.ZoneHabitation); got != 10 {
		t.Fatalf("demand bonus = %d, want 10", got)
	}

	// Second boundary: countdown hits zero; third removes the expired
	// agreement and the demand bonus with it.
	ps.Tick(h.ctxAt(2 * cycle))
	ps.Tick(h.ctxAt(3 * cycle))
	if h.store.Alive(aid) {
		t.Fatal("expired agreement not removed")
	}
	if got := ps.DemandBonus(1, query.ZoneHabitation); got != 0 {
		t.Fatalf("demand bonus after expiry = %d, want 0", got)
	}
}

// Without an operational port the agreement idles: no income accrues.
func TestTradeIncomeRequiresOperationalPort(t *testing.T) {
	h := newHarness(t, 128)
	ps := NewPortSystem(h.world, h.store, testPortConfig())

	ps.OpenTradeAgreement(components.TradeAgreement{
		PartyA:          2,
		PartyB:          ids.NeutralPlayer,
		Tier:            components.TradeTierBasic,
		CyclesRemaining: 5,
		IncomeBonusPct:  100,
	})

	cycle := ids.Tick(ids.TicksPerPhase * ids.PhasesPerCycle)
	ps.Tick(h.ctxAt(cycle))
	if got := ps.TradeIncome(2); got != 0 {
		t.Fatalf("income without a port = %d, want 0", got)
	}
}
