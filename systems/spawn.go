package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/sim"
)

// spawnBudget is one tick's remaining growth allowance per zone,
// derived from the demand caps (§4.9) and the per-tick spawn bound.
type spawnBudget struct {
	habitation  uint32
	exchange    uint32
	fabrication uint32
	total       int
}

func (b *spawnBudget) allow(zone components.ZoneType) bool {
	if b.total <= 0 {
		return false
	}
	switch zone {
	case components.ZoneHabitation:
		return b.habitation > 0
	case components.ZoneExchange:
		return b.exchange > 0
	default:
		return b.fabrication > 0
	}
}

func (b *spawnBudget) consume(zone components.ZoneType) {
	b.total--
	switch zone {
	case components.ZoneHabitation:
		b.habitation--
	case components.ZoneExchange:
		b.exchange--
	default:
		b.fabrication--
	}
}

// spawn scans zoned tiles awaiting growth and materializes new
// buildings under the demand caps (§4.10).
func (s *BuildingSystem) spawn(ctx sim.TickCtx) {
	budget := s.computeBudget(ctx)
	if budget.total <= 0 {
		return
	}

	side := s.world.Side
	for y := 0; y < side && budget.total > 0; y++ {
		for x := 0; x < side && budget.total > 0; x++ {
			cell := s.world.Zone.At(x, y)
			if !cell.Zoned {
				continue
			}
			if s.world.Occupancy.At(x, y).IsValid() {
				continue
			}
			zone := zoneToComponents(cell.ZoneType)
			if !budget.allow(zone) {
				continue
			}
			if s.trySpawnAt(ctx, int32(x), int32(y), cell) {
				budget.consume(zone)
			}
		}
	}
}

// computeBudget derives this tick's per-zone growth allowance: the raw
// capacity is the count of zoned-but-empty tiles per zone, scaled by
// the infrastructure factors (§4.9).
func (s *BuildingSystem) computeBudget(ctx sim.TickCtx) spawnBudget {
	side := s.world.Side
	var rawHab, rawExc, rawFab uint32
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			cell := s.world.Zone.At(x, y)
			if !cell.Zoned || s.world.Occupancy.At(x, y).IsValid() {
				continue
			}
			switch cell.ZoneType {
			case grid.ZoneHabitation:
				rawHab++
			case grid.ZoneExchange:
				rawExc++
			default:
				rawFab++
			}
		}
	}

	// Factors are derived from pool states across the active overseers:
	// the weakest overseer's service bounds global growth for this tick.
	energyFactor := 1.0
	fluidFactor := 1.0
	if ctx.Providers.Energy != nil {
		energyFactor = worstPoolFactor(ctx.Providers.Energy.PoolState)
	}
	if ctx.Providers.Fluid != nil {
		fluidFactor = worstPoolFactor(ctx.Providers.Fluid.PoolState)
	}
	transportFactor := 1.0

	caps := ComputeDemandCaps(rawHab, rawExc, rawFab, energyFactor, fluidFactor, transportFactor)

	// Port trade agreements shift demand (§4.6): the cached per-player
	// bonus scales each zone's cap as a percentage.
	if ctx.Providers.Port != nil {
		var bonus int
		for p := ids.PlayerID(1); p <= ids.MaxPlayers; p++ {
			bonus += int(ctx.Providers.Port.DemandBonus(p, query.ZoneHabitation))
		}
		caps.Habitation = applyDemandBonus(caps.Habitation, bonus)
		caps.Exchange = applyDemandBonus(caps.Exchange, bonus)
		caps.Fabrication = applyDemandBonus(caps.Fabrication, bonus)
	}

	return spawnBudget{
		habitation:  caps.Habitation,
		exchange:    caps.Exchange,
		fabrication: caps.Fabrication,
		total:       s.cfg.MaxSpawnsPerTick,
	}
}

// applyDemandBonus scales a cap by a signed percentage bonus, clamped
// so a deeply negative bonus cannot underflow.
func applyDemandBonus(base uint32, bonusPct int) uint32 {
	scaled := int64(base) * int64(100+bonusPct) / 100
	if scaled < 0 {
		return 0
	}
	return uint32(scaled)
}

// worstPoolFactor maps the worst per-player pool state onto a growth
// factor in [0, 1].
func worstPoolFactor(stateOf func(ids.PlayerID) query.PoolState) float64 {
	worst := 1.0
	for p := ids.PlayerID(1); p <= ids.MaxPlayers; p++ {
		var f float64
		switch stateOf(p) {
		case query.Healthy:
			f = 1.0
		case query.Marginal:
			f = 0.75
		case query.Deficit:
			f = 0.25
		default:
			f = 0
		}
		if f < worst {
			worst = f
		}
	}
	return worst
}

// trySpawnAt runs the spawn checker for one candidate tile and, if it
// passes, creates the building (§4.10). Returns true on success.
func (s *BuildingSystem) trySpawnAt(ctx sim.TickCtx, x, y int32, cell grid.ZoneCell) bool {
	zone := zoneToComponents(cell.ZoneType)
	density := densityToComponents(cell.Density)

	landValue := s.world.LandValue.At(int(x), int(y))
	pool := s.registry.Pool(zone, density)
	template := s.registry.PickWeighted(pool, landValue, s.rng)
	if template == nil {
		return false
	}

	w, h := int(template.FootprintW), int(template.FootprintH)
	if !s.world.Occupancy.IsFree(int(x), int(y), w, h) {
		return false
	}

	transport := ctx.Providers.TransportOrPermissive()
	if !transport.IsRoadAccessibleAt(x, y, s.cfg.MaxRoadDistance) {
		return false
	}
	if !ctx.Providers.EnergyOrPermissive().IsAvailableAt(cell.Owner, x, y) {
		return false
	}
	if !ctx.Providers.FluidOrPermissive().IsAvailableAt(cell.Owner, x, y) {
		return false
	}

	credit := ctx.Providers.CreditOrPermissive()
	if credit.Balance(cell.Owner) < template.ConstructionCost {
		return false
	}
	if !credit.Debit(cell.Owner, template.ConstructionCost) {
		return false
	}

	rotation := uint8(s.rng.IntN(4))
	accent := uint8(0)
	if template.ColorAccentCount > 0 {
		accent = uint8(s.rng.IntN(int(template.ColorAccentCount)))
	}

	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: cell.Owner},
	)
	e, _ := s.store.Entity(id)
	s.store.Building.Add(e, &components.Building{
		TemplateID:       template.ID,
		State:            components.Materializing,
		ZoneType:         zone,
		Density:          density,
		Level:            template.MinLevel,
		Health:           255,
		Capacity:         template.BaseCapacity,
		FootprintW:       template.FootprintW,
		FootprintH:       template.FootprintH,
		Rotation:         rotation,
		ColorAccent:      accent,
		StateChangedTick: uint64(ctx.Tick),
	})
	s.store.Construction.Add(e, &components.Construction{
		TicksTotal:       template.ConstructionTicks,
		ConstructionCost: template.ConstructionCost,
	})

	s.world.Occupancy.MarkFootprint(int(x), int(y), w, h, id)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.world.ChunkDirty.MarkTileDirty(int(x)+dx, int(y)+dy)
		}
	}
	return true
}
