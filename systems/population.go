package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// PopulationSystem derives per-player population from Active habitation
// buildings, computes the health index, and detects milestone
// crossings in either direction (§4.11). It implements
// query.StatQueryable over the closed stat enumeration.
type PopulationSystem struct {
	store *worldstore.Store
	cfg   config.PopulationConfig

	contamination *ContaminationSystem
	landValue     *LandValueSystem
	port          *PortSystem

	population [ids.MaxPlayers + 1]uint64
	health     [ids.MaxPlayers + 1]float64
}

// NewPopulationSystem creates the population subsystem. The
// contamination, land-value and port systems are read-only stat
// sources; the population system never mutates them.
func NewPopulationSystem(store *worldstore.Store, contamination *ContaminationSystem, landValue *LandValueSystem, port *PortSystem, cfg config.PopulationConfig) *PopulationSystem {
	return &PopulationSystem{
		store:         store,
		cfg:           cfg,
		contamination: contamination,
		landValue:     landValue,
		port:          port,
	}
}

// Priority implements sim.Subsystem (§2: population 50).
func (s *PopulationSystem) Priority() int { return sim.PriorityPopulation }

// Tick recomputes the aggregates and emits Milestone events on
// threshold crossings (§4.11).
func (s *PopulationSystem) Tick(ctx sim.TickCtx) {
	var current [ids.MaxPlayers + 1]uint64
	var capacity [ids.MaxPlayers + 1]uint64

	q := s.store.BuildingFilter.Query()
	for q.Next() {
		b, _, owner := q.Get()
		p := int(owner.Owner)
		if p > ids.MaxPlayers {
			continue
		}
		if b.ZoneType == components.ZoneHabitation && b.State == components.Active {
			current[p] += uint64(b.CurrentOccupancy)
			capacity[p] += uint64(b.Capacity)
		}
	}

	for p := 0; p <= ids.MaxPlayers; p++ {
		s.emitMilestones(ctx, ids.PlayerID(p), s.population[p], current[p])
		s.population[p] = current[p]
		s.health[p] = s.healthIndex(ctx, ids.PlayerID(p), current[p], capacity[p])
	}
}

// emitMilestones compares the previous and current population against
// the configured thresholds and emits one event per crossing: upward
// crossings in ascending order, downward in descending (§8 scenario 6).
func (s *PopulationSystem) emitMilestones(ctx sim.TickCtx, owner ids.PlayerID, prev, cur uint64) {
	thresholds := s.cfg.MilestoneThresholds
	names := s.cfg.MilestoneNames

	if cur > prev {
		for i, th := range thresholds {
			if prev < th && cur >= th {
				ctx.Bus.Milestone.Push(events.Milestone{
					Tick: ctx.Tick, Owner: owner, Name: nameFor(names, i), Population: cur, Upward: true,
				})
			}
		}
		return
	}
	if cur < prev {
		for i := len(thresholds) - 1; i >= 0; i-- {
			th := thresholds[i]
			if prev >= th && cur < th {
				ctx.Bus.Milestone.Push(events.Milestone{
					Tick: ctx.Tick, Owner: owner, Name: nameFor(names, i), Population: cur, Upward: false,
				})
			}
		}
	}
}

func nameFor(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return ""
}

// healthIndex blends medical coverage (±25 points about the midpoint),
// contamination (-30 at a fully toxic map), and fluid availability
// (±10), clamped to 0..100 (§4.11). Exchange capacity per resident
// stands in for medical coverage: a serviced population has somewhere
// to be treated.
func (s *PopulationSystem) healthIndex(ctx sim.TickCtx, owner ids.PlayerID, population, habCapacity uint64) float64 {
	h := 50.0

	coverage := 0.5
	if population > 0 {
		exchange := uint64(0)
		q := s.store.BuildingFilter.Query()
		for q.Next() {
			b, _, own := q.Get()
			if own.Owner == owner && b.ZoneType == components.ZoneExchange && b.State == components.Active {
				exchange += uint64(b.Capacity)
			}
		}
		coverage = clamp01(float64(exchange) / float64(population))
	}
	h += (coverage - 0.5) * 2 * s.cfg.MedicalCoverageMax

	if s.contamination != nil {
		side := float64(s.contaminationSide())
		full := side * side * 255
		if full > 0 {
			h -= float64(s.contamination.Total()) / full * s.cfg.ContaminationPenalty
		}
	}

	fluidFactor := 1.0
	if ctx.Providers.Fluid != nil {
		switch ctx.Providers.Fluid.PoolState(owner) {
		case query.Healthy:
			fluidFactor = 1.0
		case query.Marginal:
			fluidFactor = 0.75
		case query.Deficit:
			fluidFactor = 0.25
		default:
			fluidFactor = 0
		}
	}
	h += (fluidFactor - 0.5) * 2 * s.cfg.FluidBonus

	if h < 0 {
		h = 0
	}
	if h > 100 {
		h = 100
	}
	return h
}

func (s *PopulationSystem) contaminationSide() int {
	if s.contamination == nil {
		return 0
	}
	return s.contamination.world.Side
}

// PopulationOf returns owner's current population.
func (s *PopulationSystem) PopulationOf(owner ids.PlayerID) uint64 {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	return s.population[owner]
}

// HealthIndexOf returns owner's health index 0..100.
func (s *PopulationSystem) HealthIndexOf(owner ids.PlayerID) float64 {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	return s.health[owner]
}

// TotalPopulation sums population across all overseers.
func (s *PopulationSystem) TotalPopulation() uint64 {
	var total uint64
	for _, p := range s.population {
		total += p
	}
	return total
}

// --- query.StatQueryable ---

// GetStat implements query.StatQueryable over the closed enumeration.
func (s *PopulationSystem) GetStat(id query.StatID) float32 {
	switch id {
	case query.StatPopulation:
		return float32(s.TotalPopulation())
	case query.StatHealthIndex:
		// The fleet-wide index is the mean across active overseers.
		var sum float64
		for p := 1; p <= ids.MaxPlayers; p++ {
			sum += s.health[p]
		}
		return float32(sum / ids.MaxPlayers)
	case query.StatTotalContamination:
		if s.contamination == nil {
			return 0
		}
		return float32(s.contamination.Total())
	case query.StatToxicTileCount:
		if s.contamination == nil {
			return 0
		}
		return float32(s.contamination.ToxicTileCount())
	case query.StatLandValueAverage:
		if s.landValue == nil {
			return 0
		}
		return float32(s.landValue.Stats().Average)
	case query.StatLandValueMax:
		if s.landValue == nil {
			return 0
		}
		return float32(s.landValue.Stats().Max)
	case query.StatLandValueMin:
		if s.landValue == nil {
			return 0
		}
		return float32(s.landValue.Stats().Min)
	case query.StatTradeIncomeTotal:
		if s.port == nil {
			return 0
		}
		var total ids.Credits
		for p := ids.PlayerID(1); p <= ids.MaxPlayers; p++ {
			total += s.port.TradeIncome(p)
		}
		return float32(total)
	default:
		return 0
	}
}

// GetStatName implements query.StatQueryable.
func (s *PopulationSystem) GetStatName(id query.StatID) string {
	return query.StatName(id)
}

// IsValidStat implements query.StatQueryable.
func (s *PopulationSystem) IsValidStat(id query.StatID) bool {
	return query.IsValidStatID(id)
}
