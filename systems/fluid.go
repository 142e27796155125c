package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// FluidSystem mirrors EnergySystem for the fluid pool and adds
// reservoir buffering: reservoirs fill from surplus and drain to cover
// shortfalls, and the pool's available total includes stored fluid
// (§4.7). It implements query.FluidProvider.
type FluidSystem struct {
	world     *grid.World
	store     *worldstore.Store
	cfg       config.FluidConfig
	templates *TemplateRegistry

	pools    [ids.MaxPlayers + 1]Pool
	supplied [ids.MaxPlayers + 1][]bool
}

// NewFluidSystem creates the fluid subsystem.
func NewFluidSystem(world *grid.World, store *worldstore.Store, templates *TemplateRegistry, cfg config.FluidConfig) *FluidSystem {
	s := &FluidSystem{
		world:     world,
		store:     store,
		cfg:       cfg,
		templates: templates,
	}
	for p := range s.supplied {
		s.supplied[p] = make([]bool, world.Side*world.Side)
	}
	return s
}

// Priority implements sim.Subsystem.
func (s *FluidSystem) Priority() int { return PriorityFluid }

// PlaceExtractor creates a fluid producer at (x, y). Extractors require
// a water-body tile within the configured range; the measured distance
// is recorded for rendering info and output scaling (§4.7).
func (s *FluidSystem) PlaceExtractor(x, y int32, baseOutput float32, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	dist, ok := s.nearestWaterDistance(int(x), int(y), s.cfg.ExtractorMaxWaterDistance)
	if !ok {
		return ids.InvalidEntityID, ErrNoWaterNearby
	}

	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	// Output falls off with distance from the water source.
	scale := 1 - float32(dist)/float32(s.cfg.ExtractorMaxWaterDistance+1)
	s.store.FluidExtractor.Add(e, &components.FluidExtractor{
		BaseOutput:    baseOutput,
		CurrentOutput: baseOutput * scale,
		IsActive:      true,
		WaterDistance: uint8(dist),
	})
	return id, nil
}

// PlaceReservoir creates a buffering inventory at (x, y).
func (s *FluidSystem) PlaceReservoir(x, y int32, capacity float32, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.FluidReservoir.Add(e, &components.FluidReservoir{Capacity: capacity})
	return id, nil
}

// nearestWaterDistance scans Chebyshev rings around (x, y) for a
// water-body tile within maxDist.
func (s *FluidSystem) nearestWaterDistance(x, y, maxDist int) (int, bool) {
	for r := 0; r <= maxDist; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if s.world.WaterBody.At(x+dx, y+dy) != 0 {
					return r, true
				}
			}
		}
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Tick recomputes every fluid pool: generation from extractors,
// consumption from Active buildings, reservoir drain/fill, supply
// connectivity, and the 4-state machine (§4.7).
func (s *FluidSystem) Tick(ctx sim.TickCtx) {
	var generated [ids.MaxPlayers + 1]float32
	var producerTiles [ids.MaxPlayers + 1][][2]int32

	extractors := s.store.ExtractorFilter.Query()
	for extractors.Next() {
		ex, pos, owner := extractors.Get()
		if !ex.IsActive {
			continue
		}
		p := int(owner.Owner)
		if p > ids.MaxPlayers {
			continue
		}
		generated[p] += ex.CurrentOutput
		producerTiles[p] = append(producerTiles[p], [2]int32{pos.X, pos.Y})
	}

	var consumed [ids.MaxPlayers + 1]float32
	buildings := s.store.BuildingFilter.Query()
	for buildings.Next() {
		b, _, owner := buildings.Get()
		if b.State != components.Active {
			continue
		}
		t := s.templates.ByID(b.TemplateID)
		if t == nil {
			continue
		}
		p := int(owner.Owner)
		if p > ids.MaxPlayers {
			continue
		}
		consumed[p] += t.FluidRequired
	}

	// Reservoir accounting: a raw shortfall drains storage, a raw
	// surplus fills it. Stored totals count toward availability.
	var stored [ids.MaxPlayers + 1]float32
	reservoirs := s.store.ReservoirFilter.Query()
	for reservoirs.Next() {
		res, owner := reservoirs.Get()
		p := int(owner.Owner)
		if p > ids.MaxPlayers {
			continue
		}
		raw := generated[p] - consumed[p]
		if raw < 0 {
			drained := res.Drain(-raw)
			generated[p] += drained
		} else if raw > 0 {
			filled := res.Fill(raw)
			generated[p] -= filled
		}
		stored[p] += res.Stored
	}

	s.rebuildSupply(producerTiles)

	for p := 0; p <= ids.MaxPlayers; p++ {
		pool := &s.pools[p]
		pool.TotalGenerated = generated[p]
		pool.TotalConsumed = consumed[p]
		pool.Available = generated[p] + stored[p]
		pool.Surplus = pool.Available - pool.TotalConsumed

		prev := pool.State
		pool.State = nextPoolState(pool, ctx.Tick, s.cfg.MarginalSurplusRatio, s.cfg.CollapseDeficitTicks)
		if pool.State != prev {
			ctx.Bus.FluidStateChanged.Push(events.FluidStateChanged{
				Tick:     ctx.Tick,
				Owner:    ids.PlayerID(p),
				Previous: prev,
				Current:  pool.State,
			})
		}
	}
}

func (s *FluidSystem) rebuildSupply(producers [ids.MaxPlayers + 1][][2]int32) {
	side := s.world.Side
	conduit := make([]bool, side*side)
	conduitQuery := s.store.ConduitFilter.Query()
	for conduitQuery.Next() {
		_, pos := conduitQuery.Get()
		if s.world.Terrain.InBounds(int(pos.X), int(pos.Y)) {
			conduit[int(pos.Y)*side+int(pos.X)] = true
		}
	}

	for p := 0; p <= ids.MaxPlayers; p++ {
		supplied := s.supplied[p]
		for i := range supplied {
			supplied[i] = false
		}
		supplyBFS(side, producers[p], conduit, s.cfg.SupplyRadius, supplied)
	}
}

// --- query.FluidProvider ---

// IsAvailableAt reports whether a consumer at (x, y) has fluid service.
func (s *FluidSystem) IsAvailableAt(owner ids.PlayerID, x, y int32) bool {
	if int(owner) > ids.MaxPlayers {
		return false
	}
	pool := &s.pools[owner]
	if pool.State != components.Healthy && pool.State != components.Marginal {
		return false
	}
	side := s.world.Side
	if x < 0 || y < 0 || int(x) >= side || int(y) >= side {
		return false
	}
	return s.supplied[owner][int(y)*side+int(x)]
}

// PoolState returns the owner's pool state.
func (s *FluidSystem) PoolState(owner ids.PlayerID) query.PoolState {
	if int(owner) > ids.MaxPlayers {
		return query.Collapse
	}
	return query.PoolState(s.pools[owner].State)
}

// PoolSurplus returns the owner's surplus, sign preserved.
func (s *FluidSystem) PoolSurplus(owner ids.PlayerID) float32 {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	return s.pools[owner].Surplus
}

// Factor returns the owner's fluid infrastructure factor in [0, 1].
func (s *FluidSystem) Factor(owner ids.PlayerID) float64 {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	pool := &s.pools[owner]
	if pool.TotalConsumed <= 0 {
		return 1
	}
	return clamp01(float64(pool.Available) / float64(pool.TotalConsumed))
}

// PoolFor returns a copy of the owner's pool aggregate for inspection.
func (s *FluidSystem) PoolFor(owner ids.PlayerID) Pool {
	if int(owner) > ids.MaxPlayers {
		return Pool{}
	}
	return s.pools[owner]
}
