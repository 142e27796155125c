package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// PriorityEnergy and PriorityFluid place the pool subsystems after the
// building subsystem (§2: buildings read energy/fluid as of the end of
// the previous tick, so the providers' priorities must not be lower
// than the building subsystem's).
const (
	PriorityEnergy        = 42
	PriorityFluid         = 43
	PriorityContamination = 30
	PriorityLandValue     = 35
	PriorityTerraform     = 41
)

// Pool is one overseer's per-tick energy or fluid aggregate (§4.7).
type Pool struct {
	TotalGenerated float32
	TotalConsumed  float32
	Available      float32
	Surplus        float32
	State          components.PoolState

	deficitSince ids.Tick
}

// EnergySystem recomputes per-player energy pools each tick, ages nexus
// producers, and answers availability queries (§4.7). It implements
// query.EnergyProvider.
type EnergySystem struct {
	world     *grid.World
	store     *worldstore.Store
	cfg       config.EnergyConfig
	templates *TemplateRegistry

	pools [ids.MaxPlayers + 1]Pool

	// supplied marks, per player, the tiles reachable from a producer
	// through conduits plus the supply radius (§4.7: a consumer must be
	// "connected via conduits to at least one producer of its pool").
	supplied [ids.MaxPlayers + 1][]bool

	// agedReported tracks the last 10%-of-base band each nexus reported
	// a NexusAged event at.
	agedReported map[ids.EntityID]int
}

// NewEnergySystem creates the energy subsystem.
func NewEnergySystem(world *grid.World, store *worldstore.Store, templates *TemplateRegistry, cfg config.EnergyConfig) *EnergySystem {
	s := &EnergySystem{
		world:        world,
		store:        store,
		cfg:          cfg,
		templates:    templates,
		agedReported: make(map[ids.EntityID]int),
	}
	for p := range s.supplied {
		s.supplied[p] = make([]bool, world.Side*world.Side)
	}
	return s
}

// Priority implements sim.Subsystem.
func (s *EnergySystem) Priority() int { return PriorityEnergy }

// PlaceNexus creates an energy producer entity at (x, y).
func (s *EnergySystem) PlaceNexus(x, y int32, nt components.NexusType, baseOutput float32, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.EnergyNexus.Add(e, &components.EnergyNexus{
		Type:          nt,
		BaseOutput:    baseOutput,
		CurrentOutput: baseOutput,
		IsActive:      true,
		AgingFloorPct: float32(s.cfg.AgingFloorPct),
	})
	s.store.ContaminationSource.Add(e, &components.ContaminationSource{
		BaseOutput:      nexusContamination(nt),
		CurrentOutput:   nexusContamination(nt),
		SpreadRadius:    components.DefaultSpreadRadius,
		SpreadDecayRate: components.DefaultSpreadDecayRate,
		Type:            grid.ContamEnergy,
		IsActive:        true,
	})
	return id, nil
}

// PlaceConduit creates an energy/fluid conduit entity at (x, y).
// Conduits are shared by both pools: the connectivity sweep of each
// treats any conduit tile as traversable.
func (s *EnergySystem) PlaceConduit(x, y int32, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.Conduit.Add(e, &components.Conduit{})
	return id, nil
}

// nexusContamination returns the per-tick contamination output for a
// nexus type (§4.8: carbon 200, petrochem 120, gaseous 40, clean 0).
func nexusContamination(nt components.NexusType) float32 {
	switch nt {
	case components.NexusCarbon:
		return 200
	case components.NexusPetrochem:
		return 120
	case components.NexusGaseous:
		return 40
	default:
		return 0
	}
}

// Tick recomputes every pool (§4.7): age producers, sum generation and
// consumption, rebuild connectivity, and run the 4-state machine.
func (s *EnergySystem) Tick(ctx sim.TickCtx) {
	var generated [ids.MaxPlayers + 1]float32
	var producerTiles [ids.MaxPlayers + 1][][2]int32

	query := s.store.NexusFilter.Query()
	for query.Next() {
		nexus, pos, owner := query.Get()
		entity := query.Entity()

		s.ageNexus(ctx, entity, nexus)

		if !nexus.IsActive {
			continue
		}
		p := int(owner.Owner)
		if p > ids.MaxPlayers {
			continue
		}
		generated[p] += nexus.CurrentOutput
		producerTiles[p] = append(producerTiles[p], [2]int32{pos.X, pos.Y})
	}

	consumed := s.sumConsumption()
	s.rebuildSupply(producerTiles)

	for p := 0; p <= ids.MaxPlayers; p++ {
		pool := &s.pools[p]
		pool.TotalGenerated = generated[p]
		pool.TotalConsumed = consumed[p]
		pool.Available = generated[p]
		pool.Surplus = pool.Available - pool.TotalConsumed

		prev := pool.State
		pool.State = nextPoolState(pool, ctx.Tick, s.cfg.MarginalSurplusRatio, s.cfg.CollapseDeficitTicks)
		if pool.State != prev {
			ctx.Bus.EnergyStateChanged.Push(events.EnergyStateChanged{
				Tick:     ctx.Tick,
				Owner:    ids.PlayerID(p),
				Previous: prev,
				Current:  pool.State,
			})
		}
	}
}

// ageNexus decays a producer's effective output asymptotically toward
// its aging floor (§4.7) and emits NexusAged when the output crosses a
// 10%-of-base reporting band.
func (s *EnergySystem) ageNexus(ctx sim.TickCtx, entity ecs.Entity, nexus *components.EnergyNexus) {
	nexus.AgeTicks++
	floor := nexus.BaseOutput * nexus.AgingFloorPct
	halfLife := s.cfg.AgingHalfLifeTicks
	if halfLife <= 0 {
		return
	}
	decay := math.Exp(-float64(nexus.AgeTicks) / halfLife)
	nexus.CurrentOutput = floor + (nexus.BaseOutput-floor)*float32(decay)

	id, ok := s.store.ID(entity)
	if !ok || nexus.BaseOutput <= 0 {
		return
	}
	band := int(nexus.CurrentOutput / nexus.BaseOutput * 10)
	if prev, seen := s.agedReported[id]; !seen {
		s.agedReported[id] = band
	} else if band < prev {
		s.agedReported[id] = band
		ctx.Bus.NexusAged.Push(events.NexusAged{Tick: ctx.Tick, Entity: id, CurrentOutput: nexus.CurrentOutput})
	}
}

// sumConsumption totals the per-tick energy demand of Active buildings
// per owner, using each building's template requirement.
func (s *EnergySystem) sumConsumption() [ids.MaxPlayers + 1]float32 {
	var consumed [ids.MaxPlayers + 1]float32
	query := s.store.BuildingFilter.Query()
	for query.Next() {
		b, _, owner := query.Get()
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
		consumed[p] += t.EnergyRequired
	}
	return consumed
}

// rebuildSupply marks, per player, every tile reachable from one of the
// player's producers: conduit tiles extend reach at no cost, any other
// tile spends one step of the supply radius (0-1 BFS).
func (s *EnergySystem) rebuildSupply(producers [ids.MaxPlayers + 1][][2]int32) {
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

// supplyBFS runs a 0-1 BFS from the producer tiles: traversing a
// conduit tile costs nothing, any other tile costs one unit of the
// radius budget. A tile is supplied if reachable with budget >= 0.
func supplyBFS(side int, sources [][2]int32, conduit []bool, radius int, supplied []bool) {
	if radius < 0 {
		radius = 0
	}
	// budget[i] = best remaining radius seen at tile i; -1 = unvisited.
	budget := make([]int, side*side)
	for i := range budget {
		budget[i] = -1
	}

	type node struct {
		x, y int
		rem  int
	}
	var deque []node
	for _, src := range sources {
		x, y := int(src[0]), int(src[1])
		if x < 0 || y < 0 || x >= side || y >= side {
			continue
		}
		idx := y*side + x
		budget[idx] = radius
		supplied[idx] = true
		deque = append(deque, node{x, y, radius})
	}

	for len(deque) > 0 {
		cur := deque[0]
		deque = deque[1:]
		if budget[cur.y*side+cur.x] > cur.rem {
			continue
		}
		for _, d := range cardinal {
			nx, ny := cur.x+int(d[0]), cur.y+int(d[1])
			if nx < 0 || ny < 0 || nx >= side || ny >= side {
				continue
			}
			idx := ny*side + nx
			rem := cur.rem
			if !conduit[idx] {
				rem--
			}
			if rem < 0 || rem <= budget[idx] {
				continue
			}
			budget[idx] = rem
			supplied[idx] = true
			if conduit[idx] {
				deque = append([]node{{nx, ny, rem}}, deque...)
			} else {
				deque = append(deque, node{nx, ny, rem})
			}
		}
	}
}

// nextPoolState advances the 4-state machine (§4.7): Healthy while the
// surplus comfortably exceeds demand, Marginal while barely meeting it,
// Deficit when short, Collapse after a sustained deficit. A collapsed
// pool recovers to Marginal the first tick its surplus is non-negative.
func nextPoolState(pool *Pool, tick ids.Tick, marginalRatio float64, collapseTicks uint64) components.PoolState {
	if pool.Surplus < 0 {
		if pool.deficitSince == 0 {
			pool.deficitSince = tick
		}
		if collapseTicks > 0 && uint64(tick-pool.deficitSince) >= collapseTicks {
			return components.Collapse
		}
		if pool.State == components.Collapse {
			return components.Collapse
		}
		return components.Deficit
	}

	pool.deficitSince = 0
	if pool.State == components.Collapse {
		return components.Marginal
	}
	if pool.TotalConsumed > 0 && float64(pool.Surplus) < marginalRatio*float64(pool.TotalConsumed) {
		return components.Marginal
	}
	return components.Healthy
}

// --- query.EnergyProvider ---

// IsAvailableAt reports whether a consumer at (x, y) is powered: the
// owner's pool must be Healthy or Marginal and the tile must be inside
// the pool's supply reach (§4.7).
func (s *EnergySystem) IsAvailableAt(owner ids.PlayerID, x, y int32) bool {
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
func (s *EnergySystem) PoolState(owner ids.PlayerID) query.PoolState {
	if int(owner) > ids.MaxPlayers {
		return query.Collapse
	}
	return query.PoolState(s.pools[owner].State)
}

// PoolSurplus returns the owner's surplus; negative means deficit, sign
// preserved (§8 boundary behavior).
func (s *EnergySystem) PoolSurplus(owner ids.PlayerID) float32 {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	return s.pools[owner].Surplus
}

// Factor returns the owner's energy infrastructure factor in [0, 1] for
// demand-cap computation (§4.9).
func (s *EnergySystem) Factor(owner ids.PlayerID) float64 {
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
func (s *EnergySystem) PoolFor(owner ids.PlayerID) Pool {
	if int(owner) > ids.MaxPlayers {
		return Pool{}
	}
	return s.pools[owner]
}
