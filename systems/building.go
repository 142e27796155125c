package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/prng"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// serviceGrace tracks how long each service has been unavailable for
// one building (§4.10).
type serviceGrace struct {
	energy    uint32
	fluid     uint32
	transport uint32
}

// BuildingSystem owns the template registry, the spawn loop, the
// construction progress and lifecycle state machines, demolition, and
// debris clearing (§4.10). The zone grid it scans is painted through
// PaintZone/ClearZone; no other subsystem reaches into its tables
// (§9: registry pattern instead of bidirectional pointers).
type BuildingSystem struct {
	world    *grid.World
	store    *worldstore.Store
	cfg      config.BuildingConfig
	registry *TemplateRegistry

	// rng drives weighted template selection, rotation and accent
	// picks; seeded from the map seed so runs are reproducible (§4.3).
	rng *prng.Xoshiro256

	grace map[ids.EntityID]*serviceGrace
}

// NewBuildingSystem creates the building subsystem.
func NewBuildingSystem(world *grid.World, store *worldstore.Store, registry *TemplateRegistry, cfg config.BuildingConfig, seed uint64) *BuildingSystem {
	return &BuildingSystem{
		world:    world,
		store:    store,
		cfg:      cfg,
		registry: registry,
		rng:      prng.NewXoshiro256(seed ^ 0xB1D1),
		grace:    make(map[ids.EntityID]*serviceGrace),
	}
}

// Priority implements sim.Subsystem (§2: building 40).
func (s *BuildingSystem) Priority() int { return sim.PriorityBuilding }

// Tick runs the building pipeline in a fixed order: advance existing
// construction, evaluate lifecycle transitions, clear debris, adjust
// occupancy/levels, then spawn under demand caps. Spawning last means a
// building placed at tick N takes its first construction step at N+1
// and completes exactly construction_ticks later.
func (s *BuildingSystem) Tick(ctx sim.TickCtx) {
	s.advanceConstruction(ctx)
	s.evaluateLifecycle(ctx)
	s.clearDebris(ctx)
	s.adjustOccupancyAndLevels(ctx)
	s.spawn(ctx)
}

// PaintZone designates a tile for growth. The spawn loop scans zoned
// tiles each tick (§4.10).
func (s *BuildingSystem) PaintZone(x, y int32, zone grid.ZoneType, density grid.Density, owner ids.PlayerID) error {
	if !s.world.Zone.InBounds(int(x), int(y)) {
		return ErrOutOfBounds
	}
	s.world.Zone.Set(int(x), int(y), grid.ZoneCell{
		ZoneType: zone,
		Density:  density,
		Owner:    owner,
		Zoned:    true,
	})
	return nil
}

// ClearZone removes a tile's zoning designation. Ownership-checked.
func (s *BuildingSystem) ClearZone(x, y int32, owner ids.PlayerID) error {
	if !s.world.Zone.InBounds(int(x), int(y)) {
		return ErrOutOfBounds
	}
	cell := s.world.Zone.At(int(x), int(y))
	if cell.Zoned && cell.Owner != owner {
		return ErrNotOwned
	}
	s.world.Zone.Set(int(x), int(y), grid.ZoneCell{})
	return nil
}

// graceFor returns (and lazily creates) the grace counters for id.
func (s *BuildingSystem) graceFor(id ids.EntityID) *serviceGrace {
	g, ok := s.grace[id]
	if !ok {
		g = &serviceGrace{}
		s.grace[id] = g
	}
	return g
}

// graceLimit resolves the configured grace for one service: a per-entity
// override wins, then the per-service config override, then the shared
// default (§4.10, §9's sentinel question resolved as "0 means inherit").
func (s *BuildingSystem) graceLimit(override, perService uint32) uint32 {
	if override != 0 {
		return override
	}
	if perService != 0 {
		return perService
	}
	return s.cfg.ServiceGraceTicks
}

// zoneToComponents converts a grid zone designation to the component
// enums (the grid package deliberately does not import components).
func zoneToComponents(z grid.ZoneType) components.ZoneType {
	switch z {
	case grid.ZoneExchange:
		return components.ZoneExchange
	case grid.ZoneFabrication:
		return components.ZoneFabrication
	default:
		return components.ZoneHabitation
	}
}

func densityToComponents(d grid.Density) components.Density {
	if d == grid.DensityHigh {
		return components.DensityHigh
	}
	return components.DensityLow
}

// EmitContamination yields industrial output for Active fabrication
// buildings: the template's ContaminationOut scaled by occupancy ratio
// (§4.8). The building's level does not change the output.
func (s *BuildingSystem) EmitContamination(emit func(x, y int32, output float32, typ grid.ContaminationType)) {
	query := s.store.BuildingFilter.Query()
	for query.Next() {
		b, pos, _ := query.Get()
		if b.State != components.Active || b.ZoneType != components.ZoneFabrication {
			continue
		}
		t := s.registry.ByID(b.TemplateID)
		if t == nil || t.ContaminationOut <= 0 || b.Capacity == 0 {
			continue
		}
		ratio := float32(b.CurrentOccupancy) / float32(b.Capacity)
		emit(pos.X, pos.Y, t.ContaminationOut*ratio, grid.ContamIndustrial)
	}
}
