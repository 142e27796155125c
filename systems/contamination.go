package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// ContaminationEmitter is implemented by subsystems that contribute
// contamination without owning a ContaminationSource entity (traffic,
// industrial buildings). The terrain source is handled internally with
// a cached blight-tile list (§4.8).
type ContaminationEmitter interface {
	EmitContamination(emit func(x, y int32, output float32, typ grid.ContaminationType))
}

// ContaminationSystem runs the double-buffered saturating diffusion
// protocol of §4.8: swap, carry-with-decay, generate from entity
// sources and registered emitters, spread within each source's radius,
// and cache aggregate stats.
type ContaminationSystem struct {
	world *grid.World
	store *worldstore.Store
	cfg   config.ContaminationConfig

	emitters []ContaminationEmitter

	// contributions tracks, per cell per tick, the accumulated amount
	// added by each contamination type; the strictly-greatest becomes
	// the dominant type, ties keep the previous dominant (§9).
	contributions [][4]uint16

	// terrainSources caches blight-mire tile coordinates; rebuilt when
	// invalidated by a terraform that removed blight (§4.8).
	terrainSources      [][2]int32
	terrainSourcesValid bool

	total      uint64
	toxicTiles int
}

// NewContaminationSystem creates the contamination subsystem.
func NewContaminationSystem(world *grid.World, store *worldstore.Store, cfg config.ContaminationConfig) *ContaminationSystem {
	return &ContaminationSystem{
		world:         world,
		store:         store,
		cfg:           cfg,
		contributions: make([][4]uint16, world.Side*world.Side),
	}
}

// Priority implements sim.Subsystem.
func (s *ContaminationSystem) Priority() int { return PriorityContamination }

// RegisterEmitter adds a collaborator source system. Registration
// order is emission order, which keeps tie-breaks deterministic.
func (s *ContaminationSystem) RegisterEmitter(e ContaminationEmitter) {
	s.emitters = append(s.emitters, e)
}

// InvalidateTerrainSources drops the cached blight-tile list; the next
// tick rebuilds it. Called when a blight-mire tile is terraformed away
// (§4.8).
func (s *ContaminationSystem) InvalidateTerrainSources() {
	s.terrainSourcesValid = false
}

// Tick runs the §4.8 protocol.
func (s *ContaminationSystem) Tick(ctx sim.TickCtx) {
	field := s.world.Contamination
	field.Swap()

	s.carryWithDecay()
	s.generate()

	s.aggregate()
}

// carryWithDecay seeds the current buffer from the previous one with
// natural decay applied, and primes the per-cell contribution table
// with the surviving dominant type's level so a new type must beat it
// to take over.
func (s *ContaminationSystem) carryWithDecay() {
	field := s.world.Contamination
	side := field.Side()
	prev := field.Previous()
	cur := field.Current()
	decay := int(s.cfg.NaturalDecayPerTick)

	for i := range s.contributions {
		s.contributions[i] = [4]uint16{}
	}

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			cell := prev.At(x, y)
			level := int(cell.Level) - decay
			if level <= 0 {
				cur.Set(x, y, grid.ContaminationCell{})
				continue
			}
			cell.Level = uint8(level)
			cur.Set(x, y, cell)
			s.contributions[y*side+x][cell.Dominant] = uint16(cell.Level)
		}
	}
}

// generate iterates entity sources and registered emitters, adding each
// entry at its origin and spreading it within the source's radius with
// per-Chebyshev-step attenuation (§4.8).
func (s *ContaminationSystem) generate() {
	sources := s.store.ContamSourceFilter.Query()
	for sources.Next() {
		src, pos := sources.Get()
		if !src.IsActive || src.CurrentOutput <= 0 {
			continue
		}
		s.deposit(pos.X, pos.Y, src.CurrentOutput, src.Type, int(src.SpreadRadius), src.SpreadDecayRate)
	}

	for _, e := range s.emitters {
		e.EmitContamination(func(x, y int32, output float32, typ grid.ContaminationType) {
			if output <= 0 {
				return
			}
			s.deposit(x, y, output, typ, int(components.DefaultSpreadRadius), components.DefaultSpreadDecayRate)
		})
	}

	if !s.terrainSourcesValid {
		s.rebuildTerrainSources()
	}
	blight := float32(s.cfg.TerrainBlightOutput)
	for _, t := range s.terrainSources {
		s.deposit(t[0], t[1], blight, grid.ContamTerrain, int(components.DefaultSpreadRadius), components.DefaultSpreadDecayRate)
	}
}

// deposit adds output at the origin and an attenuated share at every
// cell within radius Chebyshev steps.
func (s *ContaminationSystem) deposit(x, y int32, output float32, typ grid.ContaminationType, radius int, decayRate float32) {
	field := s.world.Contamination
	side := field.Side()

	s.add(x, y, output, typ)

	attenuation := float32(1)
	for r := 1; r <= radius; r++ {
		attenuation *= 1 - decayRate
		amount := output * attenuation
		if amount < 1 {
			break
		}
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				nx, ny := int(x)+dx, int(y)+dy
				if nx < 0 || ny < 0 || nx >= side || ny >= side {
					continue
				}
				s.add(int32(nx), int32(ny), amount, typ)
			}
		}
	}
}

func (s *ContaminationSystem) add(x, y int32, amount float32, typ grid.ContaminationType) {
	side := s.world.Contamination.Side()
	if x < 0 || y < 0 || int(x) >= side || int(y) >= side {
		return
	}
	clamped := amount
	if clamped > 255 {
		clamped = 255
	}
	s.world.Contamination.Add(int(x), int(y), uint8(clamped), typ, &s.contributions[int(y)*side+int(x)])
}

// rebuildTerrainSources rescans the terrain grid for blight-mire tiles.
func (s *ContaminationSystem) rebuildTerrainSources() {
	s.terrainSources = s.terrainSources[:0]
	side := s.world.Side
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if s.world.Terrain.At(x, y).Type == grid.BlightMires {
				s.terrainSources = append(s.terrainSources, [2]int32{int32(x), int32(y)})
			}
		}
	}
	s.terrainSourcesValid = true
}

// aggregate caches the field total and toxic tile count (§4.8).
func (s *ContaminationSystem) aggregate() {
	cur := s.world.Contamination.Current()
	side := cur.Side()
	threshold := s.cfg.ToxicThreshold

	var total uint64
	toxic := 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			level := cur.At(x, y).Level
			total += uint64(level)
			if level >= threshold {
				toxic++
			}
		}
	}
	s.total = total
	s.toxicTiles = toxic
}

// Total returns the cached field-wide contamination sum.
func (s *ContaminationSystem) Total() uint64 { return s.total }

// ToxicTileCount returns the cached count of tiles at or above the
// toxic threshold.
func (s *ContaminationSystem) ToxicTileCount() int { return s.toxicTiles }

// LevelAt returns the contamination level readable this tick (the
// written buffer after the system ran, so downstream systems and
// overlays see this tick's output).
func (s *ContaminationSystem) LevelAt(x, y int32) uint8 {
	return s.world.Contamination.Current().At(int(x), int(y)).Level
}
