package systems

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/sim"
)

// LandValueStats is the cached aggregate view of the desirability grid
// (§4.9: average, max, min, high/low counts).
type LandValueStats struct {
	Average   float64
	Max       float64
	Min       float64
	HighCount int // cells >= 192
	LowCount  int // cells < 64
}

// LandValueSystem maintains the derived desirability byte grid (§4.9):
// contamination pulls values down, road proximity pulls them up, and a
// slow diffusion smears the result toward neighborhood averages.
type LandValueSystem struct {
	world *grid.World
	cfg   config.LandValueConfig

	scratch []float64 // per-cell float staging, reused across updates
	stats   LandValueStats
	active  bool
}

// NewLandValueSystem creates the land-value subsystem.
func NewLandValueSystem(world *grid.World, cfg config.LandValueConfig) *LandValueSystem {
	return &LandValueSystem{
		world:   world,
		cfg:     cfg,
		scratch: make([]float64, world.Side*world.Side),
		active:  true,
	}
}

// Priority implements sim.Subsystem.
func (s *LandValueSystem) Priority() int { return PriorityLandValue }

// Tick recomputes the grid on its configured interval and refreshes the
// aggregate stats.
func (s *LandValueSystem) Tick(ctx sim.TickCtx) {
	interval := s.cfg.UpdateInterval
	if interval == 0 {
		interval = 1
	}
	if uint64(ctx.Tick)%interval != 0 {
		return
	}

	s.recompute()
	s.refreshStats()
}

// recompute derives the target value per cell and moves the stored
// value a diffusion step toward it.
func (s *LandValueSystem) recompute() {
	side := s.world.Side
	lv := s.world.LandValue
	contam := s.world.Contamination.Current()
	prox := s.world.Proximity

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			target := float64(grid.LandValueNeutral)

			target -= s.cfg.ContaminationWeight * float64(contam.At(x, y).Level)

			// Road access raises value, fading over the first 8 steps.
			d := prox.At(x, y)
			if d != grid.ProximityUnknown && d < 8 {
				target += s.cfg.ProximityWeight * float64(8-int(d)) * 8
			}

			s.scratch[y*side+x] = target
		}
	}

	// Neighborhood smoothing, then blend stored value toward the target.
	rate := s.cfg.DiffusionRate
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			sum := s.scratch[y*side+x]
			n := 1.0
			for _, d := range cardinal {
				nx, ny := x+int(d[0]), y+int(d[1])
				if nx < 0 || ny < 0 || nx >= side || ny >= side {
					continue
				}
				sum += s.scratch[ny*side+nx]
				n++
			}
			target := sum / n

			cur := float64(lv.At(x, y))
			next := cur + (target-cur)*rate
			if next < 0 {
				next = 0
			}
			if next > 255 {
				next = 255
			}
			lv.Set(x, y, uint8(next))
		}
	}
}

// refreshStats recomputes the aggregate view using gonum reductions.
func (s *LandValueSystem) refreshStats() {
	side := s.world.Side
	lv := s.world.LandValue

	vals := s.scratch[:side*side]
	high, low := 0, 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			v := float64(lv.At(x, y))
			vals[y*side+x] = v
			if v >= 192 {
				high++
			}
			if v < 64 {
				low++
			}
		}
	}

	s.stats = LandValueStats{
		Average:   stat.Mean(vals, nil),
		Max:       floats.Max(vals),
		Min:       floats.Min(vals),
		HighCount: high,
		LowCount:  low,
	}
}

// Stats returns the cached aggregates.
func (s *LandValueSystem) Stats() LandValueStats { return s.stats }

// ValueAt returns the desirability byte at (x, y).
func (s *LandValueSystem) ValueAt(x, y int32) uint8 {
	return s.world.LandValue.At(int(x), int(y))
}

// --- query.GridOverlay ---

// Name implements query.GridOverlay.
func (s *LandValueSystem) Name() string { return "land_value" }

// IsActive implements query.GridOverlay.
func (s *LandValueSystem) IsActive() bool { return s.active }

// SetActive toggles the overlay for the rendering collaborator.
func (s *LandValueSystem) SetActive(active bool) { s.active = active }

// ColorAt implements query.GridOverlay (§4.9: red < 64, orange 64..127,
// yellow 128..191, green >= 192).
func (s *LandValueSystem) ColorAt(x, y int32) (r, g, b, a uint8) {
	v := s.world.LandValue.At(int(x), int(y))
	switch {
	case v < 64:
		return 220, 40, 40, 160
	case v < 128:
		return 230, 140, 30, 160
	case v < 192:
		return 230, 220, 50, 160
	default:
		return 60, 200, 70, 160
	}
}
