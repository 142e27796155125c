package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// RailSystem tracks per-player rail segments and terminals (§4.5).
// Rails are powered from the energy provider; a terminal is active iff
// it is powered and has a 4-connected adjacent rail of any player.
// Active terminals project a traffic-reduction field that falls off
// linearly to zero at their coverage radius.
type RailSystem struct {
	world *grid.World
	store *worldstore.Store
	cfg   config.RailConfig

	// railTiles caches rail positions for the terminal adjacency check.
	railTiles map[[2]int32]bool

	// activeTerminals caches this tick's active terminals for the
	// reduction-field query.
	activeTerminals []terminalSite
}

type terminalSite struct {
	x, y   int32
	radius int
}

// NewRailSystem creates the rail subsystem.
func NewRailSystem(world *grid.World, store *worldstore.Store, cfg config.RailConfig) *RailSystem {
	return &RailSystem{
		world:     world,
		store:     store,
		cfg:       cfg,
		railTiles: make(map[[2]int32]bool),
	}
}

// Priority implements sim.Subsystem (§2: rail 47).
func (s *RailSystem) Priority() int { return sim.PriorityRail }

// PlaceRail creates a rail segment entity at (x, y).
func (s *RailSystem) PlaceRail(x, y int32, rt components.RailType, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.Rail.Add(e, &components.Rail{Type: rt, IsPowered: true})
	s.railTiles[[2]int32{x, y}] = true
	return id, nil
}

// PlaceTerminal creates a terminal at (x, y). Validation (§4.5):
// in-bounds, no terminal already at the position for any player, and an
// adjacent rail segment exists.
func (s *RailSystem) PlaceTerminal(x, y int32, tt components.TerminalType, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}

	terminals := s.store.TerminalFilter.Query()
	for terminals.Next() {
		_, pos, _ := terminals.Get()
		if pos.X == x && pos.Y == y {
			// Drain the iterator before returning; ark queries must be
			// exhausted or closed before the next structural operation.
			for terminals.Next() {
			}
			return ids.InvalidEntityID, ErrTerminalExists
		}
	}

	if !s.hasAdjacentRail(x, y) {
		return ids.InvalidEntityID, ErrNoAdjacentRail
	}

	radius := s.cfg.TerminalCoverageRadius
	if radius == 0 {
		radius = components.DefaultCoverageRadius
	}
	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.Terminal.Add(e, &components.Terminal{
		Type:           tt,
		CoverageRadius: radius,
	})
	return id, nil
}

// hasAdjacentRail checks the 4-connected neighbors for any player's
// rail segment (§4.5: "any player-owned for neighbor check").
func (s *RailSystem) hasAdjacentRail(x, y int32) bool {
	for _, d := range cardinal {
		if s.railTiles[[2]int32{x + d[0], y + d[1]}] {
			return true
		}
	}
	return false
}

// Tick updates rail power and terminal activity (§4.5).
func (s *RailSystem) Tick(ctx sim.TickCtx) {
	energy := ctx.Providers.Energy

	rails := s.store.RailFilter.Query()
	for rails.Next() {
		rail, pos, owner := rails.Get()
		if energy == nil {
			rail.IsPowered = true // fallback: all powered
		} else {
			rail.IsPowered = energy.IsAvailableAt(owner.Owner, pos.X, pos.Y)
		}
	}

	s.activeTerminals = s.activeTerminals[:0]
	terminals := s.store.TerminalFilter.Query()
	for terminals.Next() {
		term, pos, owner := terminals.Get()

		powered := true
		if energy != nil {
			powered = energy.IsAvailableAt(owner.Owner, pos.X, pos.Y)
		}
		term.IsActive = powered && s.hasAdjacentRail(pos.X, pos.Y)

		if term.IsActive {
			s.activeTerminals = append(s.activeTerminals, terminalSite{
				x:      pos.X,
				y:      pos.Y,
				radius: int(term.CoverageRadius),
			})
		}
	}
}

// TrafficReductionAt returns the terminal coverage field at (x, y):
// the maximum reduction at the terminal itself, falling off linearly to
// zero at the coverage radius, aggregated as the maximum across
// overlapping terminals (§4.5).
func (s *RailSystem) TrafficReductionAt(x, y int32) float64 {
	maxRed := s.cfg.TerminalMaxReduction
	if maxRed <= 0 {
		maxRed = 0.5
	}

	best := 0.0
	for _, t := range s.activeTerminals {
		// Chebyshev distance keeps the field square like the coverage
		// footprint the renderer draws.
		d := max(abs(int(x-t.x)), abs(int(y-t.y)))
		if d >= t.radius {
			continue
		}
		red := maxRed * (1 - float64(d)/float64(t.radius))
		if red > best {
			best = red
		}
	}
	return best
}

// TerminalCount returns the number of terminals owned by owner, and how
// many of them are currently active.
func (s *RailSystem) TerminalCount(owner ids.PlayerID) (total, active int) {
	terminals := s.store.TerminalFilter.Query()
	for terminals.Next() {
		term, _, own := terminals.Get()
		if own.Owner != owner {
			continue
		}
		total++
		if term.IsActive {
			active++
		}
	}
	return total, active
}
