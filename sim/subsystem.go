// Package sim implements the fixed-timestep tick scheduler, derived
// simulation time, and tick orchestrator of §4.1: a single canonical
// tick loop that drives a priority-ordered set of subsystems. Grounded
// on the teacher's game.Game.Update/simulationStep (accumulator + fixed
// DT + a hardcoded sequence of per-system calls), generalized per §9's
// re-architecture note from "one hardcoded method per phase" into a
// registered, priority-sorted []Subsystem so no phase is wired by name.
package sim

import (
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/providers"
	"github.com/pthm-cable/citycore/worldstore"
)

// TickCtx is everything a subsystem's Tick call receives: the tick
// number, the fixed simulated delta, the dense grids, the entity store,
// the event bus it pushes into, and this tick's borrowed Providers
// bundle (§5: "subsystems borrow immutably during their tick; there is
// exactly one live borrow of each provider").
type TickCtx struct {
	Tick      ids.Tick
	Delta     float64
	World     *grid.World
	Store     *worldstore.Store
	Bus       *events.Bus
	Providers providers.Providers
}

// Subsystem is the single capability trait every simulation system
// implements (§9: replaces the source's multiple-inheritance duck-typed
// ISimulatable interfaces with one interface, avoiding any diamond).
type Subsystem interface {
	// Priority orders execution within a tick; lower runs earlier.
	Priority() int
	// Tick advances this subsystem by exactly one simulation step. It
	// must not panic for recoverable conditions — push an event instead
	// (§4.1, §7). A panic here aborts the whole tick; the accumulator
	// is not rewound.
	Tick(ctx TickCtx)
}

// Canonical priorities (§2). Lower executes earlier.
const (
	PrioritySimulationTime = 0
	PriorityBuilding       = 40
	PriorityTransport      = 45
	PriorityRail           = 47
	PriorityPort           = 48
	PriorityPopulation     = 50
)
