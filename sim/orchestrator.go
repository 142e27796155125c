package sim

import (
	"sort"

	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/providers"
	"github.com/pthm-cable/citycore/worldstore"
)

// Orchestrator registers every subsystem, drives per-tick dispatch in
// ascending priority, and drains the event bus after each tick (§2, §4.2,
// §9: "both subsystems register into an orchestrator and communicate via
// events and read-only queries" — breaks the source's bidirectional
// BuildingSystem<->ZoneSystem pointer cycle).
type Orchestrator struct {
	World *grid.World
	Store *worldstore.Store
	Bus   *events.Bus

	// Providers is rebuilt by the caller (typically once, at startup,
	// since every system in this design is constructed once and never
	// replaced) and handed to subsystems borrowed for the duration of
	// one Tick call only (§5, §9).
	Providers providers.Providers

	CurrentTick ids.Tick

	// OnDrain, if set, receives every tick's drained events after the
	// subsystem loop — the hook an event consumer (telemetry, a future
	// replication layer) attaches to (§4.2).
	OnDrain func(drained events.DrainedTick)

	subsystems []Subsystem
	dirty      bool // true when registration order needs re-sorting
}

// NewOrchestrator wires an orchestrator over an already-allocated grid
// world, entity store, and event bus.
func NewOrchestrator(world *grid.World, store *worldstore.Store, bus *events.Bus) *Orchestrator {
	return &Orchestrator{World: world, Store: store, Bus: bus}
}

// Register adds a subsystem. Idempotent registration is the caller's
// responsibility (§4.1: "idempotent registration; re-sort lazy") — we
// do not deduplicate by identity since Go interfaces holding distinct
// concrete pointers are trivially distinguishable and double-registering
// the same pointer is a caller bug, not a runtime concern.
func (o *Orchestrator) Register(s Subsystem) {
	o.subsystems = append(o.subsystems, s)
	o.dirty = true
}

// ensureSorted stable-sorts subsystems by ascending priority. Stable
// sort preserves registration order for equal priorities (§4.1: "this
// is the only control an implementer has over same-priority ordering").
func (o *Orchestrator) ensureSorted() {
	if !o.dirty {
		return
	}
	sort.SliceStable(o.subsystems, func(i, j int) bool {
		return o.subsystems[i].Priority() < o.subsystems[j].Priority()
	})
	o.dirty = false
}

// Tick advances the simulation by exactly one fixed step: emits
// TickStart, runs every subsystem in priority order, emits
// PhaseChanged/CycleChanged on boundary crossings, emits TickComplete,
// then drains the event bus (§4.1, §4.2).
//
// A panic from any subsystem aborts the rest of this tick's subsystem
// loop; the scheduler's accumulator has already been decremented by the
// caller, so the next Advance resumes from the next tick rather than
// retrying this one (§4.1, §7).
func (o *Orchestrator) Tick() (drained events.DrainedTick) {
	o.ensureSorted()

	o.CurrentTick++
	t := o.CurrentTick

	prevPhase := int((t - 1) / ids.TicksPerPhase % ids.PhasesPerCycle)
	prevCycle := uint64((t - 1) / (ids.TicksPerPhase * ids.PhasesPerCycle))

	o.Bus.TickStart.Push(events.TickStart{Tick: t, Delta: ids.TickDelta})

	func() {
		defer func() {
			// §4.1/§7: a subsystem panic aborts the tick, not the process.
			// Recovery here is deliberate — the host decides whether a
			// programmer-error class panic should terminate it.
			recover()
		}()
		ctx := TickCtx{
			Tick:      t,
			Delta:     ids.TickDelta,
			World:     o.World,
			Store:     o.Store,
			Bus:       o.Bus,
			Providers: o.Providers,
		}
		for _, s := range o.subsystems {
			s.Tick(ctx)
		}
	}()

	newPhase := t.Phase()
	newCycle := t.Cycle()
	if newPhase != prevPhase {
		o.Bus.PhaseChanged.Push(events.PhaseChanged{Tick: t, Phase: newPhase, Previous: prevPhase})
	}
	if newCycle != prevCycle {
		o.Bus.CycleChanged.Push(events.CycleChanged{Tick: t, Cycle: newCycle, Previous: prevCycle})
	}

	o.Bus.TickComplete.Push(events.TickComplete{Tick: t})

	drained = o.Bus.Drain()
	if o.OnDrain != nil {
		o.OnDrain(drained)
	}
	return drained
}
