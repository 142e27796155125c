package sim

import "github.com/pthm-cable/citycore/ids"

// Speed is the simulation speed multiplier (§4.1). Paused stops the
// accumulator from ever crossing TickDelta regardless of wall time.
type Speed int

const (
	Paused  Speed = 0
	Normal  Speed = 1
	Fast    Speed = 2
	Fastest Speed = 3
)

// Scheduler is the fixed-δ accumulator driving Orchestrator.Tick at a
// steady 20Hz regardless of host frame rate (§4.1). Grounded on the
// teacher's Game.Update accumulator loop, generalized from a single
// hardcoded simulationStep call into repeated calls to
// Orchestrator.Tick while the accumulator has a full step banked.
type Scheduler struct {
	Orchestrator *Orchestrator
	Speed        Speed

	accumulator float64
}

// NewScheduler creates a scheduler at Normal speed driving orch.
func NewScheduler(orch *Orchestrator) *Scheduler {
	return &Scheduler{Orchestrator: orch, Speed: Normal}
}

// Advance folds wallDelta seconds of host time into the accumulator,
// scaled by the speed multiplier, and advances the simulation by as
// many whole ticks as the accumulator now covers. It returns the number
// of ticks advanced and the residual interpolation factor in [0, 1) the
// renderer collaborator uses to interpolate between the last two ticks
// (§4.1).
func (s *Scheduler) Advance(wallDelta float64) (ticksAdvanced int, interpolation float64) {
	effective := wallDelta * float64(s.Speed)
	s.accumulator += effective

	for s.accumulator >= ids.TickDelta {
		s.accumulator -= ids.TickDelta
		s.Orchestrator.Tick()
		ticksAdvanced++
	}

	return ticksAdvanced, s.accumulator / ids.TickDelta
}

// CurrentTick returns the orchestrator's current tick counter.
func (s *Scheduler) CurrentTick() ids.Tick { return s.Orchestrator.CurrentTick }
