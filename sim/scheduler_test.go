package sim

import (
	"testing"

	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/worldstore"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	orch := NewOrchestrator(grid.NewWorld(128), worldstore.New(), events.NewBus())
	return NewScheduler(orch)
}

// §8 scenario 1: fixed-timestep accumulation.
func TestSchedulerFixedTimestepAccumulation(t *testing.T) {
	s := newTestScheduler(t)

	s.Advance(0.040)
	ticks, _ := s.Advance(0.040)
	if ticks != 1 {
		t.Fatalf("after 0.040+0.040: ticks this call = %d, want 1", ticks)
	}
	if s.CurrentTick() != 1 {
		t.Fatalf("current tick = %d, want 1", s.CurrentTick())
	}

	ticks, _ = s.Advance(0.250)
	if ticks != 5 {
		t.Fatalf("after +0.250: ticks this call = %d, want 5", ticks)
	}
	if s.CurrentTick() != 6 {
		t.Fatalf("current tick = %d, want 6", s.CurrentTick())
	}
}

// §8 scenario 2: speed control.
func TestSchedulerSpeedControl(t *testing.T) {
	s := newTestScheduler(t)
	s.Speed = Fast

	ticks, _ := s.Advance(0.050)
	if ticks != 2 {
		t.Fatalf("Fast speed: ticks = %d, want 2", ticks)
	}

	s2 := newTestScheduler(t)
	s2.Speed = Paused
	ticks, _ = s2.Advance(1.000)
	if ticks != 0 {
		t.Fatalf("Paused speed: ticks = %d, want 0", ticks)
	}
}

func TestOrchestratorEmitsTickStartAndComplete(t *testing.T) {
	orch := NewOrchestrator(grid.NewWorld(128), worldstore.New(), events.NewBus())
	drained := orch.Tick()
	if len(drained.TickStart) != 1 || len(drained.TickComplete) != 1 {
		t.Fatalf("expected exactly one TickStart and TickComplete, got %d/%d",
			len(drained.TickStart), len(drained.TickComplete))
	}
	if drained.TickStart[0].Tick != 1 {
		t.Fatalf("TickStart.Tick = %d, want 1", drained.TickStart[0].Tick)
	}
}

type panicSubsystem struct{ calls *int }

func (p panicSubsystem) Priority() int { return 0 }
func (p panicSubsystem) Tick(ctx TickCtx) {
	*p.calls++
	panic("boom")
}

func TestSubsystemPanicAbortsTickNotAccumulator(t *testing.T) {
	orch := NewOrchestrator(grid.NewWorld(128), worldstore.New(), events.NewBus())
	calls := 0
	orch.Register(panicSubsystem{calls: &calls})

	orch.Tick()
	if calls != 1 {
		t.Fatalf("subsystem called %d times, want 1", calls)
	}
	if orch.CurrentTick != 1 {
		t.Fatalf("tick counter = %d, want 1 (panic must not rewind it)", orch.CurrentTick)
	}

	orch.Tick()
	if calls != 2 {
		t.Fatalf("subsystem called %d times on second tick, want 2", calls)
	}
	if orch.CurrentTick != 2 {
		t.Fatalf("tick counter = %d, want 2", orch.CurrentTick)
	}
}
