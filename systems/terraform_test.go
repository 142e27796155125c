package systems

import (
	"testing"

	"github.com/pthm-cable/citycore/grid"
)

func TestTerraformConvertsBlightAndInvalidatesContamination(t *testing.T) {
	h := newHarness(t, 128)

	invalidated := false
	ts := NewTerraformSystem(h.world, h.store, testBuildingConfig(), nil, func() { invalidated = true })

	cell := h.world.Terrain.At(50, 50)
	cell.Type = grid.BlightMires
	h.world.Terrain.Set(50, 50, cell)

	if _, err := ts.StartTerraform(h.ctx(), 60, 60, 1); err != ErrNotTerraformable {
		t.Fatalf("terraform on substrate: got %v, want ErrNotTerraformable", err)
	}

	id, err := ts.StartTerraform(h.ctx(), 50, 50, 1)
	if err != nil {
		t.Fatalf("StartTerraform: %v", err)
	}
	if _, err := ts.StartTerraform(h.ctx(), 50, 50, 1); err != ErrOperationInProgress {
		t.Fatalf("duplicate op: got %v, want ErrOperationInProgress", err)
	}

	// Blight takes 100 ticks.
	var completedAt int
	for i := 1; i <= 100; i++ {
		ts.Tick(h.ctx())
		if evs := h.bus.TerrainModified.Drain(); len(evs) > 0 {
			completedAt = i
		}
	}
	if completedAt != 100 {
		t.Fatalf("terraform completed at step %d, want 100", completedAt)
	}
	if got := h.world.Terrain.At(50, 50); got.Type != grid.Substrate || !got.HasFlag(grid.FlagCleared) {
		t.Fatalf("tile after terraform = %+v, want cleared Substrate", got)
	}
	if !invalidated {
		t.Fatal("contamination terrain-source cache not invalidated")
	}
	if h.store.Alive(id) {
		t.Fatal("operation entity still alive after completion")
	}
}

func TestGradeMovesOneLevelPerTick(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTerraformSystem(h.world, h.store, testBuildingConfig(), nil, nil)

	cell := h.world.Terrain.At(10, 10)
	cell.Elevation = 5
	h.world.Terrain.Set(10, 10, cell)

	if _, err := ts.StartGrade(h.ctx(), 10, 10, 5, 1); err != ErrAlreadyTarget {
		t.Fatalf("grade to current elevation: got %v, want ErrAlreadyTarget", err)
	}
	if _, err := ts.StartGrade(h.ctx(), 10, 10, 9, 1); err != nil {
		t.Fatalf("StartGrade: %v", err)
	}

	for i := 0; i < 2; i++ {
		ts.Tick(h.ctx())
	}
	if got := h.world.Terrain.At(10, 10).Elevation; got != 7 {
		t.Fatalf("elevation after 2 ticks = %d, want 7", got)
	}
	for i := 0; i < 2; i++ {
		ts.Tick(h.ctx())
	}
	if got := h.world.Terrain.At(10, 10).Elevation; got != 9 {
		t.Fatalf("elevation after 4 ticks = %d, want 9", got)
	}
}

func TestTerraformCancelStopsWork(t *testing.T) {
	h := newHarness(t, 128)
	ts := NewTerraformSystem(h.world, h.store, testBuildingConfig(), nil, nil)

	cell := h.world.Terrain.At(70, 70)
	cell.Type = grid.EmberCrust
	h.world.Terrain.Set(70, 70, cell)

	id, err := ts.StartTerraform(h.ctx(), 70, 70, 1)
	if err != nil {
		t.Fatalf("StartTerraform: %v", err)
	}

	ts.Tick(h.ctx())
	if err := ts.Cancel(h.ctx(), id, 2); err != ErrNotOwned {
		t.Fatalf("foreign cancel: got %v, want ErrNotOwned", err)
	}
	if err := ts.Cancel(h.ctx(), id, 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	for i := 0; i < 60; i++ {
		ts.Tick(h.ctx())
	}
	if got := h.world.Terrain.At(70, 70).Type; got != grid.EmberCrust {
		t.Fatalf("cancelled terraform still converted tile to %v", got)
	}
	if h.store.Alive(id) {
		t.Fatal("cancelled operation entity not cleaned up")
	}
}
