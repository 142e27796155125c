package grid

import (
	"testing"

	"github.com/pthm-cable/citycore/ids"
)

func TestDenseOutOfBoundsReadsDefault(t *testing.T) {
	d := NewDense[uint8](128)
	d.Set(5, 5, 42)

	if v := d.At(-1, 5); v != 0 {
		t.Fatalf("At(-1,5) = %d, want 0", v)
	}
	if v := d.At(128, 5); v != 0 {
		t.Fatalf("At(128,5) = %d, want 0", v)
	}
	if v := d.At(5, 5); v != 42 {
		t.Fatalf("At(5,5) = %d, want 42", v)
	}
}

func TestDenseOutOfBoundsWriteIsNoOp(t *testing.T) {
	d := NewDense[uint8](128)
	d.Set(-1, 0, 7)
	d.Set(128, 0, 7)

	d.Each(func(x, y int, v uint8) {
		if v != 0 {
			t.Fatalf("unexpected write landed at (%d,%d) = %d", x, y, v)
		}
	})
}

func TestOccupancyFootprintMarkAndClear(t *testing.T) {
	occ := NewOccupancyGrid(128)
	if !occ.IsFree(10, 10, 3, 2) {
		t.Fatal("expected free footprint before marking")
	}

	occ.MarkFootprint(10, 10, 3, 2, ids.EntityID(77))
	for y := 10; y < 12; y++ {
		for x := 10; x < 13; x++ {
			if occ.At(x, y) != ids.EntityID(77) {
				t.Fatalf("cell (%d,%d) not marked", x, y)
			}
		}
	}
	if occ.IsFree(10, 10, 3, 2) {
		t.Fatal("expected occupied footprint after marking")
	}

	occ.ClearFootprint(10, 10, 3, 2)
	if !occ.IsFree(10, 10, 3, 2) {
		t.Fatal("expected free footprint after clearing")
	}
	// Idempotent: clearing again is a no-op, not an error.
	occ.ClearFootprint(10, 10, 3, 2)
}

func TestContaminationSaturatesAndTieBreaksKeepPreviousDominant(t *testing.T) {
	f := NewContaminationField(128)

	var contrib [4]uint16
	f.Add(5, 5, 200, ContamEnergy, &contrib)
	f.Add(5, 5, 100, ContamIndustrial, &contrib) // 200 > 100, dominant stays Energy

	cell := f.Current().At(5, 5)
	if cell.Level != 255 {
		t.Fatalf("level = %d, want saturated 255", cell.Level)
	}
	if cell.Dominant != ContamEnergy {
		t.Fatalf("dominant = %v, want ContamEnergy", cell.Dominant)
	}

	f.Add(5, 5, 100, ContamIndustrial, &contrib) // Industrial now ties Energy at 200; the tie keeps Energy
	if got := f.Current().At(5, 5).Dominant; got != ContamEnergy {
		t.Fatalf("dominant after tie = %v, want ContamEnergy", got)
	}

	f.Sub(5, 5, 255)
	cell = f.Current().At(5, 5)
	if cell.Level != 0 {
		t.Fatalf("level after Sub = %d, want 0", cell.Level)
	}
	if cell.Dominant != 0 {
		t.Fatalf("dominant after decay to 0 = %v, want reset", cell.Dominant)
	}
}

func TestContaminationDoubleSwapRestoresSemantics(t *testing.T) {
	f := NewContaminationField(128)
	before := f.Current()
	f.Swap()
	f.Swap()
	after := f.Current()
	if before != after {
		t.Fatal("swap(); swap() did not restore original current buffer")
	}
}

func TestWaterBodyInvariantHoldsForWaterTerrainTypes(t *testing.T) {
	types := []TerrainType{DeepVoid, FlowChannel, StillBasin}
	for _, tp := range types {
		if !tp.IsWater() {
			t.Fatalf("%v should be a water type", tp)
		}
	}
	if Substrate.IsWater() || BlightMires.IsWater() || EmberCrust.IsWater() {
		t.Fatal("non-water terrain incorrectly classified as water")
	}
}

func TestFlowDirectionClampsUnknownToNone(t *testing.T) {
	var f FlowDirection = 200
	if f.Clamp() != FlowNone {
		t.Fatalf("Clamp() = %v, want FlowNone", f.Clamp())
	}
}
