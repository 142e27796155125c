package serialize

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/worldstore"
)

func buildTestGrids(side int) (*grid.TerrainGrid, *grid.WaterBodyGrid, *grid.FlowDirectionGrid) {
	terrain := grid.NewTerrainGrid(side)
	water := grid.NewWaterBodyGrid(side)
	flow := grid.NewFlowDirectionGrid(side)

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			cell := grid.TerrainCell{
				Type:      grid.Substrate,
				Elevation: uint8((x + y) % 32),
				Moisture:  uint8(x % 256),
			}
			if (x+y)%17 == 0 {
				cell.Type = grid.FlowChannel
			}
			terrain.Set(x, y, cell)
			if cell.Type.IsWater() {
				water.Set(x, y, uint16(1+(x%3)))
				flow.Set(x, y, grid.FlowDirection(1+(x+y)%8))
			}
		}
	}
	return terrain, water, flow
}

// §8 round-trip: terrain bytes, water-body ids and flow directions
// survive serialize/deserialize bit-exact.
func TestGridRoundTripBitExact(t *testing.T) {
	terrain, water, flow := buildTestGrids(128)

	data, err := MarshalGrids(terrain, water, flow, 10, 12345)
	if err != nil {
		t.Fatalf("MarshalGrids: %v", err)
	}
	snap, err := UnmarshalGrids(data)
	if err != nil {
		t.Fatalf("UnmarshalGrids: %v", err)
	}

	if snap.SeaLevel != 10 || snap.MapSeed != 12345 || snap.Width != 128 {
		t.Fatalf("header mismatch: %+v", snap)
	}
	for i, cell := range terrain.Raw() {
		if snap.Terrain.Raw()[i] != cell {
			t.Fatalf("terrain cell %d mismatch", i)
		}
	}
	for i, id := range water.Raw() {
		if snap.WaterBody.Raw()[i] != id {
			t.Fatalf("water body id %d mismatch", i)
		}
	}
	for i, dir := range flow.Raw() {
		if snap.FlowDir.Raw()[i] != dir {
			t.Fatalf("flow direction %d mismatch", i)
		}
	}

	// A second marshal of the decoded snapshot is byte-identical.
	data2, err := MarshalGrids(snap.Terrain, snap.WaterBody, snap.FlowDir, snap.SeaLevel, snap.MapSeed)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Fatal("round-trip bytes differ")
	}
}

func TestGridUnmarshalFailureTaxonomy(t *testing.T) {
	terrain, water, flow := buildTestGrids(128)
	data, _ := MarshalGrids(terrain, water, flow, 10, 1)

	short := data[:8]
	if _, err := UnmarshalGrids(short); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("truncated header: got %v, want ErrInsufficientData", err)
	}

	truncated := data[:len(data)-100]
	if _, err := UnmarshalGrids(truncated); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("truncated body: got %v, want ErrInsufficientData", err)
	}

	badVersion := append([]byte(nil), data...)
	badVersion[0] = 0xFF
	badVersion[1] = 0xFF
	if _, err := UnmarshalGrids(badVersion); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("bad version: got %v, want ErrInvalidVersion", err)
	}

	badDims := append([]byte(nil), data...)
	badDims[2] = 100 // width 100 is not a valid side
	badDims[3] = 0
	if _, err := UnmarshalGrids(badDims); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("bad dimensions: got %v, want ErrInvalidDimensions", err)
	}

	// Water id on a non-water tile violates the §3.4 invariant.
	corrupt := append([]byte(nil), data...)
	// Find a substrate tile and force a water id onto it: cell (1,0) or
	// (2,0) is substrate unless (x+y)%17 == 0.
	cellIdx := 1
	if (1+0)%17 == 0 {
		cellIdx = 2
	}
	waterOff := headerSize + 128*128*4 + cellIdx*2
	corrupt[waterOff] = 9
	if _, err := UnmarshalGrids(corrupt); !errors.Is(err, ErrCorruptData) {
		t.Fatalf("inconsistent water id: got %v, want ErrCorruptData", err)
	}
}

func TestUnknownFlowDirectionClampsToNone(t *testing.T) {
	terrain, water, flow := buildTestGrids(128)
	data, _ := MarshalGrids(terrain, water, flow, 10, 1)

	// Overwrite one flow byte with an undefined direction value.
	flowOff := headerSize + 128*128*4 + 128*128*2
	data[flowOff] = 200
	snap, err := UnmarshalGrids(data)
	if err != nil {
		t.Fatalf("UnmarshalGrids: %v", err)
	}
	if snap.FlowDir.Raw()[0] != grid.FlowNone {
		t.Fatalf("unknown flow byte decoded to %v, want FlowNone", snap.FlowDir.Raw()[0])
	}
}

func TestEntityRoundTrip(t *testing.T) {
	store := worldstore.New()

	bid := store.NewEntity(components.Position{X: 10, Y: 12, Z: 1.5}, components.Ownership{Owner: 2})
	be, _ := store.Entity(bid)
	store.Building.Add(be, &components.Building{
		TemplateID:       7,
		State:            components.Materializing,
		ZoneType:         components.ZoneExchange,
		Density:          components.DensityHigh,
		Level:            2,
		Health:           250,
		Capacity:         90,
		CurrentOccupancy: 45,
		FootprintW:       2,
		FootprintH:       2,
		Rotation:         3,
		ColorAccent:      1,
		AbandonTimer:     -5,
		StateChangedTick: 123456789,
	})
	store.Construction.Add(be, &components.Construction{
		TicksTotal:       140,
		TicksElapsed:     35,
		Phase:            components.PhaseFramework,
		PhaseProgress:    64,
		ConstructionCost: 4500,
	})

	did := store.NewEntity(components.Position{X: 40, Y: 41}, components.Ownership{Owner: 1})
	de, _ := store.Entity(did)
	store.Debris.Add(de, &components.Debris{
		OriginalTemplateID: 3,
		ClearTimer:         42,
		FootprintW:         1,
		FootprintH:         2,
	})

	data := MarshalEntities(store, "roundtrip")
	snap, err := UnmarshalEntities(data)
	if err != nil {
		t.Fatalf("UnmarshalEntities: %v", err)
	}
	if snap.WorldName != "roundtrip" {
		t.Fatalf("world name = %q", snap.WorldName)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}

	b := snap.Records[0]
	if !b.HasBuilding || !b.HasConstruction || b.HasDebris {
		t.Fatalf("building record flags wrong: %+v", b)
	}
	orig := *store.Building.Get(be)
	if b.Building != orig {
		t.Fatalf("building bundle not bit-exact:\n got %+v\nwant %+v", b.Building, orig)
	}
	if b.Construction != *store.Construction.Get(be) {
		t.Fatal("construction bundle not bit-exact")
	}
	if b.X != 10 || b.Y != 12 || b.Z != 1.5 || b.Owner != 2 {
		t.Fatalf("position/owner mismatch: %+v", b)
	}

	d := snap.Records[1]
	if !d.HasDebris || d.HasBuilding {
		t.Fatalf("debris record flags wrong: %+v", d)
	}
	if d.Debris != *store.Debris.Get(de) {
		t.Fatal("debris bundle not bit-exact")
	}

	// Restoring into a fresh store reproduces the bundles.
	fresh := worldstore.New()
	remap, err := RestoreEntities(fresh, snap)
	if err != nil {
		t.Fatalf("RestoreEntities: %v", err)
	}
	ne, _ := fresh.Entity(remap[bid])
	if *fresh.Building.Get(ne) != orig {
		t.Fatal("restored building bundle differs")
	}
}

func TestEntityUnmarshalRejectsInconsistentRecords(t *testing.T) {
	store := worldstore.New()
	id := store.NewEntity(components.Position{X: 1, Y: 1}, components.Ownership{Owner: 1})
	e, _ := store.Entity(id)
	store.Building.Add(e, &components.Building{TemplateID: 1, State: components.Active})

	data := MarshalEntities(store, "x")

	snap, err := UnmarshalEntities(data)
	if err != nil {
		t.Fatalf("baseline decode: %v", err)
	}
	if len(snap.Records) != 1 || snap.Records[0].Building.State != components.Active {
		t.Fatalf("unexpected baseline: %+v", snap.Records)
	}

	// A Construction flag on a non-Materializing building violates the
	// §3.4 invariant; for this single record the flag byte sits right
	// before the trailing debris flag.
	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-2] = 1 // claim HasConstruction without payload
	if _, err := UnmarshalEntities(tampered); err == nil {
		t.Fatal("construction flag on Active building decoded without error")
	}

	if _, err := UnmarshalEntities(data[:len(data)-3]); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("truncated entities: got %v, want ErrInsufficientData", err)
	}
}
