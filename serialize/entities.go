package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/worldstore"
)

// Entity payload layout: a u16 version, a length-prefixed UTF-8 world
// name, then a u32 record count followed by records. Every
// trivially-POD component field round-trips bit-exact in little-endian
// field order; strings are length-prefixed UTF-8 (§4.12).

// BuildingRecord is one serialized building (or debris) entity.
type BuildingRecord struct {
	ID    ids.EntityID
	X, Y  int32
	Z     float32
	Owner ids.PlayerID

	HasBuilding bool
	Building    components.Building

	HasConstruction bool
	Construction    components.Construction

	HasDebris bool
	Debris    components.Debris
}

// EntitySnapshot is the decoded entity payload.
type EntitySnapshot struct {
	Version   uint16
	WorldName string
	Records   []BuildingRecord
}

type fieldWriter struct{ buf *bytes.Buffer }

func (w fieldWriter) u8(v uint8)   { w.buf.WriteByte(v) }
func (w fieldWriter) boolean(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}
func (w fieldWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}
func (w fieldWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}
func (w fieldWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}
func (w fieldWriter) i32(v int32)   { w.u32(uint32(v)) }
func (w fieldWriter) i64(v int64)   { w.u64(uint64(v)) }
func (w fieldWriter) f32(v float32) { w.u32(math.Float32bits(v)) }
func (w fieldWriter) str(s string) {
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
}

type fieldReader struct {
	data []byte
	off  int
	err  error
}

func (r *fieldReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.err = ErrInsufficientData
		return false
	}
	return true
}

func (r *fieldReader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *fieldReader) boolean() bool { return r.u8() != 0 }

func (r *fieldReader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *fieldReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *fieldReader) u64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *fieldReader) i32() int32   { return int32(r.u32()) }
func (r *fieldReader) i64() int64   { return int64(r.u64()) }
func (r *fieldReader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *fieldReader) str() string {
	n := int(r.u16())
	if !r.need(n) {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// MarshalEntities encodes every building and debris entity in the
// store. Records are written in ascending EntityID order so two stores
// with identical contents produce identical bytes (§8 determinism).
func MarshalEntities(store *worldstore.Store, worldName string) []byte {
	buf := &bytes.Buffer{}
	w := fieldWriter{buf: buf}

	w.u16(CurrentVersion)
	w.str(worldName)

	var records []BuildingRecord
	q := store.BuildingFilter.Query()
	for q.Next() {
		b, pos, owner := q.Get()
		entity := q.Entity()
		id, ok := store.ID(entity)
		if !ok {
			continue
		}
		rec := BuildingRecord{
			ID: id, X: pos.X, Y: pos.Y, Z: pos.Z, Owner: owner.Owner,
			HasBuilding: true, Building: *b,
		}
		if store.Construction.HasAll(entity) {
			rec.HasConstruction = true
			rec.Construction = *store.Construction.Get(entity)
		}
		records = append(records, rec)
	}

	dq := store.DebrisFilter.Query()
	for dq.Next() {
		debris, pos := dq.Get()
		entity := dq.Entity()
		id, ok := store.ID(entity)
		if !ok {
			continue
		}
		rec := BuildingRecord{
			ID: id, X: pos.X, Y: pos.Y, Z: pos.Z,
			HasDebris: true, Debris: *debris,
		}
		if store.Ownership.HasAll(entity) {
			rec.Owner = store.Ownership.Get(entity).Owner
		}
		records = append(records, rec)
	}

	sortRecords(records)

	w.u32(uint32(len(records)))
	for i := range records {
		writeRecord(w, &records[i])
	}
	return buf.Bytes()
}

func sortRecords(records []BuildingRecord) {
	// Insertion sort by id; record counts are modest and the input is
	// already mostly ordered by allocation.
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].ID < records[j-1].ID; j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}

func writeRecord(w fieldWriter, rec *BuildingRecord) {
	w.u32(uint32(rec.ID))
	w.i32(rec.X)
	w.i32(rec.Y)
	w.f32(rec.Z)
	w.u8(uint8(rec.Owner))

	w.boolean(rec.HasBuilding)
	if rec.HasBuilding {
		b := &rec.Building
		w.u32(b.TemplateID)
		w.u8(uint8(b.State))
		w.u8(uint8(b.ZoneType))
		w.u8(uint8(b.Density))
		w.u8(b.Level)
		w.u8(b.Health)
		w.u32(b.Capacity)
		w.u32(b.CurrentOccupancy)
		w.u8(b.FootprintW)
		w.u8(b.FootprintH)
		w.u8(b.Rotation)
		w.u8(b.ColorAccent)
		w.i32(b.AbandonTimer)
		w.u64(b.StateChangedTick)
		w.u32(b.EnergyGraceTicks)
		w.u32(b.FluidGraceTicks)
		w.u32(b.TransportGraceTicks)
	}

	w.boolean(rec.HasConstruction)
	if rec.HasConstruction {
		c := &rec.Construction
		w.u32(c.TicksTotal)
		w.u32(c.TicksElapsed)
		w.u8(uint8(c.Phase))
		w.u8(c.PhaseProgress)
		w.boolean(c.IsPaused)
		w.i64(int64(c.ConstructionCost))
	}

	w.boolean(rec.HasDebris)
	if rec.HasDebris {
		d := &rec.Debris
		w.u32(d.OriginalTemplateID)
		w.i32(d.ClearTimer)
		w.u8(d.FootprintW)
		w.u8(d.FootprintH)
	}
}

// UnmarshalEntities decodes an entity payload.
func UnmarshalEntities(data []byte) (*EntitySnapshot, error) {
	r := &fieldReader{data: data}

	version := r.u16()
	if r.err != nil {
		return nil, r.err
	}
	if version < MinVersion || version > CurrentVersion {
		return nil, ErrInvalidVersion
	}

	snap := &EntitySnapshot{Version: version, WorldName: r.str()}

	count := int(r.u32())
	if r.err != nil {
		return nil, r.err
	}

	for i := 0; i < count; i++ {
		var rec BuildingRecord
		rec.ID = ids.EntityID(r.u32())
		rec.X = r.i32()
		rec.Y = r.i32()
		rec.Z = r.f32()
		rec.Owner = ids.PlayerID(r.u8())

		rec.HasBuilding = r.boolean()
		if rec.HasBuilding {
			b := &rec.Building
			b.TemplateID = r.u32()
			b.State = components.BuildingState(r.u8())
			b.ZoneType = components.ZoneType(r.u8())
			b.Density = components.Density(r.u8())
			b.Level = r.u8()
			b.Health = r.u8()
			b.Capacity = r.u32()
			b.CurrentOccupancy = r.u32()
			b.FootprintW = r.u8()
			b.FootprintH = r.u8()
			b.Rotation = r.u8()
			b.ColorAccent = r.u8()
			b.AbandonTimer = r.i32()
			b.StateChangedTick = r.u64()
			b.EnergyGraceTicks = r.u32()
			b.FluidGraceTicks = r.u32()
			b.TransportGraceTicks = r.u32()
		}

		rec.HasConstruction = r.boolean()
		if rec.HasConstruction {
			c := &rec.Construction
			c.TicksTotal = r.u32()
			c.TicksElapsed = r.u32()
			c.Phase = components.ConstructionPhase(r.u8())
			c.PhaseProgress = r.u8()
			c.IsPaused = r.boolean()
			c.ConstructionCost = ids.Credits(r.i64())
		}

		rec.HasDebris = r.boolean()
		if rec.HasDebris {
			d := &rec.Debris
			d.OriginalTemplateID = r.u32()
			d.ClearTimer = r.i32()
			d.FootprintW = r.u8()
			d.FootprintH = r.u8()
		}

		if r.err != nil {
			return nil, r.err
		}

		// A record must carry exactly one of Building/Debris (§3.4), and
		// Construction only alongside a Materializing building.
		if rec.HasBuilding == rec.HasDebris {
			return nil, ErrCorruptData
		}
		if rec.HasConstruction && (!rec.HasBuilding || rec.Building.State != components.Materializing) {
			return nil, ErrCorruptData
		}

		snap.Records = append(snap.Records, rec)
	}

	return snap, nil
}

// RestoreEntities replays a snapshot's records into a fresh store,
// returning the mapping from serialized to freshly allocated ids.
// Records are replayed in serialized (ascending id) order, so restoring
// into an empty store reproduces the original relative ordering.
func RestoreEntities(store *worldstore.Store, snap *EntitySnapshot) (map[ids.EntityID]ids.EntityID, error) {
	remap := make(map[ids.EntityID]ids.EntityID, len(snap.Records))
	for i := range snap.Records {
		rec := &snap.Records[i]
		id := store.NewEntity(
			components.Position{X: rec.X, Y: rec.Y, Z: rec.Z},
			components.Ownership{Owner: rec.Owner},
		)
		e, ok := store.Entity(id)
		if !ok {
			return nil, fmt.Errorf("restoring entity %d: %w", rec.ID, ErrCorruptData)
		}
		if rec.HasBuilding {
			b := rec.Building
			store.Building.Add(e, &b)
		}
		if rec.HasConstruction {
			c := rec.Construction
			store.Construction.Add(e, &c)
		}
		if rec.HasDebris {
			d := rec.Debris
			store.Debris.Add(e, &d)
		}
		remap[rec.ID] = id
	}
	return remap, nil
}
