// Package serialize implements the versioned binary snapshot of §4.12:
// a fixed little-endian grid header followed by dense terrain,
// water-body and flow-direction sections, plus the entity bundle
// payload. The teacher persists snapshots as JSON; the explicit
// byte-offset header here requires encoding/binary instead, but the
// save/load two-function shape and error-wrapping idiom are kept.
package serialize

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/pthm-cable/citycore/grid"
)

// Format version compatibility is a single [MinVersion, CurrentVersion]
// range (§4.12).
const (
	MinVersion     uint16 = 1
	CurrentVersion uint16 = 1
)

// Serialization failures (§4.12, §7): fatal to the operation, never to
// the tick.
var (
	ErrInvalidVersion    = errors.New("snapshot version outside supported range")
	ErrInvalidDimensions = errors.New("snapshot dimensions invalid")
	ErrInsufficientData  = errors.New("snapshot truncated")
	ErrCorruptData       = errors.New("snapshot corrupt")
)

// headerSize is the fixed grid header: version u16, width u16, height
// u16, sea_level u8, reserved u8, map_seed u32.
const headerSize = 12

// GridSnapshot is the deserialized grid payload.
type GridSnapshot struct {
	Version  uint16
	Width    uint16
	Height   uint16
	SeaLevel uint8
	MapSeed  uint32

	Terrain   *grid.TerrainGrid
	WaterBody *grid.WaterBodyGrid
	FlowDir   *grid.FlowDirectionGrid
}

// MarshalGrids encodes the dense grids into the §4.12 layout.
func MarshalGrids(terrain *grid.TerrainGrid, water *grid.WaterBodyGrid, flow *grid.FlowDirectionGrid, seaLevel uint8, mapSeed uint32) ([]byte, error) {
	side := terrain.Side()
	if !grid.IsValidSide(side) || water.Side() != side || flow.Side() != side {
		return nil, ErrInvalidDimensions
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+side*side*7))

	var header [headerSize]byte
	binary.LittleEndian.PutUint16(header[0:2], CurrentVersion)
	binary.LittleEndian.PutUint16(header[2:4], uint16(side))
	binary.LittleEndian.PutUint16(header[4:6], uint16(side))
	header[6] = seaLevel
	header[7] = 0
	binary.LittleEndian.PutUint32(header[8:12], mapSeed)
	buf.Write(header[:])

	for _, cell := range terrain.Raw() {
		buf.WriteByte(byte(cell.Type))
		buf.WriteByte(cell.Elevation)
		buf.WriteByte(cell.Moisture)
		buf.WriteByte(byte(cell.Flags))
	}
	var u16 [2]byte
	for _, id := range water.Raw() {
		binary.LittleEndian.PutUint16(u16[:], id)
		buf.Write(u16[:])
	}
	for _, dir := range flow.Raw() {
		buf.WriteByte(byte(dir))
	}

	return buf.Bytes(), nil
}

// UnmarshalGrids decodes a §4.12 grid payload. Unknown flow-direction
// bytes clamp to "none"; any other structural mismatch is a tagged
// failure.
func UnmarshalGrids(data []byte) (*GridSnapshot, error) {
	if len(data) < headerSize {
		return nil, ErrInsufficientData
	}

	version := binary.LittleEndian.Uint16(data[0:2])
	if version < MinVersion || version > CurrentVersion {
		return nil, ErrInvalidVersion
	}

	width := binary.LittleEndian.Uint16(data[2:4])
	height := binary.LittleEndian.Uint16(data[4:6])
	if width != height || !grid.IsValidSide(int(width)) {
		return nil, ErrInvalidDimensions
	}
	if data[7] != 0 {
		return nil, ErrCorruptData
	}

	side := int(width)
	cells := side * side
	need := headerSize + cells*4 + cells*2 + cells
	if len(data) < need {
		return nil, ErrInsufficientData
	}

	snap := &GridSnapshot{
		Version:   version,
		Width:     width,
		Height:    height,
		SeaLevel:  data[6],
		MapSeed:   binary.LittleEndian.Uint32(data[8:12]),
		Terrain:   grid.NewTerrainGrid(side),
		WaterBody: grid.NewWaterBodyGrid(side),
		FlowDir:   grid.NewFlowDirectionGrid(side),
	}

	off := headerSize
	terrain := snap.Terrain.Raw()
	for i := 0; i < cells; i++ {
		terrain[i] = grid.TerrainCell{
			Type:      grid.TerrainType(data[off]),
			Elevation: data[off+1],
			Moisture:  data[off+2],
			Flags:     grid.TerrainFlag(data[off+3]),
		}
		off += 4
	}

	water := snap.WaterBody.Raw()
	for i := 0; i < cells; i++ {
		water[i] = binary.LittleEndian.Uint16(data[off : off+2])
		off += 2
	}

	flow := snap.FlowDir.Raw()
	for i := 0; i < cells; i++ {
		flow[i] = grid.FlowDirection(data[off]).Clamp()
		off++
	}

	// Cross-check the water invariant (§3.4): a non-zero body id on a
	// non-water tile means the payload is internally inconsistent.
	for i := 0; i < cells; i++ {
		isWater := terrain[i].Type.IsWater()
		if isWater != (water[i] != 0) {
			return nil, ErrCorruptData
		}
	}

	return snap, nil
}

// SaveGrids writes a grid snapshot to path.
func SaveGrids(path string, terrain *grid.TerrainGrid, water *grid.WaterBodyGrid, flow *grid.FlowDirectionGrid, seaLevel uint8, mapSeed uint32) error {
	data, err := MarshalGrids(terrain, water, flow, seaLevel, mapSeed)
	if err != nil {
		return fmt.Errorf("encoding grid snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing grid snapshot: %w", err)
	}
	return nil
}

// LoadGrids reads a grid snapshot from path.
func LoadGrids(path string) (*GridSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grid snapshot: %w", err)
	}
	snap, err := UnmarshalGrids(data)
	if err != nil {
		return nil, fmt.Errorf("decoding grid snapshot: %w", err)
	}
	return snap, nil
}
