package grid

// WaterBodyGrid stores the connected-water-component id at each tile;
// 0 means non-water (§3.2, invariant §3.4).
type WaterBodyGrid struct {
	*Dense[uint16]
}

// NewWaterBodyGrid creates a zero-initialized water-body id grid.
func NewWaterBodyGrid(side int) *WaterBodyGrid {
	return &WaterBodyGrid{Dense: NewDense[uint16](side)}
}
