package grid

// LandValueNeutral is the neutral desirability byte (§3.2, §4.9).
const LandValueNeutral uint8 = 128

// LandValueGrid is the per-tile desirability byte grid, clamped 0..255
// with 128 as neutral.
type LandValueGrid struct {
	*Dense[uint8]
}

// NewLandValueGrid creates a grid initialized to the neutral value.
func NewLandValueGrid(side int) *LandValueGrid {
	g := &LandValueGrid{Dense: NewDense[uint8](side)}
	g.Fill(LandValueNeutral)
	return g
}
