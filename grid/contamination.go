package grid

// ContaminationType identifies the dominant pollutant category at a tile
// (§3.2, §4.8). The zero value (ContamEnergy) also serves as the "no
// dominant type" state once Level decays to 0 — it is only meaningful
// while Level > 0.
type ContaminationType uint8

const (
	ContamEnergy ContaminationType = iota
	ContamIndustrial
	ContamTraffic
	ContamTerrain
)

// ContaminationCell is the 2-byte per-tile contamination record.
type ContaminationCell struct {
	Level    uint8
	Dominant ContaminationType
}

// ContaminationField is the double-buffered contamination grid (§3.2,
// §4.8). Reads always go through Previous(); writes always go through
// Current(). Swap() flips the buffers at the start of each tick.
type ContaminationField struct {
	buf     [2]*Dense[ContaminationCell]
	current int // index into buf of the write buffer
}

// NewContaminationField creates a zero-initialized double-buffered field.
func NewContaminationField(side int) *ContaminationField {
	return &ContaminationField{
		buf:     [2]*Dense[ContaminationCell]{NewDense[ContaminationCell](side), NewDense[ContaminationCell](side)},
		current: 0,
	}
}

// Side returns the field's side length.
func (f *ContaminationField) Side() int { return f.buf[0].Side() }

// Current returns the write buffer for this tick.
func (f *ContaminationField) Current() *Dense[ContaminationCell] { return f.buf[f.current] }

// Previous returns the read buffer for this tick.
func (f *ContaminationField) Previous() *Dense[ContaminationCell] { return f.buf[1-f.current] }

// Swap flips current and previous. Calling Swap twice restores the
// field to its prior read/write semantics (§8 round-trip property).
func (f *ContaminationField) Swap() { f.current = 1 - f.current }

// Add saturating-adds amount of contamination of the given type to
// (x, y) in the current buffer. Level clamps to 255. The dominant type
// becomes typ iff typ's accumulated contribution this tick (amount
// included) strictly exceeds that of the existing dominant type; ties
// keep the previous dominant type (§9 open question, resolved here).
func (f *ContaminationField) Add(x, y int, amount uint8, typ ContaminationType, contribution *[4]uint16) {
	cur := f.Current()
	if !cur.InBounds(x, y) {
		return
	}
	cell := cur.At(x, y)

	newLevel := int(cell.Level) + int(amount)
	if newLevel > 255 {
		newLevel = 255
	}
	cell.Level = uint8(newLevel)

	if contribution != nil {
		contribution[typ] += uint16(amount)
		// Recompute dominant: strictly-greatest contribution wins; ties
		// keep whatever is already dominant.
		best := cell.Dominant
		bestVal := contribution[best]
		for t := ContamEnergy; t <= ContamTerrain; t++ {
			if contribution[t] > bestVal {
				best = t
				bestVal = contribution[t]
			}
		}
		cell.Dominant = best
	}

	cur.Set(x, y, cell)
}

// Sub saturating-subtracts amount from the level at (x, y) in the
// current buffer. Level clamps to 0; when it reaches 0 the dominant
// type resets to its zero value (§3.4, §4.8).
func (f *ContaminationField) Sub(x, y int, amount uint8) {
	cur := f.Current()
	if !cur.InBounds(x, y) {
		return
	}
	cell := cur.At(x, y)
	newLevel := int(cell.Level) - int(amount)
	if newLevel < 0 {
		newLevel = 0
	}
	cell.Level = uint8(newLevel)
	if cell.Level == 0 {
		cell.Dominant = 0
	}
	cur.Set(x, y, cell)
}
