package components

// DefaultDebrisClearTicks is the default auto-clear countdown (§3.3).
const DefaultDebrisClearTicks int32 = 60

// Debris is the transient component present iff a building is
// Deconstructed (§3.3, §3.4). Its footprint was already cleared from
// the occupancy grid at deconstruction time (§9 open question).
type Debris struct {
	OriginalTemplateID uint32
	ClearTimer         int32
	FootprintW         uint8
	FootprintH         uint8
}
