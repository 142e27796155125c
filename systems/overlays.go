package systems

import "github.com/pthm-cable/citycore/grid"

// ContaminationOverlay visualizes the contamination field through the
// query.GridOverlay contract (§6). Reads the written buffer so the
// renderer sees this tick's output between ticks.
type ContaminationOverlay struct {
	world  *grid.World
	active bool
}

// NewContaminationOverlay creates the overlay.
func NewContaminationOverlay(world *grid.World) *ContaminationOverlay {
	return &ContaminationOverlay{world: world, active: true}
}

// Name implements query.GridOverlay.
func (o *ContaminationOverlay) Name() string { return "contamination" }

// IsActive implements query.GridOverlay.
func (o *ContaminationOverlay) IsActive() bool { return o.active }

// SetActive toggles the overlay.
func (o *ContaminationOverlay) SetActive(active bool) { o.active = active }

// ColorAt implements query.GridOverlay: transparent when clean,
// deepening purple-brown with level.
func (o *ContaminationOverlay) ColorAt(x, y int32) (r, g, b, a uint8) {
	level := o.world.Contamination.Current().At(int(x), int(y)).Level
	if level == 0 {
		return 0, 0, 0, 0
	}
	return 120, 40, 120, uint8(64 + int(level)*3/4)
}

// ProximityOverlay visualizes the road-distance cache (§6).
type ProximityOverlay struct {
	world  *grid.World
	active bool
}

// NewProximityOverlay creates the overlay.
func NewProximityOverlay(world *grid.World) *ProximityOverlay {
	return &ProximityOverlay{world: world, active: true}
}

// Name implements query.GridOverlay.
func (o *ProximityOverlay) Name() string { return "road_proximity" }

// IsActive implements query.GridOverlay.
func (o *ProximityOverlay) IsActive() bool { return o.active }

// SetActive toggles the overlay.
func (o *ProximityOverlay) SetActive(active bool) { o.active = active }

// ColorAt implements query.GridOverlay: bright near pathways, fading to
// transparent at the cache's max range.
func (o *ProximityOverlay) ColorAt(x, y int32) (r, g, b, a uint8) {
	d := o.world.Proximity.At(int(x), int(y))
	if d == grid.ProximityUnknown {
		return 0, 0, 0, 0
	}
	fade := 255 - int(d)*12
	if fade < 0 {
		fade = 0
	}
	return 60, 120, 220, uint8(fade)
}
