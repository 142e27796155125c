package components

// FluidExtractor is a per-entity fluid producer, requiring proximity to
// a water-body tile at placement time (§4.7).
type FluidExtractor struct {
	BaseOutput    float32
	CurrentOutput float32
	IsActive      bool
	WaterDistance uint8 // cached distance-to-water at placement, for render info and output scaling
}

// FluidReservoir is a per-entity buffering inventory, drained when
// generation < consumption and filled with surplus (§4.7).
type FluidReservoir struct {
	Stored   float32
	Capacity float32
}

// Fill adds amount to the reservoir, clamped to capacity. Returns the
// amount actually stored.
func (r *FluidReservoir) Fill(amount float32) float32 {
	room := r.Capacity - r.Stored
	if amount > room {
		amount = room
	}
	if amount < 0 {
		amount = 0
	}
	r.Stored += amount
	return amount
}

// Drain removes up to amount from the reservoir. Returns the amount
// actually drained.
func (r *FluidReservoir) Drain(amount float32) float32 {
	if amount > r.Stored {
		amount = r.Stored
	}
	if amount < 0 {
		amount = 0
	}
	r.Stored -= amount
	return amount
}

// Conduit marks an entity as a transport link for energy/fluid
// connectivity between producers and consumers. A building without a
// Conduit is connected only if it lies within the supply radius of a
// producer or conduit tile; pathway tiles play no part in connectivity
// (§4.7: "connected via conduits").
type Conduit struct {
	IsPowered bool
}
