package events

// Bus is the registry of every event queue the core produces, owned by
// the orchestrator (§4.2, §6). Subsystems push into the field that
// matches their event kind; the orchestrator drains every field once
// per tick, after the subsystem loop, and dispatches to consumers.
type Bus struct {
	TickStart             Queue[TickStart]
	TickComplete          Queue[TickComplete]
	PhaseChanged          Queue[PhaseChanged]
	CycleChanged          Queue[CycleChanged]
	BuildingConstructed   Queue[BuildingConstructed]
	BuildingAbandoned     Queue[BuildingAbandoned]
	BuildingRestored      Queue[BuildingRestored]
	BuildingDerelict      Queue[BuildingDerelict]
	BuildingDeconstructed Queue[BuildingDeconstructed]
	BuildingUpgraded      Queue[BuildingUpgraded]
	BuildingDowngraded    Queue[BuildingDowngraded]
	DebrisCleared         Queue[DebrisCleared]
	TerrainModified       Queue[TerrainModified]
	PathwayStateChanged   Queue[PathwayStateChanged]
	TransportAccessLost   Queue[TransportAccessLost]
	EnergyStateChanged    Queue[EnergyStateChanged]
	FluidStateChanged     Queue[FluidStateChanged]
	NexusAged             Queue[NexusAged]
	Milestone             Queue[Milestone]
	MapGenerationRetried  Queue[MapGenerationRetried]
}

// NewBus allocates an empty event bus.
func NewBus() *Bus { return &Bus{} }

// DrainedTick is a snapshot of every event queue drained after one tick,
// handed to whatever dispatches to consumers (the orchestrator's own
// post-tick phase, or an external replication layer per spec §1).
type DrainedTick struct {
	TickStart             []TickStart
	TickComplete          []TickComplete
	PhaseChanged          []PhaseChanged
	CycleChanged          []CycleChanged
	BuildingConstructed   []BuildingConstructed
	BuildingAbandoned     []BuildingAbandoned
	BuildingRestored      []BuildingRestored
	BuildingDerelict      []BuildingDerelict
	BuildingDeconstructed []BuildingDeconstructed
	BuildingUpgraded      []BuildingUpgraded
	BuildingDowngraded    []BuildingDowngraded
	DebrisCleared         []DebrisCleared
	TerrainModified       []TerrainModified
	PathwayStateChanged   []PathwayStateChanged
	TransportAccessLost   []TransportAccessLost
	EnergyStateChanged    []EnergyStateChanged
	FluidStateChanged     []FluidStateChanged
	NexusAged             []NexusAged
	Milestone             []Milestone
	MapGenerationRetried  []MapGenerationRetried
}

// Drain empties every queue on the bus and returns the accumulated
// events. Called once per tick by the orchestrator, after the
// subsystem loop (§4.2).
func (b *Bus) Drain() DrainedTick {
	return DrainedTick{
		TickStart:             b.TickStart.Drain(),
		TickComplete:          b.TickComplete.Drain(),
		PhaseChanged:          b.PhaseChanged.Drain(),
		CycleChanged:          b.CycleChanged.Drain(),
		BuildingConstructed:   b.BuildingConstructed.Drain(),
		BuildingAbandoned:     b.BuildingAbandoned.Drain(),
		BuildingRestored:      b.BuildingRestored.Drain(),
		BuildingDerelict:      b.BuildingDerelict.Drain(),
		BuildingDeconstructed: b.BuildingDeconstructed.Drain(),
		BuildingUpgraded:      b.BuildingUpgraded.Drain(),
		BuildingDowngraded:    b.BuildingDowngraded.Drain(),
		DebrisCleared:         b.DebrisCleared.Drain(),
		TerrainModified:       b.TerrainModified.Drain(),
		PathwayStateChanged:   b.PathwayStateChanged.Drain(),
		TransportAccessLost:   b.TransportAccessLost.Drain(),
		EnergyStateChanged:    b.EnergyStateChanged.Drain(),
		FluidStateChanged:     b.FluidStateChanged.Drain(),
		NexusAged:             b.NexusAged.Drain(),
		Milestone:             b.Milestone.Drain(),
		MapGenerationRetried:  b.MapGenerationRetried.Drain(),
	}
}
