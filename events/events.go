// Package events implements the per-tick, typed, drainable event bus of
// §4.2: plain data, fire-and-forget, drained once per tick after every
// subsystem has run. Grounded on the teacher's telemetry.Collector
// pattern of accumulating typed records and draining them on a cadence
// (here: once per tick rather than on a time window), generalized into
// one generic queue per event struct type.
package events

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/ids"
)

// Queue is a drainable buffer of one event type, held by its producing
// subsystem. Events vanish once drained if no consumer reads them first
// (§4.2: fire-and-forget).
type Queue[T any] struct {
	pending []T
}

// Push appends an event to the queue.
func (q *Queue[T]) Push(e T) {
	q.pending = append(q.pending, e)
}

// Drain returns all queued events and clears the queue.
func (q *Queue[T]) Drain() []T {
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// Len reports the number of events currently queued.
func (q *Queue[T]) Len() int { return len(q.pending) }

// TickStart fires before the subsystem loop for a tick (§4.1).
type TickStart struct {
	Tick  ids.Tick
	Delta float64
}

// TickComplete fires after the subsystem loop for a tick (§4.1).
type TickComplete struct {
	Tick ids.Tick
}

// PhaseChanged fires when the derived phase counter crosses a boundary.
type PhaseChanged struct {
	Tick     ids.Tick
	Phase    int
	Previous int
}

// CycleChanged fires when the derived cycle counter crosses a boundary.
type CycleChanged struct {
	Tick     ids.Tick
	Cycle    uint64
	Previous uint64
}

// BuildingConstructed fires when a Materializing building completes
// construction and becomes Active (§4.10).
type BuildingConstructed struct {
	Tick   ids.Tick
	Entity ids.EntityID
	Owner  ids.PlayerID
	X, Y   int32
}

// BuildingAbandoned fires on Active -> Abandoned (§4.10).
type BuildingAbandoned struct {
	Tick   ids.Tick
	Entity ids.EntityID
	Owner  ids.PlayerID
	X, Y   int32
}

// BuildingRestored fires on Abandoned -> Active (§4.10).
type BuildingRestored struct {
	Tick   ids.Tick
	Entity ids.EntityID
	Owner  ids.PlayerID
	X, Y   int32
}

// BuildingDerelict fires on Abandoned -> Derelict (§4.10).
type BuildingDerelict struct {
	Tick   ids.Tick
	Entity ids.EntityID
	Owner  ids.PlayerID
	X, Y   int32
}

// BuildingDeconstructed fires on ... -> Deconstructed, whether via the
// state-transition system's derelict timeout or a player demolition
// (§4.10: both paths emit this, duplicate footprint clearing is
// tolerable since it is idempotent).
type BuildingDeconstructed struct {
	Tick               ids.Tick
	Entity             ids.EntityID
	Owner              ids.PlayerID
	X, Y               int32
	WasPlayerInitiated bool
}

// BuildingUpgraded fires when a building's level increases (§4.10).
type BuildingUpgraded struct {
	Tick          ids.Tick
	Entity        ids.EntityID
	Owner         ids.PlayerID
	PreviousLevel uint8
	NewLevel      uint8
}

// BuildingDowngraded fires when a building's level decreases (§4.10).
type BuildingDowngraded struct {
	Tick          ids.Tick
	Entity        ids.EntityID
	Owner         ids.PlayerID
	PreviousLevel uint8
	NewLevel      uint8
}

// DebrisCleared fires when a Debris entity's clear timer runs out and it
// is destroyed (§4.10).
type DebrisCleared struct {
	Tick   ids.Tick
	Entity ids.EntityID
	X, Y   int32
}

// TerrainModified fires when a grade/terraform operation completes
// (§4.10).
type TerrainModified struct {
	Tick ids.Tick
	X, Y int32
}

// PathwayStateChanged fires when a road's health crosses one of the
// thresholds in components.HealthThresholds (§4.4).
type PathwayStateChanged struct {
	Tick   ids.Tick
	Entity ids.EntityID
	X, Y   int32
	Health uint8
}

// TransportAccessLost fires once the transport grace period has expired
// and a query at-or-above max_d now fails where it previously would have
// passed (§4.4).
type TransportAccessLost struct {
	Tick ids.Tick
	X, Y int32
}

// EnergyStateChanged and FluidStateChanged fire on pool state-machine
// transitions (§4.7).
type EnergyStateChanged struct {
	Tick     ids.Tick
	Owner    ids.PlayerID
	Previous components.PoolState
	Current  components.PoolState
}

// FluidStateChanged mirrors EnergyStateChanged for the fluid pool.
type FluidStateChanged struct {
	Tick     ids.Tick
	Owner    ids.PlayerID
	Previous components.PoolState
	Current  components.PoolState
}

// NexusAged fires when an energy nexus's effective output decays across
// a reporting threshold (§4.7).
type NexusAged struct {
	Tick          ids.Tick
	Entity        ids.EntityID
	CurrentOutput float32
}

// Milestone fires when population crosses one of the five named
// thresholds, in either direction (§4.11).
type Milestone struct {
	Tick       ids.Tick
	Owner      ids.PlayerID
	Name       string
	Population uint64
	Upward     bool
}

// MapGenerationRetried fires when the generator rejects an attempt and
// retries with seed+1 (§4.3, §7).
type MapGenerationRetried struct {
	Attempt      int
	Seed         uint64
	RejectReason string
}
