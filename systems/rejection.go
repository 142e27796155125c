// Package systems implements the simulation subsystems of §4.4-§4.11:
// transport, rail, port, energy, fluid, contamination, land value,
// demand caps, the building subsystem, and population/milestones. Each
// system is one concern per file, exports a struct satisfying
// sim.Subsystem, and is constructed with borrowed grid/world handles
// and driven once a tick by the orchestrator.
package systems

import "errors"

// Validation and state-machine rejections (§7). These surface as
// structured error values from the mutating API that attempted them and
// never propagate further — no subsystem panics for a recoverable
// condition, and no rejection crosses a subsystem boundary except as
// the return value of the call that caused it.
var (
	ErrOutOfBounds          = errors.New("coordinates out of bounds")
	ErrEntityNotFound       = errors.New("entity not found")
	ErrNotOwned             = errors.New("entity not owned by caller")
	ErrAlreadyDeconstructed = errors.New("building already deconstructed")
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrOccupied             = errors.New("footprint occupied")
	ErrInvalidTemplate      = errors.New("unknown template id")
	ErrNoAdjacentRail       = errors.New("no adjacent rail segment")
	ErrTerminalExists       = errors.New("terminal already at position")
	ErrNoWaterNearby        = errors.New("no water source within range")
	ErrNotTerraformable     = errors.New("terrain type not terraformable")
	ErrAlreadyTarget        = errors.New("tile already at target terrain")
	ErrOperationInProgress  = errors.New("operation already active on tile")
	ErrNotAuthorized        = errors.New("authority check failed")
	ErrNoPathway            = errors.New("no pathway at position")
)
