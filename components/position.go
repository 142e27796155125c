// Package components defines the ECS component bundles of §3.3, stored
// in an github.com/mlange-42/ark world and attached to entities created
// by the owning subsystem's factory (§3.5).
package components

import "github.com/pthm-cable/citycore/ids"

// Position is an entity's tile coordinates. Z is carried only for the
// renderer collaborator (§3.3) and ignored by every simulation system.
type Position struct {
	X, Y int32
	Z    float32
}

// Ownership records which overseer controls an entity. NeutralPlayer (0)
// means world/NPC-owned.
type Ownership struct {
	Owner ids.PlayerID
}
