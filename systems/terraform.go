package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// AuthorityFunc decides whether an overseer may modify terrain at a
// tile (§4.10 validation: "authority callback"). A nil callback is
// permissive.
type AuthorityFunc func(owner ids.PlayerID, x, y int32) bool

// TerraformSystem owns the multi-tick TerrainModification operation
// entities (§4.10): grades change elevation one level per tick,
// terraforms convert BlightMires/EmberCrust to Substrate over a
// source-dependent duration.
type TerraformSystem struct {
	world *grid.World
	store *worldstore.Store
	cfg   config.BuildingConfig

	authority AuthorityFunc

	// invalidateContamination is called when a completed terraform
	// removed a blight-mire tile, so the contamination subsystem can
	// rebuild its terrain-source list (§4.8).
	invalidateContamination func()
}

// NewTerraformSystem creates the terrain-modification subsystem.
func NewTerraformSystem(world *grid.World, store *worldstore.Store, cfg config.BuildingConfig, authority AuthorityFunc, invalidateContamination func()) *TerraformSystem {
	return &TerraformSystem{
		world:                   world,
		store:                   store,
		cfg:                     cfg,
		authority:               authority,
		invalidateContamination: invalidateContamination,
	}
}

// Priority implements sim.Subsystem.
func (s *TerraformSystem) Priority() int { return PriorityTerraform }

// hasOperationAt reports whether a live operation already targets the
// tile (§4.10: "no existing op on same tile").
func (s *TerraformSystem) hasOperationAt(x, y int32) bool {
	q := s.store.TerraformFilter.Query()
	found := false
	for q.Next() {
		op := q.Get()
		if !op.Cancelled && op.X == x && op.Y == y {
			found = true
		}
	}
	return found
}

func (s *TerraformSystem) authorize(owner ids.PlayerID, x, y int32) bool {
	if s.authority == nil {
		return true
	}
	return s.authority(owner, x, y)
}

// StartGrade begins a multi-tick elevation change toward target, one
// level per tick (§4.10).
func (s *TerraformSystem) StartGrade(ctx sim.TickCtx, x, y int32, target uint8, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	cell := s.world.Terrain.At(int(x), int(y))
	if cell.Elevation == target {
		return ids.InvalidEntityID, ErrAlreadyTarget
	}
	if s.hasOperationAt(x, y) {
		return ids.InvalidEntityID, ErrOperationInProgress
	}
	if !s.authorize(owner, x, y) {
		return ids.InvalidEntityID, ErrNotAuthorized
	}

	levels := int(cell.Elevation) - int(target)
	if levels < 0 {
		levels = -levels
	}
	cost := ids.Credits(int64(levels) * s.cfg.TerraformCostPerTick)
	if !ctx.Providers.CreditOrPermissive().Debit(owner, cost) {
		return ids.InvalidEntityID, ErrInsufficientCredits
	}

	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.TerrainModification.Add(e, &components.TerrainModification{
		Kind:            components.OpGrade,
		X:               x,
		Y:               y,
		Owner:           owner,
		TicksTotal:      uint32(levels),
		TargetElevation: target,
	})
	return id, nil
}

// StartTerraform begins converting a BlightMires/EmberCrust tile to
// Substrate (§4.10: blight 100 ticks, ember 50).
func (s *TerraformSystem) StartTerraform(ctx sim.TickCtx, x, y int32, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	cell := s.world.Terrain.At(int(x), int(y))
	if !cell.Type.IsTerraformable() {
		return ids.InvalidEntityID, ErrNotTerraformable
	}
	if s.hasOperationAt(x, y) {
		return ids.InvalidEntityID, ErrOperationInProgress
	}
	if !s.authorize(owner, x, y) {
		return ids.InvalidEntityID, ErrNotAuthorized
	}

	duration := cell.Type.TerraformDuration()
	cost := ids.Credits(int64(duration) * s.cfg.TerraformCostPerTick)
	if !ctx.Providers.CreditOrPermissive().Debit(owner, cost) {
		return ids.InvalidEntityID, ErrInsufficientCredits
	}

	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.TerrainModification.Add(e, &components.TerrainModification{
		Kind:       components.OpTerraform,
		X:          x,
		Y:          y,
		Owner:      owner,
		TicksTotal: uint32(duration),
	})
	return id, nil
}

// Cancel flags an operation for removal and refunds part of the
// remaining-work cost (§4.10: default 50%).
func (s *TerraformSystem) Cancel(ctx sim.TickCtx, id ids.EntityID, by ids.PlayerID) error {
	e, ok := s.store.Entity(id)
	if !ok || !s.store.TerrainModification.HasAll(e) {
		return ErrEntityNotFound
	}
	op := s.store.TerrainModification.Get(e)
	if op.Owner != by {
		return ErrNotOwned
	}
	if op.Cancelled {
		return ErrEntityNotFound
	}
	op.Cancelled = true

	remaining := int64(op.TicksTotal - op.TicksElapsed)
	refund := ids.Credits(float64(remaining*s.cfg.TerraformCostPerTick) * s.cfg.TerraformRefundRatio)
	ctx.Providers.CreditOrPermissive().Credit(by, refund)
	return nil
}

// Tick advances every live operation one step and applies completions
// (§4.10). Cancelled flags are polled here (§5: no per-operation
// cancellation beyond the per-tick poll).
func (s *TerraformSystem) Tick(ctx sim.TickCtx) {
	type done struct {
		id ids.EntityID
		op components.TerrainModification
	}
	var finished []done
	var cancelled []ids.EntityID

	q := s.store.TerraformFilter.Query()
	for q.Next() {
		op := q.Get()
		id, ok := s.store.ID(q.Entity())
		if !ok {
			continue
		}
		if op.Cancelled {
			cancelled = append(cancelled, id)
			continue
		}

		op.TicksElapsed++

		if op.Kind == components.OpGrade {
			// One elevation level per tick.
			cell := s.world.Terrain.At(int(op.X), int(op.Y))
			if cell.Elevation < op.TargetElevation {
				cell.Elevation++
			} else if cell.Elevation > op.TargetElevation {
				cell.Elevation--
			}
			s.world.Terrain.Set(int(op.X), int(op.Y), cell)
			s.world.ChunkDirty.MarkTileDirty(int(op.X), int(op.Y))
		}

		if op.IsComplete() {
			finished = append(finished, done{id: id, op: *op})
		}
	}

	for _, id := range cancelled {
		s.store.Destroy(id)
	}

	for _, d := range finished {
		s.complete(ctx, d.op)
		s.store.Destroy(d.id)
	}
}

// complete applies a finished operation's terminal effect.
func (s *TerraformSystem) complete(ctx sim.TickCtx, op components.TerrainModification) {
	cell := s.world.Terrain.At(int(op.X), int(op.Y))

	if op.Kind == components.OpTerraform {
		wasBlight := cell.Type == grid.BlightMires
		cell.Type = grid.Substrate
		cell.Flags |= grid.FlagCleared | grid.FlagBuildable
		s.world.Terrain.Set(int(op.X), int(op.Y), cell)

		if wasBlight && s.invalidateContamination != nil {
			s.invalidateContamination()
		}
	}

	s.world.ChunkDirty.MarkTileDirty(int(op.X), int(op.Y))
	ctx.Bus.TerrainModified.Push(events.TerrainModified{Tick: ctx.Tick, X: op.X, Y: op.Y})
}
