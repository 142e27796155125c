package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
)

// advanceConstruction progresses every Materializing building and
// completes the ones that reach their total tick count (§4.10).
// Structural changes (removing the Construction bundle) happen after
// iteration; ark disallows them mid-query.
func (s *BuildingSystem) advanceConstruction(ctx sim.TickCtx) {
	var completed []ecs.Entity

	query := s.store.ConstructionFilter.Query()
	for query.Next() {
		b, c := query.Get()
		if b.State != components.Materializing || c.IsPaused {
			continue
		}

		c.TicksElapsed++
		percent := c.PercentComplete()
		c.Phase = components.PhaseForPercent(percent)
		c.PhaseProgress = uint8(percent / 100 * 255)

		if c.IsComplete() {
			completed = append(completed, query.Entity())
		}
	}

	for _, e := range completed {
		b := s.store.Building.Get(e)
		b.State = components.Active
		b.StateChangedTick = uint64(ctx.Tick)
		s.store.Construction.Remove(e)

		pos := s.store.Position.Get(e)
		owner := s.store.Ownership.Get(e)
		if id, ok := s.store.ID(e); ok {
			ctx.Bus.BuildingConstructed.Push(events.BuildingConstructed{
				Tick:   ctx.Tick,
				Entity: id,
				Owner:  owner.Owner,
				X:      pos.X,
				Y:      pos.Y,
			})
		}
	}
}

// PauseConstruction toggles the pause flag on a Materializing building.
func (s *BuildingSystem) PauseConstruction(id ids.EntityID, paused bool, by ids.PlayerID) error {
	e, ok := s.store.Entity(id)
	if !ok || !s.store.Building.HasAll(e) {
		return ErrEntityNotFound
	}
	if s.store.Ownership.Get(e).Owner != by {
		return ErrNotOwned
	}
	if !s.store.Construction.HasAll(e) {
		return ErrAlreadyDeconstructed
	}
	s.store.Construction.Get(e).IsPaused = paused
	return nil
}
