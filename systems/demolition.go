package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
)

// demolitionMultiplier returns the state-dependent cost multiplier
// (§4.10: Active 1.0, Materializing 0.5, Abandoned 0.1, Derelict 0.0).
func demolitionMultiplier(state components.BuildingState) float64 {
	switch state {
	case components.Active:
		return 1.0
	case components.Materializing:
		return 0.5
	case components.Abandoned:
		return 0.1
	default:
		return 0.0
	}
}

// DemolitionCost prices demolishing the building in its current state.
func (s *BuildingSystem) DemolitionCost(id ids.EntityID) (ids.Credits, error) {
	e, ok := s.store.Entity(id)
	if !ok {
		return 0, ErrEntityNotFound
	}
	if !s.store.Building.HasAll(e) {
		return 0, ErrAlreadyDeconstructed
	}
	b := s.store.Building.Get(e)
	t := s.registry.ByID(b.TemplateID)
	if t == nil {
		return 0, ErrInvalidTemplate
	}
	cost := float64(t.ConstructionCost) * demolitionMultiplier(b.State) * s.cfg.DemolitionBaseCostRatio
	return ids.Credits(cost), nil
}

// Demolish handles player-initiated demolition (§4.10): ownership
// check, state-dependent cost, then the shared deconstruction path.
// Rejections surface as ErrEntityNotFound, ErrNotOwned,
// ErrAlreadyDeconstructed, or ErrInsufficientCredits and never
// propagate further (§7).
func (s *BuildingSystem) Demolish(ctx sim.TickCtx, id ids.EntityID, by ids.PlayerID) error {
	e, ok := s.store.Entity(id)
	if !ok {
		return ErrEntityNotFound
	}
	if !s.store.Building.HasAll(e) {
		return ErrAlreadyDeconstructed
	}
	owner := s.store.Ownership.Get(e)
	if owner.Owner != by {
		return ErrNotOwned
	}

	cost, err := s.DemolitionCost(id)
	if err != nil {
		return err
	}
	credit := ctx.Providers.CreditOrPermissive()
	if !credit.Debit(by, cost) {
		return ErrInsufficientCredits
	}

	s.deconstruct(ctx, e, id, true)
	return nil
}
