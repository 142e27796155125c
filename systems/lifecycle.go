package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
)

// evaluateLifecycle runs the per-building state machine (§4.10):
// Active buildings abandon when a service outage outlasts its grace,
// Abandoned buildings recover or rot to Derelict, Derelict buildings
// deconstruct after the derelict timer.
func (s *BuildingSystem) evaluateLifecycle(ctx sim.TickCtx) {
	type transition struct {
		entity ecs.Entity
		id     ids.EntityID
		to     components.BuildingState
	}
	var transitions []transition

	energy := ctx.Providers.EnergyOrPermissive()
	fluid := ctx.Providers.FluidOrPermissive()
	transport := ctx.Providers.TransportOrPermissive()

	query := s.store.BuildingFilter.Query()
	for query.Next() {
		b, pos, owner := query.Get()
		entity := query.Entity()
		id, ok := s.store.ID(entity)
		if !ok {
			continue
		}

		switch b.State {
		case components.Active:
			energyOK := energy.IsAvailableAt(owner.Owner, pos.X, pos.Y)
			fluidOK := fluid.IsAvailableAt(owner.Owner, pos.X, pos.Y)
			transportOK := transport.IsRoadAccessibleAt(pos.X, pos.Y, s.cfg.MaxRoadDistance)

			if energyOK && fluidOK && transportOK {
				delete(s.grace, id)
				continue
			}

			g := s.graceFor(id)
			abandoned := false
			if !energyOK {
				g.energy++
				abandoned = abandoned || g.energy >= s.graceLimit(b.EnergyGraceTicks, s.cfg.EnergyGraceTicks)
			}
			if !fluidOK {
				g.fluid++
				abandoned = abandoned || g.fluid >= s.graceLimit(b.FluidGraceTicks, s.cfg.FluidGraceTicks)
			}
			if !transportOK {
				g.transport++
				abandoned = abandoned || g.transport >= s.graceLimit(b.TransportGraceTicks, s.cfg.TransportGraceTicks)
			}
			if abandoned {
				transitions = append(transitions, transition{entity, id, components.Abandoned})
			}

		case components.Abandoned:
			energyOK := energy.IsAvailableAt(owner.Owner, pos.X, pos.Y)
			fluidOK := fluid.IsAvailableAt(owner.Owner, pos.X, pos.Y)
			transportOK := transport.IsRoadAccessibleAt(pos.X, pos.Y, s.cfg.MaxRoadDistance)

			if energyOK && fluidOK && transportOK {
				transitions = append(transitions, transition{entity, id, components.Active})
				continue
			}
			b.AbandonTimer--
			if b.AbandonTimer <= 0 {
				transitions = append(transitions, transition{entity, id, components.Derelict})
			}

		case components.Derelict:
			if uint64(ctx.Tick)-b.StateChangedTick >= s.cfg.DerelictTicks {
				transitions = append(transitions, transition{entity, id, components.Deconstructed})
			}
		}
	}

	for _, tr := range transitions {
		b := s.store.Building.Get(tr.entity)
		pos := s.store.Position.Get(tr.entity)
		owner := s.store.Ownership.Get(tr.entity)

		switch tr.to {
		case components.Abandoned:
			b.State = components.Abandoned
			b.StateChangedTick = uint64(ctx.Tick)
			b.AbandonTimer = s.cfg.AbandonTimerTicks
			ctx.Bus.BuildingAbandoned.Push(events.BuildingAbandoned{
				Tick: ctx.Tick, Entity: tr.id, Owner: owner.Owner, X: pos.X, Y: pos.Y,
			})

		case components.Active:
			b.State = components.Active
			b.StateChangedTick = uint64(ctx.Tick)
			b.AbandonTimer = 0
			delete(s.grace, tr.id)
			ctx.Bus.BuildingRestored.Push(events.BuildingRestored{
				Tick: ctx.Tick, Entity: tr.id, Owner: owner.Owner, X: pos.X, Y: pos.Y,
			})

		case components.Derelict:
			b.State = components.Derelict
			b.StateChangedTick = uint64(ctx.Tick)
			delete(s.grace, tr.id)
			ctx.Bus.BuildingDerelict.Push(events.BuildingDerelict{
				Tick: ctx.Tick, Entity: tr.id, Owner: owner.Owner, X: pos.X, Y: pos.Y,
			})

		case components.Deconstructed:
			s.deconstruct(ctx, tr.entity, tr.id, false)
		}
	}
}

// deconstruct clears the footprint, strips the Building bundle, and
// attaches Debris with the original footprint (§4.10). Both the
// derelict timeout and the demolition handler funnel through here;
// clear_footprint is idempotent so the duplicate clearing the source
// tolerated stays harmless (§9).
func (s *BuildingSystem) deconstruct(ctx sim.TickCtx, entity ecs.Entity, id ids.EntityID, playerInitiated bool) {
	b := s.store.Building.Get(entity)
	pos := s.store.Position.Get(entity)
	owner := s.store.Ownership.Get(entity)

	w, h := int(b.FootprintW), int(b.FootprintH)
	s.world.Occupancy.ClearFootprint(int(pos.X), int(pos.Y), w, h)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.world.ChunkDirty.MarkTileDirty(int(pos.X)+dx, int(pos.Y)+dy)
		}
	}

	debris := components.Debris{
		OriginalTemplateID: b.TemplateID,
		ClearTimer:         s.cfg.DebrisClearTicks,
		FootprintW:         b.FootprintW,
		FootprintH:         b.FootprintH,
	}

	x, y := pos.X, pos.Y
	own := owner.Owner

	if s.store.Construction.HasAll(entity) {
		s.store.Construction.Remove(entity)
	}
	s.store.Building.Remove(entity)
	s.store.Debris.Add(entity, &debris)
	delete(s.grace, id)

	ctx.Bus.BuildingDeconstructed.Push(events.BuildingDeconstructed{
		Tick:               ctx.Tick,
		Entity:             id,
		Owner:              own,
		X:                  x,
		Y:                  y,
		WasPlayerInitiated: playerInitiated,
	})
}

// adjustOccupancyAndLevels drifts Active buildings' occupancy toward
// capacity, empties non-Active buildings, and moves levels with land
// value (§4.10 upgrade/downgrade).
func (s *BuildingSystem) adjustOccupancyAndLevels(ctx sim.TickCtx) {
	query := s.store.BuildingFilter.Query()
	for query.Next() {
		b, pos, owner := query.Get()
		entity := query.Entity()

		if b.State != components.Active {
			if b.CurrentOccupancy > 0 {
				step := b.Capacity / 20
				if step == 0 {
					step = 1
				}
				if step > b.CurrentOccupancy {
					b.CurrentOccupancy = 0
				} else {
					b.CurrentOccupancy -= step
				}
			}
			continue
		}

		if b.CurrentOccupancy < b.Capacity {
			step := b.Capacity / 50
			if step == 0 {
				step = 1
			}
			b.CurrentOccupancy += step
			if b.CurrentOccupancy > b.Capacity {
				b.CurrentOccupancy = b.Capacity
			}
		}

		// Level moves at most once per phase; per-tick churn would spam
		// upgrade events while land value hovers near a boundary.
		if uint64(ctx.Tick)%uint64(ids.TicksPerPhase) != 0 {
			continue
		}
		t := s.registry.ByID(b.TemplateID)
		if t == nil {
			continue
		}
		lv := s.world.LandValue.At(int(pos.X), int(pos.Y))
		id, ok := s.store.ID(entity)
		if !ok {
			continue
		}

		// Level follows land value: well above the template minimum
		// raises it, dropping below lowers it.
		if b.Level < t.MaxLevel && lv >= t.MinLandValue+48 {
			prev := b.Level
			b.Level++
			ctx.Bus.BuildingUpgraded.Push(events.BuildingUpgraded{
				Tick: ctx.Tick, Entity: id, Owner: owner.Owner, PreviousLevel: prev, NewLevel: b.Level,
			})
		} else if b.Level > t.MinLevel && lv < t.MinLandValue {
			prev := b.Level
			b.Level--
			ctx.Bus.BuildingDowngraded.Push(events.BuildingDowngraded{
				Tick: ctx.Tick, Entity: id, Owner: owner.Owner, PreviousLevel: prev, NewLevel: b.Level,
			})
		}
	}
}
