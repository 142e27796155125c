package systems

import (
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
)

// clearDebris counts down every debris entity's clear timer and
// destroys the ones that reach zero (§4.10). The footprint was already
// cleared at deconstruction time.
func (s *BuildingSystem) clearDebris(ctx sim.TickCtx) {
	type cleared struct {
		id   ids.EntityID
		x, y int32
	}
	var done []cleared

	query := s.store.DebrisFilter.Query()
	for query.Next() {
		debris, pos := query.Get()
		debris.ClearTimer--
		if debris.ClearTimer > 0 {
			continue
		}
		if id, ok := s.store.ID(query.Entity()); ok {
			done = append(done, cleared{id: id, x: pos.X, y: pos.Y})
		}
	}

	for _, d := range done {
		s.store.Destroy(d.id)
		ctx.Bus.DebrisCleared.Push(events.DebrisCleared{Tick: ctx.Tick, Entity: d.id, X: d.x, Y: d.y})
	}
}
