package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
)

// The methods below implement query.BuildingQueryable (§6), the
// read-only façade the renderer/UI and other subsystems depend on.

// GetBuildingAt returns the building occupying (x, y), if any.
func (s *BuildingSystem) GetBuildingAt(x, y int32) (ids.EntityID, bool) {
	id := s.world.Occupancy.At(int(x), int(y))
	return id, id.IsValid()
}

// IsTileOccupied reports whether any building footprint covers (x, y).
func (s *BuildingSystem) IsTileOccupied(x, y int32) bool {
	return s.world.Occupancy.At(int(x), int(y)).IsValid()
}

// IsFootprintAvailable reports whether a w*h footprint rooted at (x, y)
// is fully in-bounds and unoccupied.
func (s *BuildingSystem) IsFootprintAvailable(x, y int32, w, h uint8) bool {
	return s.world.Occupancy.IsFree(int(x), int(y), int(w), int(h))
}

// GetBuildingsInRect returns the distinct building ids whose occupied
// cells intersect the inclusive rect.
func (s *BuildingSystem) GetBuildingsInRect(x0, y0, x1, y1 int32) []ids.EntityID {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	seen := make(map[ids.EntityID]bool)
	var out []ids.EntityID
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			id := s.world.Occupancy.At(int(x), int(y))
			if id.IsValid() && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// GetBuildingsByOwner returns every building id owned by owner.
func (s *BuildingSystem) GetBuildingsByOwner(owner ids.PlayerID) []ids.EntityID {
	var out []ids.EntityID
	q := s.store.BuildingFilter.Query()
	for q.Next() {
		_, _, own := q.Get()
		if own.Owner != owner {
			continue
		}
		if id, ok := s.store.ID(q.Entity()); ok {
			out = append(out, id)
		}
	}
	return out
}

// GetBuildingState returns the lifecycle state of a building entity.
// Entities carrying Debris report Deconstructed (§3.4).
func (s *BuildingSystem) GetBuildingState(id ids.EntityID) (query.BuildingState, bool) {
	e, ok := s.store.Entity(id)
	if !ok {
		return 0, false
	}
	if s.store.Debris.HasAll(e) {
		return query.Deconstructed, true
	}
	if !s.store.Building.HasAll(e) {
		return 0, false
	}
	return query.BuildingState(s.store.Building.Get(e).State), true
}

// GetTotalCapacity sums capacity over owner's Active buildings of zone.
func (s *BuildingSystem) GetTotalCapacity(zone query.ZoneType, owner ids.PlayerID) uint32 {
	var total uint32
	q := s.store.BuildingFilter.Query()
	for q.Next() {
		b, _, own := q.Get()
		if own.Owner == owner && components.ZoneType(zone) == b.ZoneType && b.State == components.Active {
			total += b.Capacity
		}
	}
	return total
}

// GetTotalOccupancy sums current occupancy over owner's Active
// buildings of zone.
func (s *BuildingSystem) GetTotalOccupancy(zone query.ZoneType, owner ids.PlayerID) uint32 {
	var total uint32
	q := s.store.BuildingFilter.Query()
	for q.Next() {
		b, _, own := q.Get()
		if own.Owner == owner && components.ZoneType(zone) == b.ZoneType && b.State == components.Active {
			total += b.CurrentOccupancy
		}
	}
	return total
}

// CountByState counts buildings in the given lifecycle state. The
// Deconstructed count is the number of live debris entities.
func (s *BuildingSystem) CountByState(state query.BuildingState) int {
	if state == query.Deconstructed {
		n := 0
		q := s.store.DebrisFilter.Query()
		for q.Next() {
			q.Get()
			n++
		}
		return n
	}

	n := 0
	q := s.store.BuildingFilter.Query()
	for q.Next() {
		b, _, _ := q.Get()
		if components.BuildingState(state) == b.State {
			n++
		}
	}
	return n
}
