// Package worldstore centralizes the entity/component store of §3.3,
// built on github.com/mlange-42/ark the way the teacher's game.Game
// centralizes its single *ecs.World plus every Map/Filter handle it
// needs, except shared across every subsystem in systems instead of
// living on one Game struct (§3.6).
package worldstore

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/ids"
)

// Store bundles the ark world, per-component-kind mappers for direct
// lookup, and the fixed set of multi-component filters the systems
// package iterates. EntityID (the spec's stable 32-bit scalar, §3.1) is
// backed by ark's own Entity handle via a bidirectional id map, so
// subsystems address entities without coupling to ark's internal dense
// indices (§3.6).
type Store struct {
	World *ecs.World

	nextID  ids.EntityID
	byID    map[ids.EntityID]ecs.Entity
	byEntry map[ecs.Entity]ids.EntityID

	base *ecs.Map2[components.Position, components.Ownership]

	Ownership *ecs.Map1[components.Ownership]
	Position  *ecs.Map1[components.Position]

	Building            *ecs.Map1[components.Building]
	Construction        *ecs.Map1[components.Construction]
	Debris              *ecs.Map1[components.Debris]
	ContaminationSource *ecs.Map1[components.ContaminationSource]
	Road                *ecs.Map1[components.Road]
	Traffic             *ecs.Map1[components.Traffic]
	Rail                *ecs.Map1[components.Rail]
	Terminal            *ecs.Map1[components.Terminal]
	Port                *ecs.Map1[components.Port]
	TradeAgreement      *ecs.Map1[components.TradeAgreement]
	ExternalConnection  *ecs.Map1[components.ExternalConnection]
	EnergyNexus         *ecs.Map1[components.EnergyNexus]
	FluidExtractor      *ecs.Map1[components.FluidExtractor]
	FluidReservoir      *ecs.Map1[components.FluidReservoir]
	Conduit             *ecs.Map1[components.Conduit]
	TerrainModification *ecs.Map1[components.TerrainModification]

	BuildingFilter     *ecs.Filter3[components.Building, components.Position, components.Ownership]
	ConstructionFilter *ecs.Filter2[components.Building, components.Construction]
	DebrisFilter       *ecs.Filter2[components.Debris, components.Position]
	RoadFilter         *ecs.Filter3[components.Road, components.Traffic, components.Position]
	RailFilter         *ecs.Filter3[components.Rail, components.Position, components.Ownership]
	TerminalFilter     *ecs.Filter3[components.Terminal, components.Position, components.Ownership]
	ContamSourceFilter *ecs.Filter2[components.ContaminationSource, components.Position]
	ConduitFilter      *ecs.Filter2[components.Conduit, components.Position]
	NexusFilter        *ecs.Filter3[components.EnergyNexus, components.Position, components.Ownership]
	ExtractorFilter    *ecs.Filter3[components.FluidExtractor, components.Position, components.Ownership]
	ReservoirFilter    *ecs.Filter2[components.FluidReservoir, components.Ownership]
	PortFilter         *ecs.Filter3[components.Port, components.Position, components.Ownership]
	TradeFilter        *ecs.Filter1[components.TradeAgreement]
	ExternalFilter     *ecs.Filter1[components.ExternalConnection]
	TerraformFilter    *ecs.Filter1[components.TerrainModification]
}

// New allocates the ark world and every mapper/filter the systems
// package needs.
func New() *Store {
	w := ecs.NewWorld()

	s := &Store{
		World:   w,
		byID:    make(map[ids.EntityID]ecs.Entity),
		byEntry: make(map[ecs.Entity]ids.EntityID),

		base: ecs.NewMap2[components.Position, components.Ownership](w),

		Ownership: ecs.NewMap1[components.Ownership](w),
		Position:  ecs.NewMap1[components.Position](w),

		Building:            ecs.NewMap1[components.Building](w),
		Construction:        ecs.NewMap1[components.Construction](w),
		Debris:              ecs.NewMap1[components.Debris](w),
		ContaminationSource: ecs.NewMap1[components.ContaminationSource](w),
		Road:                ecs.NewMap1[components.Road](w),
		Traffic:             ecs.NewMap1[components.Traffic](w),
		Rail:                ecs.NewMap1[components.Rail](w),
		Terminal:            ecs.NewMap1[components.Terminal](w),
		Port:                ecs.NewMap1[components.Port](w),
		TradeAgreement:      ecs.NewMap1[components.TradeAgreement](w),
		ExternalConnection:  ecs.NewMap1[components.ExternalConnection](w),
		EnergyNexus:         ecs.NewMap1[components.EnergyNexus](w),
		FluidExtractor:      ecs.NewMap1[components.FluidExtractor](w),
		FluidReservoir:      ecs.NewMap1[components.FluidReservoir](w),
		Conduit:             ecs.NewMap1[components.Conduit](w),
		TerrainModification: ecs.NewMap1[components.TerrainModification](w),
	}

	s.BuildingFilter = ecs.NewFilter3[components.Building, components.Position, components.Ownership](w)
	s.ConstructionFilter = ecs.NewFilter2[components.Building, components.Construction](w)
	s.DebrisFilter = ecs.NewFilter2[components.Debris, components.Position](w)
	s.RoadFilter = ecs.NewFilter3[components.Road, components.Traffic, components.Position](w)
	s.RailFilter = ecs.NewFilter3[components.Rail, components.Position, components.Ownership](w)
	s.TerminalFilter = ecs.NewFilter3[components.Terminal, components.Position, components.Ownership](w)
	s.ContamSourceFilter = ecs.NewFilter2[components.ContaminationSource, components.Position](w)
	s.ConduitFilter = ecs.NewFilter2[components.Conduit, components.Position](w)
	s.NexusFilter = ecs.NewFilter3[components.EnergyNexus, components.Position, components.Ownership](w)
	s.ExtractorFilter = ecs.NewFilter3[components.FluidExtractor, components.Position, components.Ownership](w)
	s.ReservoirFilter = ecs.NewFilter2[components.FluidReservoir, components.Ownership](w)
	s.PortFilter = ecs.NewFilter3[components.Port, components.Position, components.Ownership](w)
	s.TradeFilter = ecs.NewFilter1[components.TradeAgreement](w)
	s.ExternalFilter = ecs.NewFilter1[components.ExternalConnection](w)
	s.TerraformFilter = ecs.NewFilter1[components.TerrainModification](w)

	return s
}

// bind records a fresh ark entity under a freshly allocated EntityID and
// returns the id.
func (s *Store) bind(e ecs.Entity) ids.EntityID {
	s.nextID++
	id := s.nextID
	s.byID[id] = e
	s.byEntry[e] = id
	return id
}

// NewEntity allocates a new entity with Position and Ownership, the two
// components every spec bundle carries (§3.3), and returns its stable id.
func (s *Store) NewEntity(pos components.Position, owner components.Ownership) ids.EntityID {
	e := s.base.NewEntity(&pos, &owner)
	return s.bind(e)
}

// Entity resolves a stable EntityID to its backing ark entity. ok is
// false for an unknown or already-destroyed id.
func (s *Store) Entity(id ids.EntityID) (ecs.Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// ID resolves an ark entity back to its stable EntityID. ok is false
// if e was not allocated through this store.
func (s *Store) ID(e ecs.Entity) (ids.EntityID, bool) {
	id, ok := s.byEntry[e]
	return id, ok
}

// Alive reports whether id still refers to a live entity.
func (s *Store) Alive(id ids.EntityID) bool {
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	return s.World.Alive(e)
}

// Destroy removes an entity and all of its components, and forgets the
// id mapping. Subsystems outside the owning factory must never call
// this directly for a Building (§3.5); it exists for debris auto-clear
// and terraform/demolition cleanup paths that do own their entities.
func (s *Store) Destroy(id ids.EntityID) {
	e, ok := s.byID[id]
	if !ok {
		return
	}
	s.World.RemoveEntity(e)
	delete(s.byID, id)
	delete(s.byEntry, e)
}
