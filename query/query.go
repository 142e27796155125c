// Package query defines the read-only façade interfaces of §6: the only
// contract an external renderer/UI collaborator (or any subsystem that
// needs another subsystem's output) is allowed to depend on. No type in
// this package may be mutated through these interfaces.
package query

import "github.com/pthm-cable/citycore/ids"

// BuildingQueryable is the read-only façade over the building
// subsystem's state (§6).
type BuildingQueryable interface {
	GetBuildingAt(x, y int32) (ids.EntityID, bool)
	IsTileOccupied(x, y int32) bool
	IsFootprintAvailable(x, y int32, w, h uint8) bool
	GetBuildingsInRect(x0, y0, x1, y1 int32) []ids.EntityID
	GetBuildingsByOwner(owner ids.PlayerID) []ids.EntityID
	GetBuildingState(e ids.EntityID) (BuildingState, bool)
	GetTotalCapacity(zone ZoneType, owner ids.PlayerID) uint32
	GetTotalOccupancy(zone ZoneType, owner ids.PlayerID) uint32
	CountByState(state BuildingState) int
}

// BuildingState mirrors components.BuildingState without pulling the
// query package into an ark/components dependency (query stays leaf).
type BuildingState uint8

const (
	Materializing BuildingState = iota
	Active
	Abandoned
	Derelict
	Deconstructed
)

// ZoneType mirrors components.ZoneType for the same reason.
type ZoneType uint8

const (
	ZoneHabitation ZoneType = iota
	ZoneExchange
	ZoneFabrication
)

// TransportProvider is the read-only façade over transport connectivity
// and congestion (§4.4, §6).
type TransportProvider interface {
	IsRoadAccessibleAt(x, y int32, maxDist int) bool
	GetNearestRoadDistance(x, y int32) int
	IsConnectedToNetwork(x, y int32) bool
	AreConnected(x1, y1, x2, y2 int32) bool
	GetCongestionAt(x, y int32) float32
	GetTrafficVolumeAt(x, y int32) float32
	GetNetworkIDAt(x, y int32) uint16
}

// EnergyProvider and FluidProvider are the read-only façades over the
// per-player pool state machines (§4.7, §6).
type EnergyProvider interface {
	IsAvailableAt(owner ids.PlayerID, x, y int32) bool
	PoolState(owner ids.PlayerID) PoolState
	PoolSurplus(owner ids.PlayerID) float32
}

// FluidProvider mirrors EnergyProvider for the fluid pool.
type FluidProvider interface {
	IsAvailableAt(owner ids.PlayerID, x, y int32) bool
	PoolState(owner ids.PlayerID) PoolState
	PoolSurplus(owner ids.PlayerID) float32
}

// PoolState mirrors components.PoolState.
type PoolState uint8

const (
	Healthy PoolState = iota
	Marginal
	Deficit
	Collapse
)

// CreditProvider is the read-only façade the building subsystem uses to
// check and (on successful spawn/demolition) debit an overseer's
// balance (§4.10, §9: one of the raw-pointer providers re-architected
// into the Providers value).
type CreditProvider interface {
	Balance(owner ids.PlayerID) ids.Credits
	Debit(owner ids.PlayerID, amount ids.Credits) bool
	Credit(owner ids.PlayerID, amount ids.Credits)
}

// PortProvider is the read-only façade over port capacity, demand
// bonuses, and trade income (§4.6, §6).
type PortProvider interface {
	Capacity(portType PortType, owner ids.PlayerID) uint32
	Utilization(portType PortType, owner ids.PlayerID) float32
	Count(portType PortType, owner ids.PlayerID) int
	DemandBonus(owner ids.PlayerID, zone ZoneType) int8
	ExternalConnectionCount(owner ids.PlayerID) int
	TradeIncome(owner ids.PlayerID) ids.Credits
}

// PortType mirrors components.PortType.
type PortType uint8

const (
	PortAero PortType = iota
	PortAqua
)

// GridOverlay is the common contract for any dense-grid visualization
// layer (§6): land value, contamination, proximity, etc.
type GridOverlay interface {
	Name() string
	IsActive() bool
	ColorAt(x, y int32) (r, g, b, a uint8)
}

// StatID is a closed enumeration of queryable scalar statistics (§6).
type StatID int

const (
	StatPopulation StatID = iota
	StatHealthIndex
	StatTotalContamination
	StatToxicTileCount
	StatLandValueAverage
	StatLandValueMax
	StatLandValueMin
	StatTradeIncomeTotal
	statCount
)

// StatQueryable is the read-only façade over scalar simulation
// statistics (§6).
type StatQueryable interface {
	GetStat(id StatID) float32
	GetStatName(id StatID) string
	IsValidStat(id StatID) bool
}

// statNames backs the default StatQueryable.GetStatName implementations
// across systems; kept here so every implementer names stats identically.
var statNames = [...]string{
	StatPopulation:         "population",
	StatHealthIndex:        "health_index",
	StatTotalContamination: "total_contamination",
	StatToxicTileCount:     "toxic_tile_count",
	StatLandValueAverage:   "land_value_average",
	StatLandValueMax:       "land_value_max",
	StatLandValueMin:       "land_value_min",
	StatTradeIncomeTotal:   "trade_income_total",
}

// StatName returns the canonical name for a stat id, or "" if invalid.
func StatName(id StatID) string {
	if id < 0 || int(id) >= len(statNames) {
		return ""
	}
	return statNames[id]
}

// IsValidStatID reports whether id is one of the closed enumeration.
func IsValidStatID(id StatID) bool {
	return id >= 0 && id < statCount
}
