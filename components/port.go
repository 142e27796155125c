package components

import "github.com/pthm-cable/citycore/ids"

// PortType distinguishes aerodrome vs harbor ports (§4.6).
type PortType uint8

const (
	PortAero PortType = iota
	PortAqua
)

// Port is a per-entity external-trade terminal.
type Port struct {
	Type          PortType
	IsOperational bool
	Capacity      uint32
	Utilization   float32 // 0..1, derived from active trade volume
}

// TradeTier is the agreement quality tier.
type TradeTier uint8

const (
	TradeTierBasic TradeTier = iota
	TradeTierStandard
	TradeTierPremium
)

// TradeAgreement is a two-party trade contract tracked per player
// (§4.6). Party 0 meaning "game-world neighbor NPC" is represented by
// ids.NeutralPlayer.
type TradeAgreement struct {
	PartyA, PartyB  ids.PlayerID
	Tier            TradeTier
	CyclesRemaining uint32
	DemandBonusA    int8
	DemandBonusB    int8
	IncomeBonusPct  uint16 // 100 = x1.0
	CostPerCycleA   ids.Credits
	CostPerCycleB   ids.Credits
}

// Expired reports whether the agreement has run its course (§4.6).
func (a *TradeAgreement) Expired() bool { return a.CyclesRemaining == 0 }

// ExternalConnection represents a connection to an off-map trade partner.
type ExternalConnection struct {
	Owner    ids.PlayerID
	IsActive bool
}
