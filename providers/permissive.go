package providers

import (
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
)

// permissiveTransport implements query.TransportProvider as the §4.4
// grace-period stub: every query succeeds, nothing is congested.
type permissiveTransport struct{}

func (permissiveTransport) IsRoadAccessibleAt(x, y int32, maxDist int) bool { return true }
func (permissiveTransport) GetNearestRoadDistance(x, y int32) int          { return 0 }
func (permissiveTransport) IsConnectedToNetwork(x, y int32) bool           { return true }
func (permissiveTransport) AreConnected(x1, y1, x2, y2 int32) bool         { return true }
func (permissiveTransport) GetCongestionAt(x, y int32) float32             { return 0 }
func (permissiveTransport) GetTrafficVolumeAt(x, y int32) float32          { return 0 }
func (permissiveTransport) GetNetworkIDAt(x, y int32) uint16              { return 1 }

// permissivePool implements both query.EnergyProvider and
// query.FluidProvider as an always-healthy, always-available pool.
type permissivePool struct{}

func (permissivePool) IsAvailableAt(owner ids.PlayerID, x, y int32) bool { return true }
func (permissivePool) PoolState(owner ids.PlayerID) query.PoolState      { return query.Healthy }
func (permissivePool) PoolSurplus(owner ids.PlayerID) float32            { return 1 }

// permissiveCredit implements query.CreditProvider as unlimited funds.
type permissiveCredit struct{}

func (permissiveCredit) Balance(owner ids.PlayerID) ids.Credits            { return 1 << 40 }
func (permissiveCredit) Debit(owner ids.PlayerID, amount ids.Credits) bool { return true }
func (permissiveCredit) Credit(owner ids.PlayerID, amount ids.Credits)     {}
