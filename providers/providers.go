// Package providers implements §9's re-architecture of the source's raw
// non-owning provider pointers (IEnergyProvider*, IFluidProvider*,
// ITransportProvider*, ICreditProvider*) into a single value type that
// subsystems borrow immutably during their Tick call. The orchestrator
// holds one Providers value, set by its owner when the subsystems are
// wired together, and copies it into every subsystem's tick context;
// subsystems do not store it past the call that received it.
package providers

import "github.com/pthm-cable/citycore/query"

// Providers bundles every read-only query interface a subsystem may
// need from another subsystem's output this tick. Any field may be nil
// before its owning subsystem has registered — callers must tolerate
// nil as "permissive fallback" (§5: "must tolerate nullptr").
type Providers struct {
	Transport query.TransportProvider
	Energy    query.EnergyProvider
	Fluid     query.FluidProvider
	Credit    query.CreditProvider
	Port      query.PortProvider
	Building  query.BuildingQueryable
}

// TransportOrPermissive returns p.Transport, or a permissive fallback
// that reports every tile reachable if no transport provider is wired
// yet (§4.4 grace-period default behavior, generalized to "provider
// absent" as well as "provider present but still in its grace window").
func (p Providers) TransportOrPermissive() query.TransportProvider {
	if p.Transport != nil {
		return p.Transport
	}
	return permissiveTransport{}
}

// EnergyOrPermissive mirrors TransportOrPermissive for energy.
func (p Providers) EnergyOrPermissive() query.EnergyProvider {
	if p.Energy != nil {
		return p.Energy
	}
	return permissivePool{}
}

// FluidOrPermissive mirrors TransportOrPermissive for fluid.
func (p Providers) FluidOrPermissive() query.FluidProvider {
	if p.Fluid != nil {
		return p.Fluid
	}
	return permissivePool{}
}

// CreditOrPermissive mirrors TransportOrPermissive for credits: a
// missing credit provider means "unlimited funds", matching the
// nullptr-is-permissive rule of §5 rather than rejecting every spawn.
func (p Providers) CreditOrPermissive() query.CreditProvider {
	if p.Credit != nil {
		return p.Credit
	}
	return permissiveCredit{}
}
