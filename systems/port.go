package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// PortSystem tracks per-player ports, trade agreements, and
// external-edge connections, and computes trade income windowed over
// the last N phases for the UI (§4.6). It implements
// query.PortProvider.
type PortSystem struct {
	world *grid.World
	store *worldstore.Store
	cfg   config.PortConfig

	// incomeWindow is a per-player ring of per-phase income samples.
	incomeWindow [ids.MaxPlayers + 1][]ids.Credits
	windowIdx    int
	windowFull   bool

	// phaseAccrual collects income earned during the current phase.
	phaseAccrual [ids.MaxPlayers + 1]ids.Credits

	// demandBonus caches the per-player aggregate agreement bonus,
	// queried by the building/demand layer (§4.6).
	demandBonus [ids.MaxPlayers + 1]int
}

// NewPortSystem creates the port subsystem.
func NewPortSystem(world *grid.World, store *worldstore.Store, cfg config.PortConfig) *PortSystem {
	s := &PortSystem{world: world, store: store, cfg: cfg}
	window := cfg.IncomeWindowPhases
	if window <= 0 {
		window = 12
	}
	for p := range s.incomeWindow {
		s.incomeWindow[p] = make([]ids.Credits, window)
	}
	return s
}

// Priority implements sim.Subsystem (§2: port 48).
func (s *PortSystem) Priority() int { return sim.PriorityPort }

// PlacePort creates a port entity at (x, y). Aqua ports require an
// adjacent water-body tile.
func (s *PortSystem) PlacePort(x, y int32, pt components.PortType, capacity uint32, owner ids.PlayerID) (ids.EntityID, error) {
	if !s.world.Terrain.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	if pt == components.PortAqua {
		adjacent := false
		for _, d := range cardinal {
			if s.world.WaterBody.At(int(x+d[0]), int(y+d[1])) != 0 {
				adjacent = true
				break
			}
		}
		if !adjacent {
			return ids.InvalidEntityID, ErrNoWaterNearby
		}
	}

	id := s.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := s.store.Entity(id)
	s.store.Port.Add(e, &components.Port{Type: pt, Capacity: capacity})
	return id, nil
}

// OpenTradeAgreement registers an agreement between two parties.
// Party 0 is the game-world neighbor NPC.
func (s *PortSystem) OpenTradeAgreement(a components.TradeAgreement) ids.EntityID {
	id := s.store.NewEntity(components.Position{}, components.Ownership{Owner: a.PartyA})
	e, _ := s.store.Entity(id)
	s.store.TradeAgreement.Add(e, &a)
	return id
}

// OpenExternalConnection registers an off-map trade edge for owner.
func (s *PortSystem) OpenExternalConnection(owner ids.PlayerID) ids.EntityID {
	id := s.store.NewEntity(components.Position{}, components.Ownership{Owner: owner})
	e, _ := s.store.Entity(id)
	s.store.ExternalConnection.Add(e, &components.ExternalConnection{Owner: owner, IsActive: true})
	return id
}

// Tick runs the per-tick port pipeline (§4.6): operational states,
// external connection activity, cycle-boundary agreement settlement,
// phase-boundary income window rotation, and the demand-bonus cache.
func (s *PortSystem) Tick(ctx sim.TickCtx) {
	energy := ctx.Providers.Energy

	var operational [ids.MaxPlayers + 1]int
	ports := s.store.PortFilter.Query()
	for ports.Next() {
		port, pos, owner := ports.Get()
		port.IsOperational = true
		if energy != nil {
			port.IsOperational = energy.IsAvailableAt(owner.Owner, pos.X, pos.Y)
		}
		if port.IsOperational && int(owner.Owner) <= ids.MaxPlayers {
			operational[owner.Owner]++
		}
	}

	// An external connection is active iff its owner has at least one
	// operational port this tick.
	external := s.store.ExternalFilter.Query()
	for external.Next() {
		conn := external.Get()
		if int(conn.Owner) <= ids.MaxPlayers {
			conn.IsActive = operational[conn.Owner] > 0
		}
	}

	if uint64(ctx.Tick)%uint64(ids.TicksPerPhase*ids.PhasesPerCycle) == 0 {
		s.settleCycle(ctx, operational)
	}
	if uint64(ctx.Tick)%uint64(ids.TicksPerPhase) == 0 {
		s.rotateIncomeWindow()
	}

	s.refreshDemandBonuses(operational)
	s.refreshUtilization()
}

// settleCycle charges per-cycle costs, credits income, and expires
// agreements whose countdown reaches zero (§4.6).
func (s *PortSystem) settleCycle(ctx sim.TickCtx, operational [ids.MaxPlayers + 1]int) {
	credit := ctx.Providers.CreditOrPermissive()

	var expired []ids.EntityID
	trades := s.store.TradeFilter.Query()
	for trades.Next() {
		a := trades.Get()
		entity := trades.Entity()

		if a.Expired() {
			if id, ok := s.store.ID(entity); ok {
				expired = append(expired, id)
			}
			continue
		}
		a.CyclesRemaining--

		income := s.cycleIncome(a)
		for _, party := range [2]ids.PlayerID{a.PartyA, a.PartyB} {
			if party == ids.NeutralPlayer || int(party) > ids.MaxPlayers {
				continue
			}
			if operational[party] == 0 {
				continue // no operational port: the agreement idles
			}
			credit.Credit(party, income)
			s.phaseAccrual[party] += income
		}
		if a.PartyA != ids.NeutralPlayer {
			credit.Debit(a.PartyA, a.CostPerCycleA)
		}
		if a.PartyB != ids.NeutralPlayer {
			credit.Debit(a.PartyB, a.CostPerCycleB)
		}
	}

	for _, id := range expired {
		s.store.Destroy(id)
	}
}

// cycleIncome prices one cycle of an agreement: the tier's base income
// scaled by the agreement's income bonus percent (100 = x1.0).
func (s *PortSystem) cycleIncome(a *components.TradeAgreement) ids.Credits {
	tier := int(a.Tier)
	base := int64(0)
	if tier < len(s.cfg.BaseIncomePerTier) {
		base = s.cfg.BaseIncomePerTier[tier]
	}
	return ids.Credits(base * int64(a.IncomeBonusPct) / 100)
}

// rotateIncomeWindow pushes the current phase's accrual into the ring.
func (s *PortSystem) rotateIncomeWindow() {
	for p := 0; p <= ids.MaxPlayers; p++ {
		s.incomeWindow[p][s.windowIdx] = s.phaseAccrual[p]
		s.phaseAccrual[p] = 0
	}
	s.windowIdx++
	if s.windowIdx >= len(s.incomeWindow[0]) {
		s.windowIdx = 0
		s.windowFull = true
	}
}

// refreshDemandBonuses rebuilds the cached per-player agreement bonus.
func (s *PortSystem) refreshDemandBonuses(operational [ids.MaxPlayers + 1]int) {
	for p := range s.demandBonus {
		s.demandBonus[p] = 0
	}
	trades := s.store.TradeFilter.Query()
	for trades.Next() {
		a := trades.Get()
		if a.Expired() {
			continue
		}
		if a.PartyA != ids.NeutralPlayer && int(a.PartyA) <= ids.MaxPlayers && operational[a.PartyA] > 0 {
			s.demandBonus[a.PartyA] += int(a.DemandBonusA)
		}
		if a.PartyB != ids.NeutralPlayer && int(a.PartyB) <= ids.MaxPlayers && operational[a.PartyB] > 0 {
			s.demandBonus[a.PartyB] += int(a.DemandBonusB)
		}
	}
}

// refreshUtilization spreads each player's active agreement count over
// their operational port capacity.
func (s *PortSystem) refreshUtilization() {
	var activeAgreements [ids.MaxPlayers + 1]int
	trades := s.store.TradeFilter.Query()
	for trades.Next() {
		a := trades.Get()
		if a.Expired() {
			continue
		}
		for _, party := range [2]ids.PlayerID{a.PartyA, a.PartyB} {
			if party != ids.NeutralPlayer && int(party) <= ids.MaxPlayers {
				activeAgreements[party]++
			}
		}
	}

	ports := s.store.PortFilter.Query()
	for ports.Next() {
		port, _, owner := ports.Get()
		if !port.IsOperational || port.Capacity == 0 || int(owner.Owner) > ids.MaxPlayers {
			port.Utilization = 0
			continue
		}
		// Each agreement occupies a fixed slice of capacity.
		load := float32(activeAgreements[owner.Owner]) * 50 / float32(port.Capacity)
		if load > 1 {
			load = 1
		}
		port.Utilization = load
	}
}

// --- query.PortProvider ---

// Capacity sums the capacity of owner's ports of the given type.
func (s *PortSystem) Capacity(portType query.PortType, owner ids.PlayerID) uint32 {
	var total uint32
	ports := s.store.PortFilter.Query()
	for ports.Next() {
		port, _, own := ports.Get()
		if own.Owner == owner && components.PortType(portType) == port.Type {
			total += port.Capacity
		}
	}
	return total
}

// Utilization averages utilization across owner's ports of the type.
func (s *PortSystem) Utilization(portType query.PortType, owner ids.PlayerID) float32 {
	var sum float32
	n := 0
	ports := s.store.PortFilter.Query()
	for ports.Next() {
		port, _, own := ports.Get()
		if own.Owner == owner && components.PortType(portType) == port.Type {
			sum += port.Utilization
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// Count returns the number of owner's ports of the given type.
func (s *PortSystem) Count(portType query.PortType, owner ids.PlayerID) int {
	n := 0
	ports := s.store.PortFilter.Query()
	for ports.Next() {
		port, _, own := ports.Get()
		if own.Owner == owner && components.PortType(portType) == port.Type {
			n++
		}
	}
	return n
}

// DemandBonus returns the cached aggregate agreement bonus for owner.
// The bonus applies uniformly across zones.
func (s *PortSystem) DemandBonus(owner ids.PlayerID, zone query.ZoneType) int8 {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	b := s.demandBonus[owner]
	if b > 127 {
		b = 127
	}
	if b < -128 {
		b = -128
	}
	return int8(b)
}

// ExternalConnectionCount returns how many of owner's external
// connections are currently active.
func (s *PortSystem) ExternalConnectionCount(owner ids.PlayerID) int {
	n := 0
	external := s.store.ExternalFilter.Query()
	for external.Next() {
		conn := external.Get()
		if conn.Owner == owner && conn.IsActive {
			n++
		}
	}
	return n
}

// TradeIncome returns owner's income summed over the last N phases
// (§4.6: windowed for the UI).
func (s *PortSystem) TradeIncome(owner ids.PlayerID) ids.Credits {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	var total ids.Credits
	for _, v := range s.incomeWindow[owner] {
		total += v
	}
	return total + s.phaseAccrual[owner]
}
