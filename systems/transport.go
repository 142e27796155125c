package systems

import (
	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/worldstore"
)

// TrafficReducer is the rail subsystem's terminal coverage field
// (§4.5): a fractional wear/congestion reduction per tile, aggregated
// as the maximum across overlapping terminals.
type TrafficReducer interface {
	TrafficReductionAt(x, y int32) float64
}

// TransportSystem owns the pathway grid, the proximity cache, the
// network-id grid and the road/traffic component tables (§4.4). It
// implements query.TransportProvider.
type TransportSystem struct {
	world *grid.World
	store *worldstore.Store
	cfg   config.TransportConfig

	// reducer, when set, damps decay wear under terminal coverage.
	reducer TrafficReducer

	dirty     bool
	roadCells [][2]int32 // cached coordinates of every pathway cell

	// authoritativeSince is the tick of the first Tick call; the grace
	// period runs from here (§4.4: the system "replaces a permissive
	// stub" the moment it first runs).
	authoritativeSince ids.Tick
	currentTick        ids.Tick

	flowBuf []float32 // per-cell flow scratch, reused across ticks

	// pendingAccessLost collects positions whose accessibility query
	// failed at-or-above max_d since the last tick (§4.4).
	pendingAccessLost [][2]int32

	pendingPlaced  [][2]int32
	pendingRemoved [][2]int32

	// prevBand tracks each road's health band for threshold-crossing
	// events during decay.
	prevBand map[ids.EntityID]int
}

// NewTransportSystem creates the transport subsystem over the shared
// grids and entity store.
func NewTransportSystem(world *grid.World, store *worldstore.Store, cfg config.TransportConfig) *TransportSystem {
	return &TransportSystem{
		world:    world,
		store:    store,
		cfg:      cfg,
		dirty:    true,
		flowBuf:  make([]float32, world.Side*world.Side),
		prevBand: make(map[ids.EntityID]int),
	}
}

// Priority implements sim.Subsystem (§2: transport 45).
func (t *TransportSystem) Priority() int { return sim.PriorityTransport }

// SetTrafficReducer wires the rail subsystem's coverage field in after
// construction; the orchestrator owns both ends of this link.
func (t *TransportSystem) SetTrafficReducer(r TrafficReducer) { t.reducer = r }

// PlacePathway creates a road entity at (x, y) and mirrors it on the
// pathway grid. Placement fails out of bounds (ErrOutOfBounds) or on a
// tile that already holds a pathway (ErrOccupied) (§4.4).
func (t *TransportSystem) PlacePathway(x, y int32, rt grid.RoadType, owner ids.PlayerID) (ids.EntityID, error) {
	if !t.world.Pathway.InBounds(int(x), int(y)) {
		return ids.InvalidEntityID, ErrOutOfBounds
	}
	if t.world.Pathway.At(int(x), int(y)).Present() {
		return ids.InvalidEntityID, ErrOccupied
	}

	id := t.store.NewEntity(
		components.Position{X: x, Y: y},
		components.Ownership{Owner: owner},
	)
	e, _ := t.store.Entity(id)
	t.store.Road.Add(e, &components.Road{
		Type:         rt,
		Health:       255,
		BaseCapacity: baseCapacityFor(rt),
	})
	t.store.Traffic.Add(e, &components.Traffic{})

	t.world.Pathway.Set(int(x), int(y), grid.PathwayCell{Type: rt, Owner: owner, Road: id})
	t.world.ChunkDirty.MarkTileDirty(int(x), int(y))
	t.dirty = true
	t.prevBand[id] = healthBand(255)
	t.pendingPlaced = append(t.pendingPlaced, [2]int32{x, y})
	return id, nil
}

// RemovePathway removes the road at (x, y). Removal is ownership
// checked (§4.4).
func (t *TransportSystem) RemovePathway(x, y int32, owner ids.PlayerID) error {
	if !t.world.Pathway.InBounds(int(x), int(y)) {
		return ErrOutOfBounds
	}
	cell := t.world.Pathway.At(int(x), int(y))
	if !cell.Present() {
		return ErrNoPathway
	}
	if cell.Owner != owner {
		return ErrNotOwned
	}

	delete(t.prevBand, cell.Road)
	t.store.Destroy(cell.Road)
	t.world.Pathway.Set(int(x), int(y), grid.PathwayCell{})
	t.world.ChunkDirty.MarkTileDirty(int(x), int(y))
	t.dirty = true
	t.pendingRemoved = append(t.pendingRemoved, [2]int32{x, y})
	return nil
}

func baseCapacityFor(rt grid.RoadType) float32 {
	switch rt {
	case grid.RoadArterial:
		return 60
	case grid.RoadHighway:
		return 200
	default:
		return 20
	}
}

// Tick runs the per-tick transport pipeline (§4.4): rebuild if dirty,
// commit traffic accumulators, propagate flow, decay on its interval,
// and flush pending events.
func (t *TransportSystem) Tick(ctx sim.TickCtx) {
	if t.authoritativeSince == 0 {
		t.authoritativeSince = ctx.Tick
	}
	t.currentTick = ctx.Tick

	if t.dirty {
		t.rebuild()
		t.dirty = false
	}

	t.commitTraffic()
	t.propagateFlow()

	if t.cfg.DecayInterval > 0 && uint64(ctx.Tick)%t.cfg.DecayInterval == 0 {
		t.decay(ctx)
	}

	for _, p := range t.pendingAccessLost {
		ctx.Bus.TransportAccessLost.Push(events.TransportAccessLost{Tick: ctx.Tick, X: p[0], Y: p[1]})
	}
	t.pendingAccessLost = t.pendingAccessLost[:0]
	t.pendingPlaced = t.pendingPlaced[:0]
	t.pendingRemoved = t.pendingRemoved[:0]
}

// rebuild recomputes the network-id grid (BFS connected components over
// 4-connected pathway cells, ids 1..K) and the proximity cache
// (multi-source BFS from all pathway cells, capped at the configured max
// range) in one pass each (§4.4).
func (t *TransportSystem) rebuild() {
	side := t.world.Side
	t.roadCells = t.roadCells[:0]

	net := t.world.Network
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			net.Set(x, y, 0)
			if t.world.Pathway.At(x, y).Present() {
				t.roadCells = append(t.roadCells, [2]int32{int32(x), int32(y)})
			}
		}
	}

	// Connected components by BFS. Network ids are assigned in row-major
	// discovery order so a rebuild over unchanged pathways is bit-stable
	// (§8 round-trip property).
	var nextID uint16 = 1
	queue := make([][2]int32, 0, len(t.roadCells))
	for _, c := range t.roadCells {
		if net.At(int(c[0]), int(c[1])) != 0 {
			continue
		}
		id := nextID
		nextID++
		queue = append(queue[:0], c)
		net.Set(int(c[0]), int(c[1]), id)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, d := range cardinal {
				nx, ny := int(cur[0]+d[0]), int(cur[1]+d[1])
				if !t.world.Pathway.InBounds(nx, ny) || net.At(nx, ny) != 0 {
					continue
				}
				if !t.world.Pathway.At(nx, ny).Present() {
					continue
				}
				net.Set(nx, ny, id)
				queue = append(queue, [2]int32{int32(nx), int32(ny)})
			}
		}
	}

	// Proximity: multi-source BFS from all pathway cells at distance 0.
	prox := t.world.Proximity
	prox.Fill(grid.ProximityUnknown)
	frontier := make([][2]int32, len(t.roadCells))
	copy(frontier, t.roadCells)
	for _, c := range frontier {
		prox.Set(int(c[0]), int(c[1]), 0)
	}
	maxRange := t.cfg.ProximityMaxRange
	if maxRange <= 0 || maxRange > int(grid.ProximityUnknown)-1 {
		maxRange = int(grid.ProximityUnknown) - 1
	}
	var next [][2]int32
	for dist := 1; dist <= maxRange && len(frontier) > 0; dist++ {
		next = next[:0]
		for _, c := range frontier {
			for _, d := range cardinal {
				nx, ny := int(c[0]+d[0]), int(c[1]+d[1])
				if !prox.InBounds(nx, ny) || prox.At(nx, ny) != grid.ProximityUnknown {
					continue
				}
				prox.Set(nx, ny, uint8(dist))
				next = append(next, [2]int32{int32(nx), int32(ny)})
			}
		}
		frontier, next = next, frontier
	}
}

var cardinal = [4][2]int32{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// commitTraffic moves each road's flow accumulator into FlowCurrent.
func (t *TransportSystem) commitTraffic() {
	query := t.store.RoadFilter.Query()
	for query.Next() {
		_, traffic, _ := query.Get()
		traffic.Commit()
	}
}

// propagateFlow injects flow from buildings adjacent to each road cell,
// then runs one conserving diffusion step: each cell keeps half its
// injected flow and splits the other half equally among 4-connected
// pathway neighbors (§4.4).
func (t *TransportSystem) propagateFlow() {
	side := t.world.Side
	for i := range t.flowBuf {
		t.flowBuf[i] = 0
	}

	// Injection pass.
	for _, c := range t.roadCells {
		x, y := int(c[0]), int(c[1])
		var inject float32
		for _, d := range cardinal {
			nx, ny := x+int(d[0]), y+int(d[1])
			bid := t.world.Occupancy.At(nx, ny)
			if !bid.IsValid() {
				continue
			}
			e, ok := t.store.Entity(bid)
			if !ok || !t.store.Building.HasAll(e) {
				continue
			}
			b := t.store.Building.Get(e)
			if b.State == components.Active {
				inject += float32(b.CurrentOccupancy) * float32(t.cfg.FlowInjectionPerOccupant)
			}
		}
		t.flowBuf[y*side+x] = inject
	}

	// Diffusion pass, accumulated into each road's Traffic component.
	for _, c := range t.roadCells {
		x, y := int(c[0]), int(c[1])
		own := t.flowBuf[y*side+x]

		var neighbors [][2]int
		for _, d := range cardinal {
			nx, ny := x+int(d[0]), y+int(d[1])
			if t.world.Pathway.InBounds(nx, ny) && t.world.Pathway.At(nx, ny).Present() {
				neighbors = append(neighbors, [2]int{nx, ny})
			}
		}

		kept := own
		if len(neighbors) > 0 {
			kept = own * 0.5
			share := own * 0.5 / float32(len(neighbors))
			for _, n := range neighbors {
				t.addFlow(n[0], n[1], share)
			}
		}
		t.addFlow(x, y, kept)
	}
}

func (t *TransportSystem) addFlow(x, y int, amount float32) {
	cell := t.world.Pathway.At(x, y)
	if !cell.Present() {
		return
	}
	e, ok := t.store.Entity(cell.Road)
	if !ok || !t.store.Traffic.HasAll(e) {
		return
	}
	t.store.Traffic.Get(e).Accumulate(amount)
}

// healthBand maps a health byte onto the index of the threshold band it
// falls in (§4.4: 255 > 200 > 150 > 100 > 50 > 0).
func healthBand(health uint8) int {
	for i, th := range components.HealthThresholds {
		if health >= th {
			return i
		}
	}
	return len(components.HealthThresholds) - 1
}

// decay applies per-road wear scaled by traffic (§4.4): Δhealth =
// base_decay * clamp(1 + 2*flow/capacity, 1, 3), clamped at 0. Crossing
// a health band emits PathwayStateChanged.
func (t *TransportSystem) decay(ctx sim.TickCtx) {
	query := t.store.RoadFilter.Query()
	for query.Next() {
		road, traffic, pos := query.Get()
		entity := query.Entity()

		mult := float64(1)
		if road.BaseCapacity > 0 {
			mult = 1 + 2*float64(traffic.FlowCurrent)/float64(road.BaseCapacity)
		}
		if mult < 1 {
			mult = 1
		}
		if mult > 3 {
			mult = 3
		}
		if t.reducer != nil {
			mult *= 1 - t.reducer.TrafficReductionAt(pos.X, pos.Y)
		}

		loss := int(t.cfg.BaseDecay * mult)
		newHealth := int(road.Health) - loss
		if newHealth < 0 {
			newHealth = 0
		}
		road.Health = uint8(newHealth)

		id, ok := t.store.ID(entity)
		if !ok {
			continue
		}
		band := healthBand(road.Health)
		if prev, seen := t.prevBand[id]; seen && band != prev {
			ctx.Bus.PathwayStateChanged.Push(events.PathwayStateChanged{
				Tick:   ctx.Tick,
				Entity: id,
				X:      pos.X,
				Y:      pos.Y,
				Health: road.Health,
			})
		}
		t.prevBand[id] = band
	}
}

// --- query.TransportProvider ---

// inGrace reports whether the grace window is still open (§4.4: all
// accessibility queries pass for grace_period_ticks after the system
// first becomes authoritative).
func (t *TransportSystem) inGrace() bool {
	if t.authoritativeSince == 0 {
		return true // never ticked: still the permissive stub
	}
	return uint64(t.currentTick-t.authoritativeSince) < t.cfg.GracePeriodTicks
}

// IsRoadAccessibleAt reports whether a pathway lies fewer than maxDist
// BFS steps from (x, y). During the grace period it always reports true;
// after it, a failing query queues a TransportAccessLost event (§4.4).
func (t *TransportSystem) IsRoadAccessibleAt(x, y int32, maxDist int) bool {
	if t.inGrace() {
		return true
	}
	dist := t.world.Proximity.At(int(x), int(y))
	if int(dist) < maxDist {
		return true
	}
	t.pendingAccessLost = append(t.pendingAccessLost, [2]int32{x, y})
	return false
}

// GetNearestRoadDistance returns the 4-connected BFS step distance to
// the nearest pathway cell, capped at the configured max range (§9:
// "multi-source BFS ... step-wise 4-connected").
func (t *TransportSystem) GetNearestRoadDistance(x, y int32) int {
	return int(t.world.Proximity.At(int(x), int(y)))
}

// IsConnectedToNetwork reports whether (x, y) carries a non-zero
// network id.
func (t *TransportSystem) IsConnectedToNetwork(x, y int32) bool {
	return t.world.Network.At(int(x), int(y)) != 0
}

// AreConnected reports whether both cells are on the same pathway
// network (§4.4).
func (t *TransportSystem) AreConnected(x1, y1, x2, y2 int32) bool {
	a := t.world.Network.At(int(x1), int(y1))
	b := t.world.Network.At(int(x2), int(y2))
	return a != 0 && a == b
}

// GetCongestionAt returns clamp(flow/capacity, 0, 1) for the road at
// (x, y), or 0 when no road is present.
func (t *TransportSystem) GetCongestionAt(x, y int32) float32 {
	cell := t.world.Pathway.At(int(x), int(y))
	if !cell.Present() {
		return 0
	}
	e, ok := t.store.Entity(cell.Road)
	if !ok || !t.store.Road.HasAll(e) || !t.store.Traffic.HasAll(e) {
		return 0
	}
	road := t.store.Road.Get(e)
	traffic := t.store.Traffic.Get(e)
	if road.BaseCapacity <= 0 {
		return 0
	}
	c := traffic.FlowCurrent / road.BaseCapacity
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// GetTrafficVolumeAt returns the committed flow at (x, y), or 0.
func (t *TransportSystem) GetTrafficVolumeAt(x, y int32) float32 {
	cell := t.world.Pathway.At(int(x), int(y))
	if !cell.Present() {
		return 0
	}
	e, ok := t.store.Entity(cell.Road)
	if !ok || !t.store.Traffic.HasAll(e) {
		return 0
	}
	return t.store.Traffic.Get(e).FlowCurrent
}

// GetNetworkIDAt returns the connected-component id at (x, y); 0 means
// off-network. O(1) after a rebuild (§4.4).
func (t *TransportSystem) GetNetworkIDAt(x, y int32) uint16 {
	return t.world.Network.At(int(x), int(y))
}

// EmitContamination yields traffic contamination per road cell:
// lerp(5, 50, congestion) with type Traffic (§4.8).
func (t *TransportSystem) EmitContamination(emit func(x, y int32, output float32, typ grid.ContaminationType)) {
	for _, c := range t.roadCells {
		congestion := t.GetCongestionAt(c[0], c[1])
		out := 5 + (50-5)*congestion
		emit(c[0], c[1], out, grid.ContamTraffic)
	}
}
