package worldgen

import "github.com/pthm-cable/citycore/grid"

// riverCount scales with map area relative to the 256x256 reference,
// per §4.3's "feature counts with area (proportional to side^2)" rule.
func riverCount(side int) int {
	ratio := float64(side*side) / float64(referenceSide*referenceSide)
	n := int(2 * ratio)
	if n < 1 {
		n = 1
	}
	return n
}

// carveRivers walks a small number of deterministic descending paths
// from randomly chosen start tiles, each following steepest descent
// (carveOnePath), converting each stepped tile to FlowChannel. This is a simplified
// stand-in for a full hydrology simulation, sufficient to satisfy the
// "at least one river" validation band (§4.3) while remaining
// single-threaded and seed-deterministic.
func carveRivers(terrain *grid.TerrainGrid, rng interface{ IntN(int) int }, side int, cfg Config) {
	count := riverCount(side)
	for i := 0; i < count; i++ {
		x := rng.IntN(side)
		y := rng.IntN(side)
		carveOnePath(terrain, x, y, side)
	}
}

// carveOnePath steepest-descends from (x, y) until it reaches water or
// a max step budget, marking each stepped Substrate tile as FlowChannel.
func carveOnePath(terrain *grid.TerrainGrid, x, y, side int) {
	const maxSteps = 512
	for step := 0; step < maxSteps; step++ {
		cell := terrain.At(x, y)
		if cell.Type != grid.Substrate {
			return
		}
		cell.Type = grid.FlowChannel
		terrain.Set(x, y, cell)

		bestX, bestY := x, y
		bestElev := cell.Elevation
		for _, d := range [8][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}} {
			nx, ny := x+d[0], y+d[1]
			if !terrain.InBounds(nx, ny) {
				continue
			}
			n := terrain.At(nx, ny)
			if n.Elevation <= bestElev {
				bestElev = n.Elevation
				bestX, bestY = nx, ny
			}
		}
		if bestX == x && bestY == y {
			return // local minimum reached without hitting water
		}
		x, y = bestX, bestY
		_ = side
	}
}
