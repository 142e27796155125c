package worldgen

import (
	"math"

	"github.com/pthm-cable/citycore/grid"
)

// spawnClusterRadius scales with sqrt(side) relative to the 256x256
// reference, per §4.3's "cluster radii with sqrt(side)" rule.
func spawnClusterRadius(side int) int {
	ratio := float64(side) / float64(referenceSide)
	return int(12 * math.Sqrt(ratio))
}

// selectSpawnPoints picks n candidate starting locations, each scored by
// local buildable-land fraction within spawnClusterRadius; candidates are
// drawn only from tiles at least a margin away from the map edge (§4.3: "all player spawn points meet a minimum
// quality score", validated in Validate).
func selectSpawnPoints(terrain *grid.TerrainGrid, rng interface{ IntN(int) int }, side, n int) []SpawnPoint {
	radius := spawnClusterRadius(side)
	margin := radius * 2
	if margin*2 >= side {
		margin = side / 4
	}

	points := make([]SpawnPoint, 0, n)
	const maxAttempts = 200

	for len(points) < n {
		attempted := 0
		bestX, bestY, bestScore := -1, -1, -1.0
		for attempted < maxAttempts {
			attempted++
			x := margin + rng.IntN(side-2*margin)
			y := margin + rng.IntN(side-2*margin)
			score := spawnQuality(terrain, x, y, radius)
			if score > bestScore {
				bestScore, bestX, bestY = score, x, y
			}
		}
		if bestX < 0 {
			break
		}
		points = append(points, SpawnPoint{X: int32(bestX), Y: int32(bestY), Quality: bestScore})
	}

	return points
}

// spawnQuality returns the fraction of buildable (Substrate) tiles
// within a square of the given radius around (x, y).
func spawnQuality(terrain *grid.TerrainGrid, x, y, radius int) float64 {
	buildable, total := 0, 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if !terrain.InBounds(nx, ny) {
				continue
			}
			total++
			if terrain.At(nx, ny).Type == grid.Substrate {
				buildable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(buildable) / float64(total)
}
