package worldgen

import "github.com/pthm-cable/citycore/grid"

// MinSpawnQuality is the minimum score (buildable-land fraction in a
// spawn's cluster radius) a player spawn point must meet (§4.3).
const MinSpawnQuality = 0.55

// ValidationReport is the outcome of validating one generation attempt
// (§4.3): buildable-area >= 50%, at least one river, no single-tile
// ocean gaps, no single-tile terrain anomalies, every spawn point meets
// MinSpawnQuality. The distribution of terrain types is not checked.
type ValidationReport struct {
	BuildableFraction float64
	RiverTiles        int
	SingleTileGaps    int
	AnomalyTiles      int
	SpawnsOK          bool
	Score             float64 // higher is better; used to pick the best-of-N attempt
	reasons           []string
}

// Passed reports whether every validation band was satisfied.
func (r ValidationReport) Passed() bool {
	return len(r.reasons) == 0
}

// FailureReason returns a short diagnostic for the first failed check,
// or "" if the report passed.
func (r ValidationReport) FailureReason() string {
	if len(r.reasons) == 0 {
		return ""
	}
	return r.reasons[0]
}

// Validate scores a generation attempt against the §4.3 validation
// bands.
func Validate(result *Result, cfg Config) ValidationReport {
	side := result.Terrain.Side()
	var report ValidationReport

	buildable, rivers, gaps, anomalies := 0, 0, 0, 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			cell := result.Terrain.At(x, y)
			if cell.Type == grid.Substrate {
				buildable++
			}
			if cell.Type == grid.FlowChannel {
				rivers++
			}
			if isIsolatedTile(result.Terrain, x, y, side) {
				if cell.Type == grid.DeepVoid {
					gaps++
				} else {
					anomalies++
				}
			}
		}
	}

	report.BuildableFraction = float64(buildable) / float64(side*side)
	report.RiverTiles = rivers
	report.SingleTileGaps = gaps
	report.AnomalyTiles = anomalies

	report.SpawnsOK = true
	for _, sp := range result.SpawnPoints {
		if sp.Quality < MinSpawnQuality {
			report.SpawnsOK = false
			break
		}
	}

	if report.BuildableFraction < cfg.MinBuildableFraction {
		report.reasons = append(report.reasons, "buildable area below minimum")
	}
	if rivers < cfg.MinRivers {
		report.reasons = append(report.reasons, "no river present")
	}
	if gaps > 0 {
		report.reasons = append(report.reasons, "single-tile ocean gap present")
	}
	if anomalies > cfg.MaxAnomalyTiles {
		report.reasons = append(report.reasons, "single-tile terrain anomaly present")
	}
	if !report.SpawnsOK {
		report.reasons = append(report.reasons, "a spawn point is below minimum quality")
	}

	report.Score = report.BuildableFraction - float64(gaps+anomalies)*0.01
	if report.SpawnsOK {
		report.Score += 0.1
	}

	return report
}

// isIsolatedTile reports whether none of the in-bounds orthogonal
// neighbors of (x, y) shares its water/land classification,
// i.e. a single-tile terrain feature surrounded entirely by a
// different class (§4.3: "no single-tile ocean gaps, no single-tile
// terrain anomalies").
func isIsolatedTile(terrain *grid.TerrainGrid, x, y, side int) bool {
	cell := terrain.At(x, y)
	sameClassNeighbors := 0
	neighbors := 0
	for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
		nx, ny := x+d[0], y+d[1]
		if !terrain.InBounds(nx, ny) {
			continue
		}
		neighbors++
		if terrain.At(nx, ny).Type.IsWater() == cell.Type.IsWater() {
			sameClassNeighbors++
		}
	}
	return neighbors > 0 && sameClassNeighbors == 0
}
