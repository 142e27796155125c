// Package worldgen implements the deterministic procedural map generator
// of §4.3: elevation fBm, water-body flood fill, biome assignment, and
// player spawn-point selection, with a validate-and-retry loop. Grounded
// on the teacher's systems.ResourceField (seeded opensimplex field,
// Scale/Octaves/Lacunarity/Gain config) and on systems/terrain.go's
// grid-of-grids terrain representation, generalized from a fixed
// screen-space field into a seed+size-parameterized generator that must
// reproduce bit-identical output across platforms (§4.3, §8).
package worldgen

import (
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/prng"
)

// referenceSide is the map size the Config's noise parameters are tuned
// against; generators scale frequency/counts/radii relative to it
// (§4.3).
const referenceSide = 256

// Config holds the tunable generation parameters, loaded from
// config.WorldGen (§4.3's determinism rules bind regardless of which
// values are plugged in here).
type Config struct {
	Octaves     int
	Lacunarity  float64
	Persistence float64
	Scale       float64 // base frequency at the 256x256 reference size

	SeaLevel      uint8 // elevation threshold (0..31) below which terrain is water
	MoistureSeedOffset uint64 // XOR applied to seed for the moisture noise source

	MaxRetries int // §4.3: retry seed+1 up to this many times

	MinBuildableFraction float64 // §4.3: validation band, buildable-area >= 50%
	MinRivers            int
	MaxAnomalyTiles      int // single-tile terrain anomalies tolerated before rejection
}

// DefaultConfig returns the generator defaults used when config does not
// override them.
func DefaultConfig() Config {
	return Config{
		Octaves:              5,
		Lacunarity:           2.0,
		Persistence:          0.5,
		Scale:                0.015,
		SeaLevel:             10,
		MoistureSeedOffset:   0x9E3779B97F4A7C15,
		MaxRetries:           8,
		MinBuildableFraction: 0.50,
		MinRivers:            1,
		MaxAnomalyTiles:      0,
	}
}

// scaledScale returns the noise frequency adjusted so the world-space
// feature size stays constant regardless of map side (§4.3: "noise
// frequency inversely" scaled).
func (c Config) scaledScale(side int) float64 {
	return c.Scale * float64(referenceSide) / float64(side)
}

// SpawnPoint is a validated player starting location.
type SpawnPoint struct {
	X, Y    int32
	Quality float64
}

// Result is one generation attempt's full output.
type Result struct {
	Seed        uint64
	Attempts    int
	Terrain     *grid.TerrainGrid
	WaterBody   *grid.WaterBodyGrid
	FlowDir     *grid.FlowDirectionGrid
	SpawnPoints []SpawnPoint
	Report      ValidationReport
}

// Generator produces deterministic maps from a 64-bit seed (§4.3).
type Generator struct {
	Config Config
}

// NewGenerator creates a generator with the given config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{Config: cfg}
}

// Generate runs the full terrain/water/spawn pipeline for the given
// seed and map side, validating the result and retrying with seed+1 up
// to Config.MaxRetries times if validation fails, keeping the
// best-scoring attempt seen (§4.3, §7: "failed map generation triggers
// a retry with seed+1; after N retries, the best attempt is accepted").
//
// onRetry, if non-nil, is called once per rejected attempt so the
// caller can emit events.MapGenerationRetried without worldgen
// depending on the events package.
func (g *Generator) Generate(seed uint64, side int, onRetry func(attempt int, seed uint64, reason string)) (*Result, error) {
	if !grid.IsValidSide(side) {
		return nil, ErrInvalidSide
	}

	var best *Result
	var bestScore float64 = -1

	for attempt := 0; attempt <= g.Config.MaxRetries; attempt++ {
		trySeed := seed + uint64(attempt)
		result := g.generateOnce(trySeed, side)
		result.Attempts = attempt + 1

		report := Validate(result, g.Config)
		result.Report = report

		if report.Passed() {
			return result, nil
		}
		if onRetry != nil {
			onRetry(attempt, trySeed, report.FailureReason())
		}
		if report.Score > bestScore {
			bestScore = report.Score
			best = result
		}
	}

	return best, nil
}

// generateOnce runs one deterministic generation pass: single-threaded,
// no system RNG, no float contraction-sensitive fast paths (§4.3).
func (g *Generator) generateOnce(seed uint64, side int) *Result {
	cfg := g.Config
	elevNoise := prng.NewSimplexNoise(int64(seed))
	elevFBm := prng.NewFBm(elevNoise, cfg.Octaves, cfg.Lacunarity, cfg.Persistence, cfg.scaledScale(side))

	moistNoise := prng.NewSimplexNoise(int64(seed ^ cfg.MoistureSeedOffset))
	moistFBm := prng.NewFBm(moistNoise, cfg.Octaves, cfg.Lacunarity, cfg.Persistence, cfg.scaledScale(side)*1.7)

	terrain := grid.NewTerrainGrid(side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			elevByte := elevFBm.Sample2DByte(float64(x), float64(y))
			elevation := elevByte >> 3 // 0..31
			moisture := moistFBm.Sample2DByte(float64(x), float64(y))

			terrainType := grid.Substrate
			switch {
			case elevation < cfg.SeaLevel/2:
				terrainType = grid.DeepVoid
			case elevation < cfg.SeaLevel:
				terrainType = grid.StillBasin
			}

			flags := grid.TerrainFlag(0)
			if terrainType == grid.Substrate {
				flags |= grid.FlagBuildable
			}

			terrain.Set(x, y, grid.TerrainCell{
				Type:      terrainType,
				Elevation: elevation,
				Moisture:  moisture,
				Flags:     flags,
			})
		}
	}

	carveRivers(terrain, prng.NewXoshiro256(seed), side, cfg)

	waterBody, flowDir := deriveWaterBodies(terrain, side)
	spawns := selectSpawnPoints(terrain, prng.NewXoshiro256(seed^0xA5A5A5A5), side, ids.MaxPlayers)

	return &Result{
		Seed:        seed,
		Terrain:     terrain,
		WaterBody:   waterBody,
		FlowDir:     flowDir,
		SpawnPoints: spawns,
	}
}
