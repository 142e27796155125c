package prng

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// SimplexNoise wraps a seeded 2-D simplex generator. Grounded directly on
// the teacher's systems.ResourceField, which seeds the identical
// opensimplex-go generator from a single int64 seed and samples it every
// tick for an animated field; here it drives static terrain generation
// instead of an animated resource potential.
type SimplexNoise struct {
	noise opensimplex.Noise
}

// NewSimplexNoise creates a generator seeded deterministically from seed.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{noise: opensimplex.New(seed)}
}

// Sample2D returns a noise value in [-1, 1] at (x, y).
func (s *SimplexNoise) Sample2D(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}
