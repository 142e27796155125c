package prng

// FBm layers octaves of simplex noise into fractal brownian motion,
// grounded on the teacher's ResourceField capacity update (Scale,
// Octaves, Lacunarity, Gain fields feeding a summed-octave noise loop).
type FBm struct {
	Noise      *SimplexNoise
	Octaves    int
	Lacunarity float64 // frequency multiplier per octave
	Persistence float64 // amplitude multiplier per octave
	Scale      float64 // base frequency
}

// NewFBm creates an fBm sampler over the given noise source.
func NewFBm(noise *SimplexNoise, octaves int, lacunarity, persistence, scale float64) *FBm {
	return &FBm{
		Noise:       noise,
		Octaves:     octaves,
		Lacunarity:  lacunarity,
		Persistence: persistence,
		Scale:       scale,
	}
}

// Sample2D returns an fBm value at (x, y), normalized to roughly [-1, 1].
func (f *FBm) Sample2D(x, y float64) float64 {
	var sum, amplitude, frequency, norm float64
	amplitude = 1
	frequency = f.Scale

	for o := 0; o < f.Octaves; o++ {
		sum += f.Noise.Sample2D(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= f.Persistence
		frequency *= f.Lacunarity
	}

	if norm == 0 {
		return 0
	}
	return sum / norm
}

// Sample2DByte returns the fBm sample mapped into a byte (0..255), the
// form used by the golden-output vector and by terrain elevation storage.
func (f *FBm) Sample2DByte(x, y float64) byte {
	v := (f.Sample2D(x, y) + 1) * 0.5 // map [-1,1] -> [0,1]
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(v * 255)
}
