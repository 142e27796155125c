package prng

import "testing"

// Cross-platform golden output vectors for seed 12345. The xoshiro256**
// outputs are pinned as literals (pure integer arithmetic, identical on
// every platform). The simplex and fBm samples go through the noise
// library's float pipeline, so alongside the pinned integers this suite
// locks down the properties the float half of the vector depends on:
// reseeding reproduces the exact sequence, distinct seeds diverge, and
// the generators never draw from time/system entropy. A reference-
// platform capture of the four simplex floats and four fBm bytes should
// replace the self-consistency checks when available.

const goldenSeed = 12345

func TestXoshiro256DeterministicReseed(t *testing.T) {
	a := NewXoshiro256(goldenSeed)
	b := NewXoshiro256(goldenSeed)

	for i := 0; i < 8; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("sample %d: reseeded generators diverged: %d != %d", i, va, vb)
		}
	}
}

func TestXoshiro256DistinctSeedsDiverge(t *testing.T) {
	a := NewXoshiro256(goldenSeed)
	b := NewXoshiro256(goldenSeed + 1)

	same := true
	for i := 0; i < 8; i++ {
		if a.Next() != b.Next() {
			same = false
		}
	}
	if same {
		t.Fatal("seed and seed+1 produced identical sequences")
	}
}

func TestSimplexNoiseDeterministicReseed(t *testing.T) {
	a := NewSimplexNoise(goldenSeed)
	b := NewSimplexNoise(goldenSeed)

	coords := [][2]float64{{0, 0}, {1.5, -2.25}, {100.125, 7}, {-50, -50}}
	for _, c := range coords {
		va := a.Sample2D(c[0], c[1])
		vb := b.Sample2D(c[0], c[1])
		if va != vb {
			t.Fatalf("sample (%v) diverged: %v != %v", c, va, vb)
		}
		if va < -1.0001 || va > 1.0001 {
			t.Fatalf("sample (%v) out of range: %v", c, va)
		}
	}
}

func TestFBmDeterministicReseed(t *testing.T) {
	mk := func() *FBm {
		return NewFBm(NewSimplexNoise(goldenSeed), 4, 2.0, 0.5, 0.01)
	}
	a, b := mk(), mk()

	coords := [][2]float64{{0, 0}, {64, 64}, {200, 33}, {500, 500}}
	for _, c := range coords {
		ba := a.Sample2DByte(c[0], c[1])
		bb := b.Sample2DByte(c[0], c[1])
		if ba != bb {
			t.Fatalf("fBm byte at (%v) diverged: %d != %d", c, ba, bb)
		}
	}
}

// TestGoldenVectorSeed12345 pins the cross-platform vector (§4.3, §8).
// The xoshiro256** outputs are pure 64-bit integer arithmetic and are
// pinned to literal expected values; the simplex/fBm samples depend on
// the noise library's float pipeline and are not pinned to literals:
// here the simplex samples are only checked to lie in [-1, 1] and the
// fBm bytes are computed without an assertion.
func TestGoldenVectorSeed12345(t *testing.T) {
	expected := [8]uint64{
		0xBE6A36374160D49B,
		0x214AAA0637A688C6,
		0xF69D16DE9954D388,
		0x0C60048C4E96E033,
		0x8E2076AEED51C648,
		0x02BBCC1C1FC50F84,
		0x28E72A4FEC84F699,
		0x4BB9D7CBB8DDDEBE,
	}

	x := NewXoshiro256(goldenSeed)
	for i, want := range expected {
		got := x.Next()
		if got != want {
			t.Errorf("xoshiro output %d = %#016x, want %#016x", i, got, want)
		}
	}

	n := NewSimplexNoise(goldenSeed)
	simplexSamples := [4]float64{
		n.Sample2D(0, 0),
		n.Sample2D(1, 1),
		n.Sample2D(10, -10),
		n.Sample2D(123.456, 78.9),
	}
	for i, v := range simplexSamples {
		if v < -1 || v > 1 {
			t.Errorf("simplex sample %d out of [-1,1]: %v", i, v)
		}
	}

	f := NewFBm(NewSimplexNoise(goldenSeed), 4, 2.0, 0.5, 0.01)
	var fbmBytes [4]byte
	coords := [4][2]float64{{0, 0}, {64, 64}, {128, 128}, {255, 255}}
	for i, c := range coords {
		fbmBytes[i] = f.Sample2DByte(c[0], c[1])
	}
}
