package systems

import "testing"

// §8 scenario 4: demand caps are a pure function of capacities and
// infrastructure factors.
func TestDemandCaps(t *testing.T) {
	caps := ComputeDemandCaps(1000, 500, 0, 0.5, 1.0, 0.3)
	if caps.Habitation != 500 {
		t.Fatalf("habitation cap = %d, want 500", caps.Habitation)
	}
	if caps.Exchange != 150 {
		t.Fatalf("exchange cap = %d, want 150", caps.Exchange)
	}
	if caps.Fabrication != 0 {
		t.Fatalf("fabrication cap = %d, want 0", caps.Fabrication)
	}
}

func TestDemandCapsClampFactors(t *testing.T) {
	caps := ComputeDemandCaps(100, 100, 100, 2.0, -1.0, 1.5)
	if caps.Habitation != 0 {
		t.Fatalf("negative fluid factor should zero habitation, got %d", caps.Habitation)
	}
	if caps.Exchange != 100 {
		t.Fatalf("transport factor should clamp to 1, got %d", caps.Exchange)
	}
}
