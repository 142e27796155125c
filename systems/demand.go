package systems

// DemandCaps bounds how many new buildings of each zone may materialize
// per tick regardless of abstract demand (§4.9). It is a pure function
// of raw capacities and infrastructure factors; no state is kept.
type DemandCaps struct {
	Habitation  uint32
	Exchange    uint32
	Fabrication uint32
}

// clamp01 limits an infrastructure factor to [0, 1].
func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ComputeDemandCaps derives per-zone growth caps from raw capacities
// and infrastructure factors in [0, 1]:
//
//	habitation  = housing_capacity * energy_factor * fluid_factor
//	exchange    = exchange_jobs * transport_factor
//	fabrication = fabrication_jobs * transport_factor
func ComputeDemandCaps(housingCapacity, exchangeJobs, fabricationJobs uint32, energyFactor, fluidFactor, transportFactor float64) DemandCaps {
	e := clamp01(energyFactor)
	f := clamp01(fluidFactor)
	t := clamp01(transportFactor)
	return DemandCaps{
		Habitation:  uint32(float64(housingCapacity) * e * f),
		Exchange:    uint32(float64(exchangeJobs) * t),
		Fabrication: uint32(float64(fabricationJobs) * t),
	}
}
