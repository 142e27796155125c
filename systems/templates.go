package systems

import (
	"fmt"

	"github.com/pthm-cable/citycore/components"
	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/prng"
)

// templateKey indexes the registry's per-bucket pools.
type templateKey struct {
	Zone    components.ZoneType
	Density components.Density
}

// TemplateRegistry holds the immutable building templates, loaded once
// from config at startup and never mutated thereafter (§4.10).
type TemplateRegistry struct {
	byID  map[uint32]*components.Template
	pools map[templateKey][]*components.Template
}

// NewTemplateRegistry converts config seed data into the immutable
// registry. Duplicate or zero ids are rejected.
func NewTemplateRegistry(seed []config.TemplateConfig) (*TemplateRegistry, error) {
	r := &TemplateRegistry{
		byID:  make(map[uint32]*components.Template, len(seed)),
		pools: make(map[templateKey][]*components.Template),
	}

	for i := range seed {
		tc := &seed[i]
		if tc.ID == 0 {
			return nil, fmt.Errorf("template %q: id must be non-zero", tc.Name)
		}
		if _, dup := r.byID[tc.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id %d", tc.Name, tc.ID)
		}

		zone, err := parseZone(tc.Zone)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", tc.Name, err)
		}
		density, err := parseDensity(tc.Density)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", tc.Name, err)
		}

		t := &components.Template{
			ID:                tc.ID,
			Name:              tc.Name,
			ZoneType:          zone,
			Density:           density,
			FootprintW:        tc.FootprintW,
			FootprintH:        tc.FootprintH,
			ConstructionTicks: tc.ConstructionTicks,
			ConstructionCost:  ids.Credits(tc.ConstructionCost),
			MinLandValue:      tc.MinLandValue,
			MinLevel:          tc.MinLevel,
			MaxLevel:          tc.MaxLevel,
			BaseCapacity:      tc.BaseCapacity,
			EnergyRequired:    float32(tc.EnergyRequired),
			FluidRequired:     float32(tc.FluidRequired),
			ContaminationOut:  float32(tc.ContaminationOut),
			ColorAccentCount:  tc.ColorAccentCount,
			SelectionWeight:   float32(tc.SelectionWeight),
		}
		r.byID[t.ID] = t
		k := templateKey{Zone: zone, Density: density}
		r.pools[k] = append(r.pools[k], t)
	}

	return r, nil
}

func parseZone(s string) (components.ZoneType, error) {
	switch s {
	case "habitation":
		return components.ZoneHabitation, nil
	case "exchange":
		return components.ZoneExchange, nil
	case "fabrication":
		return components.ZoneFabrication, nil
	default:
		return 0, fmt.Errorf("unknown zone %q", s)
	}
}

func parseDensity(s string) (components.Density, error) {
	switch s {
	case "low":
		return components.DensityLow, nil
	case "high":
		return components.DensityHigh, nil
	default:
		return 0, fmt.Errorf("unknown density %q", s)
	}
}

// ByID returns the template with the given id, or nil.
func (r *TemplateRegistry) ByID(id uint32) *components.Template {
	return r.byID[id]
}

// Pool returns the templates in the (zone, density) bucket. The returned
// slice is the registry's own; callers must not mutate it.
func (r *TemplateRegistry) Pool(zone components.ZoneType, density components.Density) []*components.Template {
	return r.pools[templateKey{Zone: zone, Density: density}]
}

// Count returns the number of registered templates.
func (r *TemplateRegistry) Count() int { return len(r.byID) }

// PickWeighted selects a template from the given pool by selection
// weight using the simulation's deterministic generator, considering
// only templates whose minimum land value admits the candidate tile;
// level bounds are not checked. Returns nil if no template qualifies.
func (r *TemplateRegistry) PickWeighted(pool []*components.Template, landValue uint8, rng *prng.Xoshiro256) *components.Template {
	var total float64
	for _, t := range pool {
		if landValue < t.MinLandValue {
			continue
		}
		total += float64(t.SelectionWeight)
	}
	if total <= 0 {
		return nil
	}

	pick := rng.Float64() * total
	for _, t := range pool {
		if landValue < t.MinLandValue {
			continue
		}
		pick -= float64(t.SelectionWeight)
		if pick < 0 {
			return t
		}
	}
	// Float underflow edge: fall back to the last qualifying template.
	for i := len(pool) - 1; i >= 0; i-- {
		if landValue >= pool[i].MinLandValue {
			return pool[i]
		}
	}
	return nil
}
