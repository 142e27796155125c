// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Map           MapConfig           `yaml:"map"`
	Building      BuildingConfig      `yaml:"building"`
	Transport     TransportConfig     `yaml:"transport"`
	Energy        EnergyConfig        `yaml:"energy"`
	Fluid         FluidConfig         `yaml:"fluid"`
	Contamination ContaminationConfig `yaml:"contamination"`
	LandValue     LandValueConfig     `yaml:"land_value"`
	Rail          RailConfig          `yaml:"rail"`
	Port          PortConfig          `yaml:"port"`
	Population    PopulationConfig    `yaml:"population"`
	WorldGen      WorldGenConfig      `yaml:"worldgen"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Templates     []TemplateConfig    `yaml:"templates"`
}

// MapConfig holds the world dimensions and seed defaults.
type MapConfig struct {
	Side int    `yaml:"side"` // 128, 256 or 512
	Seed uint64 `yaml:"seed"`
}

// BuildingConfig holds the building lifecycle tunables.
type BuildingConfig struct {
	// Shared grace period in ticks; per-service overrides of 0 mean
	// "use the shared value".
	ServiceGraceTicks   uint32 `yaml:"service_grace_ticks"`
	EnergyGraceTicks    uint32 `yaml:"energy_grace_ticks"`
	FluidGraceTicks     uint32 `yaml:"fluid_grace_ticks"`
	TransportGraceTicks uint32 `yaml:"transport_grace_ticks"`

	AbandonTimerTicks int32  `yaml:"abandon_timer_ticks"`
	DerelictTicks     uint64 `yaml:"derelict_ticks"`
	DebrisClearTicks  int32  `yaml:"debris_clear_ticks"`

	// MaxRoadDistance is the spawn checker's road-accessibility radius.
	MaxRoadDistance int `yaml:"max_road_distance"`

	// DemolitionBaseCostRatio scales the state-dependent demolition cost.
	DemolitionBaseCostRatio float64 `yaml:"demolition_base_cost_ratio"`

	// MaxSpawnsPerTick bounds the spawn loop independently of demand caps.
	MaxSpawnsPerTick int `yaml:"max_spawns_per_tick"`

	// TerraformRefundRatio is the fraction of remaining-work cost
	// refunded on cancellation.
	TerraformRefundRatio float64 `yaml:"terraform_refund_ratio"`

	// TerraformCostPerTick prices a grade/terraform operation.
	TerraformCostPerTick int64 `yaml:"terraform_cost_per_tick"`
}

// TransportConfig holds the road network tunables.
type TransportConfig struct {
	GracePeriodTicks  uint64  `yaml:"grace_period_ticks"`
	DecayInterval     uint64  `yaml:"decay_interval"`
	BaseDecay         float64 `yaml:"base_decay"`
	ProximityMaxRange int     `yaml:"proximity_max_range"`
	// FlowInjectionPerOccupant converts adjacent building occupancy into
	// per-tick road flow.
	FlowInjectionPerOccupant float64 `yaml:"flow_injection_per_occupant"`
}

// EnergyConfig holds the energy pool tunables.
type EnergyConfig struct {
	// MarginalSurplusRatio is the surplus/consumed ratio below which a
	// meeting pool is Marginal instead of Healthy.
	MarginalSurplusRatio float64 `yaml:"marginal_surplus_ratio"`
	// CollapseDeficitTicks is how long a pool may stay in Deficit before
	// it transitions to Collapse.
	CollapseDeficitTicks uint64 `yaml:"collapse_deficit_ticks"`
	// AgingHalfLifeTicks controls how fast a nexus decays toward its
	// aging floor.
	AgingHalfLifeTicks float64 `yaml:"aging_half_life_ticks"`
	AgingFloorPct      float64 `yaml:"aging_floor_pct"`
	// SupplyRadius is how far from a producer/conduit tile a consumer
	// still counts as connected.
	SupplyRadius int `yaml:"supply_radius"`
}

// FluidConfig holds the fluid pool tunables.
type FluidConfig struct {
	MarginalSurplusRatio float64 `yaml:"marginal_surplus_ratio"`
	CollapseDeficitTicks uint64  `yaml:"collapse_deficit_ticks"`
	SupplyRadius         int     `yaml:"supply_radius"`
	// ExtractorMaxWaterDistance is the placement validation radius to the
	// nearest water-body tile.
	ExtractorMaxWaterDistance int `yaml:"extractor_max_water_distance"`
}

// ContaminationConfig holds the diffusion field tunables.
type ContaminationConfig struct {
	NaturalDecayPerTick uint8 `yaml:"natural_decay_per_tick"`
	ToxicThreshold      uint8 `yaml:"toxic_threshold"`
	// TerrainBlightOutput is the fixed per-tile per-tick output of a
	// blight-mire tile.
	TerrainBlightOutput float64 `yaml:"terrain_blight_output"`
}

// LandValueConfig holds the derived desirability grid tunables.
type LandValueConfig struct {
	ContaminationWeight float64 `yaml:"contamination_weight"`
	ProximityWeight     float64 `yaml:"proximity_weight"`
	DiffusionRate       float64 `yaml:"diffusion_rate"`
	UpdateInterval      uint64  `yaml:"update_interval"`
}

// RailConfig holds the rail subsystem tunables.
type RailConfig struct {
	TerminalCoverageRadius uint8   `yaml:"terminal_coverage_radius"`
	TerminalMaxReduction   float64 `yaml:"terminal_max_reduction"`
}

// PortConfig holds the port/trade subsystem tunables.
type PortConfig struct {
	IncomeWindowPhases int `yaml:"income_window_phases"`
	// BaseIncomePerTier is the per-cycle income of an active agreement
	// before its income bonus applies, indexed by tier.
	BaseIncomePerTier []int64 `yaml:"base_income_per_tier"`
}

// PopulationConfig holds the aggregate/health/milestone tunables.
type PopulationConfig struct {
	MilestoneThresholds  []uint64 `yaml:"milestone_thresholds"`
	MilestoneNames       []string `yaml:"milestone_names"`
	MedicalCoverageMax   float64  `yaml:"medical_coverage_max"`
	ContaminationPenalty float64  `yaml:"contamination_penalty"`
	FluidBonus           float64  `yaml:"fluid_bonus"`
}

// WorldGenConfig holds the procedural generation tunables.
type WorldGenConfig struct {
	Octaves     int     `yaml:"octaves"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Persistence float64 `yaml:"persistence"`
	Scale       float64 `yaml:"scale"`
	SeaLevel    uint8   `yaml:"sea_level"`
	MaxRetries  int     `yaml:"max_retries"`

	MinBuildableFraction float64 `yaml:"min_buildable_fraction"`
	MinRivers            int     `yaml:"min_rivers"`
	MaxAnomalyTiles      int     `yaml:"max_anomaly_tiles"`
}

// TelemetryConfig holds the stats-export tunables.
type TelemetryConfig struct {
	OutputDir      string `yaml:"output_dir"`
	SampleInterval uint64 `yaml:"sample_interval"`
}

// TemplateConfig is one building template's seed data. The template
// registry converts these into immutable components.Template records at
// startup.
type TemplateConfig struct {
	ID                uint32  `yaml:"id"`
	Name              string  `yaml:"name"`
	Zone              string  `yaml:"zone"`    // habitation | exchange | fabrication
	Density           string  `yaml:"density"` // low | high
	FootprintW        uint8   `yaml:"footprint_w"`
	FootprintH        uint8   `yaml:"footprint_h"`
	ConstructionTicks uint32  `yaml:"construction_ticks"`
	ConstructionCost  int64   `yaml:"construction_cost"`
	MinLandValue      uint8   `yaml:"min_land_value"`
	MinLevel          uint8   `yaml:"min_level"`
	MaxLevel          uint8   `yaml:"max_level"`
	BaseCapacity      uint32  `yaml:"base_capacity"`
	EnergyRequired    float64 `yaml:"energy_required"`
	FluidRequired     float64 `yaml:"fluid_required"`
	ContaminationOut  float64 `yaml:"contamination_out"`
	ColorAccentCount  uint8   `yaml:"color_accent_count"`
	SelectionWeight   float64 `yaml:"selection_weight"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// WriteYAML saves the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
