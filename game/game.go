// Package game assembles the simulation core: it generates the world,
// constructs every subsystem, registers them with the orchestrator, and
// wires the provider bundle. Nothing in here runs simulation logic of
// its own; it is the composition root the operator binary drives.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/grid"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/providers"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/serialize"
	"github.com/pthm-cable/citycore/sim"
	"github.com/pthm-cable/citycore/systems"
	"github.com/pthm-cable/citycore/telemetry"
	"github.com/pthm-cable/citycore/worldgen"
	"github.com/pthm-cable/citycore/worldstore"
)

// StartingCredits is each overseer's opening balance.
const StartingCredits ids.Credits = 100_000

// Game owns the fully wired simulation core.
type Game struct {
	Cfg *config.Config

	World *grid.World
	Store *worldstore.Store
	Bus   *events.Bus

	Orchestrator *sim.Orchestrator
	Scheduler    *sim.Scheduler

	Registry *systems.TemplateRegistry
	Credits  *systems.CreditLedger

	Transport     *systems.TransportSystem
	Rail          *systems.RailSystem
	Port          *systems.PortSystem
	Energy        *systems.EnergySystem
	Fluid         *systems.FluidSystem
	Contamination *systems.ContaminationSystem
	LandValue     *systems.LandValueSystem
	Building      *systems.BuildingSystem
	Terraform     *systems.TerraformSystem
	Population    *systems.PopulationSystem

	Output    *telemetry.OutputManager
	GenResult *worldgen.Result
}

// New generates the world for cfg and wires every subsystem.
func New(cfg *config.Config) (*Game, error) {
	side := cfg.Map.Side
	if !grid.IsValidSide(side) {
		return nil, fmt.Errorf("config map.side %d: must be one of 128/256/512", side)
	}

	registry, err := systems.NewTemplateRegistry(cfg.Templates)
	if err != nil {
		return nil, fmt.Errorf("loading template registry: %w", err)
	}

	world := grid.NewWorld(side)
	store := worldstore.New()
	bus := events.NewBus()

	gen := worldgen.NewGenerator(worldgen.Config{
		Octaves:              cfg.WorldGen.Octaves,
		Lacunarity:           cfg.WorldGen.Lacunarity,
		Persistence:          cfg.WorldGen.Persistence,
		Scale:                cfg.WorldGen.Scale,
		SeaLevel:             cfg.WorldGen.SeaLevel,
		MoistureSeedOffset:   0x9E3779B97F4A7C15,
		MaxRetries:           cfg.WorldGen.MaxRetries,
		MinBuildableFraction: cfg.WorldGen.MinBuildableFraction,
		MinRivers:            cfg.WorldGen.MinRivers,
		MaxAnomalyTiles:      cfg.WorldGen.MaxAnomalyTiles,
	})
	result, err := gen.Generate(cfg.Map.Seed, side, func(attempt int, seed uint64, reason string) {
		bus.MapGenerationRetried.Push(events.MapGenerationRetried{
			Attempt: attempt, Seed: seed, RejectReason: reason,
		})
		slog.Warn("map generation retried", "attempt", attempt, "seed", seed, "reason", reason)
	})
	if err != nil {
		return nil, fmt.Errorf("generating map: %w", err)
	}
	world.Terrain = result.Terrain
	world.WaterBody = result.WaterBody
	world.FlowDirection = result.FlowDir

	g := &Game{
		Cfg:       cfg,
		World:     world,
		Store:     store,
		Bus:       bus,
		Registry:  registry,
		Credits:   systems.NewCreditLedger(StartingCredits),
		GenResult: result,
	}

	g.Transport = systems.NewTransportSystem(world, store, cfg.Transport)
	g.Rail = systems.NewRailSystem(world, store, cfg.Rail)
	g.Port = systems.NewPortSystem(world, store, cfg.Port)
	g.Energy = systems.NewEnergySystem(world, store, registry, cfg.Energy)
	g.Fluid = systems.NewFluidSystem(world, store, registry, cfg.Fluid)
	g.Contamination = systems.NewContaminationSystem(world, store, cfg.Contamination)
	g.LandValue = systems.NewLandValueSystem(world, cfg.LandValue)
	g.Building = systems.NewBuildingSystem(world, store, registry, cfg.Building, cfg.Map.Seed)
	g.Terraform = systems.NewTerraformSystem(world, store, cfg.Building, nil, g.Contamination.InvalidateTerrainSources)
	g.Population = systems.NewPopulationSystem(store, g.Contamination, g.LandValue, g.Port, cfg.Population)

	g.Contamination.RegisterEmitter(g.Transport)
	g.Contamination.RegisterEmitter(g.Building)
	g.Transport.SetTrafficReducer(g.Rail)

	orch := sim.NewOrchestrator(world, store, bus)
	orch.Providers = providers.Providers{
		Transport: g.Transport,
		Energy:    g.Energy,
		Fluid:     g.Fluid,
		Credit:    g.Credits,
		Port:      g.Port,
		Building:  g.Building,
	}
	orch.Register(g.Contamination)
	orch.Register(g.LandValue)
	orch.Register(g.Building)
	orch.Register(g.Terraform)
	orch.Register(g.Energy)
	orch.Register(g.Fluid)
	orch.Register(g.Transport)
	orch.Register(g.Rail)
	orch.Register(g.Port)
	orch.Register(g.Population)

	g.Orchestrator = orch
	g.Scheduler = sim.NewScheduler(orch)

	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry output: %w", err)
	}
	g.Output = output
	orch.OnDrain = g.consumeEvents

	return g, nil
}

// Update folds wall-clock time into the scheduler (§4.1). Returns the
// number of ticks advanced and the render interpolation factor.
func (g *Game) Update(wallDelta float64) (int, float64) {
	return g.Scheduler.Advance(wallDelta)
}

// consumeEvents is the post-tick drain hook: milestones go to the log
// and the CSV export, population samples on the configured cadence.
func (g *Game) consumeEvents(drained events.DrainedTick) {
	for _, m := range drained.Milestone {
		slog.Info("milestone", "player", m.Owner, "name", m.Name, "population", m.Population, "upward", m.Upward)
		if err := g.Output.WriteMilestone(m); err != nil {
			slog.Error("milestone export failed", "error", err)
		}
	}

	interval := g.Cfg.Telemetry.SampleInterval
	if interval == 0 || g.Output == nil {
		return
	}
	for _, tc := range drained.TickComplete {
		if uint64(tc.Tick)%interval != 0 {
			continue
		}
		err := g.Output.SamplePlayers(tc.Tick, g.Population.PopulationOf, g.Population.HealthIndexOf)
		if err != nil {
			slog.Error("population export failed", "error", err)
		}
	}
}

// Save writes the grid and entity snapshots next to each other.
func (g *Game) Save(path string) error {
	if err := serialize.SaveGrids(path+".grid", g.World.Terrain, g.World.WaterBody, g.World.FlowDirection,
		g.Cfg.WorldGen.SeaLevel, uint32(g.GenResult.Seed)); err != nil {
		return err
	}
	data := serialize.MarshalEntities(g.Store, "citycore")
	return writeFile(path+".entities", data)
}

// ContaminationOverlay returns the contamination visualization layer
// for the rendering collaborator.
func (g *Game) ContaminationOverlay() query.GridOverlay {
	return systems.NewContaminationOverlay(g.World)
}

// ProximityOverlay returns the road-distance visualization layer.
func (g *Game) ProximityOverlay() query.GridOverlay {
	return systems.NewProximityOverlay(g.World)
}

// Close releases telemetry resources.
func (g *Game) Close() {
	g.Output.Close()
}
