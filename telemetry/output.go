// Package telemetry exports simulation history as CSV for offline
// tooling: per-sample population/health rows and a milestone log.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/citycore/events"
	"github.com/pthm-cable/citycore/ids"
)

// PopulationSample is one CSV row of the population time series.
type PopulationSample struct {
	Tick        uint64  `csv:"tick"`
	Player      uint8   `csv:"player"`
	Population  uint64  `csv:"population"`
	HealthIndex float64 `csv:"health_index"`
}

// MilestoneRow is one CSV row of the milestone log.
type MilestoneRow struct {
	Tick       uint64 `csv:"tick"`
	Player     uint8  `csv:"player"`
	Name       string `csv:"name"`
	Population uint64 `csv:"population"`
	Upward     bool   `csv:"upward"`
}

// OutputManager handles structured simulation output with CSV logging.
type OutputManager struct {
	dir            string
	populationFile *os.File
	milestoneFile  *os.File

	populationHeaderWritten bool
	milestoneHeaderWritten  bool
}

// NewOutputManager creates an output manager rooted at dir.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "population.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating population.csv: %w", err)
	}
	om.populationFile = f

	f, err = os.Create(filepath.Join(dir, "milestones.csv"))
	if err != nil {
		om.populationFile.Close()
		return nil, fmt.Errorf("creating milestones.csv: %w", err)
	}
	om.milestoneFile = f

	return om, nil
}

// WritePopulation appends one population sample row.
func (om *OutputManager) WritePopulation(sample PopulationSample) error {
	if om == nil {
		return nil
	}
	records := []PopulationSample{sample}
	if !om.populationHeaderWritten {
		if err := gocsv.Marshal(records, om.populationFile); err != nil {
			return fmt.Errorf("writing population sample: %w", err)
		}
		om.populationHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.populationFile); err != nil {
		return fmt.Errorf("writing population sample: %w", err)
	}
	return nil
}

// WriteMilestone appends one milestone event row.
func (om *OutputManager) WriteMilestone(e events.Milestone) error {
	if om == nil {
		return nil
	}
	records := []MilestoneRow{{
		Tick:       uint64(e.Tick),
		Player:     uint8(e.Owner),
		Name:       e.Name,
		Population: e.Population,
		Upward:     e.Upward,
	}}
	if !om.milestoneHeaderWritten {
		if err := gocsv.Marshal(records, om.milestoneFile); err != nil {
			return fmt.Errorf("writing milestone: %w", err)
		}
		om.milestoneHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.milestoneFile); err != nil {
		return fmt.Errorf("writing milestone: %w", err)
	}
	return nil
}

// SamplePlayers writes one population row per overseer.
func (om *OutputManager) SamplePlayers(tick ids.Tick, populationOf func(ids.PlayerID) uint64, healthOf func(ids.PlayerID) float64) error {
	if om == nil {
		return nil
	}
	for p := ids.PlayerID(1); p <= ids.MaxPlayers; p++ {
		sample := PopulationSample{
			Tick:        uint64(tick),
			Player:      uint8(p),
			Population:  populationOf(p),
			HealthIndex: healthOf(p),
		}
		if err := om.WritePopulation(sample); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the CSV files.
func (om *OutputManager) Close() {
	if om == nil {
		return
	}
	om.populationFile.Close()
	om.milestoneFile.Close()
}
