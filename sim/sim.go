// Package sim sequences ticks and periodic exports over a board.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pthm-cable/canopy/config"
	"github.com/pthm-cable/canopy/grid"
	"github.com/pthm-cable/canopy/plant"
	"github.com/pthm-cable/canopy/species"
	"github.com/pthm-cable/canopy/telemetry"
)

// Simulation owns a board and drives multi-tick runs, exporting state at
// the configured snapshot interval. Exports happen only at tick boundaries,
// never inside a tick.
type Simulation struct {
	board    *grid.Board
	out      *telemetry.OutputManager
	interval int
	seed     int64
}

// New builds a simulation from configuration: seeds the RNG, generates or
// loads the species catalog, and constructs the board.
func New(cfg *config.Config, out *telemetry.OutputManager) (*Simulation, error) {
	seed := cfg.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	cat, err := buildCatalog(cfg, rng)
	if err != nil {
		return nil, err
	}

	mode, err := plant.ParseMode(cfg.Dispersal.Mode)
	if err != nil {
		return nil, err
	}

	board := grid.New(cat, grid.Params{
		Length:         cfg.Board.Length,
		StorageLimit:   cfg.Board.StorageLimit,
		StartNumber:    cfg.Board.StartNumber,
		Mode:           mode,
		DispersalStdev: cfg.Dispersal.Stdev,
		Crowding: plant.Crowding{
			JuvenileMult: cfg.Crowding.JuvenileMult,
			AdultMult:    cfg.Crowding.AdultMult,
		},
	}, rng)

	return &Simulation{
		board:    board,
		out:      out,
		interval: cfg.Run.SnapshotInterval,
		seed:     seed,
	}, nil
}

func buildCatalog(cfg *config.Config, rng *rand.Rand) (*species.Catalog, error) {
	if cfg.Species.File != "" {
		cat, err := species.LoadCSV(cfg.Species.File)
		if err != nil {
			return nil, fmt.Errorf("sim: loading species table: %w", err)
		}
		return cat, nil
	}
	cat, err := species.Generate(species.GenerateParams{
		Count:    cfg.Species.Count,
		SigmaLog: cfg.Species.SigmaLog,
		T1:       cfg.Species.T1,
		T2:       cfg.Species.T2,
		NS:       cfg.Species.NS,
		ConNDD:   cfg.Species.ConNDD,
		HetNDD:   cfg.Species.HetNDD,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("sim: generating species: %w", err)
	}
	return cat, nil
}

// Board returns the simulation's board.
func (s *Simulation) Board() *grid.Board { return s.board }

// Seed returns the effective RNG seed for this run.
func (s *Simulation) Seed() int64 { return s.seed }

// Run advances the board by the given number of ticks, exporting counts,
// heatmap and snapshot every snapshot interval.
func (s *Simulation) Run(iterations int) error {
	slog.Info("run started",
		"iterations", iterations,
		"seed", s.seed,
		"board_length", s.board.Length(),
		"mode", s.board.Mode().String(),
		"species", s.board.Catalog().Len(),
	)

	if err := s.out.WriteSpecies(s.board); err != nil {
		return err
	}

	for i := 0; i < iterations; i++ {
		s.board.Step()
		if s.board.Tick()%s.interval == 0 {
			if err := s.export(); err != nil {
				return err
			}
		}
	}

	// Final state, even when the run length is not a multiple of the
	// interval.
	if s.board.Tick()%s.interval != 0 {
		if err := s.export(); err != nil {
			return err
		}
	}

	slog.Info("run finished", "tick", s.board.Tick())
	return nil
}

// export writes all periodic outputs and logs the tick stats.
func (s *Simulation) export() error {
	stats := CollectStats(s.board)
	slog.Info("snapshot", "stats", stats)

	if err := s.out.WriteCounts(s.board); err != nil {
		return err
	}
	if err := s.out.WriteHeatmap(s.board); err != nil {
		return err
	}
	return s.out.WriteSnapshot(s.board)
}

// Close releases the board's worker pool.
func (s *Simulation) Close() {
	s.board.Close()
}
