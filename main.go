package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/canopy/config"
	"github.com/pthm-cable/canopy/sim"
	"github.com/pthm-cable/canopy/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, config 0 = time-based)")
	iterations := flag.Int("iterations", 0, "Number of ticks to run (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV, heatmaps and snapshots (empty = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *iterations > 0 {
		cfg.Run.Iterations = *iterations
	}
	if *outputDir != "" {
		cfg.Run.OutputDir = *outputDir
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	out, err := telemetry.NewOutputManager(cfg.Run.OutputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	s, err := sim.New(cfg, out)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := s.Run(cfg.Run.Iterations); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}
