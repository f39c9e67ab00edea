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
	Board     BoardConfig     `yaml:"board"`
	Dispersal DispersalConfig `yaml:"dispersal"`
	Crowding  CrowdingConfig  `yaml:"crowding"`
	Species   SpeciesConfig   `yaml:"species"`
	Run       RunConfig       `yaml:"run"`
}

// BoardConfig holds grid dimensions and per-cell capacity.
type BoardConfig struct {
	Length       int `yaml:"length"`        // side length of the square board
	StorageLimit int `yaml:"storage_limit"` // soft cap on plants per cell
	StartNumber  int `yaml:"start_number"`  // founders per species at setup
}

// DispersalConfig holds the seed dispersal kernel parameters.
type DispersalConfig struct {
	Mode  string  `yaml:"mode"`  // "adult" or "juvenile"
	Stdev float64 `yaml:"stdev"` // per-axis standard deviation of the kernel
}

// CrowdingConfig holds the per-stage density-dependence multipliers.
// The defaults (2 for juveniles, 1 for adults) are tuning constants,
// not derived quantities.
type CrowdingConfig struct {
	JuvenileMult float64 `yaml:"juvenile_mult"`
	AdultMult    float64 `yaml:"adult_mult"`
}

// SpeciesConfig holds species generation parameters. If File is set,
// the species table is loaded from CSV instead of being generated.
type SpeciesConfig struct {
	Count    int     `yaml:"count"`     // number of species to generate
	SigmaLog float64 `yaml:"sigma_log"` // lognormal sigma for p1/p2 draws
	T1       int     `yaml:"t1"`        // ticks to maturity
	T2       int     `yaml:"t2"`        // adult survival reference horizon
	NS       int     `yaml:"ns"`        // offspring per adult per tick
	ConNDD   float64 `yaml:"cndd"`      // conspecific density-dependence coefficient
	HetNDD   float64 `yaml:"hndd"`      // heterospecific density-dependence coefficient
	File     string  `yaml:"file"`      // optional CSV species table to load
}

// RunConfig holds the outer run-loop parameters.
type RunConfig struct {
	Iterations       int    `yaml:"iterations"`
	SnapshotInterval int    `yaml:"snapshot_interval"` // ticks between exports
	Seed             int64  `yaml:"seed"`              // 0 = time-based
	OutputDir        string `yaml:"output_dir"`        // "" = output disabled
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the grid cannot be built from.
func (c *Config) Validate() error {
	if c.Board.Length <= 0 {
		return fmt.Errorf("config: board.length must be > 0, got %d", c.Board.Length)
	}
	if c.Board.StorageLimit <= 0 {
		return fmt.Errorf("config: board.storage_limit must be > 0, got %d", c.Board.StorageLimit)
	}
	if c.Board.StartNumber < 0 {
		return fmt.Errorf("config: board.start_number must be >= 0, got %d", c.Board.StartNumber)
	}
	if c.Dispersal.Mode != "adult" && c.Dispersal.Mode != "juvenile" {
		return fmt.Errorf("config: dispersal.mode must be %q or %q, got %q", "adult", "juvenile", c.Dispersal.Mode)
	}
	if c.Dispersal.Stdev <= 0 {
		return fmt.Errorf("config: dispersal.stdev must be > 0, got %v", c.Dispersal.Stdev)
	}
	if c.Run.SnapshotInterval <= 0 {
		return fmt.Errorf("config: run.snapshot_interval must be > 0, got %d", c.Run.SnapshotInterval)
	}
	if c.Crowding.JuvenileMult < 0 || c.Crowding.AdultMult < 0 {
		return fmt.Errorf("config: crowding multipliers must be >= 0")
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
