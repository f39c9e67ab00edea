package sim

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/canopy/config"
	"github.com/pthm-cable/canopy/grid"
	"github.com/pthm-cable/canopy/plant"
	"github.com/pthm-cable/canopy/species"
	"github.com/pthm-cable/canopy/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	cfg.Board.Length = 10
	cfg.Board.StartNumber = 3
	cfg.Species.Count = 4
	cfg.Run.Seed = 1234
	cfg.Run.Iterations = 6
	cfg.Run.SnapshotInterval = 3
	return cfg
}

func TestNewFromConfig(t *testing.T) {
	s, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if s.Seed() != 1234 {
		t.Errorf("Seed() = %d, want 1234", s.Seed())
	}
	if s.Board().Length() != 10 {
		t.Errorf("board length = %d, want 10", s.Board().Length())
	}
	if s.Board().Catalog().Len() != 4 {
		t.Errorf("species = %d, want 4", s.Board().Catalog().Len())
	}
	if s.Board().Mode() != plant.JuvenileDispersal {
		t.Errorf("mode = %v, want juvenile dispersal", s.Board().Mode())
	}
}

func TestNewRejectsBadSpeciesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Species.File = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := New(cfg, nil); err == nil {
		t.Error("New() with missing species file: want error, got nil")
	}
}

func TestNewLoadsSpeciesFile(t *testing.T) {
	cat := species.NewCatalog()
	if _, err := cat.Create(-1, 0.5, 0.5, 5, 50, 2, 0, 0); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "species.csv")
	if err := cat.SaveCSV(path); err != nil {
		t.Fatalf("SaveCSV() error = %v", err)
	}

	cfg := testConfig(t)
	cfg.Species.File = path
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	if s.Board().Catalog().Len() != 1 {
		t.Errorf("species = %d, want 1 from file", s.Board().Catalog().Len())
	}
}

func TestRunExportsAtInterval(t *testing.T) {
	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager() error = %v", err)
	}
	defer out.Close()

	s, err := New(testConfig(t), out)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if err := s.Run(6); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := s.Board().Tick(); got != 6 {
		t.Errorf("Tick() = %d, want 6", got)
	}

	// Interval 3 over 6 ticks: heatmaps at ticks 3 and 6, plus the
	// species table, appended counts and the final snapshot.
	for _, name := range []string{"species.csv", "counts.csv", "3.png", "6.png", "snapshot.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
}

func TestRunDeterministicAcrossRestarts(t *testing.T) {
	run := func() [][]int {
		s, err := New(testConfig(t), nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer s.Close()
		if err := s.Run(5); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return s.Board().ResidentGrid()
	}

	a, b := run(), run()
	for x := range a {
		for y := range a[x] {
			if a[x][y] != b[x][y] {
				t.Fatalf("cell (%d, %d) differs across identical runs", x, y)
			}
		}
	}
}

func TestCollectStats(t *testing.T) {
	cat := species.NewCatalog()
	sp, err := cat.Create(-1, 1, 1, 3, 5, 1, 0, 0)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rng := rand.New(rand.NewPCG(5, 5))
	b := grid.New(cat, grid.Params{
		Length: 4, StorageLimit: 10, Mode: plant.JuvenileDispersal,
		DispersalStdev: 1, Crowding: plant.DefaultCrowding,
	}, rng)
	defer b.Close()

	b.Cell(0, 0).AddPlant(plant.NewAdult(sp, 1), rng)
	b.Cell(0, 0).AddPlant(plant.NewJuvenile(sp), rng)
	b.Cell(3, 3).AddPlant(plant.NewJuvenile(sp), rng)

	stats := CollectStats(b)
	want := TickStats{Tick: 0, Adults: 1, Juveniles: 2, OccupiedCells: 2, AdultCells: 1, SpeciesAlive: 1}
	if stats != want {
		t.Errorf("CollectStats() = %+v, want %+v", stats, want)
	}
}
