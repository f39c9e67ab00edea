package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/canopy/config"
	"github.com/pthm-cable/canopy/grid"
)

// heatmapScale is the pixel size of one board cell in exported heatmaps.
const heatmapScale = 4

// OutputManager handles structured experiment output: appended count rows,
// per-interval heatmaps and the latest whole-state snapshot.
type OutputManager struct {
	dir        string
	countsFile *os.File

	countsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled). All methods are
// safe to call on a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	countsPath := filepath.Join(dir, "counts.csv")
	f, err := os.Create(countsPath)
	if err != nil {
		return nil, fmt.Errorf("creating counts.csv: %w", err)
	}
	om.countsFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSpecies saves the species table as CSV.
func (om *OutputManager) WriteSpecies(b *grid.Board) error {
	if om == nil {
		return nil
	}
	return b.Catalog().SaveCSV(filepath.Join(om.dir, "species.csv"))
}

// WriteCounts appends the board's per-species totals to counts.csv.
func (om *OutputManager) WriteCounts(b *grid.Board) error {
	if om == nil {
		return nil
	}

	records := CountRows(b)

	if !om.countsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.countsFile); err != nil {
			return fmt.Errorf("writing counts: %w", err)
		}
		om.countsHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.countsFile); err != nil {
			return fmt.Errorf("writing counts: %w", err)
		}
	}

	return nil
}

// WriteHeatmap renders the resident-adult heatmap to <tick>.png.
func (om *OutputManager) WriteHeatmap(b *grid.Board) error {
	if om == nil {
		return nil
	}
	path := filepath.Join(om.dir, fmt.Sprintf("%d.png", b.Tick()))
	return WriteHeatmapPNG(path, b.ResidentGrid(), heatmapScale)
}

// WriteSnapshot captures the full board state to snapshot.json,
// overwriting the previous one.
func (om *OutputManager) WriteSnapshot(b *grid.Board) error {
	if om == nil {
		return nil
	}
	return SaveSnapshot(filepath.Join(om.dir, "snapshot.json"), Capture(b))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if om.countsFile != nil {
		return om.countsFile.Close()
	}
	return nil
}
