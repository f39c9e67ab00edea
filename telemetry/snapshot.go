package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/pthm-cable/canopy/grid"
	"github.com/pthm-cable/canopy/plant"
	"github.com/pthm-cable/canopy/species"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds everything needed to reconstruct a board: the species
// table, the per-cell occupants with stage and age, and the tick counter.
type Snapshot struct {
	Version int `json:"version"`
	Tick    int `json:"tick"`

	BoardLength    int     `json:"board_length"`
	StorageLimit   int     `json:"storage_limit"`
	StartNumber    int     `json:"start_number"`
	Mode           string  `json:"mode"`
	DispersalStdev float64 `json:"dispersal_stdev"`
	JuvenileMult   float64 `json:"juvenile_mult"`
	AdultMult      float64 `json:"adult_mult"`

	Species []species.Record `json:"species"`
	Cells   []CellState      `json:"cells"`
}

// CellState holds one non-empty cell's occupants in stored order.
type CellState struct {
	X      int          `json:"x"`
	Y      int          `json:"y"`
	Plants []PlantState `json:"plants"`
}

// PlantState holds one plant's persistent state.
type PlantState struct {
	SpeciesID int    `json:"species_id"`
	Stage     string `json:"stage"`
	Age       int    `json:"age"`
}

// Capture serializes the board's current state. Empty cells are omitted.
func Capture(b *grid.Board) *Snapshot {
	p := b.Params()
	s := &Snapshot{
		Version:        SnapshotVersion,
		Tick:           b.Tick(),
		BoardLength:    p.Length,
		StorageLimit:   p.StorageLimit,
		StartNumber:    p.StartNumber,
		Mode:           p.Mode.String(),
		DispersalStdev: p.DispersalStdev,
		JuvenileMult:   p.Crowding.JuvenileMult,
		AdultMult:      p.Crowding.AdultMult,
		Species:        b.Catalog().Records(),
	}
	for x := 0; x < p.Length; x++ {
		for y := 0; y < p.Length; y++ {
			cell := b.Cell(x, y)
			if cell.Len() == 0 {
				continue
			}
			cs := CellState{X: x, Y: y, Plants: make([]PlantState, 0, cell.Len())}
			for _, pl := range cell.Plants() {
				cs.Plants = append(cs.Plants, PlantState{
					SpeciesID: pl.Species.ID,
					Stage:     pl.Stage.String(),
					Age:       pl.Age,
				})
			}
			s.Cells = append(s.Cells, cs)
		}
	}
	return s
}

// Restore rebuilds a board from a snapshot. Occupants re-enter each cell
// through AddPlant in stored order, so the container invariants are
// re-established rather than trusted from the file.
func Restore(s *Snapshot, rng *rand.Rand) (*grid.Board, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("telemetry: snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	mode, err := plant.ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	cat, err := species.FromRecords(s.Species)
	if err != nil {
		return nil, err
	}

	b := grid.New(cat, grid.Params{
		Length:         s.BoardLength,
		StorageLimit:   s.StorageLimit,
		StartNumber:    0, // occupants come from the snapshot, not seeding
		Mode:           mode,
		DispersalStdev: s.DispersalStdev,
		Crowding:       plant.Crowding{JuvenileMult: s.JuvenileMult, AdultMult: s.AdultMult},
	}, rng)

	for _, cs := range s.Cells {
		if cs.X < 0 || cs.X >= s.BoardLength || cs.Y < 0 || cs.Y >= s.BoardLength {
			return nil, fmt.Errorf("telemetry: cell (%d, %d) outside board of length %d", cs.X, cs.Y, s.BoardLength)
		}
		for _, ps := range cs.Plants {
			sp := cat.Get(ps.SpeciesID)
			if sp == nil {
				return nil, fmt.Errorf("telemetry: cell (%d, %d) references unknown species %d", cs.X, cs.Y, ps.SpeciesID)
			}
			stage, err := plant.ParseStage(ps.Stage)
			if err != nil || stage == plant.Dead {
				return nil, fmt.Errorf("telemetry: cell (%d, %d) holds invalid stage %q", cs.X, cs.Y, ps.Stage)
			}
			b.Cell(cs.X, cs.Y).AddPlant(&plant.Plant{Species: sp, Age: ps.Age, Stage: stage}, rng)
		}
	}
	b.SetTick(s.Tick)
	return b, nil
}

// SaveSnapshot writes the snapshot as JSON to path.
func SaveSnapshot(path string, s *Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	s := &Snapshot{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return s, nil
}
