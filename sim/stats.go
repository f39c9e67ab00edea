package sim

import (
	"log/slog"

	"github.com/pthm-cable/canopy/grid"
)

// TickStats summarizes the board at one tick.
type TickStats struct {
	Tick          int
	Adults        int
	Juveniles     int
	OccupiedCells int // cells with at least one plant
	AdultCells    int // cells with a resident adult
	SpeciesAlive  int // species with any representative
}

// CollectStats walks the board's count caches once.
func CollectStats(b *grid.Board) TickStats {
	s := TickStats{Tick: b.Tick()}
	alive := make(map[int]struct{})
	for _, row := range b.CountsGrid() {
		for _, counts := range row {
			cellTotal := 0
			for id, c := range counts {
				s.Adults += c[0]
				s.Juveniles += c[1]
				cellTotal += c[0] + c[1]
				alive[id] = struct{}{}
				if c[0] > 0 {
					s.AdultCells++
				}
			}
			if cellTotal > 0 {
				s.OccupiedCells++
			}
		}
	}
	s.SpeciesAlive = len(alive)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Int("adults", s.Adults),
		slog.Int("juveniles", s.Juveniles),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Int("adult_cells", s.AdultCells),
		slog.Int("species_alive", s.SpeciesAlive),
	)
}
