// Package telemetry exports board state: periodic species-count CSV rows,
// resident-adult heatmaps and whole-state snapshots.
package telemetry

import (
	"github.com/pthm-cable/canopy/grid"
	"github.com/pthm-cable/canopy/plant"
	"github.com/pthm-cable/canopy/species"
)

// CountRow joins a species table row with that species' board-wide adult
// and juvenile totals at one tick.
type CountRow struct {
	Tick int `csv:"tick"`
	species.Record
	Adults    int `csv:"Adult"`
	Juveniles int `csv:"Juvenile"`
}

// CountRows aggregates the per-cell count caches into one row per species,
// in catalog order. Species with no representatives still get a row, so
// extinctions show up as zeros rather than missing data.
func CountRows(b *grid.Board) []CountRow {
	totals := make(map[int][2]int)
	for _, row := range b.CountsGrid() {
		for _, counts := range row {
			for id, c := range counts {
				t := totals[id]
				t[0] += c[0]
				t[1] += c[1]
				totals[id] = t
			}
		}
	}

	all := b.Catalog().All()
	rows := make([]CountRow, len(all))
	for i, sp := range all {
		rows[i] = CountRow{
			Tick:      b.Tick(),
			Record:    sp.Record(),
			Adults:    totals[sp.ID][0],
			Juveniles: totals[sp.ID][1],
		}
	}
	return rows
}

// PerCellCounts returns the snapshot of every cell's species counts,
// the raw form consumed by external exporters.
func PerCellCounts(b *grid.Board) [][]plant.Counts {
	return b.CountsGrid()
}
