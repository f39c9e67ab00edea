// Package grid owns the 2-D board of plant populations and advances it by
// discrete ticks.
package grid

import (
	"math/rand/v2"

	"github.com/pthm-cable/canopy/plant"
	"github.com/pthm-cable/canopy/species"
)

// Params configures a Board.
type Params struct {
	Length         int        // side length, > 0
	StorageLimit   int        // plants per cell, > 0
	StartNumber    int        // founders per species, >= 0
	Mode           plant.Mode // aggregation and dispersal policy
	DispersalStdev float64    // kernel standard deviation, > 0
	Crowding       plant.Crowding
}

// Board holds the live grid of populations plus a same-shape staging grid
// that accumulates next-tick arrivals before they are merged. One tick is a
// strict three-phase barrier: aggregate all neighborhoods from the pre-tick
// board, advance every cell, then disperse offspring and merge staging.
type Board struct {
	params  Params
	catalog *species.Catalog
	cells   [][]*plant.Population
	staging [][]*plant.Population
	kernel  *Kernel
	rng     *rand.Rand
	tick    int
	pool    *aggPool
}

// New builds a board, seeds the founders and merges them into the live
// cells. Under AdultDispersal each species gets StartNumber founder adults
// at distinct random cells; under JuvenileDispersal StartNumber founder
// juveniles at random (possibly repeated) cells.
func New(cat *species.Catalog, params Params, rng *rand.Rand) *Board {
	b := &Board{
		params:  params,
		catalog: cat,
		cells:   newCellGrid(params.Length, params.StorageLimit),
		staging: newCellGrid(params.Length, params.StorageLimit),
		kernel:  NewKernel(params.DispersalStdev, rng),
		rng:     rng,
	}
	b.pool = newAggPool(b)
	b.seedFounders()
	b.mergeStaging()
	return b
}

func newCellGrid(length, limit int) [][]*plant.Population {
	g := make([][]*plant.Population, length)
	for x := range g {
		g[x] = make([]*plant.Population, length)
		for y := range g[x] {
			g[x][y] = plant.NewPopulation(limit)
		}
	}
	return g
}

func (b *Board) seedFounders() {
	n := b.params.StartNumber
	if n > b.params.Length*b.params.Length {
		n = b.params.Length * b.params.Length
	}
	for _, sp := range b.catalog.All() {
		if b.params.Mode == plant.AdultDispersal {
			// Distinct cells so no founder adult displaces another.
			coords := make(map[[2]int]struct{}, n)
			for len(coords) < n {
				coords[[2]int{b.rng.IntN(b.params.Length), b.rng.IntN(b.params.Length)}] = struct{}{}
			}
			for c := range coords {
				b.staging[c[0]][c[1]].AddAdultUnchecked(plant.NewAdult(sp, 0))
			}
		} else {
			for i := 0; i < n; i++ {
				x, y := b.rng.IntN(b.params.Length), b.rng.IntN(b.params.Length)
				b.staging[x][y].AddPlant(plant.NewJuvenile(sp), b.rng)
			}
		}
	}
}

// Tick returns the number of completed ticks.
func (b *Board) Tick() int { return b.tick }

// Params returns the board's construction parameters.
func (b *Board) Params() Params { return b.params }

// SetTick overrides the tick counter. Used when restoring a snapshot.
func (b *Board) SetTick(t int) { b.tick = t }

// Length returns the board side length.
func (b *Board) Length() int { return b.params.Length }

// Mode returns the aggregation/dispersal policy.
func (b *Board) Mode() plant.Mode { return b.params.Mode }

// Cell returns the live population at (x, y).
func (b *Board) Cell(x, y int) *plant.Population { return b.cells[x][y] }

// Catalog returns the species catalog the board was built with.
func (b *Board) Catalog() *species.Catalog { return b.catalog }

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.params.Length && y >= 0 && y < b.params.Length
}

// neighborhoodAt folds the 3x3 Moore block centered on (x, y) into one
// species-count map. Out-of-range offsets are skipped, so edge and corner
// cells see smaller neighborhoods; there is no wraparound.
func (b *Board) neighborhoodAt(x, y int) map[int]int {
	m := make(map[int]int)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if nx, ny := x+dx, y+dy; b.inBounds(nx, ny) {
				b.cells[nx][ny].AggregateInto(m, b.params.Mode)
			}
		}
	}
	return m
}

// Step advances the whole board by one tick.
func (b *Board) Step() {
	// Phase 1: every neighborhood map is materialized from the pre-tick
	// board before any cell mutates, so results cannot depend on cell
	// iteration order. Pure reads, safe to fan out across workers.
	maps := b.pool.aggregateAll()

	// Phase 2: advance every cell, then stage its offspring at
	// kernel-sampled offsets. Sequential so the RNG stream is consumed in
	// a fixed order and runs stay reproducible.
	for x := range b.cells {
		for y := range b.cells[x] {
			cell := b.cells[x][y]
			cell.AdvanceTick(maps[x][y], b.params.Crowding, b.rng)

			offspring := cell.ProduceOffspring(b.params.Mode, b.rng)
			for _, pl := range offspring.Plants() {
				dx, dy := b.kernel.Sample()
				nx, ny := x+dx, y+dy
				if !b.inBounds(nx, ny) {
					continue // dispersed off-board, discarded
				}
				if b.params.Mode == plant.AdultDispersal {
					b.staging[nx][ny].AddAdultUnchecked(pl)
				} else {
					b.staging[nx][ny].AddPlant(pl, b.rng)
				}
			}
		}
	}

	// Phase 3: merge arrivals and reset staging.
	b.mergeStaging()
	b.tick++
}

func (b *Board) mergeStaging() {
	for x := range b.cells {
		for y := range b.cells[x] {
			b.cells[x][y].MergeFrom(b.staging[x][y], b.rng)
			b.staging[x][y].Clear()
		}
	}
}

// CountsGrid returns a copy of every cell's species-count cache.
func (b *Board) CountsGrid() [][]plant.Counts {
	out := make([][]plant.Counts, b.params.Length)
	for x := range out {
		out[x] = make([]plant.Counts, b.params.Length)
		for y := range out[x] {
			out[x][y] = b.cells[x][y].Counts().Clone()
		}
	}
	return out
}

// ResidentGrid returns, per cell, the resident adult's species id or -1.
func (b *Board) ResidentGrid() [][]int {
	out := make([][]int, b.params.Length)
	for x := range out {
		out[x] = make([]int, b.params.Length)
		for y := range out[x] {
			out[x][y] = -1
			if r := b.cells[x][y].Resident(); r != nil {
				out[x][y] = r.Species.ID
			}
		}
	}
	return out
}

// Close stops the aggregation workers.
func (b *Board) Close() {
	b.pool.stop()
}
