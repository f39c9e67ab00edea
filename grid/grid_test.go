package grid

import (
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/pthm-cable/canopy/plant"
	"github.com/pthm-cable/canopy/species"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func immortalCatalog(t *testing.T, n int) *species.Catalog {
	t.Helper()
	c := species.NewCatalog()
	for i := 0; i < n; i++ {
		if _, err := c.Create(-1, 1, 1, 3, 5, 1, 0, 0); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return c
}

func testParams(length int, mode plant.Mode) Params {
	return Params{
		Length:         length,
		StorageLimit:   50,
		StartNumber:    0,
		Mode:           mode,
		DispersalStdev: 0.1,
		Crowding:       plant.DefaultCrowding,
	}
}

func TestNeighborhoodClipping(t *testing.T) {
	cat := immortalCatalog(t, 1)
	sp := cat.All()[0]
	rng := testRNG(1)

	b := New(cat, testParams(3, plant.AdultDispersal), rng)
	defer b.Close()

	// One resident adult in every cell: the adult-only aggregate equals
	// the number of in-range cells in the Moore block.
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			b.Cell(x, y).AddPlant(plant.NewAdult(sp, 0), rng)
		}
	}

	tests := []struct {
		name string
		x, y int
		want int
	}{
		{"corner", 0, 0, 4},
		{"corner far", 2, 2, 4},
		{"edge", 0, 1, 6},
		{"edge left", 1, 0, 6},
		{"center", 1, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := b.neighborhoodAt(tt.x, tt.y)
			if m[sp.ID] != tt.want {
				t.Errorf("neighborhoodAt(%d, %d)[%d] = %d, want %d", tt.x, tt.y, sp.ID, m[sp.ID], tt.want)
			}
		})
	}
}

func TestNeighborhoodContainsEveryOccupant(t *testing.T) {
	// Aggregator contract: the map for a cell always carries an entry for
	// every species represented anywhere in the 3x3 block, so a plant's
	// own species can never be missing from its cell's map.
	cat := immortalCatalog(t, 4)
	rng := testRNG(2)

	b := New(cat, testParams(5, plant.JuvenileDispersal), rng)
	defer b.Close()

	for i, sp := range cat.All() {
		x, y := rng.IntN(5), rng.IntN(5)
		b.Cell(x, y).AddPlant(plant.NewJuvenile(sp), rng)
		if i%2 == 0 {
			b.Cell(x, y).AddPlant(plant.NewAdult(sp, 1), rng)
		}
	}

	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			m := b.neighborhoodAt(x, y)
			for _, pl := range b.Cell(x, y).Plants() {
				if m[pl.Species.ID] < 1 {
					t.Errorf("cell (%d, %d): map %v missing occupant species %d", x, y, m, pl.Species.ID)
				}
			}
		}
	}
}

func TestFounderSeedingAdultMode(t *testing.T) {
	cat := immortalCatalog(t, 1)
	rng := testRNG(3)

	p := testParams(10, plant.AdultDispersal)
	p.StartNumber = 5
	b := New(cat, p, rng)
	defer b.Close()

	// A single species seeds at distinct cells, so all founders survive
	// the merge.
	adults := 0
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if b.Cell(x, y).HasAdult() {
				adults++
			}
			if c := b.Cell(x, y).Counts(); c[cat.All()[0].ID][0] > 1 {
				t.Errorf("cell (%d, %d) holds more than one adult", x, y)
			}
		}
	}
	if adults != 5 {
		t.Errorf("founder adults = %d, want 5", adults)
	}
}

func TestFounderSeedingJuvenileMode(t *testing.T) {
	cat := immortalCatalog(t, 3)
	rng := testRNG(4)

	p := testParams(10, plant.JuvenileDispersal)
	p.StartNumber = 4
	b := New(cat, p, rng)
	defer b.Close()

	totals := make(map[int]int)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			for id, c := range b.Cell(x, y).Counts() {
				totals[id] += c[0] + c[1]
			}
		}
	}
	for _, sp := range cat.All() {
		if totals[sp.ID] != 4 {
			t.Errorf("species %d founders = %d, want 4", sp.ID, totals[sp.ID])
		}
	}
}

func TestScenarioSingleFounderAdult(t *testing.T) {
	// 3x3 board, one immortal species (t1=3, t2=5, ns=1, no density
	// dependence), one founding adult at the center, tight kernel. After
	// one tick the resident is unchanged and exactly one juvenile
	// offspring exists somewhere on the board.
	cat := immortalCatalog(t, 1)
	sp := cat.All()[0]
	rng := testRNG(5)

	b := New(cat, testParams(3, plant.JuvenileDispersal), rng)
	defer b.Close()

	founder := plant.NewAdult(sp, 0)
	b.Cell(1, 1).AddPlant(founder, rng)

	b.Step()

	if b.Cell(1, 1).Resident() != founder {
		t.Error("center cell lost its founding adult")
	}
	adults, juveniles := 0, 0
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			c := b.Cell(x, y).Counts()[sp.ID]
			adults += c[0]
			juveniles += c[1]
		}
	}
	if adults != 1 {
		t.Errorf("adults after tick 1 = %d, want 1", adults)
	}
	if juveniles != 1 {
		t.Errorf("juveniles after tick 1 = %d, want 1", juveniles)
	}
	if b.Tick() != 1 {
		t.Errorf("Tick() = %d, want 1", b.Tick())
	}
}

func TestAdultDispersalSpreads(t *testing.T) {
	// Under adult dispersal the founder's offspring arrive as adults and
	// claim empty cells outright.
	cat := immortalCatalog(t, 1)
	sp := cat.All()[0]
	rng := testRNG(6)

	p := testParams(9, plant.AdultDispersal)
	p.DispersalStdev = 1.5
	b := New(cat, p, rng)
	defer b.Close()

	b.Cell(4, 4).AddPlant(plant.NewAdult(sp, 0), rng)

	for i := 0; i < 20; i++ {
		b.Step()
	}

	adults := 0
	for x := 0; x < 9; x++ {
		for y := 0; y < 9; y++ {
			if b.Cell(x, y).HasAdult() {
				adults++
			}
		}
	}
	if adults < 2 {
		t.Errorf("adults after 20 ticks = %d, want the species to spread", adults)
	}
}

func TestDeterminism(t *testing.T) {
	run := func(seed uint64) ([][]int, int) {
		rng := testRNG(seed)
		cat, err := species.Generate(species.GenerateParams{
			Count: 5, SigmaLog: 1, T1: 3, T2: 20, NS: 2, ConNDD: 0.001, HetNDD: 0.0005,
		}, rng)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		p := testParams(12, plant.JuvenileDispersal)
		p.StartNumber = 6
		p.DispersalStdev = 2
		b := New(cat, p, rng)
		defer b.Close()
		for i := 0; i < 15; i++ {
			b.Step()
		}
		total := 0
		for _, row := range b.CountsGrid() {
			for _, counts := range row {
				for _, c := range counts {
					total += c[0] + c[1]
				}
			}
		}
		return b.ResidentGrid(), total
	}

	r1, n1 := run(42)
	r2, n2 := run(42)
	if !reflect.DeepEqual(r1, r2) || n1 != n2 {
		t.Error("identical seeds diverged")
	}

	r3, _ := run(43)
	if reflect.DeepEqual(r1, r3) {
		t.Error("different seeds produced identical boards; RNG not threaded")
	}
}

func TestKernelMoments(t *testing.T) {
	const stdev = 3.0
	k := NewKernel(stdev, testRNG(7))

	n := 20000
	var sumX, sumY, sumX2 float64
	for i := 0; i < n; i++ {
		dx, dy := k.Sample()
		sumX += float64(dx)
		sumY += float64(dy)
		sumX2 += float64(dx) * float64(dx)
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)
	if math.Abs(meanX) > 0.1 || math.Abs(meanY) > 0.1 {
		t.Errorf("kernel mean = (%v, %v), want ~(0, 0)", meanX, meanY)
	}
	// Discretization adds ~1/12 to the variance; just check the ballpark.
	sd := math.Sqrt(sumX2/float64(n) - meanX*meanX)
	if math.Abs(sd-stdev) > 0.3 {
		t.Errorf("kernel stdev = %v, want ~%v", sd, stdev)
	}
}

func TestStagingClearedAfterStep(t *testing.T) {
	cat := immortalCatalog(t, 1)
	sp := cat.All()[0]
	rng := testRNG(8)

	b := New(cat, testParams(4, plant.JuvenileDispersal), rng)
	defer b.Close()
	b.Cell(2, 2).AddPlant(plant.NewAdult(sp, 0), rng)

	b.Step()

	for x := range b.staging {
		for y := range b.staging[x] {
			if b.staging[x][y].Len() != 0 {
				t.Errorf("staging cell (%d, %d) not cleared", x, y)
			}
		}
	}
}
