package grid

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Kernel samples integer dispersal displacements by rounding draws from a
// bivariate normal with mean [0,0] and covariance diag(stdev^2).
type Kernel struct {
	dist *distmv.Normal
	buf  []float64
}

// NewKernel builds a dispersal kernel with the given per-axis standard
// deviation. stdev must be > 0.
func NewKernel(stdev float64, src rand.Source) *Kernel {
	sigma := mat.NewSymDense(2, []float64{
		stdev * stdev, 0,
		0, stdev * stdev,
	})
	dist, ok := distmv.NewNormal([]float64{0, 0}, sigma, src)
	if !ok {
		// Diagonal with stdev > 0 is always positive definite.
		panic("grid: dispersal covariance not positive definite")
	}
	return &Kernel{dist: dist, buf: make([]float64, 2)}
}

// Sample returns a rounded (dx, dy) displacement. A zero displacement is a
// valid draw: offspring may land back on their source cell.
func (k *Kernel) Sample() (dx, dy int) {
	v := k.dist.Rand(k.buf)
	return int(math.Round(v[0])), int(math.Round(v[1]))
}
