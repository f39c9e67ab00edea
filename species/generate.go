package species

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateParams controls lognormal species generation. T1, T2, NS and the
// density-dependence coefficients are fixed across the generated set; p1
// and p2 vary per species.
type GenerateParams struct {
	Count    int
	SigmaLog float64 // sigma of the lognormal p1/p2 draws (mu = 0)
	T1, T2   int
	NS       int
	ConNDD   float64
	HetNDD   float64
}

// Generate fills a new catalog with Count species whose p1 and p2 are drawn
// from LogNormal(0, SigmaLog), rejecting draws above 1 so the values stay
// valid probabilities.
func Generate(p GenerateParams, src rand.Source) (*Catalog, error) {
	if p.Count <= 0 {
		return nil, fmt.Errorf("species: generate count must be > 0, got %d", p.Count)
	}
	ln := distuv.LogNormal{Mu: 0, Sigma: p.SigmaLog, Src: src}

	c := NewCatalog()
	for i := 0; i < p.Count; i++ {
		p1 := ln.Rand()
		for p1 > 1 {
			p1 = ln.Rand()
		}
		p2 := ln.Rand()
		for p2 > 1 {
			p2 = ln.Rand()
		}
		if _, err := c.Create(-1, p1, p2, p.T1, p.T2, p.NS, p.ConNDD, p.HetNDD); err != nil {
			return nil, err
		}
	}
	return c, nil
}
