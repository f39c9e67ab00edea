// Package species defines the immutable life-history parameters of a plant
// species and the catalog that mints species identities.
package species

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Validation errors returned by Catalog.Create.
var (
	ErrInvalidProbability = errors.New("species: probability outside (0, 1]")
	ErrArithmeticDomain   = errors.New("species: time horizon must be > 0")
)

// Species holds the constants that parameterize every individual of a
// species. Created once through a Catalog and never mutated; plants hold a
// shared read-only reference.
type Species struct {
	ID       int // unique, assigned monotonically by the Catalog
	ParentID int // -1 if none; reserved for future speciation

	T1 int // ticks for a juvenile to reach maturity
	T2 int // reference horizon for adult survival
	NS int // offspring per reproducing adult per tick

	P1 float64 // cumulative juvenile-to-adult survival probability
	P2 float64 // probability an adult is still alive after T2 ticks

	// Per-tick survival, the geometric decomposition of P1/P2 over
	// their horizons: SeedPerTick = P1^(1/T1), AdultPerTick = P2^(1/T2).
	SeedPerTick  float64
	AdultPerTick float64

	ConNDD float64 // conspecific crowding coefficient
	HetNDD float64 // heterospecific crowding coefficient
}

// Catalog is the single entry point for creating Species. The id sequence
// is serialized so identity assignment stays monotonic even if generation
// logic runs concurrently.
type Catalog struct {
	mu     sync.Mutex
	nextID int
	list   []*Species
	byID   map[int]*Species
}

// NewCatalog returns an empty catalog. Ids start at 1.
func NewCatalog() *Catalog {
	return &Catalog{nextID: 1, byID: make(map[int]*Species)}
}

// Create validates the parameters, derives the per-tick survival
// probabilities and registers a new Species under the next id.
func (c *Catalog) Create(parentID int, p1, p2 float64, t1, t2, ns int, conNDD, hetNDD float64) (*Species, error) {
	if p1 <= 0 || p1 > 1 {
		return nil, fmt.Errorf("p1=%v: %w", p1, ErrInvalidProbability)
	}
	if p2 <= 0 || p2 > 1 {
		return nil, fmt.Errorf("p2=%v: %w", p2, ErrInvalidProbability)
	}
	if t1 <= 0 {
		return nil, fmt.Errorf("t1=%d: %w", t1, ErrArithmeticDomain)
	}
	if t2 <= 0 {
		return nil, fmt.Errorf("t2=%d: %w", t2, ErrArithmeticDomain)
	}

	sp := &Species{
		ParentID:     parentID,
		T1:           t1,
		T2:           t2,
		NS:           ns,
		P1:           p1,
		P2:           p2,
		SeedPerTick:  math.Pow(p1, 1/float64(t1)),
		AdultPerTick: math.Pow(p2, 1/float64(t2)),
		ConNDD:       conNDD,
		HetNDD:       hetNDD,
	}

	c.mu.Lock()
	sp.ID = c.nextID
	c.nextID++
	c.list = append(c.list, sp)
	c.byID[sp.ID] = sp
	c.mu.Unlock()

	return sp, nil
}

// Get returns the species with the given id, or nil.
func (c *Catalog) Get(id int) *Species {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byID[id]
}

// All returns the species in creation order. The returned slice is a copy;
// the Species themselves are shared.
func (c *Catalog) All() []*Species {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Species, len(c.list))
	copy(out, c.list)
	return out
}

// Len returns the number of registered species.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}
