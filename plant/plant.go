// Package plant implements individual plants and the bounded per-cell
// population container they live in.
package plant

import (
	"fmt"
	"math/rand/v2"

	"github.com/pthm-cable/canopy/species"
)

// Stage is a plant's life stage. Dead is a transient outcome of Advance and
// is never stored in a Population.
type Stage uint8

const (
	Juvenile Stage = iota
	Adult
	Dead
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Juvenile:
		return "juvenile"
	case Adult:
		return "adult"
	case Dead:
		return "dead"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// ParseStage is the inverse of String.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "juvenile":
		return Juvenile, nil
	case "adult":
		return Adult, nil
	case "dead":
		return Dead, nil
	}
	return 0, fmt.Errorf("plant: unknown stage %q", s)
}

// Crowding holds the per-stage multipliers applied to the neighbor-count
// penalty. The original model's values (2 for juveniles, 1 for adults) are
// tuning constants, so they are carried as configuration.
type Crowding struct {
	JuvenileMult float64
	AdultMult    float64
}

// DefaultCrowding matches the reference parameterization: juveniles are
// twice as crowding-sensitive as adults.
var DefaultCrowding = Crowding{JuvenileMult: 2, AdultMult: 1}

// Plant is one individual: a shared read-only species reference, an age in
// ticks and a life stage. Plants move between populations, they are never
// aliased by two cells at once.
type Plant struct {
	Species *species.Species
	Age     int
	Stage   Stage
}

// NewJuvenile returns an age-0 juvenile of the given species.
func NewJuvenile(sp *species.Species) *Plant {
	return &Plant{Species: sp, Stage: Juvenile}
}

// NewAdult returns an adult of the given species.
func NewAdult(sp *species.Species, age int) *Plant {
	return &Plant{Species: sp, Age: age, Stage: Adult}
}

// penalty is the density-dependent reduction in this tick's survival
// probability: mult * (con*ConNDD + het*HetNDD).
func (p *Plant) penalty(con, het int, cw Crowding) float64 {
	mult := cw.AdultMult
	if p.Stage == Juvenile {
		mult = cw.JuvenileMult
	}
	return mult * (float64(con)*p.Species.ConNDD + float64(het)*p.Species.HetNDD)
}

// Advance applies one tick to the plant: a survival draw against the
// per-tick probability minus the crowding penalty, then aging and, for
// juveniles reaching T1, promotion. It mutates the plant in place and
// returns the resulting stage so the caller can re-slot or discard it.
//
// The penalty is subtracted without clamping: under heavy crowding the
// right-hand side goes negative and the draw, always >= 0, can never
// satisfy it. Guaranteed death is a valid outcome, not an error.
func (p *Plant) Advance(con, het int, cw Crowding, rng *rand.Rand) Stage {
	switch p.Stage {
	case Juvenile:
		if rng.Float64() > p.Species.SeedPerTick-p.penalty(con, het, cw) {
			p.Stage = Dead
			return Dead
		}
		p.Age++
		if p.Age >= p.Species.T1 {
			p.Stage = Adult
		}
		return p.Stage
	case Adult:
		if rng.Float64() > p.Species.AdultPerTick-p.penalty(con, het, cw) {
			p.Stage = Dead
			return Dead
		}
		p.Age++
		return Adult
	}
	return Dead
}
