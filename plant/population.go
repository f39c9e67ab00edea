package plant

import "math/rand/v2"

// Counts maps species id to [adults, juveniles] for one cell.
type Counts map[int][2]int

// Clone returns a copy of the counts.
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for id, v := range c {
		out[id] = v
	}
	return out
}

// Population is the bounded container of plants for one grid cell.
//
// Invariants maintained by AddPlant, MergeFrom and AdvanceTick:
//   - at most one stored plant is an Adult, and when hasAdult is true it is
//     the one resident points to;
//   - len(plants) never exceeds limit;
//   - counts always matches the stored plants (a derived cache, patched on
//     every mutation).
//
// AddAdultUnchecked deliberately bypasses the first invariant: staging
// cells under AdultDispersal accumulate multiple adult candidates there,
// and the invariant is re-established when the staging cell is merged into
// a live cell through AddPlant.
type Population struct {
	limit    int
	plants   []*Plant
	hasAdult bool
	resident *Plant
	counts   Counts
}

// NewPopulation returns an empty population capped at limit plants.
func NewPopulation(limit int) *Population {
	return &Population{limit: limit, counts: make(Counts)}
}

// Len returns the number of stored plants.
func (p *Population) Len() int { return len(p.plants) }

// Limit returns the storage cap.
func (p *Population) Limit() int { return p.limit }

// HasAdult reports whether the cell holds a resident adult.
func (p *Population) HasAdult() bool { return p.hasAdult }

// Resident returns the resident adult, or nil.
func (p *Population) Resident() *Plant { return p.resident }

// Plants returns the stored plants. Callers must not mutate the slice.
func (p *Population) Plants() []*Plant { return p.plants }

// Counts returns the species-count cache. Callers must not mutate it.
func (p *Population) Counts() Counts { return p.counts }

func (p *Population) inc(id int, stage Stage) {
	c := p.counts[id]
	if stage == Adult {
		c[0]++
	} else {
		c[1]++
	}
	p.counts[id] = c
}

func (p *Population) dec(pl *Plant) {
	id := pl.Species.ID
	c := p.counts[id]
	if pl.Stage == Adult {
		c[0]--
	} else {
		c[1]--
	}
	if c == ([2]int{}) {
		delete(p.counts, id)
	} else {
		p.counts[id] = c
	}
}

// AddPlant offers a plant to the cell, enforcing the single-adult invariant
// and the storage cap. Capacity pressure is resolved by discard or random
// replacement, never by error:
//
//   - adult, resident already present: the newcomer is discarded;
//   - adult, no resident, cell full: a uniformly random occupant is evicted
//     and replaced by the newcomer;
//   - adult, spare capacity: appended and made resident;
//   - juvenile, cell full: discarded;
//   - juvenile, spare capacity: appended.
func (p *Population) AddPlant(pl *Plant, rng *rand.Rand) {
	switch pl.Stage {
	case Adult:
		if p.hasAdult {
			return
		}
		if len(p.plants) >= p.limit {
			i := rng.IntN(len(p.plants))
			p.dec(p.plants[i])
			p.plants[i] = pl
		} else {
			p.plants = append(p.plants, pl)
		}
		p.hasAdult = true
		p.resident = pl
		p.inc(pl.Species.ID, Adult)
	case Juvenile:
		if len(p.plants) >= p.limit {
			return
		}
		p.plants = append(p.plants, pl)
		p.inc(pl.Species.ID, Juvenile)
	}
}

// AddAdultUnchecked appends an adult without touching the resident flag.
// Used only to stage adult candidates under AdultDispersal; the single-adult
// invariant is enforced when the staging cell is merged via AddPlant.
func (p *Population) AddAdultUnchecked(pl *Plant) {
	if len(p.plants) >= p.limit {
		return
	}
	p.plants = append(p.plants, pl)
	p.inc(pl.Species.ID, Adult)
}

// MergeFrom offers every plant of other to this cell in stored order. If
// both cells hold a resident adult nothing moves: the resident always wins
// over any incoming adult, regardless of arrival order.
func (p *Population) MergeFrom(other *Population, rng *rand.Rand) {
	if p.hasAdult && other.hasAdult {
		return
	}
	for _, pl := range other.plants {
		p.AddPlant(pl, rng)
	}
}

// ProduceOffspring emits the resident adult's NS offspring for this tick
// into a fresh container, or an empty one if the cell has no resident.
// Under AdultDispersal the offspring are age-0 adults staged unchecked;
// under JuvenileDispersal they are age-0 juveniles.
func (p *Population) ProduceOffspring(mode Mode, rng *rand.Rand) *Population {
	out := NewPopulation(p.limit)
	if !p.hasAdult {
		return out
	}
	sp := p.resident.Species
	for i := 0; i < sp.NS; i++ {
		if mode == AdultDispersal {
			out.AddAdultUnchecked(NewAdult(sp, 0))
		} else {
			out.AddPlant(NewJuvenile(sp), rng)
		}
	}
	return out
}

// AggregateInto folds this cell's pre-tick contents into a running
// species-count map. Under AdultDispersal only the resident adult counts;
// under JuvenileDispersal every stored plant counts. Read-only.
func (p *Population) AggregateInto(totals map[int]int, mode Mode) {
	if mode == AdultDispersal {
		if p.hasAdult {
			totals[p.resident.Species.ID]++
		}
		return
	}
	for id, c := range p.counts {
		totals[id] += c[0] + c[1]
	}
}

// AdvanceTick runs one tick for every plant in the cell.
//
// neighbors must be the Moore-neighborhood aggregate computed from the
// pre-tick board, including this cell itself; each plant's conspecific
// count is therefore neighbors[species]-1, and its heterospecific count is
// the map total minus that.
//
// Deaths are discarded. If the resident adult died the cell loses it
// immediately; a surviving resident stays dominant with no re-election.
// Otherwise one of the newly promoted adults (if any) is elected uniformly
// at random. The plant list and count cache are rebuilt from the surviving
// juveniles plus the resolved resident; surviving non-resident adults are
// dropped.
func (p *Population) AdvanceTick(neighbors map[int]int, cw Crowding, rng *rand.Rand) {
	total := 0
	for _, n := range neighbors {
		total += n
	}

	juveniles := make([]*Plant, 0, len(p.plants))
	var candidates []*Plant

	for _, pl := range p.plants {
		con := neighbors[pl.Species.ID] - 1
		het := total - con
		wasResident := pl == p.resident

		switch pl.Advance(con, het, cw, rng) {
		case Dead:
			if wasResident {
				p.hasAdult = false
				p.resident = nil
			}
		case Adult:
			if !wasResident {
				candidates = append(candidates, pl)
			}
		case Juvenile:
			juveniles = append(juveniles, pl)
		}
	}

	if !p.hasAdult && len(candidates) > 0 {
		p.hasAdult = true
		p.resident = candidates[rng.IntN(len(candidates))]
	}

	p.plants = juveniles
	p.counts = make(Counts, len(neighbors))
	for _, pl := range juveniles {
		p.inc(pl.Species.ID, Juvenile)
	}
	if p.hasAdult {
		p.plants = append(p.plants, p.resident)
		p.inc(p.resident.Species.ID, Adult)
	}
}

// Clear resets the population for reuse as a staging cell.
func (p *Population) Clear() {
	p.plants = p.plants[:0]
	p.hasAdult = false
	p.resident = nil
	clear(p.counts)
}
