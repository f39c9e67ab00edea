package species

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// Record is the tabular row form of a Species. Field order fixes the CSV
// column order.
type Record struct {
	SpeciesID    int     `csv:"speciesID"`
	ParentID     int     `csv:"parentID"`
	T1           int     `csv:"t1"`
	P1           float64 `csv:"p1"`
	SeedPerTick  float64 `csv:"seedPerTick"`
	T2           int     `csv:"t2"`
	P2           float64 `csv:"p2"`
	AdultPerTick float64 `csv:"adultPerTick"`
	NS           int     `csv:"ns"`
	ConNDD       float64 `csv:"CNDD"`
	HetNDD       float64 `csv:"HNDD"`
}

// Record returns the tabular form of the species.
func (s *Species) Record() Record {
	return Record{
		SpeciesID:    s.ID,
		ParentID:     s.ParentID,
		T1:           s.T1,
		P1:           s.P1,
		SeedPerTick:  s.SeedPerTick,
		T2:           s.T2,
		P2:           s.P2,
		AdultPerTick: s.AdultPerTick,
		NS:           s.NS,
		ConNDD:       s.ConNDD,
		HetNDD:       s.HetNDD,
	}
}

// Records returns one row per species, in creation order.
func (c *Catalog) Records() []Record {
	all := c.All()
	rows := make([]Record, len(all))
	for i, sp := range all {
		rows[i] = sp.Record()
	}
	return rows
}

// SaveCSV writes the species table to path.
func (c *Catalog) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating species table: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(c.Records(), f); err != nil {
		return fmt.Errorf("writing species table: %w", err)
	}
	return nil
}

// FromRecords rebuilds a catalog from table rows, preserving the stored
// ids. Parameters are re-validated and the per-tick probabilities
// re-derived rather than trusted from the file.
func FromRecords(rows []Record) (*Catalog, error) {
	c := NewCatalog()
	for _, r := range rows {
		sp, err := c.Create(r.ParentID, r.P1, r.P2, r.T1, r.T2, r.NS, r.ConNDD, r.HetNDD)
		if err != nil {
			return nil, fmt.Errorf("species %d: %w", r.SpeciesID, err)
		}
		c.mu.Lock()
		delete(c.byID, sp.ID)
		sp.ID = r.SpeciesID
		c.byID[sp.ID] = sp
		if r.SpeciesID >= c.nextID {
			c.nextID = r.SpeciesID + 1
		}
		c.mu.Unlock()
	}
	return c, nil
}

// LoadCSV reads a species table written by SaveCSV.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening species table: %w", err)
	}
	defer f.Close()
	var rows []Record
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("reading species table: %w", err)
	}
	return FromRecords(rows)
}
