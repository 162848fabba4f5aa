package result

import (
	"encoding/gob"
	"os"
	"time"
)

// Baseline is a saved benchmark run that later runs are compared with.
type Baseline struct {
	Rows  []Row
	Taken time.Time
}

// Delta compares one task's throughput across two runs.
type Delta struct {
	Name          string
	Before, After float64 // T-states per second
}

// Ratio returns After/Before, or 0 when there is no baseline figure.
func (d Delta) Ratio() float64 {
	if d.Before == 0 {
		return 0
	}
	return d.After / d.Before
}

// SaveBaseline writes rows to a file.
func SaveBaseline(path string, b *Baseline) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(b)
}

// LoadBaseline loads a baseline from a file.
func LoadBaseline(path string) (*Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b Baseline
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Compare pairs each row with the baseline row of the same name. Rows
// missing from the baseline get a zero Before.
func (b *Baseline) Compare(rows []Row) []Delta {
	before := make(map[string]float64, len(b.Rows))
	for _, r := range b.Rows {
		before[r.Name] = r.Throughput()
	}
	out := make([]Delta, len(rows))
	for i, r := range rows {
		out[i] = Delta{Name: r.Name, Before: before[r.Name], After: r.Throughput()}
	}
	return out
}
