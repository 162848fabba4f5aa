// Package result collects and persists benchmark outcomes.
package result

import (
	"sort"
	"sync"
	"time"
)

// Row is the outcome of one benchmark task.
type Row struct {
	Name         string
	TStates      uint64
	Instructions uint64
	Elapsed      time.Duration
	Stop         string
}

// Throughput returns emulated T-states per second of wall time.
func (r Row) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.TStates) / r.Elapsed.Seconds()
}

// MHz is Throughput expressed as an equivalent clock frequency.
func (r Row) MHz() float64 { return r.Throughput() / 1e6 }

// Table stores benchmark rows from concurrent workers.
type Table struct {
	mu   sync.Mutex
	rows []Row
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a row into the table.
func (t *Table) Add(r Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, r)
}

// Rows returns a copy of all rows, fastest first.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Row, len(t.rows))
	copy(result, t.rows)
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Throughput(), result[j].Throughput()
		if ti != tj {
			return ti > tj
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}
