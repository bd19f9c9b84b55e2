// Package lookup implements the threshold table used across the pricing
// engine for defect rates, tiered material costs and equipment speed curves.
package lookup

import (
	"errors"
	"sort"
)

// Pair is one (threshold, value) entry of a table.
type Pair struct {
	Threshold float64
	Value     float64
}

// Table is an ordered sequence of threshold/value pairs acting as a step
// function: Find returns the value of the first threshold >= query, or the
// last value when the query is beyond every threshold.
type Table struct {
	pairs []Pair
}

// ErrEmpty is returned by New when no pairs are given.
var ErrEmpty = errors.New("lookup: table must not be empty")

// New builds a table from pairs, sorting them ascending by threshold.
func New(pairs []Pair) (*Table, error) {
	if len(pairs) == 0 {
		return nil, ErrEmpty
	}
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold < sorted[j].Threshold
	})
	return &Table{pairs: sorted}, nil
}

// FromRows builds a table from [[threshold, value], ...] rows as they appear
// in catalog JSON columns. Rows with fewer than two numbers are rejected.
func FromRows(rows [][]float64) (*Table, error) {
	pairs := make([]Pair, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			return nil, errors.New("lookup: row must be [threshold, value]")
		}
		pairs = append(pairs, Pair{Threshold: row[0], Value: row[1]})
	}
	return New(pairs)
}

// Find returns the value of the first pair whose threshold >= v.
// Equality resolves to that threshold's value. Beyond the last threshold the
// last value is returned, so the table ends in a plateau.
func (t *Table) Find(v float64) float64 {
	for _, p := range t.pairs {
		if v <= p.Threshold {
			return p.Value
		}
	}
	return t.pairs[len(t.pairs)-1].Value
}

// Len reports the number of entries.
func (t *Table) Len() int { return len(t.pairs) }
