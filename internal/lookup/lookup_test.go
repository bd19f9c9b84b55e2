package lookup

import (
	"errors"
	"testing"
)

func mustTable(t *testing.T, rows [][]float64) *Table {
	t.Helper()
	table, err := FromRows(rows)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func TestFindPicksFirstThresholdAtOrAbove(t *testing.T) {
	table := mustTable(t, [][]float64{{10, 100}, {50, 80}, {100, 60}})

	cases := []struct {
		value float64
		want  float64
	}{
		{30, 80},
		{5, 100},
		{999, 60},
		{10, 100}, // equality resolves to that threshold
		{50, 80},
		{100, 60},
		{50.0001, 60},
	}
	for _, tc := range cases {
		if got := table.Find(tc.value); got != tc.want {
			t.Fatalf("Find(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestFindBeyondLastThresholdPlateaus(t *testing.T) {
	table := mustTable(t, [][]float64{{1, 5}})

	if got := table.Find(1e12); got != 5 {
		t.Fatalf("Find beyond last threshold = %v, want 5", got)
	}
}

func TestNewSortsUnorderedPairs(t *testing.T) {
	table, err := New([]Pair{{Threshold: 100, Value: 60}, {Threshold: 10, Value: 100}, {Threshold: 50, Value: 80}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if got := table.Find(30); got != 80 {
		t.Fatalf("Find(30) on unordered input = %v, want 80", got)
	}
}

func TestNewRejectsEmptyTable(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("New(nil) error = %v, want ErrEmpty", err)
	}
}

func TestFromRowsRejectsShortRow(t *testing.T) {
	if _, err := FromRows([][]float64{{10}}); err == nil {
		t.Fatal("expected error for row with a single number")
	}
}
