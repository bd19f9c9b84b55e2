package layout

import (
	"math"
	"testing"
)

func TestOnSheetBasicGrid(t *testing.T) {
	got := OnSheet(Size{W: 100, H: 100}, Size{W: 1000, H: 500}, Margins{}, 0)

	if got.Count != 50 || got.Cols != 10 || got.Rows != 5 {
		t.Fatalf("OnSheet = %+v, want {Count:50 Cols:10 Rows:5}", got)
	}
}

func TestOnSheetCountEqualsColsTimesRows(t *testing.T) {
	cases := []struct {
		item, sheet Size
		m           Margins
		gap         float64
	}{
		{Size{W: 100, H: 100}, Size{W: 1000, H: 500}, Margins{}, 0},
		{Size{W: 90, H: 50}, Size{W: 320, H: 450}, Margins{Top: 3, Right: 3, Bottom: 3, Left: 3}, 2},
		{Size{W: 297, H: 210}, Size{W: 2050, H: 3050}, Margins{Top: 5, Right: 5, Bottom: 5, Left: 5}, 5},
	}
	for _, tc := range cases {
		got := OnSheet(tc.item, tc.sheet, tc.m, tc.gap)
		if got.Count != got.Cols*got.Rows {
			t.Fatalf("OnSheet(%+v on %+v) count %d != cols %d * rows %d", tc.item, tc.sheet, got.Count, got.Cols, got.Rows)
		}
	}
}

func TestOnSheetRotationSymmetry(t *testing.T) {
	item := Size{W: 120, H: 70}
	sheet := Size{W: 1000, H: 600}

	plain := OnSheet(item, sheet, Margins{}, 0)
	rotated := OnSheet(item.Rotated(), sheet, Margins{}, 0)

	if plain.Count != rotated.Count {
		t.Fatalf("rotation changed count: %d vs %d", plain.Count, rotated.Count)
	}
}

func TestOnSheetGapIsBetweenItemsOnly(t *testing.T) {
	// 3 items of 100 with 2 gaps of 10 need 320; the edge needs no gap.
	got := OnSheet(Size{W: 100, H: 100}, Size{W: 320, H: 100}, Margins{}, 10)

	if got.Cols != 3 {
		t.Fatalf("expected 3 columns on a 320mm sheet with 10mm gap, got %d", got.Cols)
	}
}

func TestOnSheetItemLargerThanSheet(t *testing.T) {
	got := OnSheet(Size{W: 600, H: 600}, Size{W: 500, H: 500}, Margins{}, 0)

	if got.Count != 0 {
		t.Fatalf("oversized item should not fit, got %+v", got)
	}
}

func TestOnSheetMarginsConsumeArea(t *testing.T) {
	with := OnSheet(Size{W: 100, H: 100}, Size{W: 1000, H: 500}, Margins{Top: 30, Right: 30, Bottom: 30, Left: 30}, 0)
	without := OnSheet(Size{W: 100, H: 100}, Size{W: 1000, H: 500}, Margins{}, 0)

	if with.Count >= without.Count {
		t.Fatalf("margins should reduce count: %d >= %d", with.Count, without.Count)
	}
}

func TestOnRollMinimalLength(t *testing.T) {
	// 620mm roll, 100x150 item, qty 25: 4 lanes of 150 across beats 6 lanes
	// of 100 across. 7 rows of 100mm = 700mm.
	got := OnRoll(25, Size{W: 100, H: 150}, Size{W: 620}, 0)

	if got.Count != 25 {
		t.Fatalf("Count = %d, want 25", got.Count)
	}
	if math.Abs(got.Length-700) > 1e-9 {
		t.Fatalf("Length = %v, want 700", got.Length)
	}
}

func TestOnRollItemWiderThanRoll(t *testing.T) {
	got := OnRoll(10, Size{W: 700, H: 800}, Size{W: 620}, 0)

	if got.Count != 0 || got.Length != 0 {
		t.Fatalf("expected zero-value Roll for oversized item, got %+v", got)
	}
}

func TestRollLengthOrientations(t *testing.T) {
	item := Size{W: 100, H: 150}

	short := RollLength(25, item, 620, 0, ShortAcross)
	long := RollLength(25, item, 620, 0, LongAcross)
	best := RollLength(25, item, 620, 0, BestOf)

	// Short side across: 6 lanes, 5 rows of 150 = 750.
	if math.Abs(short-750) > 1e-9 {
		t.Fatalf("ShortAcross = %v, want 750", short)
	}
	// Long side across: 4 lanes, 7 rows of 100 = 700.
	if math.Abs(long-700) > 1e-9 {
		t.Fatalf("LongAcross = %v, want 700", long)
	}
	if best != long {
		t.Fatalf("BestOf = %v, want %v", best, long)
	}
}

func TestRollLengthInfeasibleOrientation(t *testing.T) {
	// Long side (800) cannot lie across a 620 roll.
	if got := RollLength(10, Size{W: 300, H: 800}, 620, 0, LongAcross); got != 0 {
		t.Fatalf("expected 0 for infeasible orientation, got %v", got)
	}
	// But short across works.
	if got := RollLength(10, Size{W: 300, H: 800}, 620, 0, ShortAcross); got <= 0 {
		t.Fatalf("expected positive length for feasible orientation, got %v", got)
	}
}

func TestSizeIsRoll(t *testing.T) {
	if !(Size{W: 1000}).IsRoll() {
		t.Fatal("H == 0 should denote a roll")
	}
	if (Size{W: 1000, H: 500}).IsRoll() {
		t.Fatal("bounded size misreported as roll")
	}
}
