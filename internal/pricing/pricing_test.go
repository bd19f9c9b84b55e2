package pricing

import (
	"math"
	"testing"

	"github.com/printworks/quoter/internal/layout"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func testGlobals() Globals {
	return Globals{
		CostOperator:    1400,
		MarginMaterial:  0.6,
		MarginOperation: 0.55,
		MarginMin:       0.25,
		USDRate:         95,
		EURRate:         100,
		LeadTimes:       []float64{24, 8, 1},
		Margins:         map[string]float64{"marginLaser": 0.05, "marginMilling": 0.1},
	}
}

func TestParseMode(t *testing.T) {
	for _, v := range []int{0, 1, 2} {
		if _, err := ParseMode(v); err != nil {
			t.Fatalf("ParseMode(%d) returned error: %v", v, err)
		}
	}
	for _, v := range []int{-1, 3, 100} {
		if _, err := ParseMode(v); err == nil {
			t.Fatalf("ParseMode(%d) accepted an out-of-range mode", v)
		}
	}
}

func TestDefectAdjustedRoundsHalfUp(t *testing.T) {
	// 50 * 1.05 = 52.5 must round to 53, not to even.
	if got := DefectAdjusted(50, 0.05); got != 53 {
		t.Fatalf("DefectAdjusted(50, 0.05) = %d, want 53", got)
	}
	if got := DefectAdjusted(100, 0.02); got != 102 {
		t.Fatalf("DefectAdjusted(100, 0.02) = %d, want 102", got)
	}
	if got := DefectAdjusted(10, 0); got != 10 {
		t.Fatalf("DefectAdjusted with zero rate changed the quantity: %d", got)
	}
}

func TestDefectAdjustedCeil(t *testing.T) {
	// 10 * 1.01 = 10.1 rounds up.
	if got := DefectAdjustedCeil(10, 0.01); got != 11 {
		t.Fatalf("DefectAdjustedCeil(10, 0.01) = %d, want 11", got)
	}
	if got := DefectAdjustedCeil(10, 0); got != 10 {
		t.Fatalf("DefectAdjustedCeil with zero rate changed the quantity: %d", got)
	}
}

func TestDefectRateForMode(t *testing.T) {
	nearlyEqual(t, "economy", DefectRateForMode(0.05, ModeEconomy), 0.05)
	nearlyEqual(t, "standard", DefectRateForMode(0.05, ModeStandard), 0.05)
	nearlyEqual(t, "express", DefectRateForMode(0.05, ModeExpress), 0.1)
}

func TestEffectiveMarginFloorsAtMinimum(t *testing.T) {
	g := testGlobals()

	nearlyEqual(t, "with extra", g.EffectiveMargin(0.05), 0.6)
	nearlyEqual(t, "deep negative extra", g.EffectiveMargin(-0.9), 0.25)
}

func TestLeadTimeClampsAndFallsBack(t *testing.T) {
	g := testGlobals()

	nearlyEqual(t, "equipment economy", g.LeadTime([]float64{48, 16, 2}, ModeEconomy), 48)
	nearlyEqual(t, "equipment express", g.LeadTime([]float64{48, 16, 2}, ModeExpress), 2)
	// A short per-equipment array clamps at its last entry.
	nearlyEqual(t, "short array express", g.LeadTime([]float64{48}, ModeExpress), 48)
	// Empty per-equipment array falls back to the globals.
	nearlyEqual(t, "fallback standard", g.LeadTime(nil, ModeStandard), 8)

	empty := Globals{}
	nearlyEqual(t, "no arrays at all", empty.LeadTime(nil, ModeStandard), 0)
}

func TestJobLeadTime(t *testing.T) {
	g := testGlobals()
	g.JobLeadTimes = map[string][]float64{"leadTimesPrintSheet": {48, 24, 4}}

	nearlyEqual(t, "per-job override", g.JobLeadTime("leadTimesPrintSheet", ModeStandard), 24)
	// Jobs without an override use the shop-wide array.
	nearlyEqual(t, "no override", g.JobLeadTime("leadTimesLaser", ModeStandard), 8)
}

func TestRoundHours(t *testing.T) {
	nearlyEqual(t, "RoundHours up", RoundHours(0.1234), 0.13)
	nearlyEqual(t, "RoundHours exact", RoundHours(0.25), 0.25)
	nearlyEqual(t, "RoundHoursNearest down", RoundHoursNearest(0.1234), 0.12)
	nearlyEqual(t, "RoundHoursNearest half", RoundHoursNearest(0.125), 0.13)
}

func TestUnitPrice(t *testing.T) {
	nearlyEqual(t, "normal", UnitPrice(100, 4), 25)
	nearlyEqual(t, "zero quantity guarded", UnitPrice(100, 0), 100)
}

func TestWeightVolumetric(t *testing.T) {
	// 10 pieces of 1000x500x3mm PVC at 1.4 g/cm³:
	// 100cm * 50cm * 0.3cm * 1.4 = 2100g each, 21kg total.
	got, err := Weight(10, 1.4, 3, layout.Size{W: 1000, H: 500}, DensityVolumetric)
	if err != nil {
		t.Fatalf("Weight returned error: %v", err)
	}
	nearlyEqual(t, "volumetric weight", got, 21)
}

func TestWeightAreal(t *testing.T) {
	// 100 sheets of 320x450mm 300g/m² paper: 0.144m² * 300g = 43.2g each.
	got, err := Weight(100, 300, 0, layout.Size{W: 320, H: 450}, DensityAreal)
	if err != nil {
		t.Fatalf("Weight returned error: %v", err)
	}
	nearlyEqual(t, "areal weight", got, 4.32)
}

func TestWeightUnknownUnit(t *testing.T) {
	if _, err := Weight(1, 1, 1, layout.Size{W: 100, H: 100}, "lb/ft2"); err == nil {
		t.Fatal("expected error for unknown density unit")
	}
}

func TestParseCurrency(t *testing.T) {
	g := testGlobals()

	cases := []struct {
		raw  string
		want float64
	}{
		{"$100", 9500},
		{"€100", 10000},
		{"1500", 1500},
		{"1 234,5", 1234.5},
		{"", 0},
		{"  $9 000  ", 855000},
	}
	for _, tc := range cases {
		got, err := g.ParseCurrency(tc.raw)
		if err != nil {
			t.Fatalf("ParseCurrency(%q) returned error: %v", tc.raw, err)
		}
		nearlyEqual(t, "ParseCurrency("+tc.raw+")", got, tc.want)
	}

	if _, err := g.ParseCurrency("$abc"); err == nil {
		t.Fatal("expected error for a non-numeric amount")
	}
}
