package calc

import (
	"errors"
	"testing"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
)

func TestCheapestStockPicksSmallerSheet(t *testing.T) {
	m := &catalog.Material{
		Code: "Flat", Cost: 100,
		Sizes: []layout.Size{{W: 1000, H: 1000}, {W: 500, H: 500}},
	}

	best, err := cheapestStock(m, layout.Size{W: 100, H: 100}, 1, layout.Margins{}, 0)
	if err != nil {
		t.Fatalf("cheapestStock failed: %v", err)
	}
	if best.Size != (layout.Size{W: 500, H: 500}) {
		t.Fatalf("picked %+v, want the cheaper 500x500 sheet", best.Size)
	}
	// One whole 0.25m² sheet at 100/m².
	nearlyEqual(t, "cost", best.Cost, 25)
	if best.Unit() != "sheet" {
		t.Fatalf("unit = %s, want sheet", best.Unit())
	}
}

func TestCheapestStockKeepsFirstOnTie(t *testing.T) {
	m := &catalog.Material{
		Code: "Twin", Cost: 100,
		Sizes: []layout.Size{{W: 1000, H: 500}, {W: 500, H: 1000}},
	}

	best, err := cheapestStock(m, layout.Size{W: 100, H: 100}, 10, layout.Margins{}, 0)
	if err != nil {
		t.Fatalf("cheapestStock failed: %v", err)
	}
	if best.Size != (layout.Size{W: 1000, H: 500}) {
		t.Fatalf("picked %+v, want the first of the equally priced sizes", best.Size)
	}
}

func TestCheapestStockRollVariant(t *testing.T) {
	m := &catalog.Material{
		Code: "Film", Cost: 290, IsRoll: true, RollWidth: 1000,
		Sizes: []layout.Size{{W: 1000}},
	}

	best, err := cheapestStock(m, layout.Size{W: 100, H: 100}, 10, layout.Margins{}, 0)
	if err != nil {
		t.Fatalf("cheapestStock failed: %v", err)
	}
	if best.Unit() != "mm" {
		t.Fatalf("unit = %s, want mm", best.Unit())
	}
	// 10 lanes across the meter-wide roll: one 100mm row.
	nearlyEqual(t, "length", best.LengthMM, 100)
}

func TestCheapestStockNoFit(t *testing.T) {
	m := &catalog.Material{Code: "Small", Cost: 10, Sizes: []layout.Size{{W: 200, H: 200}}}

	_, err := cheapestStock(m, layout.Size{W: 300, H: 300}, 1, layout.Margins{}, 0)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("error = %v, want ErrInfeasible", err)
	}

	_, err = cheapestStock(&catalog.Material{Code: "Empty"}, layout.Size{W: 10, H: 10}, 1, layout.Margins{}, 0)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("no-sizes error = %v, want ErrInfeasible", err)
	}
}

func TestRollStockCostMinimumLengthBatches(t *testing.T) {
	m := &catalog.Material{Code: "Film", Cost: 290, LengthMin: 1000}

	// 1.5m consumed rounds up to two 1m batches of a 1m-wide roll: 2m² at 290.
	nearlyEqual(t, "batched cost", rollStockCost(m, 1500, 1000), 580)

	free := &catalog.Material{Code: "Film", Cost: 290}
	nearlyEqual(t, "exact cost", rollStockCost(free, 1500, 1000), 435)
}

func TestSheetFractionMinimumCut(t *testing.T) {
	m := &catalog.Material{
		Code:    "PVC",
		MinSize: &layout.Size{W: 1000, H: 1500},
	}
	sheet := layout.Size{W: 2000, H: 3000}

	// Four minimum cuts per sheet; one item out of ten per sheet needs a
	// single quarter.
	nearlyEqual(t, "fraction", sheetFraction(m, sheet, 1, 10), 0.25)

	// Without a minimum cut whole sheets are charged.
	whole := &catalog.Material{Code: "PVC"}
	nearlyEqual(t, "whole sheets", sheetFraction(whole, sheet, 11, 10), 2)
}
