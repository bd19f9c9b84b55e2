package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
)

// stockVariant is one candidate material size with its consumption and cost.
// For roll stock LengthMM is set and Sheets is 0; for sheets the reverse.
type stockVariant struct {
	Size     layout.Size
	Cost     float64
	Sheets   float64
	LengthMM float64
}

// Unit names the consumption unit of the variant.
func (v stockVariant) Unit() string {
	if v.Size.IsRoll() {
		return "mm"
	}
	return "sheet"
}

// Quantity is the consumed amount in the variant's unit.
func (v stockVariant) Quantity() float64 {
	if v.Size.IsRoll() {
		return v.LengthMM
	}
	return v.Sheets
}

// cheapestStock searches every stocked size of the material for the one that
// produces quantity items at minimal material cost. Sheet sizes are packed
// with OnSheet, roll sizes with OnRoll; sizes the item does not fit on are
// skipped. Strict less-than keeps the first of equally priced variants, so
// the catalog order acts as the tie breaker. ErrInfeasible when no size fits.
func cheapestStock(m *catalog.Material, item layout.Size, quantity int, margins layout.Margins, gap float64) (stockVariant, error) {
	if len(m.Sizes) == 0 {
		return stockVariant{}, fmt.Errorf("material %s has no stocked sizes: %w", m.Code, ErrInfeasible)
	}

	var best *stockVariant
	for _, sz := range m.Sizes {
		var v stockVariant
		if sz.IsRoll() {
			fit := layout.OnRoll(quantity, item, sz, gap)
			if fit.Count == 0 {
				continue
			}
			v = stockVariant{
				Size:     sz,
				LengthMM: fit.Length,
				Cost:     rollStockCost(m, fit.Length, sz.W),
			}
		} else {
			fit := layout.OnSheet(item, sz, margins, gap)
			if fit.Count == 0 {
				continue
			}
			sheets := sheetFraction(m, sz, quantity, fit.Count)
			v = stockVariant{
				Size:   sz,
				Sheets: sheets,
				Cost:   m.UnitCost(sheets) * sheets * sz.W * sz.H / 1e6,
			}
		}
		if best == nil || v.Cost < best.Cost {
			tmp := v
			best = &tmp
		}
	}
	if best == nil {
		return stockVariant{}, fmt.Errorf("item %gx%g fits no stocked size of %s: %w", item.W, item.H, m.Code, ErrInfeasible)
	}
	return *best, nil
}

// rollStockCost prices a consumed roll length. When the material is sold in
// minimum-length increments the length is rounded up to a whole number of
// them first; cost is per square meter of the full roll width.
func rollStockCost(m *catalog.Material, lengthMM, rollW float64) float64 {
	base := m.UnitCost(lengthMM / 1000)
	if m.LengthMin > 0 {
		return base * math.Ceil(lengthMM/m.LengthMin) * m.LengthMin / 1e6 * rollW
	}
	return base * lengthMM * rollW / 1e6
}

// sheetFraction is the number of sheets needed for quantity items at
// perSheet per sheet. When the material has a minimum saleable cut the count
// is a fraction in units of that cut, otherwise whole sheets.
func sheetFraction(m *catalog.Material, sheet layout.Size, quantity, perSheet int) float64 {
	minPer := 1
	if m.MinSize != nil {
		fit := layout.OnSheet(*m.MinSize, sheet, layout.Margins{}, 0)
		if fit.Count > 1 {
			minPer = fit.Count
		}
	}
	return math.Ceil(float64(quantity)/float64(perSheet)*float64(minPer)) / float64(minPer)
}
