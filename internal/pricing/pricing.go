// Package pricing holds the composition rules shared by every calculator:
// defect-adjusted quantities, margin floors, time rounding, weight and
// currency normalization. All functions are pure; the only state is the
// Globals snapshot loaded with the catalog.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/printworks/quoter/internal/layout"
)

// Mode is the production mode ordinal: 0 economy, 1 standard, 2 express.
type Mode int

const (
	ModeEconomy  Mode = 0
	ModeStandard Mode = 1
	ModeExpress  Mode = 2
)

// ParseMode validates a raw mode value.
func ParseMode(v int) (Mode, error) {
	if v < int(ModeEconomy) || v > int(ModeExpress) {
		return 0, fmt.Errorf("mode must be 0, 1 or 2, got %d", v)
	}
	return Mode(v), nil
}

// Density units for Weight.
const (
	DensityVolumetric = "g/cm3" // density in g/cm³, thickness matters
	DensityAreal      = "g/m2"  // density in g/m², sheet goods
)

// Globals are the shop-wide pricing constants. They are loaded from the
// globals table together with the catalogs and are immutable afterwards.
type Globals struct {
	CostOperator    float64
	MarginMaterial  float64
	MarginOperation float64
	MarginMin       float64
	USDRate         float64
	EURRate         float64
	// LeadTimes is the default lead-time array in working hours,
	// indexed by Mode (economy, standard, express).
	LeadTimes []float64
	// JobLeadTimes holds per-job-type queue overrides of LeadTimes,
	// e.g. "leadTimesPrintSheet".
	JobLeadTimes map[string][]float64
	// Margins holds the per-job-type overrides, e.g. "marginLaser".
	Margins map[string]float64
}

// Margin returns the override for key, or 0 when absent.
func (g Globals) Margin(key string) float64 {
	return g.Margins[key]
}

// EffectiveMargin is the operation margin plus a per-job override, floored at
// the minimum acceptable markup. The floor guarantees no job is quoted below
// it regardless of negative overrides.
func (g Globals) EffectiveMargin(extra float64) float64 {
	return math.Max(g.MarginOperation+extra, g.MarginMin)
}

// LeadTime picks the lead time for mode out of times, clamping the index at
// both ends. Falls back to the global default array when times is empty.
func (g Globals) LeadTime(times []float64, mode Mode) float64 {
	if len(times) == 0 {
		times = g.LeadTimes
	}
	if len(times) == 0 {
		return 0
	}
	idx := int(mode)
	if idx < 0 {
		idx = 0
	}
	if idx > len(times)-1 {
		idx = len(times) - 1
	}
	return times[idx]
}

// JobLeadTime is the queue lead time for one job type: the per-job override
// when the globals carry one, otherwise the shop-wide default array.
func (g Globals) JobLeadTime(key string, mode Mode) float64 {
	return g.LeadTime(g.JobLeadTimes[key], mode)
}

// DefectRateForMode inflates a base defect rate for rush modes:
// rate += rate*(mode-1) for express-tier modes.
func DefectRateForMode(rate float64, mode Mode) float64 {
	if mode >= ModeExpress {
		rate += rate * float64(int(mode)-1)
	}
	return rate
}

// DefectAdjusted is the production quantity including expected spoilage,
// rounded half-up: 52.5 rounds to 53, never 52. The legacy formulas were
// written against JS Math.round, and the bracket a quantity lands in changes
// the quoted price, so banker's rounding is not acceptable here.
func DefectAdjusted(quantity int, rate float64) int {
	return int(math.Floor(float64(quantity)*(1+rate) + 0.5))
}

// DefectAdjustedCeil is the variant used by the job types whose legacy
// formulas round the spoiled quantity up unconditionally.
func DefectAdjustedCeil(quantity int, rate float64) int {
	return int(math.Ceil(float64(quantity) * (1 + rate)))
}

// RoundHours rounds working time up to two decimal places.
func RoundHours(h float64) float64 {
	return math.Ceil(h*100) / 100
}

// RoundHoursNearest rounds to two decimals half-up. Some legacy job types
// round time to nearest instead of up; both are preserved as-is.
func RoundHoursNearest(h float64) float64 {
	return math.Floor(h*100+0.5) / 100
}

// UnitPrice is price per item, guarded against a zero quantity.
func UnitPrice(price float64, quantity int) float64 {
	if quantity < 1 {
		quantity = 1
	}
	return price / float64(quantity)
}

// Weight computes the run weight in kilograms. Volumetric densities use
// width*height*thickness in cm, areal densities use width*height in meters.
func Weight(quantity int, density, thickness float64, size layout.Size, unit string) (float64, error) {
	var perPieceGrams float64
	switch unit {
	case DensityVolumetric:
		widthCm := size.W / 10
		heightCm := size.H / 10
		thicknessCm := thickness / 10
		perPieceGrams = widthCm * heightCm * thicknessCm * density
	case DensityAreal:
		widthM := size.W / 1000
		heightM := size.H / 1000
		perPieceGrams = widthM * heightM * density
	default:
		return 0, fmt.Errorf("unknown density unit %q", unit)
	}
	return float64(quantity) * perPieceGrams / 1000, nil
}

// ParseCurrency normalizes a purchase cost entered in the catalog. Values
// prefixed with "$" or "€" are converted with the globals' rates; everything
// else is parsed as a plain local-currency number. Spaces used as thousands
// separators and a comma decimal mark are tolerated.
func (g Globals) ParseCurrency(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	rate := 1.0
	switch {
	case strings.HasPrefix(s, "$"):
		s, rate = s[1:], g.USDRate
	case strings.HasPrefix(s, "€"):
		s, rate = strings.TrimPrefix(s, "€"), g.EURRate
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse currency %q: %w", raw, err)
	}
	return v * rate, nil
}
