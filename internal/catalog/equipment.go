package catalog

import (
	"strings"

	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/lookup"
	"github.com/printworks/quoter/internal/pricing"
)

// Shipment is one delivery bracket for oversized milled parts:
// anything that fits Size ships for Cost.
type Shipment struct {
	Size layout.Size
	Cost float64
}

// CutCostGroup is one milling rate table bound to a material-code prefix.
// Groups keep their configured order and the first matching prefix wins, so
// overlapping prefixes such as "PVC" and "PVC3" always resolve the same way.
type CutCostGroup struct {
	Prefix string
	Table  *lookup.Table
}

// Equipment describes one machine or hand tool. Speed and cost tables that
// do not apply to a category stay nil; callers know which curves their
// equipment carries. Immutable after load, derived values are computed on
// read so a catalog reload never races an in-flight calculation.
type Equipment struct {
	Code     string
	Name     string
	Category string

	MaxSize layout.Size
	Margins layout.Margins

	// PurchaseCost is already normalized to local currency at load time.
	PurchaseCost      float64
	DepreciationYears float64
	WorkDaysYear      float64
	HoursPerDay       float64

	// CostOperator of 0 means "use the global default rate".
	CostOperator float64

	TimePrepare   float64 // hours per prep pass
	TimeLoad      float64 // hours per load
	TimeLoadSheet float64
	TimeFindMark  float64

	// LeadTimes is indexed by production mode; empty = global default.
	LeadTimes []float64

	Defects *lookup.Table

	// Laser curves.
	CutSpeed        *lookup.Table // m/h by material thickness, mm
	GraveSpeeds     []float64     // m²/h by resolution index
	TubeCost        float64
	TubeLifeHours   float64
	PowerCostPerKWh float64
	PowerPerHour    float64

	// Plotter / laminator / printer curves.
	ProcessSpeed  *lookup.Table // m/h by material thickness, µm
	MeterPerHour  *lookup.Table // m/h by film density, µm
	SheetsPerHour *lookup.Table // sheets/h by paper density, g/m²

	// Manual tool curves (adhesive application).
	RollPerHour *lookup.Table // m²/h by total area
	EdgePerHour float64       // m/h of edge finishing

	// Flat cost data.
	CostProcess    float64   // per cut or per meter, category-dependent
	CutsPerHour    float64
	MaxSheet       int       // guillotine stack height limit
	CostPrintSheet []float64 // [black&white, color] per sheet

	// Milling tables.
	CostCut     []CutCostGroup // cost/m by material-group prefix, first matching prefix wins
	DiscountCut []lookup.Pair  // volume discount, largest threshold <= length wins
	Shipments   []Shipment
	ExtraMargin float64 // equipment-level margin from the raw record

	Available bool
}

// DepreciationPerHour derives the hourly depreciation from purchase cost and
// the work calendar. A degenerate calendar yields 0.
func (e *Equipment) DepreciationPerHour() float64 {
	denom := e.DepreciationYears * e.WorkDaysYear * e.HoursPerDay
	if denom <= 0 {
		return 0
	}
	return e.PurchaseCost / denom
}

// OperatorRate is the hourly operator cost, falling back to the global
// default when the machine has no override.
func (e *Equipment) OperatorRate(g pricing.Globals) float64 {
	if e.CostOperator > 0 {
		return e.CostOperator
	}
	return g.CostOperator
}

// DefectRate looks up the spoilage fraction for a run of the given quantity.
// Machines without a defect table produce no spoilage.
func (e *Equipment) DefectRate(quantity float64) float64 {
	if e.Defects == nil {
		return 0
	}
	return e.Defects.Find(quantity)
}

// ConsumablesPerHour is the laser running cost: tube wear plus power.
func (e *Equipment) ConsumablesPerHour() float64 {
	var tube float64
	if e.TubeLifeHours > 0 {
		tube = e.TubeCost / e.TubeLifeHours
	}
	return tube + e.PowerCostPerKWh*e.PowerPerHour
}

// GetCutSpeed is the laser cut speed in m/h for a material thickness.
func (e *Equipment) GetCutSpeed(thicknessMM float64) float64 {
	if e.CutSpeed == nil {
		return 0
	}
	return e.CutSpeed.Find(thicknessMM)
}

// GetGraveSpeed is the engraving speed in m²/h for a resolution index,
// clamped to the configured list at both ends.
func (e *Equipment) GetGraveSpeed(resolution int) float64 {
	if len(e.GraveSpeeds) == 0 {
		return 0
	}
	if resolution < 0 {
		resolution = 0
	}
	if resolution > len(e.GraveSpeeds)-1 {
		resolution = len(e.GraveSpeeds) - 1
	}
	return e.GraveSpeeds[resolution]
}

// GetProcessSpeed is the plotter cutting speed in m/h for a film thickness.
func (e *Equipment) GetProcessSpeed(thicknessUM float64) float64 {
	if e.ProcessSpeed == nil {
		return 0
	}
	return e.ProcessSpeed.Find(thicknessUM)
}

// GetMeterPerHour is the laminator throughput for a film density.
func (e *Equipment) GetMeterPerHour(densityUM float64) float64 {
	if e.MeterPerHour == nil {
		return 0
	}
	return e.MeterPerHour.Find(densityUM)
}

// GetSheetsPerHour is the printer throughput for a paper density.
func (e *Equipment) GetSheetsPerHour(densityGM2 float64) float64 {
	if e.SheetsPerHour == nil {
		return 0
	}
	return e.SheetsPerHour.Find(densityGM2)
}

// CutCostPerMeter resolves the first cut-cost group whose prefix matches the
// material code, then looks up the rate by thickness. 0 when no group
// matches.
func (e *Equipment) CutCostPerMeter(materialCode string, thicknessMM float64) float64 {
	for _, grp := range e.CostCut {
		if grp.Table != nil && strings.HasPrefix(materialCode, grp.Prefix) {
			return grp.Table.Find(thicknessMM)
		}
	}
	return 0
}

// CutDiscount is the volume discount for a total milled length in meters:
// the value of the largest threshold not exceeding the length. This is the
// opposite lookup direction from lookup.Table and is preserved as the legacy
// formula had it.
func (e *Equipment) CutDiscount(lengthM float64) float64 {
	discount := 0.0
	for _, p := range e.DiscountCut {
		if p.Threshold <= lengthM {
			discount = p.Value
		}
	}
	return discount
}

// ShipmentCost returns the delivery bracket for the first shipment size the
// item fits on, or 0 when none fits.
func (e *Equipment) ShipmentCost(item layout.Size) float64 {
	for _, s := range e.Shipments {
		if fit := layout.OnSheet(item, s.Size, layout.Margins{}, 0); fit.Count > 0 {
			return s.Cost
		}
	}
	return 0
}
