package catalog

import (
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/lookup"
)

// Material describes one purchasable stock variant: identity, the sheet or
// roll sizes it is stocked in, and its cost model. Built once at load time,
// immutable afterwards.
type Material struct {
	Code     string
	Group    string
	Name     string
	Category string

	// Cost is the fixed unit cost; CostTiers, when set, takes precedence
	// and is looked up by consumed quantity (sheets) or length (meters).
	Cost      float64
	CostTiers *lookup.Table

	Sizes   []layout.Size
	MinSize *layout.Size

	// IsRoll is derived at load time from any size having H == 0.
	IsRoll    bool
	RollWidth float64
	// LengthMin is the minimum cut length sold, in mm; 0 = no minimum.
	LengthMin float64

	Thickness   float64
	Density     float64
	DensityUnit string
	// WeightPerUnit is grams per sheet for pre-cut goods (adhesive sheets).
	WeightPerUnit float64

	Available bool
}

// UnitCost returns the cost of one unit of material for the consumed
// quantity or area, honoring tiered pricing when configured.
func (m *Material) UnitCost(quantityOrArea float64) float64 {
	if m.CostTiers != nil {
		return m.CostTiers.Find(quantityOrArea)
	}
	return m.Cost
}
