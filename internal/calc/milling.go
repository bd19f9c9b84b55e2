package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const (
	defaultMillingCode = "MillingMachine"
	millingGap         = 8.0
	millingMinCost     = 500.0
)

// Milling prices CNC contour milling of rigid sheet stock, including the
// volume discount on cut length and delivery of oversized parts.
type Milling struct{}

func (Milling) Slug() string { return "milling" }
func (Milling) Name() string { return "CNC milling" }
func (Milling) Description() string {
	return "Contour milling of PVC, acrylic, plywood, MDF and other rigid sheets."
}

func (Milling) Options(store *catalog.Store) map[string]any {
	return map[string]any{
		"materials": store.MaterialOptions("hardsheet"),
		"modes":     modeOptions(),
	}
}

func (Milling) Calculate(store *catalog.Store, p Params) (*Result, error) {
	quantity := p.Int("quantity", 1)
	item := layout.Size{W: p.Float("width", 0), H: p.Float("height", 0)}
	if item.W <= 0 || item.H <= 0 {
		return nil, fmt.Errorf("width and height must be positive: %w", ErrInvalidInput)
	}
	materialCode := p.Str("material_id", "")
	if materialCode == "" {
		return nil, fmt.Errorf("material_id is required: %w", ErrInvalidInput)
	}
	materialMode := p.Str("material_mode", materialOurs)
	lenCut := p.Float("len_cut", 0)
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	milling, err := store.Equipment("milling", defaultMillingCode)
	if err != nil {
		return nil, err
	}
	material, err := store.Material("hardsheet", materialCode)
	if err != nil {
		return nil, err
	}
	g := store.Globals

	margins := marginsOrDefault(milling.Margins, layout.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10})
	defects := pricing.DefectRateForMode(milling.DefectRate(float64(quantity)), mode)

	thickness := material.Thickness
	if thickness <= 0 {
		thickness = 3
	}

	// Milling cost per meter by material group and thickness, with the
	// volume discount for long total runs.
	var costCut float64
	if perMeter := milling.CutCostPerMeter(materialCode, thickness); perMeter > 0 && lenCut > 0 {
		// len_cut up to 100 is read as meters (a 3m perimeter arrives as 3),
		// larger values as millimeters.
		var lengthM float64
		if lenCut <= 100 {
			lengthM = math.Ceil(float64(quantity) * lenCut)
		} else {
			lengthM = math.Ceil(float64(quantity) * lenCut / 1000)
		}
		costCut = lengthM * perMeter * (1 - milling.CutDiscount(lengthM))
	}

	maxSize := milling.MaxSize
	if maxSize.W <= 0 {
		maxSize = layout.Size{W: 4000, H: 2000}
	}
	if fit := layout.OnSheet(item, maxSize, margins, millingGap); fit.Count == 0 {
		return nil, fmt.Errorf("item %gx%g does not fit the milling table: %w", item.W, item.H, ErrInfeasible)
	}

	sizes := material.Sizes
	if len(sizes) == 0 {
		sizes = []layout.Size{{W: 2100, H: 1400}}
	}
	var (
		costMaterial float64
		numSheet     float64
		haveVariant  bool
	)
	bestCost := math.Inf(1)
	for _, sz := range sizes {
		fit := layout.OnSheet(item, sz, margins, millingGap)
		if fit.Count == 0 {
			continue
		}
		sheets := math.Ceil(float64(quantity) / float64(fit.Count))
		costMat := material.UnitCost(sheets) * sheets * sz.W * sz.H / 1e6
		if costMat < bestCost {
			bestCost = costMat
			numSheet = sheets
			haveVariant = true
		}
	}

	switch materialMode {
	case materialOurs:
		if haveVariant {
			costMaterial = bestCost
		}
	case materialCustomer:
		costCut *= 1.25
	}

	timePrepare := orDefault(milling.TimePrepare, 0.05) * float64(mode)
	timeHours := pricing.RoundHoursNearest(timePrepare)
	costOperator := timePrepare * milling.OperatorRate(g)

	costShip := milling.ShipmentCost(item)
	if mode == pricing.ModeEconomy {
		costShip *= 0.5
	} else {
		costShip *= math.Max(1, float64(mode))
	}

	cost := (costCut + costMaterial + costOperator + costShip) * (1 + milling.ExtraMargin)
	if pricing.DefectAdjusted(quantity, defects) == quantity && defects > 0 {
		cost *= 1 + defects
	}

	marginExtra := g.Margin("marginMilling")
	var price float64
	if cost < millingMinCost {
		cost = (millingMinCost + costShip) * (1 + milling.ExtraMargin)
		price = math.Ceil((millingMinCost + costShip) * (1 + g.MarginOperation + marginExtra))
	} else {
		price = costMaterial*(1+defects+g.MarginMaterial) +
			(costCut+costShip+costOperator)*(1+defects+g.MarginOperation+marginExtra)
		price = math.Max(price, cost*(1+g.MarginMin))
		price = math.Ceil(price)
	}

	timeReady := timeHours + g.LeadTime(milling.LeadTimes, mode)

	var weight float64
	var materials []MaterialUsage
	if materialMode == materialOurs {
		unit := material.DensityUnit
		if unit == "" {
			unit = pricing.DensityVolumetric
		}
		weight, _ = pricing.Weight(quantity, material.Density, material.Thickness, item, unit)
		materials = append(materials, MaterialUsage{
			Code:     material.Code,
			Name:     material.Name,
			Quantity: numSheet,
			Unit:     "sheet",
		})
	}

	return &Result{
		Cost:      cost,
		Price:     price,
		UnitPrice: pricing.UnitPrice(price, quantity),
		TimeHours: timeHours,
		TimeReady: timeReady,
		WeightKg:  weight,
		Materials: materials,
	}, nil
}
