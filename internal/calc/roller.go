package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const defaultRollerCode = "KWTrio3026"

// Material handling modes shared by the cutting and milling calculators.
const (
	materialOurs     = "isMaterial"
	materialCustomer = "isMaterialCustomer"
	materialNone     = "noMaterial"
)

// CutRoller prices straight cutting of sheet or roll stock on a rotary
// trimmer. By default only the cutting itself is quoted; material enters the
// price only in the isMaterial mode.
type CutRoller struct{}

func (CutRoller) Slug() string { return "cut_roller" }
func (CutRoller) Name() string { return "Rotary cutting" }
func (CutRoller) Description() string {
	return "Straight cutting of sheets or roll stock on a rotary trimmer."
}

func (CutRoller) Options(store *catalog.Store) map[string]any {
	materials := store.MaterialOptions("sheet")
	materials = append(materials, store.MaterialOptions("roll")...)
	materials = append(materials, store.MaterialOptions("hardsheet")...)
	return map[string]any{
		"materials": materials,
		"cutters":   store.EquipmentOptions("cutter"),
		"modes":     modeOptions(),
	}
}

func (CutRoller) Calculate(store *catalog.Store, p Params) (*Result, error) {
	quantity := p.Int("quantity", 1)
	item := layout.Size{W: p.Float("width_mm", 0), H: p.Float("height_mm", 0)}
	if item.W <= 0 || item.H <= 0 {
		return nil, fmt.Errorf("width_mm and height_mm must be positive: %w", ErrInvalidInput)
	}
	materialCode := p.Str("material_code", "")
	if materialCode == "" {
		return nil, fmt.Errorf("material_code is required: %w", ErrInvalidInput)
	}
	materialMode := p.Str("material_mode", materialNone)
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	material, err := store.FindMaterial(materialCode, "sheet", "roll", "hardsheet")
	if err != nil {
		return nil, err
	}
	if len(material.Sizes) == 0 {
		return nil, fmt.Errorf("material %s has no stocked sizes: %w", materialCode, ErrInfeasible)
	}

	cutter, err := store.Equipment("cutter", p.Str("cutter_code", defaultRollerCode))
	if err != nil {
		if cutter, err = store.Equipment("cutter", defaultRollerCode); err != nil {
			return nil, err
		}
	}
	g := store.Globals

	cutterMaxW := cutter.MaxSize.W
	if cutterMaxW <= 0 {
		cutterMaxW = 1520
	}

	type variant struct {
		cost   float64
		size   layout.Size
		sheets float64
		lenMM  float64
		cuts   float64
	}
	var best *variant

	for _, sz := range material.Sizes {
		if math.Min(sz.W, sz.H) > cutterMaxW {
			continue
		}

		var v variant
		v.size = sz
		var cuts float64

		if sz.IsRoll() {
			fit := layout.OnRoll(quantity, item, sz, 0)
			if fit.Count == 0 {
				continue
			}
			v.lenMM = fit.Length
			minSide := math.Min(item.W, item.H)
			lanes := 1.0
			if minSide > 0 {
				lanes = math.Floor(sz.W / minSide)
			}
			if lanes < 1 {
				lanes = 1
			}
			rows := math.Ceil(float64(quantity) / lanes)
			cuts = rows + 1 + rows*(lanes+1) - (lanes*rows - float64(quantity))
			v.cost = rollStockCost(material, v.lenMM, sz.W)
		} else {
			fit := layout.OnSheet(item, sz, layout.Margins{}, 0)
			if fit.Count == 0 {
				continue
			}
			cols := float64(fit.Cols)
			rows := float64(fit.Rows)
			cutsColsFirst := cols + cols*rows
			cutsRowsFirst := rows + rows*cols
			if math.Max(sz.W, sz.H) > cutterMaxW {
				cuts = cutsRowsFirst
			} else {
				cuts = math.Min(cutsColsFirst, cutsRowsFirst)
			}
			cuts = math.Ceil(cuts * float64(quantity) / float64(fit.Count))
			v.sheets = sheetFraction(material, sz, quantity, fit.Count)
			v.cost = material.UnitCost(v.sheets) * v.sheets * sz.W * sz.H / 1e6
		}

		// Thick stock is cut in multiple passes; thin oversized sheets get a
		// handling multiplier per 1.5m of item side.
		if material.Thickness > 0 {
			cuts = cuts * 2 * math.Ceil(item.W/1000) * math.Ceil(item.H/1000)
		} else {
			cuts = cuts * math.Ceil(item.W/1500) * math.Ceil(item.H/1500)
		}

		if materialMode == materialCustomer {
			cuts = math.Trunc(cuts * 1.25)
		}
		if materialMode != materialOurs {
			v.cost = 0
		}
		v.cuts = cuts

		// The +1 slack keeps the earlier variant on near-equal costs, which
		// matters when every variant costs 0 in the cutting-only modes.
		if best == nil || v.cost+1 < best.cost {
			tmp := v
			best = &tmp
		}
	}

	if best == nil {
		return nil, fmt.Errorf("item %gx%g fits no stocked size of %s: %w", item.W, item.H, materialCode, ErrInfeasible)
	}

	costMaterial := best.cost
	numCut := best.cuts
	timePrepare := cutter.TimePrepare * float64(mode)
	cutsPerHour := orDefault(cutter.CutsPerHour, 120)
	timeCut := numCut/cutsPerHour + timePrepare

	costDep := cutter.DepreciationPerHour() * timeCut
	costProcess := numCut * orDefault(cutter.CostProcess, 0.04)
	costOperator := timeCut * cutter.OperatorRate(g)
	cost := math.Ceil(costMaterial + costDep + costProcess + costOperator)

	margin := g.EffectiveMargin(g.Margin("marginCutRoller"))
	price := math.Ceil(costMaterial*(1+g.MarginMaterial) + (costDep+costProcess+costOperator)*(1+margin))

	timeHours := pricing.RoundHours(timeCut)
	timeReady := timeHours + g.LeadTime(cutter.LeadTimes, mode)

	unit := material.DensityUnit
	if unit == "" {
		unit = pricing.DensityVolumetric
	}
	weight, err := pricing.Weight(quantity, material.Density, material.Thickness, item, unit)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	var materials []MaterialUsage
	if materialMode == materialOurs {
		sz := best.size
		qty := best.sheets
		usageUnit := "sheet"
		if sz.IsRoll() {
			qty = best.lenMM / 1000
			usageUnit = "m"
		}
		materials = append(materials, MaterialUsage{
			Code:     materialCode,
			Name:     material.Name,
			Size:     &sz,
			Quantity: qty,
			Unit:     usageUnit,
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
