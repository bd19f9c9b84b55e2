package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const laserGap = 5.0

// Laser prices laser cutting and engraving of rigid sheet stock.
type Laser struct{}

func (Laser) Slug() string { return "laser" }
func (Laser) Name() string { return "Laser cutting and engraving" }
func (Laser) Description() string {
	return "Laser cutting and engraving on rigid sheet materials."
}

func (Laser) Options(store *catalog.Store) map[string]any {
	return map[string]any{
		"materials": store.MaterialOptions("hardsheet"),
		"modes":     modeOptions(),
	}
}

func (Laser) Calculate(store *catalog.Store, p Params) (*Result, error) {
	quantity := p.Int("quantity", 1)
	item := layout.Size{W: p.Float("width_mm", 0), H: p.Float("height_mm", 0)}
	if item.W <= 0 || item.H <= 0 {
		return nil, fmt.Errorf("width_mm and height_mm must be positive: %w", ErrInvalidInput)
	}

	materialCode := p.Str("material_code", "")
	if materialCode == "" {
		return nil, fmt.Errorf("material_code is required: %w", ErrInvalidInput)
	}
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	laser, err := store.DefaultEquipment("laser")
	if err != nil {
		return nil, err
	}
	material, err := store.Material("hardsheet", materialCode)
	if err != nil {
		return nil, err
	}
	g := store.Globals

	defectRate := pricing.DefectRateForMode(laser.DefectRate(float64(quantity)), mode)
	numWithDefects := pricing.DefectAdjusted(quantity, defectRate)

	var (
		timeCut      float64
		timeGrave    float64
		costMaterial float64
		materials    []MaterialUsage
	)

	// Engraving: solid fill by area, contour by scan-line length at 0.1mm pitch.
	if p.Has("is_grave") {
		gravePerHour := laser.GetGraveSpeed(p.Int("is_grave", 0))
		if gravePerHour > 0 {
			if fill, ok, err := p.FloatPair("is_grave_fill"); err != nil {
				return nil, err
			} else if ok {
				areaGrave := fill[0] * fill[1] / 1e6
				timeGrave += areaGrave * float64(numWithDefects) / gravePerHour
			}
			if contour, ok, err := p.FloatPair("is_grave_contur"); err != nil {
				return nil, err
			} else if ok {
				passes := math.Ceil(contour[0] / 0.1)
				lengthMM := float64(numWithDefects) * passes * contour[1]
				cutPerHour := laser.GetCutSpeed(0)
				if cutPerHour <= 0 {
					cutPerHour = 1
				}
				timeGrave += lengthMM / cutPerHour / 1000
			}
		}
	}

	// Cut length: explicit, or perimeter plus inner contours scaled by
	// density and difficulty.
	cut := p.Map("is_cut_laser")
	lenCut := cut.Float("len_cut", 0)
	if lenCut == 0 {
		lenCut = (item.W + item.H) * 2
		if sizeItem := cut.Float("size_item", 0); sizeItem > 0 {
			lenCut += 4 * item.W * item.H * cut.Float("density", 0) / sizeItem
		}
		lenCut *= cut.Float("difficulty", 1)
	}

	bedFit := layout.OnSheet(item, laser.MaxSize, laser.Margins, laserGap)
	if bedFit.Count == 0 {
		return nil, fmt.Errorf("item %gx%g does not fit the laser bed: %w", item.W, item.H, ErrInfeasible)
	}
	numLoad := math.Ceil(float64(numWithDefects) / float64(bedFit.Count))

	best, err := cheapestStock(material, item, numWithDefects, laser.Margins, laserGap)
	if err != nil {
		return nil, err
	}
	costMaterial = best.Cost

	cutSpeed := laser.GetCutSpeed(material.Thickness)
	if cutSpeed <= 0 {
		cutSpeed = 1
	}
	lenCutWithDefects := lenCut * float64(numWithDefects)
	timeCut = lenCutWithDefects/cutSpeed/1000 + numLoad*laser.TimeLoad
	if p.Bool("is_find_mark", false) {
		timeCut += numLoad * laser.TimeLoad
	}

	sz := best.Size
	materials = append(materials, MaterialUsage{
		Code:     material.Code,
		Name:     material.Name,
		Size:     &sz,
		Quantity: best.Quantity(),
		Unit:     best.Unit(),
	})

	// Optional adhesive backing, applied manually with a hand roller.
	var adhesiveCost, adhesivePrice, adhesiveTime, adhesiveWeight float64
	if adhesive := p.Str("is_adhesive_layer", ""); adhesive != "" {
		adhesiveCode := "Sheet3M7952"
		if adhesive == "AdhesiveLayer130" {
			adhesiveCode = "Sheet3M7955"
		}
		matAdh, err := store.Material("misc", adhesiveCode)
		if err != nil {
			return nil, err
		}
		if len(matAdh.Sizes) == 0 {
			return nil, fmt.Errorf("adhesive %s has no stocked sizes: %w", adhesiveCode, ErrInfeasible)
		}
		tool, err := store.DefaultEquipment("tools")
		if err != nil {
			return nil, err
		}

		sizeAdh := matAdh.Sizes[0]
		numAdhSheets := float64(quantity) * (item.W + 5) * (item.H + 5) / (sizeAdh.W * sizeAdh.H)

		area := item.W * item.H / 1e6
		sumArea := area * numAdhSheets
		rollPerHour := 1.0
		if tool.RollPerHour != nil {
			rollPerHour = tool.RollPerHour.Find(sumArea)
		}
		timeProcess := sumArea/rollPerHour + tool.TimePrepare*float64(mode)

		costManual := tool.DepreciationPerHour()*timeProcess + timeProcess*tool.OperatorRate(g)
		marginManual := g.EffectiveMargin(g.Margin("marginProcessManual"))

		adhesiveCost = costManual + numAdhSheets*matAdh.UnitCost(1)
		adhesivePrice = costManual*(1+marginManual) + numAdhSheets*matAdh.UnitCost(1)*(1+g.MarginMaterial)
		adhesiveTime = timeProcess
		adhesiveWeight = numAdhSheets * matAdh.WeightPerUnit / 1000

		materials = append(materials, MaterialUsage{
			Code:     adhesiveCode,
			Name:     matAdh.Name,
			Size:     &sizeAdh,
			Quantity: numAdhSheets,
			Unit:     "sheet",
		})
	}

	timePrepare := laser.TimePrepare * float64(mode)
	timeOperator := 0.75*timeCut + 0.5*timeGrave + timePrepare

	costDepHour := laser.DepreciationPerHour()
	costOperator := timeOperator * laser.OperatorRate(g)
	costCut := (costDepHour + laser.ConsumablesPerHour()) * timeCut
	costGrave := (costDepHour + laser.ConsumablesPerHour()) * timeGrave

	cost := math.Ceil(costCut + costGrave + costMaterial + costOperator + adhesiveCost)
	// Small runs whose spoilage rounded away still pay for it in the rate.
	if numWithDefects == quantity {
		cost *= 1 + defectRate
	}

	margin := g.EffectiveMargin(g.Margin("marginLaser"))
	price := math.Ceil(costMaterial*(1+g.MarginMaterial) + (costCut+costGrave+costOperator)*(1+margin) + adhesivePrice)

	timeHours := pricing.RoundHours(timeCut + timeGrave + timePrepare + adhesiveTime)
	timeReady := timeHours + g.LeadTime(laser.LeadTimes, mode)

	weight, err := pricing.Weight(quantity, material.Density, material.Thickness, item, material.DensityUnit)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	weight += adhesiveWeight

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
