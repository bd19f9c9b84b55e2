package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const (
	defaultLaminatorCode = "FGKFM360"
	// laminateWeight is kg of film per µm of thickness per m².
	laminateWeight = 0.0011
)

// Lamination prices hot lamination: roll film run through the laminator, or
// pouch film for pre-cut sheets, chosen by the film's stocked size.
type Lamination struct{}

func (Lamination) Slug() string { return "lamination" }
func (Lamination) Name() string { return "Lamination" }
func (Lamination) Description() string {
	return "Hot lamination with roll or pouch film."
}

func (Lamination) Options(store *catalog.Store) map[string]any {
	return map[string]any{
		"materials": store.MaterialOptions("laminat"),
		"modes":     modeOptions(),
	}
}

func (Lamination) Calculate(store *catalog.Store, p Params) (*Result, error) {
	quantity := p.Int("quantity", 1)
	item := layout.Size{W: p.Float("width", 0), H: p.Float("height", 0)}
	if item.W <= 0 || item.H <= 0 {
		return nil, fmt.Errorf("width and height must be positive: %w", ErrInvalidInput)
	}
	materialCode := p.Str("material_id", "")
	if materialCode == "" {
		return nil, fmt.Errorf("material_id is required: %w", ErrInvalidInput)
	}
	doubleSide := p.Bool("double_side", true)
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	laminator, err := store.Equipment("laminator", p.Str("laminator_code", defaultLaminatorCode))
	if err != nil {
		if laminator, err = store.Equipment("laminator", defaultLaminatorCode); err != nil {
			return nil, err
		}
	}
	film, err := store.Material("laminat", materialCode)
	if err != nil {
		return nil, err
	}
	if len(film.Sizes) == 0 {
		return nil, fmt.Errorf("film %s has no stocked sizes: %w", materialCode, ErrInfeasible)
	}
	g := store.Globals

	filmSize := film.Sizes[0]
	densityUM := orDefault(film.Density, 32)
	costPerUnit := film.Cost

	defects := pricing.DefectRateForMode(laminator.DefectRate(float64(quantity)), mode)
	meterPerHour := laminator.GetMeterPerHour(densityUM)
	if meterPerHour <= 0 {
		meterPerHour = 50
	}

	timePrepare := orDefault(laminator.TimePrepare, 0.1) * float64(mode)
	deprecHour := laminator.DepreciationPerHour()
	operatorHour := laminator.OperatorRate(g)
	marginExtra := g.Margin("marginLamination")

	var (
		cost, price, timeHours, weight float64
		materials                      []MaterialUsage
	)

	if filmSize.IsRoll() {
		// Roll film: the item runs through once per side.
		num := float64(quantity)
		if !doubleSide {
			num = math.Ceil(num / 2)
		}
		fit := layout.OnRoll(1, item, filmSize, 20)
		if fit.Count == 0 {
			return nil, fmt.Errorf("item %gx%g does not fit the %gmm film roll: %w", item.W, item.H, filmSize.W, ErrInfeasible)
		}
		lengthOneM := (fit.Length + 20) / 1000
		lengthM := lengthOneM * num * (1 + defects)

		timeLamination := lengthM/meterPerHour + timePrepare
		timeCut := 2 * num * (10.0 / 3600)
		timeOperator := timeLamination + timeCut

		costMaterial := costPerUnit * 2 * lengthM
		costLamination := deprecHour * timeLamination
		costOperator := timeOperator * operatorHour
		cost = costMaterial + costLamination + costOperator
		price = costMaterial*(1+g.MarginMaterial+marginExtra) +
			(costLamination+costOperator)*(1+g.MarginOperation+marginExtra)
		timeHours = pricing.RoundHoursNearest(timeLamination)

		sides := 1.0
		if doubleSide {
			sides = 2
		}
		weight = float64(quantity) * sides * densityUM * item.W * item.H * laminateWeight / 1e6

		materials = append(materials, MaterialUsage{
			Code:     film.Code,
			Name:     film.Name,
			Quantity: math.Round(2*lengthM*10000) / 10000,
			Unit:     "m",
		})
	} else {
		// Pouch film: one pouch per item, fed at the roll speed equivalent.
		numWithDefects := pricing.DefectAdjustedCeil(quantity, defects)

		feed := laminator.MaxSize
		if feed.W <= 0 {
			feed = layout.Size{W: 330}
		}
		fit := layout.OnRoll(1, filmSize, feed, 0)
		lengthM := fit.Length / 1000
		if lengthM <= 0 {
			lengthM = 0.33
		}
		sheetsPerHour := math.Max(1, math.Ceil(meterPerHour/lengthM))

		timePacking := float64(numWithDefects) * (20.0 / 3600)
		timeLamination := float64(numWithDefects)/sheetsPerHour + timePrepare + timePacking

		costMaterial := costPerUnit * float64(numWithDefects)
		costLamination := deprecHour * timeLamination
		costOperator := timeLamination * operatorHour
		cost = costMaterial + costLamination + costOperator
		price = costMaterial*(1+g.MarginMaterial+marginExtra) +
			(costLamination+costOperator)*(1+g.MarginOperation+marginExtra)
		timeHours = pricing.RoundHoursNearest(timeLamination)

		weight = float64(quantity) * densityUM * filmSize.W * filmSize.H * laminateWeight / 1e6

		materials = append(materials, MaterialUsage{
			Code:     film.Code,
			Name:     film.Name,
			Quantity: float64(numWithDefects),
			Unit:     "sheet",
		})
	}

	price = math.Ceil(math.Max(price, cost*(1+g.MarginMin)))
	timeReady := timeHours + g.LeadTime(laminator.LeadTimes, mode)

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
