package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const (
	defaultPlotterCode = "GraphtecCE5000-60"
	plotterGapDefault  = 4.0
)

// CutPlotter prices contour cutting of film and paper on a cutting plotter.
type CutPlotter struct{}

func (CutPlotter) Slug() string { return "cut_plotter" }
func (CutPlotter) Name() string { return "Plotter cutting" }
func (CutPlotter) Description() string {
	return "Contour cutting of stickers, film and paper on a cutting plotter."
}

func (CutPlotter) Options(store *catalog.Store) map[string]any {
	materials := append(store.MaterialOptions("sheet"), store.MaterialOptions("roll")...)
	return map[string]any{
		"materials": materials,
		"plotters":  store.EquipmentOptions("plotter"),
		"modes":     modeOptions(),
	}
}

func (CutPlotter) Calculate(store *catalog.Store, p Params) (*Result, error) {
	quantity := p.Int("quantity", 1)
	item := layout.Size{W: p.Float("width_mm", 0), H: p.Float("height_mm", 0)}
	if item.W <= 0 || item.H <= 0 {
		return nil, fmt.Errorf("width_mm and height_mm must be positive: %w", ErrInvalidInput)
	}
	materialCode := p.Str("material_code", "")
	if materialCode == "" {
		return nil, fmt.Errorf("material_code is required: %w", ErrInvalidInput)
	}
	gap := p.Float("interval", plotterGapDefault)
	if gap <= 0 {
		gap = plotterGapDefault
	}
	isFindMark := p.Bool("is_find_mark", false)
	lenCut := p.Float("len_cut", 0)
	density := p.Float("density", 0)
	difficulty := p.Float("difficulty", 1)
	if difficulty == 0 {
		difficulty = 1
	}
	sizeItem := p.Float("size_item", 0)
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	plotter, err := store.Equipment("plotter", p.Str("plotter_code", defaultPlotterCode))
	if err != nil {
		if plotter, err = store.Equipment("plotter", defaultPlotterCode); err != nil {
			return nil, err
		}
	}
	g := store.Globals

	// The film is optional: an uncatalogued code still gets a cutting-only
	// quote on default film assumptions, with no material cost or usage line.
	material, matErr := store.FindMaterial(materialCode, "sheet", "roll")
	if matErr != nil && !errors.Is(matErr, catalog.ErrNotFound) {
		return nil, matErr
	}
	margins := marginsOrDefault(plotter.Margins, layout.Margins{Top: 30, Right: 10, Bottom: 10, Left: 10})

	defects := pricing.DefectRateForMode(plotter.DefectRate(float64(quantity)), mode)
	numWithDefects := pricing.DefectAdjustedCeil(quantity, defects)

	// Film thickness drives the cutting speed curve. Catalog thickness may be
	// in mm for thick stock; anything under 20 is treated as mm and scaled to
	// µm. Papers fall back to an areal-density estimate.
	thicknessUM := 80.0
	if material != nil {
		if material.Thickness > 0 {
			thicknessUM = material.Thickness
			if thicknessUM < 20 {
				thicknessUM *= 1000
			}
		} else if material.Density > 0 {
			thicknessUM = material.Density / 80 * 100
		}
	}
	processPerHour := plotter.GetProcessSpeed(thicknessUM)
	if processPerHour <= 0 {
		processPerHour = 120
	}

	// Cut length in meters per item.
	if lenCut <= 0 {
		lenCut = (item.W + item.H) * 2 / 1000
		if density > 0 && sizeItem > 0 {
			lenCut += 4 * item.W * item.H * density / sizeItem / 1000
		}
		lenCut *= difficulty
	}

	maxPlotter := plotter.MaxSize
	if maxPlotter.W <= 0 {
		maxPlotter = layout.Size{W: 603, H: 5000}
	}
	isRoll := material != nil && material.IsRoll

	var (
		lenMaterialMM     float64
		numSheet          float64
		lenCutWithDefects float64
	)

	if isRoll && len(material.Sizes) > 0 {
		lenCutWithDefects = lenCut * float64(numWithDefects)
		lenMaterialMM, numSheet = plotterRollConsumption(item, material, maxPlotter, margins, gap, numWithDefects)
		if lenMaterialMM <= 0 {
			return nil, fmt.Errorf("item %gx%g fits no roll cutting strategy: %w", item.W, item.H, ErrInfeasible)
		}
		if numSheet == 0 {
			numSheet = math.Ceil(lenMaterialMM / maxPlotter.W)
		}
	} else {
		fit := layout.OnSheet(item, maxPlotter, margins, gap)
		if fit.Count == 0 {
			return nil, fmt.Errorf("item %gx%g does not fit the plotter: %w", item.W, item.H, ErrInfeasible)
		}
		numSheet = math.Ceil(float64(numWithDefects) / float64(fit.Count))
		if numSheet <= 1 {
			lenCutWithDefects = lenCut * float64(numWithDefects)
		} else {
			lenCutWithDefects = lenCut * float64(fit.Count) * numSheet
		}
	}

	timePrepare := orDefault(plotter.TimePrepare, 0.05) * float64(mode)
	timeCut := lenCutWithDefects/processPerHour + timePrepare
	timeCut += numSheet * orDefault(plotter.TimeLoadSheet, 0.01)
	if isFindMark {
		timeCut += numSheet * orDefault(plotter.TimeFindMark, 0.015)
	}

	timeHours := pricing.RoundHoursNearest(timeCut)
	costDepreciation := plotter.DepreciationPerHour() * timeCut
	costProcess := lenCutWithDefects * orDefault(plotter.CostProcess, 0.3)
	costOperator := timeCut * plotter.OperatorRate(g)
	cost := costDepreciation + costProcess + costOperator

	margin := g.EffectiveMargin(g.Margin("marginPlotter"))
	price := math.Ceil(cost * (1 + margin))

	timeReady := timeHours + g.LeadTime(plotter.LeadTimes, mode)

	var weight float64
	var materials []MaterialUsage
	if material != nil {
		unit := material.DensityUnit
		if unit == "" {
			unit = pricing.DensityVolumetric
		}
		weight, _ = pricing.Weight(quantity, material.Density, material.Thickness, item, unit)
		if isRoll {
			materials = append(materials, MaterialUsage{
				Code:     material.Code,
				Name:     material.Name,
				Quantity: math.Round(lenMaterialMM/1000*100) / 100,
				Unit:     "m",
			})
		} else {
			materials = append(materials, MaterialUsage{
				Code:     material.Code,
				Name:     material.Name,
				Quantity: numSheet,
				Unit:     "sheet",
			})
		}
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

// plotterRollConsumption picks the cheapest of four ways to feed roll stock
// through the plotter: item short or long side across the roll, or whole
// roll-width strips cut first and fed sideways. Returns the consumed roll
// length in mm and the number of feed segments; length 0 means no strategy
// fits and the caller falls back to piecewise bonding.
func plotterRollConsumption(item layout.Size, material *catalog.Material, maxPlotter layout.Size, m layout.Margins, gap float64, quantity int) (float64, float64) {
	minSide := math.Min(item.W, item.H)
	maxSide := math.Max(item.W, item.H)

	rollSizes := make([]layout.Size, 0, len(material.Sizes))
	for _, sz := range material.Sizes {
		if sz.IsRoll() {
			rollSizes = append(rollSizes, sz)
		}
	}
	if len(rollSizes) == 0 {
		rollSizes = material.Sizes
	}

	var bestLen, bestSheets float64
	for _, roll := range rollSizes {
		rollEff := roll.W - m.Top - m.Bottom
		if rollEff <= 0 {
			continue
		}
		if fit := layout.OnRoll(quantity, item, layout.Size{W: maxPlotter.W}, gap); fit.Length <= 0 {
			continue
		}

		var curLen, curSheets float64
		consider := func(length, sheets float64) {
			if length > 0 && (curLen == 0 || length < curLen) {
				curLen = length
				curSheets = sheets
			}
		}

		// Across the roll, short side on the width.
		if maxSide <= maxPlotter.W {
			if l := layout.RollLength(quantity, item, rollEff, gap, layout.ShortAcross); l > 0 {
				segments := math.Ceil(l / maxPlotter.W)
				consider(l+segments*(m.Right+m.Left), segments)
			}
		}

		// Across the roll, long side on the width.
		if l := layout.RollLength(quantity, item, rollEff, gap, layout.LongAcross); l > 0 {
			segments := math.Ceil(l / maxPlotter.W)
			consider(l+segments*(m.Right+m.Left), segments)
		}

		// Along the roll: plotter-width strips, short side along the strip.
		strip := math.Floor(maxPlotter.W/minSide)*minSide + m.Right + m.Left
		if strip > 0 {
			wide := math.Floor(roll.W / strip)
			if wide > 0 {
				perStrip := math.Floor(maxPlotter.W / minSide)
				numAcross := wide * perStrip
				rem := roll.W - strip*wide
				if rem-m.Top-m.Bottom > minSide {
					numAcross += math.Floor((rem - m.Top - m.Bottom) / minSide)
					wide++
				}
				rows := math.Ceil(float64(quantity)/numAcross) * maxSide
				segments := math.Ceil(rows / maxPlotter.H)
				consider(rows+segments*(m.Top+m.Bottom), wide*segments)
			}
		}

		// Along the roll: plotter-width strips, long side along the strip.
		if maxSide < maxPlotter.W {
			strip = math.Floor(maxPlotter.W/maxSide)*maxSide + m.Right + m.Left
			if strip > 0 {
				wide := math.Floor(roll.W / strip)
				if wide > 0 {
					perStrip := math.Floor(maxPlotter.W / maxSide)
					numAcross := wide * perStrip
					rem := roll.W - strip*wide
					if rem-m.Top-m.Bottom > maxSide {
						numAcross += math.Floor((rem - m.Top - m.Bottom) / maxSide)
						wide++
					}
					rows := math.Ceil(float64(quantity)/numAcross) * minSide
					segments := math.Ceil(rows / maxPlotter.H)
					consider(rows+segments*(m.Top+m.Bottom), wide*segments)
				}
			}
		}

		if curLen > 0 && (bestLen == 0 || curLen < bestLen) {
			bestLen = curLen
			bestSheets = curSheets
		}
	}

	if bestLen > 0 {
		return bestLen, bestSheets
	}

	// Oversized item: bond it from roll-width pieces.
	if len(rollSizes) == 0 {
		return 0, 0
	}
	rollW := rollSizes[0].W
	rollEff := rollW - m.Right - m.Left
	if rollEff <= 0 {
		return 0, 0
	}

	var bondFactor float64 = 1
	pieces := 1.0
	if rollEff < maxPlotter.W {
		bondFactor = math.Ceil(minSide / rollEff)
	} else {
		pieces = math.Ceil(minSide / maxPlotter.W)
		perRoll := math.Ceil(rollW / (minSide/pieces + m.Right + m.Left))
		if perRoll > 0 {
			bondFactor = 1 / perRoll
		}
	}
	runLength := maxSide * float64(quantity) * pieces
	sheets := math.Ceil(runLength / math.Min(maxPlotter.H, maxSide))
	length := (runLength + sheets*(m.Top+m.Bottom))
	if rollEff < maxPlotter.W {
		length *= bondFactor
	}
	return length, sheets
}

// orDefault substitutes def for an unset (zero) catalog value.
func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// marginsOrDefault substitutes def when the equipment record carries no
// margins at all.
func marginsOrDefault(m, def layout.Margins) layout.Margins {
	if m == (layout.Margins{}) {
		return def
	}
	return m
}
