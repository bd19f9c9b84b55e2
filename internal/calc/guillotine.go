package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const defaultGuillotineCode = "KWTrio3971"

// CutGuillotine prices cutting a stack of printed sheets down to items on a
// stack cutter. Material cost is not part of this job.
type CutGuillotine struct{}

func (CutGuillotine) Slug() string { return "cut_guillotine" }
func (CutGuillotine) Name() string { return "Guillotine cutting" }
func (CutGuillotine) Description() string {
	return "Cutting sheet stacks to final item size on a guillotine cutter."
}

func (CutGuillotine) Options(store *catalog.Store) map[string]any {
	materials := store.MaterialOptions("sheet")
	materials = append(materials, store.MaterialOptions("roll")...)
	materials = append(materials, store.MaterialOptions("hardsheet")...)
	return map[string]any{
		"materials": materials,
		"modes":     modeOptions(),
	}
}

func (CutGuillotine) Calculate(store *catalog.Store, p Params) (*Result, error) {
	numSheet := p.Int("num_sheet", 1)
	item := layout.Size{W: p.Float("width", 0), H: p.Float("height", 0)}
	sheet := layout.Size{W: p.Float("sheet_width", 0), H: p.Float("sheet_height", 0)}
	if item.W <= 0 || item.H <= 0 || sheet.W <= 0 || sheet.H <= 0 {
		return nil, fmt.Errorf("width, height, sheet_width and sheet_height must be positive: %w", ErrInvalidInput)
	}

	var margins layout.Margins
	if quad := p.Floats("margins"); len(quad) == 4 {
		margins = layout.Margins{Top: quad[0], Right: quad[1], Bottom: quad[2], Left: quad[3]}
	}
	gap := p.Float("interval", 0)
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	cutter, err := store.Equipment("cutter", defaultGuillotineCode)
	if err != nil {
		return nil, err
	}
	g := store.Globals

	cutterMax := cutter.MaxSize
	if cutterMax.W <= 0 {
		cutterMax = layout.Size{W: 475, H: 650}
	}
	if fit := layout.OnSheet(sheet, cutterMax, layout.Margins{}, 0); fit.Count == 0 {
		return nil, fmt.Errorf("sheet %gx%g does not fit the cutter: %w", sheet.W, sheet.H, ErrInfeasible)
	}

	fit := layout.OnSheet(item, sheet, margins, gap)
	if fit.Count == 0 {
		return nil, fmt.Errorf("item %gx%g does not fit on the sheet: %w", item.W, item.H, ErrInfeasible)
	}

	// Stack height is limited by paper weight; everything is normalized to
	// 80 g/m2 equivalents.
	density := 80.0
	if code := p.Str("material_id", ""); code != "" {
		category := p.Str("material_category", "sheet")
		if mat, err := store.Material(category, code); err == nil && mat.Density > 0 {
			density = mat.Density
		}
	}

	sheets80 := math.Ceil(float64(numSheet) * density / 80)
	maxSheet := float64(cutter.MaxSheet)
	if maxSheet <= 0 {
		maxSheet = 500
	}
	numStack := math.Ceil(sheets80 / maxSheet)
	sheets80 = sheets80 / numStack

	alongLong := float64(fit.Cols)
	alongShort := float64(fit.Rows)
	if alongShort > alongLong {
		alongLong, alongShort = alongShort, alongLong
	}

	hevisaid := func(a float64) float64 {
		if a == 0 {
			return 0
		}
		return 1
	}

	// Edge trims: one cut per sheet edge that has either a margin or leftover
	// stock beyond the item grid.
	edgeCuts := hevisaid(margins.Top+margins.Bottom+math.Abs(sheet.H-item.H)) +
		hevisaid(margins.Right+margins.Left+math.Abs(sheet.W-item.W)) +
		hevisaid(hevisaid(margins.Top)*hevisaid(margins.Bottom)+gap) +
		hevisaid(hevisaid(margins.Right)*hevisaid(margins.Left)+gap)

	perStack := math.Max(1, math.Floor(maxSheet/sheets80))
	stackLong := math.Ceil(alongLong / perStack)
	stackShort := math.Ceil(alongShort / perStack)

	gapCuts := func(stacks float64) float64 {
		if gap == 0 {
			return 0
		}
		return stacks - 1
	}
	cutsLongFirst := alongLong - 1 + gapCuts(stackLong) + stackLong*(alongShort-1+gapCuts(stackShort))
	cutsShortFirst := alongShort - 1 + gapCuts(stackShort) + stackShort*(alongLong-1+gapCuts(stackLong))
	numCut := (edgeCuts + math.Min(cutsLongFirst, cutsShortFirst)) * numStack

	cutsPerHour := orDefault(cutter.CutsPerHour, 120)
	timePrepare := cutter.TimePrepare * float64(mode)
	timeCut := numCut/cutsPerHour + timePrepare

	costDep := cutter.DepreciationPerHour() * timeCut
	costProcess := numCut * orDefault(cutter.CostProcess, 0.3)
	costOperator := timeCut * cutter.OperatorRate(g)
	cost := math.Ceil(costDep + costProcess + costOperator)

	margin := g.EffectiveMargin(g.Margin("marginCutGuillotine"))
	price := math.Ceil(cost * (1 + margin))

	timeHours := pricing.RoundHours(timeCut)
	timeReady := timeHours + g.LeadTime(cutter.LeadTimes, mode)

	return &Result{
		Cost:      cost,
		Price:     price,
		UnitPrice: pricing.UnitPrice(price, numSheet),
		TimeHours: timeHours,
		TimeReady: timeReady,
	}, nil
}
