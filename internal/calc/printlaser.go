package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

const defaultPrinterCode = "KMBizhubC220"

// printColors are the accepted ink configurations, front+back.
var printColors = []string{"1+0", "4+0", "1+1", "4+1", "4+4"}

// sheetPrintCost is the consumable cost of printing one sheet for a color
// configuration, given the printer's [black-and-white, color] per-sheet costs.
func sheetPrintCost(color string, costs []float64) float64 {
	if len(costs) == 0 {
		return 0
	}
	bw := costs[0]
	cl := bw
	if len(costs) > 1 {
		cl = costs[1]
	}
	switch color {
	case "1+0":
		return bw
	case "1+1":
		return 2 * bw
	case "4+0":
		return cl
	case "4+1":
		return bw + cl
	case "4+4":
		return 2 * cl
	}
	return cl
}

// isDoubleSided reports whether the color configuration prints both sides.
func isDoubleSided(color string) bool {
	return color == "1+1" || color == "4+1" || color == "4+4"
}

// printSizeCoeff is 0.5 when the sheet fits on half the printer's maximum
// format, 1 otherwise. Small sheets run two-up through the engine.
func printSizeCoeff(sheet, maxPrinter layout.Size) float64 {
	half := layout.Size{W: maxPrinter.W, H: maxPrinter.H / 2}
	if fit := layout.OnSheet(sheet, half, layout.Margins{}, 0); fit.Count > 0 {
		return 0.5
	}
	return 1
}

// PrintLaser prices running customer-supplied sheets through the laser
// printer: no imposition, the sheet size is the print size.
type PrintLaser struct{}

func (PrintLaser) Slug() string { return "print_laser" }
func (PrintLaser) Name() string { return "Laser printing" }
func (PrintLaser) Description() string {
	return "Digital laser printing on cut sheets, 1+0 through 4+4."
}

func (PrintLaser) Options(store *catalog.Store) map[string]any {
	return map[string]any{
		"materials": store.MaterialOptions("sheet"),
		"printers":  store.EquipmentOptions("printer"),
		"colors":    printColors,
		"modes":     modeOptions(),
	}
}

func (PrintLaser) Calculate(store *catalog.Store, p Params) (*Result, error) {
	numSheet := p.Int("num_sheet", 1)
	sheet := layout.Size{W: p.Float("width", 0), H: p.Float("height", 0)}
	if sheet.W <= 0 || sheet.H <= 0 {
		return nil, fmt.Errorf("width and height must be positive: %w", ErrInvalidInput)
	}
	color := p.Str("color", "4+0")
	if color == "0+0" {
		return nil, fmt.Errorf("color 0+0 prints nothing: %w", ErrInvalidInput)
	}
	materialCode := p.Str("material_id", "")
	if materialCode == "" {
		return nil, fmt.Errorf("material_id is required: %w", ErrInvalidInput)
	}
	mode, err := pricing.ParseMode(p.Int("mode", int(pricing.ModeStandard)))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	printer, err := store.Equipment("printer", p.Str("printer_code", defaultPrinterCode))
	if err != nil {
		if printer, err = store.Equipment("printer", defaultPrinterCode); err != nil {
			return nil, err
		}
	}
	material, err := store.Material("sheet", materialCode)
	if err != nil {
		return nil, err
	}
	g := store.Globals

	maxPrinter := printer.MaxSize
	if maxPrinter.W <= 0 {
		maxPrinter = layout.Size{W: 320, H: 450}
	}
	if fit := layout.OnSheet(sheet, maxPrinter, layout.Margins{}, 0); fit.Count == 0 {
		return nil, fmt.Errorf("sheet %gx%g does not fit the printer: %w", sheet.W, sheet.H, ErrInfeasible)
	}

	coeffSize := printSizeCoeff(sheet, maxPrinter)
	sheetsPerHour := printer.GetSheetsPerHour(orDefault(material.Density, 80))
	if sheetsPerHour <= 0 {
		sheetsPerHour = 250
	}

	defects := pricing.DefectRateForMode(printer.DefectRate(float64(numSheet)), mode)
	numWithDefects := pricing.DefectAdjustedCeil(numSheet, defects)

	sides := 1.0
	if isDoubleSided(color) {
		sides = 2
	}
	timePrepare := orDefault(printer.TimePrepare, 0.1) * math.Max(1, float64(mode))
	timePrint := float64(numWithDefects)/sheetsPerHour*coeffSize*sides + timePrepare
	timeOperator := timePrint*0.5*(1+defects) + timePrepare

	costs := printer.CostPrintSheet
	if len(costs) == 0 {
		costs = []float64{4, 12}
	}
	costDepreciation := printer.DepreciationPerHour() * timePrint
	costConsumables := sheetPrintCost(color, costs) * coeffSize * float64(numWithDefects)
	costPrint := costDepreciation + costConsumables
	costOperator := timeOperator * printer.OperatorRate(g)
	cost := costPrint + costOperator

	marginExtra := g.Margin("marginPrintLaser")
	// Print consumables price like material, operator time like an operation.
	price := math.Ceil(costPrint*(1+g.MarginMaterial+marginExtra) + costOperator*(1+g.MarginOperation+marginExtra))

	timeHours := pricing.RoundHoursNearest(timePrint)
	timeReady := timeHours + g.LeadTime(printer.LeadTimes, mode)

	unit := material.DensityUnit
	if unit == "" {
		unit = pricing.DensityAreal
	}
	weight, _ := pricing.Weight(numSheet, orDefault(material.Density, 80), material.Thickness, sheet, unit)

	return &Result{
		Cost:      cost,
		Price:     price,
		UnitPrice: pricing.UnitPrice(price, numSheet),
		TimeHours: timeHours,
		TimeReady: timeReady,
		WeightKg:  weight,
	}, nil
}
