package calc

import (
	"fmt"
	"math"

	"github.com/printworks/quoter/internal/catalog"
	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/pricing"
)

// PrintSheet prices digital printing of finished items: the item is imposed
// on the stocked paper sheet, printed, and the paper cost is part of the
// quote.
type PrintSheet struct{}

func (PrintSheet) Slug() string { return "print_sheet" }
func (PrintSheet) Name() string { return "Sheet printing" }
func (PrintSheet) Description() string {
	return "Digital printing of items imposed on sheet paper stock."
}

func (PrintSheet) Options(store *catalog.Store) map[string]any {
	return map[string]any{
		"materials": store.MaterialOptions("sheet"),
		"printers":  store.EquipmentOptions("printer"),
		"colors":    printColors,
		"modes":     modeOptions(),
	}
}

func (PrintSheet) Calculate(store *catalog.Store, p Params) (*Result, error) {
	quantity := p.Int("quantity", 1)
	item := layout.Size{W: p.Float("width", 0), H: p.Float("height", 0)}
	if item.W <= 0 || item.H <= 0 {
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
	gap := p.Float("interval", 0)
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

	sheet := layout.Size{W: 320, H: 450}
	if len(material.Sizes) > 0 {
		sheet = material.Sizes[0]
	}
	maxPrinter := printer.MaxSize
	if maxPrinter.W <= 0 {
		maxPrinter = layout.Size{W: 320, H: 450}
	}
	printerMargins := marginsOrDefault(printer.Margins, layout.Margins{Top: 3, Right: 3, Bottom: 3, Left: 3})

	// Bleed margins from the request plus the printer's unprintable border.
	bleed := printerMargins
	if quad := p.Floats("margins"); len(quad) == 4 {
		bleed = layout.Margins{
			Top:    quad[0] + printerMargins.Top,
			Right:  quad[1] + printerMargins.Right,
			Bottom: quad[2] + printerMargins.Bottom,
			Left:   quad[3] + printerMargins.Left,
		}
	}

	// When the stocked sheet exceeds the printer format, print on the
	// printer's maximum size and cut the stock down to it first.
	perStockSheet := 1
	if fit := layout.OnSheet(sheet, maxPrinter, layout.Margins{}, 0); fit.Count == 0 {
		stock := sheet
		sheet = maxPrinter
		if fit := layout.OnSheet(sheet, stock, layout.Margins{}, 0); fit.Count > 0 {
			perStockSheet = fit.Count
		}
	}

	imposition := layout.OnSheet(item, sheet, bleed, gap)
	if imposition.Count == 0 {
		return nil, fmt.Errorf("item %gx%g does not fit the print sheet: %w", item.W, item.H, ErrInfeasible)
	}
	numSheet := math.Ceil(float64(quantity) / float64(imposition.Count))

	defects := pricing.DefectRateForMode(printer.DefectRate(numSheet), mode)
	numWithDefects := math.Ceil(numSheet * (1 + defects))

	coeffSize := printSizeCoeff(sheet, maxPrinter)
	sheetsPerHour := printer.GetSheetsPerHour(orDefault(material.Density, 80))
	if sheetsPerHour <= 0 {
		sheetsPerHour = 250
	}
	sides := 1.0
	if isDoubleSided(color) {
		sides = 2
	}
	timePrepare := orDefault(printer.TimePrepare, 0.1) * math.Max(1, float64(mode))
	timePrint := numWithDefects/sheetsPerHour*coeffSize*sides + timePrepare
	timeOperator := timePrint*0.5*(1+defects) + timePrepare

	costs := printer.CostPrintSheet
	if len(costs) == 0 {
		costs = []float64{4, 12}
	}
	costDepreciation := printer.DepreciationPerHour() * timePrint
	costConsumables := sheetPrintCost(color, costs) * coeffSize * numWithDefects
	costPrint := costDepreciation + costConsumables
	costOperator := timeOperator * printer.OperatorRate(g)
	costPrintTotal := costPrint + costOperator

	physicalSheets := math.Ceil(numSheet * (1 + defects) / float64(perStockSheet))
	costMaterial := material.UnitCost(1) * physicalSheets

	cost := costMaterial + costPrintTotal
	marginExtra := g.Margin("marginPrintSheet")
	margin := g.EffectiveMargin(marginExtra)
	price := math.Ceil(costMaterial*(1+g.MarginMaterial) + costPrintTotal*(1+margin))

	timeHours := pricing.RoundHoursNearest(timePrint)
	// Ready when both the shop's sheet-print queue and the printer allow.
	queueLead := g.JobLeadTime("leadTimesPrintSheet", mode)
	printerLead := g.LeadTime(printer.LeadTimes, mode)
	timeReady := timeHours + math.Max(queueLead, printerLead)

	unit := material.DensityUnit
	if unit == "" {
		unit = pricing.DensityAreal
	}
	weight, _ := pricing.Weight(quantity, orDefault(material.Density, 80), material.Thickness, item, unit)

	return &Result{
		Cost:      cost,
		Price:     price,
		UnitPrice: pricing.UnitPrice(price, quantity),
		TimeHours: timeHours,
		TimeReady: timeReady,
		WeightKg:  weight,
		Materials: []MaterialUsage{{
			Code:     material.Code,
			Name:     material.Name,
			Quantity: physicalSheets,
			Unit:     "sheet",
		}},
	}, nil
}
