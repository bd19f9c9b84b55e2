// Package seed loads the default shop catalog on startup: pricing globals,
// the material assortment and the equipment park. It is idempotent; existing
// rows are left untouched so operators can edit the catalog in place.
package seed

import (
	"database/sql"
	"fmt"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type materialRow struct {
	Category      string
	Code          string
	Group         string
	Name          string
	Cost          float64
	CostTiersJSON string
	SizesJSON     string
	MinSizeJSON   string
	LengthMin     float64
	Thickness     float64
	Density       float64
	DensityUnit   string
	WeightPerUnit float64
}

type equipmentRow struct {
	Category          string
	Code              string
	Name              string
	MaxSizeJSON       string
	MarginsJSON       string
	PurchaseCost      string
	DepreciationYears float64
	WorkDaysYear      float64
	HoursPerDay       float64
	TimePrepare       float64
	TimeLoad          float64
	TimeLoadSheet     float64
	TimeFindMark      float64
	LeadTimesJSON     string
	DefectsJSON       string
	SpeedsJSON        string
	CostsJSON         string
}

var defaultMaterials = []materialRow{
	{
		Category: "hardsheet", Code: "PVC3", Group: "PVC", Name: "PVC foam board 3mm",
		CostTiersJSON: `[[1, 680], [5, 620], [20, 560]]`,
		SizesJSON:     `[[2050, 3050], [1560, 3050]]`,
		MinSizeJSON:   `[1025, 1525]`,
		Thickness:     3, Density: 0.55, DensityUnit: "g/cm3",
	},
	{
		Category: "hardsheet", Code: "PVC5", Group: "PVC", Name: "PVC foam board 5mm",
		CostTiersJSON: `[[1, 980], [5, 900], [20, 820]]`,
		SizesJSON:     `[[2050, 3050]]`,
		MinSizeJSON:   `[1025, 1525]`,
		Thickness:     5, Density: 0.55, DensityUnit: "g/cm3",
	},
	{
		Category: "hardsheet", Code: "Acrylic3", Group: "Acrylic", Name: "Cast acrylic 3mm clear",
		CostTiersJSON: `[[1, 1900], [5, 1750], [20, 1600]]`,
		SizesJSON:     `[[2050, 3050]]`,
		MinSizeJSON:   `[1025, 1525]`,
		Thickness:     3, Density: 1.19, DensityUnit: "g/cm3",
	},
	{
		Category: "roll", Code: "Oracal641", Group: "Film", Name: "Oracal 641 glossy film",
		CostTiersJSON: `[[5, 320], [25, 290], [100, 260]]`,
		SizesJSON:     `[[1000, 0], [1260, 0]]`,
		LengthMin:     1000, Thickness: 0.08, Density: 1.2, DensityUnit: "g/cm3",
	},
	{
		Category: "roll", Code: "Oracal451", Group: "Film", Name: "Oracal 451 banner film",
		CostTiersJSON: `[[5, 420], [25, 380], [100, 340]]`,
		SizesJSON:     `[[1000, 0]]`,
		LengthMin:     1000, Thickness: 0.1, Density: 1.25, DensityUnit: "g/cm3",
	},
	{
		Category: "sheet", Code: "ColorCopy100", Group: "Paper", Name: "Color Copy 100 g/m2 SRA3",
		CostTiersJSON: `[[100, 9], [500, 8], [2000, 7]]`,
		SizesJSON:     `[[320, 450]]`,
		Density:       100, DensityUnit: "g/m2",
	},
	{
		Category: "sheet", Code: "ColorCopy300", Group: "Paper", Name: "Color Copy 300 g/m2 SRA3",
		CostTiersJSON: `[[100, 28], [500, 25], [2000, 22]]`,
		SizesJSON:     `[[320, 450]]`,
		Density:       300, DensityUnit: "g/m2",
	},
	{
		Category: "laminat", Code: "RollMatte32", Group: "Laminate", Name: "Matte roll laminate 32µm",
		Cost:      38,
		SizesJSON: `[[330, 0]]`,
		Density:   32, DensityUnit: "g/m2",
	},
	{
		Category: "laminat", Code: "PouchA4-80", Group: "Laminate", Name: "Pouch laminate A4 80µm",
		Cost:      14,
		SizesJSON: `[[216, 303]]`,
		Density:   80, DensityUnit: "g/m2",
	},
	{
		Category: "misc", Code: "Sheet3M7952", Group: "Adhesive", Name: "3M 7952 adhesive sheet 50µm",
		CostTiersJSON: `[[1, 95]]`,
		SizesJSON:     `[[610, 610]]`,
		WeightPerUnit: 45,
	},
	{
		Category: "misc", Code: "Sheet3M7955", Group: "Adhesive", Name: "3M 7955 adhesive sheet 130µm",
		CostTiersJSON: `[[1, 140]]`,
		SizesJSON:     `[[610, 610]]`,
		WeightPerUnit: 78,
	},
}

var defaultEquipment = []equipmentRow{
	{
		Category: "laser", Code: "Qualitech11G1290", Name: "Qualitech 11G CO2 laser 1290",
		MaxSizeJSON: `[1200, 900]`, MarginsJSON: `[5, 5, 5, 5]`,
		PurchaseCost:      "$9000",
		DepreciationYears: 5, WorkDaysYear: 250, HoursPerDay: 8,
		TimePrepare: 0.25, TimeLoad: 0.05,
		LeadTimesJSON: `[24, 8, 2]`,
		DefectsJSON:   `[[10, 0.1], [100, 0.05], [1000, 0.02]]`,
		SpeedsJSON:    `{"cutPerHour": [[3, 60], [5, 42], [10, 24]], "gravePerHour": [0.15, 0.35, 0.6]}`,
		CostsJSON:     `{"tubeCost": "$600", "tubeLifeHours": 8000, "powerCostPerKWh": 6, "powerPerHour": 1.5}`,
	},
	{
		Category: "plotter", Code: "GraphtecCE5000-60", Name: "Graphtec CE5000-60",
		MaxSizeJSON: `[603, 5000]`, MarginsJSON: `[30, 10, 10, 10]`,
		PurchaseCost:      "€2000",
		DepreciationYears: 7, WorkDaysYear: 250, HoursPerDay: 4,
		TimePrepare: 0.05, TimeLoadSheet: 0.01, TimeFindMark: 0.015,
		LeadTimesJSON: `[24, 8, 2]`,
		DefectsJSON:   `[[50, 0.06], [500, 0.03], [5000, 0.01]]`,
		SpeedsJSON:    `{"processPerHour": [[80, 200], [100, 150], [200, 90]]}`,
		CostsJSON:     `{"costProcess": 0.3}`,
	},
	{
		Category: "cutter", Code: "KWTrio3026", Name: "KW-Trio 3026 rotary trimmer",
		MaxSizeJSON:       `[1520, 0]`,
		PurchaseCost:      "12000",
		DepreciationYears: 10, WorkDaysYear: 250, HoursPerDay: 2,
		TimePrepare:   0.03,
		LeadTimesJSON: `[24, 8, 1]`,
		CostsJSON:     `{"cutsPerHour": 120, "costProcess": 0.04}`,
	},
	{
		Category: "cutter", Code: "KWTrio3971", Name: "KW-Trio 3971 guillotine",
		MaxSizeJSON:       `[475, 650]`,
		PurchaseCost:      "28000",
		DepreciationYears: 10, WorkDaysYear: 250, HoursPerDay: 2,
		TimePrepare:   0.05,
		LeadTimesJSON: `[24, 8, 1]`,
		CostsJSON:     `{"cutsPerHour": 120, "costProcess": 0.3, "maxSheet": 500}`,
	},
	{
		Category: "milling", Code: "MillingMachine", Name: "CNC milling table 4x2m",
		MaxSizeJSON: `[4000, 2000]`, MarginsJSON: `[10, 10, 10, 10]`,
		PurchaseCost:      "$18000",
		DepreciationYears: 7, WorkDaysYear: 250, HoursPerDay: 6,
		TimePrepare:   0.2,
		LeadTimesJSON: `[48, 24, 8]`,
		DefectsJSON:   `[[10, 0.05], [100, 0.02]]`,
		CostsJSON: `{"costCut": {"PVC": [[3, 40], [5, 60], [10, 90]], "Acrylic": [[3, 60], [5, 80], [10, 120]]},` +
			` "discountCut": [[50, 0.1], [200, 0.2]],` +
			` "shipment": [[1000, 600, 350], [2000, 1500, 800], [4000, 2000, 1500]], "margin": 0.1}`,
	},
	{
		Category: "laminator", Code: "FGKFM360", Name: "FGK FM-360 roll laminator",
		MaxSizeJSON:       `[330, 0]`,
		PurchaseCost:      "32000",
		DepreciationYears: 8, WorkDaysYear: 250, HoursPerDay: 2,
		TimePrepare:   0.1,
		LeadTimesJSON: `[24, 8, 1]`,
		DefectsJSON:   `[[20, 0.05], [200, 0.02]]`,
		SpeedsJSON:    `{"meterPerHour": [[32, 60], [80, 40], [125, 25]]}`,
	},
	{
		Category: "printer", Code: "KMBizhubC220", Name: "Konica Minolta bizhub C220",
		MaxSizeJSON: `[320, 450]`, MarginsJSON: `[3, 3, 3, 3]`,
		PurchaseCost:      "$4500",
		DepreciationYears: 5, WorkDaysYear: 250, HoursPerDay: 6,
		TimePrepare:   0.1,
		LeadTimesJSON: `[24, 8, 1]`,
		DefectsJSON:   `[[50, 0.04], [500, 0.02], [5000, 0.01]]`,
		SpeedsJSON:    `{"sheetsPerHour": [[80, 900], [160, 700], [300, 400]]}`,
		CostsJSON:     `{"printSheet": [4, 12]}`,
	},
	{
		Category: "tools", Code: "ManualRoll", Name: "Hand application roller",
		PurchaseCost:      "2500",
		DepreciationYears: 3, WorkDaysYear: 250, HoursPerDay: 1,
		TimePrepare: 0.1,
		SpeedsJSON:  `{"rollPerHour": [[1, 2], [5, 4], [20, 6]], "edgePerHour": 30}`,
	},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureGlobals(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, m := range defaultMaterials {
		if err := ensureMaterial(tx, m, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, e := range defaultEquipment {
		if err := ensureEquipment(tx, e, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureGlobals(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM globals WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check globals existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO globals (
			id,
			cost_operator,
			margin_material,
			margin_operation,
			margin_min,
			usd_rate,
			eur_rate,
			lead_times_json,
			job_lead_times_json,
			margins_json
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		1400, 0.6, 0.55, 0.25, 95, 100,
		`[24, 8, 1]`,
		`{"leadTimesPrintSheet": [24, 8, 1]}`,
		`{"marginLaser": 0.05, "marginPlotter": 0, "marginCutGuillotine": 0, "marginCutRoller": 0,`+
			` "marginMilling": 0.1, "marginLamination": 0, "marginPrintSheet": 0, "marginPrintLaser": 0,`+
			` "marginProcessManual": 0}`,
	); err != nil {
		return fmt.Errorf("insert globals singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureMaterial(tx *sql.Tx, m materialRow, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM materials WHERE category = ? AND code = ? LIMIT 1)`,
		m.Category, m.Code,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check material %s/%s existence: %w", m.Category, m.Code, err)
	}
	if exists {
		return nil
	}

	unit := m.DensityUnit
	if unit == "" {
		unit = "g/cm3"
	}
	if _, err := tx.Exec(`
		INSERT INTO materials (
			category, code, group_name, name,
			cost, cost_tiers_json, sizes_json, min_size_json,
			length_min, thickness, density, density_unit, weight_per_unit,
			available
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)
	`,
		m.Category, m.Code, m.Group, m.Name,
		m.Cost, nullIfEmpty(m.CostTiersJSON), m.SizesJSON, nullIfEmpty(m.MinSizeJSON),
		m.LengthMin, m.Thickness, m.Density, unit, m.WeightPerUnit,
	); err != nil {
		return fmt.Errorf("insert material %s/%s: %w", m.Category, m.Code, err)
	}
	stats.Inserts++
	return nil
}

func ensureEquipment(tx *sql.Tx, e equipmentRow, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM equipment WHERE category = ? AND code = ? LIMIT 1)`,
		e.Category, e.Code,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check equipment %s/%s existence: %w", e.Category, e.Code, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO equipment (
			category, code, name,
			max_size_json, margins_json, purchase_cost,
			depreciation_years, work_days_year, hours_per_day, cost_operator,
			time_prepare, time_load, time_load_sheet, time_find_mark,
			lead_times_json, defects_json, speeds_json, costs_json,
			available
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)
	`,
		e.Category, e.Code, e.Name,
		nullIfEmpty(e.MaxSizeJSON), nullIfEmpty(e.MarginsJSON), e.PurchaseCost,
		e.DepreciationYears, e.WorkDaysYear, e.HoursPerDay, 0,
		e.TimePrepare, e.TimeLoad, e.TimeLoadSheet, e.TimeFindMark,
		nullIfEmpty(e.LeadTimesJSON), nullIfEmpty(e.DefectsJSON), nullIfEmpty(e.SpeedsJSON), nullIfEmpty(e.CostsJSON),
	); err != nil {
		return fmt.Errorf("insert equipment %s/%s: %w", e.Category, e.Code, err)
	}
	stats.Inserts++
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
