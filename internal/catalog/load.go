package catalog

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/printworks/quoter/internal/layout"
	"github.com/printworks/quoter/internal/lookup"
	"github.com/printworks/quoter/internal/pricing"
)

// Load builds a fresh catalog snapshot from the database. A malformed
// material or equipment row is skipped with a warning instead of failing the
// whole load; looking up a skipped code later returns ErrNotFound. Only a
// missing globals record is fatal, because nothing can be priced without it.
func Load(db *sql.DB) (*Store, error) {
	globals, err := loadGlobals(db)
	if err != nil {
		return nil, err
	}

	store := NewStore(globals)

	if err := loadMaterials(db, store); err != nil {
		return nil, err
	}
	if err := loadEquipment(db, store); err != nil {
		return nil, err
	}

	return store, nil
}

func loadGlobals(db *sql.DB) (pricing.Globals, error) {
	var g pricing.Globals
	var leadTimesJSON, marginsJSON, jobLeadTimesJSON string

	err := db.QueryRow(`
		SELECT cost_operator, margin_material, margin_operation, margin_min,
		       usd_rate, eur_rate, lead_times_json, margins_json, job_lead_times_json
		FROM globals
		WHERE id = 1
	`).Scan(
		&g.CostOperator,
		&g.MarginMaterial,
		&g.MarginOperation,
		&g.MarginMin,
		&g.USDRate,
		&g.EURRate,
		&leadTimesJSON,
		&marginsJSON,
		&jobLeadTimesJSON,
	)
	if err != nil {
		return pricing.Globals{}, fmt.Errorf("query globals singleton: %w", err)
	}

	if err := json.Unmarshal([]byte(leadTimesJSON), &g.LeadTimes); err != nil {
		return pricing.Globals{}, fmt.Errorf("decode globals lead_times_json: %w", err)
	}
	if err := json.Unmarshal([]byte(marginsJSON), &g.Margins); err != nil {
		return pricing.Globals{}, fmt.Errorf("decode globals margins_json: %w", err)
	}
	if g.Margins == nil {
		g.Margins = map[string]float64{}
	}
	if err := json.Unmarshal([]byte(jobLeadTimesJSON), &g.JobLeadTimes); err != nil {
		return pricing.Globals{}, fmt.Errorf("decode globals job_lead_times_json: %w", err)
	}

	return g, nil
}

func loadMaterials(db *sql.DB, store *Store) error {
	rows, err := db.Query(`
		SELECT category, code, group_name, name,
		       COALESCE(cost, 0), cost_tiers_json, sizes_json, min_size_json,
		       length_min, thickness, density, density_unit, weight_per_unit,
		       available
		FROM materials
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m           Material
			tiersJSON   sql.NullString
			sizesJSON   string
			minSizeJSON sql.NullString
		)
		if err := rows.Scan(
			&m.Category, &m.Code, &m.Group, &m.Name,
			&m.Cost, &tiersJSON, &sizesJSON, &minSizeJSON,
			&m.LengthMin, &m.Thickness, &m.Density, &m.DensityUnit, &m.WeightPerUnit,
			&m.Available,
		); err != nil {
			return fmt.Errorf("scan material: %w", err)
		}

		if err := finishMaterial(&m, tiersJSON, sizesJSON, minSizeJSON); err != nil {
			log.Printf("warning: skipping material %s/%s: %v", m.Category, m.Code, err)
			continue
		}
		store.AddMaterial(&m)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate materials: %w", err)
	}
	return nil
}

func finishMaterial(m *Material, tiersJSON sql.NullString, sizesJSON string, minSizeJSON sql.NullString) error {
	var rawSizes [][]float64
	if err := json.Unmarshal([]byte(sizesJSON), &rawSizes); err != nil {
		return fmt.Errorf("decode sizes_json: %w", err)
	}
	for _, pair := range rawSizes {
		if len(pair) < 2 {
			return fmt.Errorf("size entry must be [width, height]")
		}
		m.Sizes = append(m.Sizes, layout.Size{W: pair[0], H: pair[1]})
	}

	for _, sz := range m.Sizes {
		if sz.IsRoll() {
			m.IsRoll = true
			break
		}
	}
	if m.IsRoll && m.RollWidth == 0 && len(m.Sizes) > 0 {
		m.RollWidth = m.Sizes[0].W
	}

	if tiersJSON.Valid && tiersJSON.String != "" {
		var rawTiers [][]float64
		if err := json.Unmarshal([]byte(tiersJSON.String), &rawTiers); err != nil {
			return fmt.Errorf("decode cost_tiers_json: %w", err)
		}
		table, err := lookup.FromRows(rawTiers)
		if err != nil {
			return fmt.Errorf("build cost tiers: %w", err)
		}
		m.CostTiers = table
	}

	if minSizeJSON.Valid && minSizeJSON.String != "" {
		var pair []float64
		if err := json.Unmarshal([]byte(minSizeJSON.String), &pair); err != nil {
			return fmt.Errorf("decode min_size_json: %w", err)
		}
		if len(pair) < 2 {
			return fmt.Errorf("min_size must be [width, height]")
		}
		m.MinSize = &layout.Size{W: pair[0], H: pair[1]}
	}

	if m.DensityUnit == "" {
		m.DensityUnit = pricing.DensityVolumetric
	}

	return nil
}

// equipmentSpeeds is the shape of the speeds_json column. Each category
// fills only the curves it has.
type equipmentSpeeds struct {
	CutPerHour     [][]float64 `json:"cutPerHour"`
	GravePerHour   []float64   `json:"gravePerHour"`
	ProcessPerHour [][]float64 `json:"processPerHour"`
	MeterPerHour   [][]float64 `json:"meterPerHour"`
	SheetsPerHour  [][]float64 `json:"sheetsPerHour"`
	RollPerHour    [][]float64 `json:"rollPerHour"`
	EdgePerHour    float64     `json:"edgePerHour"`
}

// equipmentCosts is the shape of the costs_json column. costCut stays raw
// because its key order is part of the contract.
type equipmentCosts struct {
	CostProcess     float64         `json:"costProcess"`
	CutsPerHour     float64         `json:"cutsPerHour"`
	MaxSheet        int             `json:"maxSheet"`
	PrintSheet      []float64       `json:"printSheet"`
	TubeCost        string          `json:"tubeCost"`
	TubeLifeHours   float64         `json:"tubeLifeHours"`
	PowerCostPerKWh float64         `json:"powerCostPerKWh"`
	PowerPerHour    float64         `json:"powerPerHour"`
	CostCut         json.RawMessage `json:"costCut"`
	DiscountCut     [][]float64     `json:"discountCut"`
	Shipment        [][]float64     `json:"shipment"`
	Margin          float64         `json:"margin"`
}

func loadEquipment(db *sql.DB, store *Store) error {
	rows, err := db.Query(`
		SELECT category, code, name,
		       max_size_json, margins_json, purchase_cost,
		       depreciation_years, work_days_year, hours_per_day, cost_operator,
		       time_prepare, time_load, time_load_sheet, time_find_mark,
		       lead_times_json, defects_json, speeds_json, costs_json,
		       available
		FROM equipment
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e            Equipment
			maxSizeJSON  sql.NullString
			marginsJSON  sql.NullString
			purchaseCost string
			leadJSON     sql.NullString
			defectsJSON  sql.NullString
			speedsJSON   sql.NullString
			costsJSON    sql.NullString
		)
		if err := rows.Scan(
			&e.Category, &e.Code, &e.Name,
			&maxSizeJSON, &marginsJSON, &purchaseCost,
			&e.DepreciationYears, &e.WorkDaysYear, &e.HoursPerDay, &e.CostOperator,
			&e.TimePrepare, &e.TimeLoad, &e.TimeLoadSheet, &e.TimeFindMark,
			&leadJSON, &defectsJSON, &speedsJSON, &costsJSON,
			&e.Available,
		); err != nil {
			return fmt.Errorf("scan equipment: %w", err)
		}

		if err := finishEquipment(&e, store.Globals, maxSizeJSON, marginsJSON, purchaseCost, leadJSON, defectsJSON, speedsJSON, costsJSON); err != nil {
			log.Printf("warning: skipping equipment %s/%s: %v", e.Category, e.Code, err)
			continue
		}
		store.AddEquipment(&e)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate equipment: %w", err)
	}
	return nil
}

func finishEquipment(e *Equipment, g pricing.Globals, maxSizeJSON, marginsJSON sql.NullString, purchaseCost string, leadJSON, defectsJSON, speedsJSON, costsJSON sql.NullString) error {
	if maxSizeJSON.Valid && maxSizeJSON.String != "" {
		var pair []float64
		if err := json.Unmarshal([]byte(maxSizeJSON.String), &pair); err != nil {
			return fmt.Errorf("decode max_size_json: %w", err)
		}
		if len(pair) < 2 {
			return fmt.Errorf("max_size must be [width, height]")
		}
		e.MaxSize = layout.Size{W: pair[0], H: pair[1]}
	}

	if marginsJSON.Valid && marginsJSON.String != "" {
		var quad []float64
		if err := json.Unmarshal([]byte(marginsJSON.String), &quad); err != nil {
			return fmt.Errorf("decode margins_json: %w", err)
		}
		if len(quad) < 4 {
			return fmt.Errorf("margins must be [top, right, bottom, left]")
		}
		e.Margins = layout.Margins{Top: quad[0], Right: quad[1], Bottom: quad[2], Left: quad[3]}
	}

	cost, err := g.ParseCurrency(purchaseCost)
	if err != nil {
		return err
	}
	e.PurchaseCost = cost

	if leadJSON.Valid && leadJSON.String != "" {
		if err := json.Unmarshal([]byte(leadJSON.String), &e.LeadTimes); err != nil {
			return fmt.Errorf("decode lead_times_json: %w", err)
		}
	}

	if defectsJSON.Valid && defectsJSON.String != "" {
		var rawDefects [][]float64
		if err := json.Unmarshal([]byte(defectsJSON.String), &rawDefects); err != nil {
			return fmt.Errorf("decode defects_json: %w", err)
		}
		table, err := lookup.FromRows(rawDefects)
		if err != nil {
			return fmt.Errorf("build defect table: %w", err)
		}
		e.Defects = table
	}

	if speedsJSON.Valid && speedsJSON.String != "" {
		var speeds equipmentSpeeds
		if err := json.Unmarshal([]byte(speedsJSON.String), &speeds); err != nil {
			return fmt.Errorf("decode speeds_json: %w", err)
		}
		if e.CutSpeed, err = optionalTable(speeds.CutPerHour, "cutPerHour"); err != nil {
			return err
		}
		e.GraveSpeeds = speeds.GravePerHour
		if e.ProcessSpeed, err = optionalTable(speeds.ProcessPerHour, "processPerHour"); err != nil {
			return err
		}
		if e.MeterPerHour, err = optionalTable(speeds.MeterPerHour, "meterPerHour"); err != nil {
			return err
		}
		if e.SheetsPerHour, err = optionalTable(speeds.SheetsPerHour, "sheetsPerHour"); err != nil {
			return err
		}
		if e.RollPerHour, err = optionalTable(speeds.RollPerHour, "rollPerHour"); err != nil {
			return err
		}
		e.EdgePerHour = speeds.EdgePerHour
	}

	if costsJSON.Valid && costsJSON.String != "" {
		var costs equipmentCosts
		if err := json.Unmarshal([]byte(costsJSON.String), &costs); err != nil {
			return fmt.Errorf("decode costs_json: %w", err)
		}
		e.CostProcess = costs.CostProcess
		e.CutsPerHour = costs.CutsPerHour
		e.MaxSheet = costs.MaxSheet
		e.CostPrintSheet = costs.PrintSheet
		e.TubeLifeHours = costs.TubeLifeHours
		e.PowerCostPerKWh = costs.PowerCostPerKWh
		e.PowerPerHour = costs.PowerPerHour
		e.ExtraMargin = costs.Margin
		if costs.TubeCost != "" {
			if e.TubeCost, err = g.ParseCurrency(costs.TubeCost); err != nil {
				return err
			}
		}
		if len(costs.CostCut) > 0 {
			if e.CostCut, err = decodeCutCostGroups(costs.CostCut); err != nil {
				return err
			}
		}
		for _, row := range costs.DiscountCut {
			if len(row) < 2 {
				return fmt.Errorf("discountCut entry must be [threshold, value]")
			}
			e.DiscountCut = append(e.DiscountCut, lookup.Pair{Threshold: row[0], Value: row[1]})
		}
		for _, row := range costs.Shipment {
			if len(row) < 3 {
				return fmt.Errorf("shipment entry must be [width, height, cost]")
			}
			e.Shipments = append(e.Shipments, Shipment{
				Size: layout.Size{W: row[0], H: row[1]},
				Cost: row[2],
			})
		}
	}

	return nil
}

// decodeCutCostGroups reads a {"prefix": [[thickness, rate], ...]} object
// keeping the key order of the JSON text. The first prefix that matches a
// material code wins, so going through a Go map here would make overlapping
// prefixes resolve differently from one call to the next.
func decodeCutCostGroups(raw json.RawMessage) ([]CutCostGroup, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode costCut: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("costCut must be an object, got %v", tok)
	}

	var groups []CutCostGroup
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode costCut key: %w", err)
		}
		prefix := keyTok.(string)

		var rows [][]float64
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode costCut[%s]: %w", prefix, err)
		}
		table, err := lookup.FromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("build costCut[%s]: %w", prefix, err)
		}
		groups = append(groups, CutCostGroup{Prefix: prefix, Table: table})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode costCut: %w", err)
	}
	return groups, nil
}

func optionalTable(rows [][]float64, field string) (*lookup.Table, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	table, err := lookup.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", field, err)
	}
	return table, nil
}
