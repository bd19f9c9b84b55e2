package calc

import (
	"errors"
	"testing"
)

func TestLaminationRollFilm(t *testing.T) {
	store := testStore(t)

	res, err := (Lamination{}).Calculate(store, Params{
		"quantity": 10.0, "width": 200.0, "height": 150.0, "material_id": "RollMatte32",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if res.Cost <= 0 || res.Price < res.Cost {
		t.Fatalf("cost %v, price %v", res.Cost, res.Price)
	}
	if len(res.Materials) != 1 || res.Materials[0].Unit != "m" {
		t.Fatalf("film usage = %+v, want meters", res.Materials)
	}
	if res.WeightKg <= 0 {
		t.Fatalf("weight = %v", res.WeightKg)
	}
}

func TestLaminationSingleSideHalvesRuns(t *testing.T) {
	store := testStore(t)
	double := Params{"quantity": 10.0, "width": 200.0, "height": 150.0, "material_id": "RollMatte32"}
	single := Params{
		"quantity": 10.0, "width": 200.0, "height": 150.0, "material_id": "RollMatte32",
		"double_side": false,
	}

	both, err := (Lamination{}).Calculate(store, double)
	if err != nil {
		t.Fatalf("double-side quote failed: %v", err)
	}
	one, err := (Lamination{}).Calculate(store, single)
	if err != nil {
		t.Fatalf("single-side quote failed: %v", err)
	}

	if one.Price >= both.Price {
		t.Fatalf("single side must be cheaper: %v >= %v", one.Price, both.Price)
	}
	if one.WeightKg >= both.WeightKg {
		t.Fatalf("single side must weigh less: %v >= %v", one.WeightKg, both.WeightKg)
	}
}

func TestLaminationPouchFilm(t *testing.T) {
	store := testStore(t)

	res, err := (Lamination{}).Calculate(store, Params{
		"quantity": 10.0, "width": 200.0, "height": 280.0, "material_id": "PouchA4-80",
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if len(res.Materials) != 1 || res.Materials[0].Unit != "sheet" {
		t.Fatalf("pouch usage = %+v, want sheets", res.Materials)
	}
	// No defect table on the laminator: exactly one pouch per item.
	nearlyEqual(t, "pouches", res.Materials[0].Quantity, 10)
}

func TestLaminationItemExceedsRoll(t *testing.T) {
	store := testStore(t)

	_, err := (Lamination{}).Calculate(store, Params{
		"quantity": 1.0, "width": 400.0, "height": 400.0, "material_id": "RollMatte32",
	})
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("error = %v, want ErrInfeasible", err)
	}
}
