package calc

import "testing"

func TestShareURLFlattensNestedParams(t *testing.T) {
	p := Params{
		"width_mm":     100.5,
		"quantity":     10.0,
		"is_cut_laser": map[string]any{"len_cut": 350.0},
		"is_find_mark": true,
	}

	got := ShareURL("http://localhost:8080/", "laser", p)
	want := "http://localhost:8080/calculator/laser/?is_cut_laser.len_cut=350&is_find_mark=true&quantity=10&width_mm=100.5"
	if got != want {
		t.Fatalf("ShareURL = %q, want %q", got, want)
	}
}

func TestShareURLRepeatsArrayValues(t *testing.T) {
	p := Params{"is_grave_fill": []any{150.0, 80.0}}

	got := ShareURL("https://print.example.com", "laser", p)
	want := "https://print.example.com/calculator/laser/?is_grave_fill=150&is_grave_fill=80"
	if got != want {
		t.Fatalf("ShareURL = %q, want %q", got, want)
	}
}

func TestShareURLNoParams(t *testing.T) {
	got := ShareURL("http://localhost:8080", "milling", Params{})
	want := "http://localhost:8080/calculator/milling/"
	if got != want {
		t.Fatalf("ShareURL = %q, want %q", got, want)
	}
}
