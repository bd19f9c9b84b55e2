package calc

import (
	"errors"
	"testing"
)

func TestParamsGetters(t *testing.T) {
	p := Params{
		"quantity": float64(25),
		"width_mm": 120.5,
		"material": "  PVC3  ",
		"empty":    "   ",
		"flag":     true,
		"mistyped": "yes",
	}

	if got := p.Int("quantity", 1); got != 25 {
		t.Fatalf("Int = %d, want 25", got)
	}
	if got := p.Int("missing", 7); got != 7 {
		t.Fatalf("Int default = %d, want 7", got)
	}
	if got := p.Float("width_mm", 0); got != 120.5 {
		t.Fatalf("Float = %v, want 120.5", got)
	}
	if got := p.Str("material", ""); got != "PVC3" {
		t.Fatalf("Str = %q, want trimmed PVC3", got)
	}
	if got := p.Str("empty", "fallback"); got != "fallback" {
		t.Fatalf("blank Str = %q, want fallback", got)
	}
	if !p.Bool("flag", false) {
		t.Fatal("Bool lost a true value")
	}
	if p.Bool("mistyped", false) {
		t.Fatal("Bool accepted a string")
	}
	if !p.Has("empty") || p.Has("missing") {
		t.Fatal("Has misreported key presence")
	}
}

func TestParamsMapIsNilSafe(t *testing.T) {
	p := Params{"nested": map[string]any{"len_cut": 350.0}}

	if got := p.Map("nested").Float("len_cut", 0); got != 350 {
		t.Fatalf("nested Float = %v, want 350", got)
	}
	// Reads on an absent nested object fall through to the default.
	if got := p.Map("missing").Float("len_cut", 42); got != 42 {
		t.Fatalf("absent nested Float = %v, want 42", got)
	}
}

func TestParamsFloatPair(t *testing.T) {
	p := Params{
		"area": []any{150.0, 80.0},
		"bad":  []any{"wide"},
	}

	pair, ok, err := p.FloatPair("area")
	if err != nil || !ok {
		t.Fatalf("FloatPair failed: ok=%v err=%v", ok, err)
	}
	if pair != [2]float64{150, 80} {
		t.Fatalf("pair = %v", pair)
	}

	if _, ok, err := p.FloatPair("missing"); ok || err != nil {
		t.Fatalf("absent pair: ok=%v err=%v, want absent without error", ok, err)
	}
	if _, _, err := p.FloatPair("bad"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("malformed pair error = %v, want ErrInvalidInput", err)
	}
}
