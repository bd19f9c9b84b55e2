package calc

import (
	"fmt"
	"strings"
)

// Params is the decoded JSON request body of a calculation. Typed getters
// tolerate the usual JSON looseness (every number arrives as float64) and
// fall back to a default when the key is absent.
type Params map[string]any

// Has reports whether the key is present at all.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Int reads an integer parameter.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Float reads a numeric parameter.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

// Str reads a string parameter, trimmed. An empty value falls back to def.
func (p Params) Str(key, def string) string {
	if v, ok := p[key].(string); ok {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return def
}

// Bool reads a boolean parameter.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Map reads a nested object parameter; absent or mistyped yields nil.
func (p Params) Map(key string) Params {
	if v, ok := p[key].(map[string]any); ok {
		return Params(v)
	}
	return nil
}

// FloatPair reads a two-number array parameter such as an engraving area
// [w, h]. Present-but-malformed values are an input error.
func (p Params) FloatPair(key string) ([2]float64, bool, error) {
	v, ok := p[key]
	if !ok {
		return [2]float64{}, false, nil
	}
	raw, ok := v.([]any)
	if !ok || len(raw) < 2 {
		return [2]float64{}, false, fmt.Errorf("%s must be a [w, h] pair: %w", key, ErrInvalidInput)
	}
	var pair [2]float64
	for i := 0; i < 2; i++ {
		n, ok := raw[i].(float64)
		if !ok {
			return [2]float64{}, false, fmt.Errorf("%s must contain numbers: %w", key, ErrInvalidInput)
		}
		pair[i] = n
	}
	return pair, true, nil
}

// Floats reads a numeric array parameter of any length.
func (p Params) Floats(key string) []float64 {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		n, ok := v.(float64)
		if !ok {
			return nil
		}
		out = append(out, n)
	}
	return out
}
