// Package calc contains the job calculators: each one prices a production
// job (laser cutting, plotting, printing, ...) against a catalog snapshot.
// Calculators are stateless; everything they need comes from the request
// params and the immutable catalog.Store passed in.
package calc

import (
	"errors"
	"fmt"

	"github.com/printworks/quoter/internal/catalog"
)

var (
	// ErrInvalidInput marks a request rejected for bad parameters.
	ErrInvalidInput = errors.New("calc: invalid input")
	// ErrInfeasible marks a job that cannot be produced: the item fits
	// neither the machine bed nor any stocked material size.
	ErrInfeasible = errors.New("calc: job is infeasible")
)

// Calculator prices one job type.
type Calculator interface {
	Slug() string
	Name() string
	Description() string
	// Calculate prices the job against a catalog snapshot.
	Calculate(store *catalog.Store, p Params) (*Result, error)
	// Options returns the selection lists a front-end form needs.
	Options(store *catalog.Store) map[string]any
}

// Registry holds the configured calculators in registration order.
type Registry struct {
	bySlug map[string]Calculator
	order  []string
}

// NewRegistry builds the full calculator set.
func NewRegistry() *Registry {
	r := &Registry{bySlug: map[string]Calculator{}}
	for _, c := range []Calculator{
		&Laser{},
		&CutPlotter{},
		&CutGuillotine{},
		&CutRoller{},
		&Milling{},
		&Lamination{},
		&PrintSheet{},
		&PrintLaser{},
	} {
		r.register(c)
	}
	return r
}

func (r *Registry) register(c Calculator) {
	if _, exists := r.bySlug[c.Slug()]; !exists {
		r.order = append(r.order, c.Slug())
	}
	r.bySlug[c.Slug()] = c
}

// Get finds a calculator by slug.
func (r *Registry) Get(slug string) (Calculator, error) {
	c, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("calculator %q: %w", slug, catalog.ErrNotFound)
	}
	return c, nil
}

// List returns all calculators in registration order.
func (r *Registry) List() []Calculator {
	out := make([]Calculator, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug])
	}
	return out
}

// modeOptions is the production mode list shared by every calculator form.
func modeOptions() []map[string]any {
	return []map[string]any{
		{"value": 0, "label": "Economy"},
		{"value": 1, "label": "Standard"},
		{"value": 2, "label": "Express"},
	}
}
