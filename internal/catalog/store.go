package catalog

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/printworks/quoter/internal/pricing"
)

// ErrNotFound is returned for unknown material or equipment codes, and for
// unknown categories.
var ErrNotFound = errors.New("catalog: not found")

// Store is one immutable snapshot of the whole reference catalog: all
// material categories, all equipment categories and the pricing globals.
// Concurrent reads need no locking; a reload builds a new Store and swaps it
// through a Handle.
type Store struct {
	Globals pricing.Globals

	materials      map[string]map[string]*Material
	materialOrder  map[string][]string
	equipment      map[string]map[string]*Equipment
	equipmentOrder map[string][]string
}

// NewStore creates an empty snapshot with the given globals.
func NewStore(g pricing.Globals) *Store {
	return &Store{
		Globals:        g,
		materials:      map[string]map[string]*Material{},
		materialOrder:  map[string][]string{},
		equipment:      map[string]map[string]*Equipment{},
		equipmentOrder: map[string][]string{},
	}
}

// AddMaterial registers a material under its category. Re-adding a code
// overwrites the previous spec but keeps its position.
func (s *Store) AddMaterial(m *Material) {
	byCode := s.materials[m.Category]
	if byCode == nil {
		byCode = map[string]*Material{}
		s.materials[m.Category] = byCode
	}
	if _, exists := byCode[m.Code]; !exists {
		s.materialOrder[m.Category] = append(s.materialOrder[m.Category], m.Code)
	}
	byCode[m.Code] = m
}

// AddEquipment registers an equipment spec under its category.
func (s *Store) AddEquipment(e *Equipment) {
	byCode := s.equipment[e.Category]
	if byCode == nil {
		byCode = map[string]*Equipment{}
		s.equipment[e.Category] = byCode
	}
	if _, exists := byCode[e.Code]; !exists {
		s.equipmentOrder[e.Category] = append(s.equipmentOrder[e.Category], e.Code)
	}
	byCode[e.Code] = e
}

// Material finds a material by category and code.
func (s *Store) Material(category, code string) (*Material, error) {
	m, ok := s.materials[category][code]
	if !ok {
		return nil, fmt.Errorf("material %s/%s: %w", category, code, ErrNotFound)
	}
	return m, nil
}

// FindMaterial looks for a code across several categories in order and
// returns the first hit. Used by the cutting calculators that accept sheet,
// roll and hardsheet stock alike.
func (s *Store) FindMaterial(code string, categories ...string) (*Material, error) {
	for _, cat := range categories {
		if m, err := s.Material(cat, code); err == nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("material %s: %w", code, ErrNotFound)
}

// Materials lists a category in configured order.
func (s *Store) Materials(category string) []*Material {
	codes := s.materialOrder[category]
	out := make([]*Material, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.materials[category][code])
	}
	return out
}

// Equipment finds an equipment spec by category and code.
func (s *Store) Equipment(category, code string) (*Equipment, error) {
	e, ok := s.equipment[category][code]
	if !ok {
		return nil, fmt.Errorf("equipment %s/%s: %w", category, code, ErrNotFound)
	}
	return e, nil
}

// DefaultEquipment returns the first configured unit of a category, the one
// a calculator falls back to when the request names no machine.
func (s *Store) DefaultEquipment(category string) (*Equipment, error) {
	codes := s.equipmentOrder[category]
	if len(codes) == 0 {
		return nil, fmt.Errorf("equipment category %s: %w", category, ErrNotFound)
	}
	return s.equipment[category][codes[0]], nil
}

// EquipmentList lists a category in configured order.
func (s *Store) EquipmentList(category string) []*Equipment {
	codes := s.equipmentOrder[category]
	out := make([]*Equipment, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.equipment[category][code])
	}
	return out
}

// MaterialOptions is the front-end listing of a category: available
// materials only, reduced to the fields a selection form needs.
func (s *Store) MaterialOptions(category string) []map[string]any {
	out := make([]map[string]any, 0)
	for _, m := range s.Materials(category) {
		if !m.Available {
			continue
		}
		out = append(out, map[string]any{
			"code":      m.Code,
			"group":     m.Group,
			"name":      m.Name,
			"thickness": m.Thickness,
		})
	}
	return out
}

// EquipmentOptions is the front-end listing of an equipment category.
func (s *Store) EquipmentOptions(category string) []map[string]any {
	out := make([]map[string]any, 0)
	for _, e := range s.EquipmentList(category) {
		if !e.Available {
			continue
		}
		out = append(out, map[string]any{"code": e.Code, "name": e.Name})
	}
	return out
}

// Handle publishes the current Store snapshot. Reload builds a fresh Store
// and swaps the pointer; requests keep the snapshot they grabbed, so no
// calculation ever sees a half-updated catalog.
type Handle struct {
	current atomic.Pointer[Store]
}

// NewHandle wraps an initial snapshot.
func NewHandle(s *Store) *Handle {
	h := &Handle{}
	h.current.Store(s)
	return h
}

// Snapshot returns the currently published store.
func (h *Handle) Snapshot() *Store {
	return h.current.Load()
}

// Publish atomically replaces the published store.
func (h *Handle) Publish(s *Store) {
	h.current.Store(s)
}
