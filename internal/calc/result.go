package calc

import "github.com/printworks/quoter/internal/layout"

// MaterialUsage is one consumed stock line of a calculation.
type MaterialUsage struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Size     *layout.Size `json:"size_mm,omitempty"`
	Quantity float64      `json:"quantity"`
	Unit     string       `json:"unit"`
}

// Result is the quote returned by every calculator. Cost is the internal
// production cost, Price the quoted customer price after margins.
type Result struct {
	Cost      float64         `json:"cost"`
	Price     float64         `json:"price"`
	UnitPrice float64         `json:"unit_price"`
	TimeHours float64         `json:"time_hours"`
	TimeReady float64         `json:"time_ready"`
	WeightKg  float64         `json:"weight_kg"`
	Materials []MaterialUsage `json:"materials"`
	ShareURL  string          `json:"share_url,omitempty"`
}
