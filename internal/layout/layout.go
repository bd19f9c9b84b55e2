// Package layout computes how many rectangular items fit on a sheet or a
// roll. It is a deterministic grid heuristic, not an optimal packer: items
// are tiled in rows and columns, the only freedom searched is a 90° rotation
// of the item. That under-counts versus true nesting for some aspect ratios,
// which is accepted — every price in the shop has been quoted against this
// grid for years.
package layout

import "math"

// Size is a width/height pair in millimeters. A roll is encoded with H == 0,
// meaning unbounded length.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// IsRoll reports whether the size denotes roll stock.
func (s Size) IsRoll() bool { return s.H == 0 }

// Rotated returns the size with sides swapped.
func (s Size) Rotated() Size { return Size{W: s.H, H: s.W} }

// Margins are unusable strips along the sheet edges, in millimeters.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Horizontal is the total width lost to margins.
func (m Margins) Horizontal() float64 { return m.Left + m.Right }

// Vertical is the total height lost to margins.
func (m Margins) Vertical() float64 { return m.Top + m.Bottom }

// Sheet is the result of packing onto a bounded sheet.
// The zero value is the "does not fit" sentinel.
type Sheet struct {
	Count int `json:"num"`
	Cols  int `json:"cols"`
	Rows  int `json:"rows"`
}

// Roll is the result of packing onto an unbounded-length roll. Count equals
// the requested quantity when a packing exists; Length is the consumed roll
// length in millimeters. The zero value means "does not fit".
type Roll struct {
	Count  int     `json:"num"`
	Length float64 `json:"length"`
}

// gridFit tiles the item into the usable area in one orientation.
func gridFit(areaW, areaH, itemW, itemH, gap float64) Sheet {
	if areaW <= 0 || areaH <= 0 {
		return Sheet{}
	}
	stepW := itemW + gap
	stepH := itemH + gap
	if stepW <= 0 || stepH <= 0 {
		return Sheet{}
	}
	cols := int(math.Floor((areaW + gap) / stepW))
	rows := int(math.Floor((areaH + gap) / stepH))
	if cols <= 0 || rows <= 0 {
		return Sheet{}
	}
	return Sheet{Count: cols * rows, Cols: cols, Rows: rows}
}

// OnSheet packs item onto sheet, trying the item as-is and rotated 90°.
// Margins shrink the usable area, gap is the spacing between items. The
// orientation with the larger count wins; a tie keeps the unrotated one.
func OnSheet(item, sheet Size, m Margins, gap float64) Sheet {
	areaW := sheet.W - m.Horizontal()
	areaH := sheet.H - m.Vertical()
	if areaW <= 0 || areaH <= 0 {
		return Sheet{}
	}

	plain := gridFit(areaW, areaH, item.W, item.H, gap)
	rotated := gridFit(areaW, areaH, item.H, item.W, gap)

	if rotated.Count > plain.Count {
		return rotated
	}
	return plain
}

// rollLength is the length consumed by quantity items laid in lanes across
// the roll width, laneW across and itemLen along the roll. Returns -1 when
// the lane does not fit the width.
func rollLength(quantity int, laneW, itemLen, rollW, gap float64) float64 {
	if laneW > rollW {
		return -1
	}
	step := laneW + gap
	if step <= 0 {
		return -1
	}
	lanes := int(math.Floor((rollW + gap) / step))
	if lanes <= 0 {
		return -1
	}
	rows := int(math.Ceil(float64(quantity) / float64(lanes)))
	return float64(rows)*itemLen + math.Max(0, float64(rows-1))*gap
}

// OnRoll packs quantity items onto a roll of the given width. Both
// orientations are tried; the one consuming less length wins. Unlike the
// sheet case the objective is minimal length, because roll length is what is
// paid for, not area utilization.
func OnRoll(quantity int, item, roll Size, gap float64) Roll {
	if quantity <= 0 || roll.W <= 0 {
		return Roll{}
	}

	plain := rollLength(quantity, item.W, item.H, roll.W, gap)
	rotated := rollLength(quantity, item.H, item.W, roll.W, gap)

	best := plain
	if best < 0 || (rotated >= 0 && rotated < best) {
		best = rotated
	}
	if best < 0 {
		return Roll{}
	}
	return Roll{Count: quantity, Length: best}
}

// Orientation selects which side of the item runs across the roll width in
// RollLength.
type Orientation int

const (
	// ShortAcross lays the item's short side across the roll width.
	ShortAcross Orientation = -1
	// BestOf tries both orientations and keeps the shorter consumed length.
	BestOf Orientation = 0
	// LongAcross lays the item's long side across the roll width.
	LongAcross Orientation = 1
)

// RollLength is the directional roll query used when a caller compares
// packing strategies explicitly instead of taking OnRoll's best-of-two.
// It returns the consumed length in millimeters, or 0 when the chosen
// orientation does not fit the usable width.
func RollLength(quantity int, item Size, usableWidth, gap float64, o Orientation) float64 {
	if quantity <= 0 || usableWidth <= 0 {
		return 0
	}
	short := math.Min(item.W, item.H)
	long := math.Max(item.W, item.H)

	var length float64 = -1
	switch o {
	case ShortAcross:
		length = rollLength(quantity, short, long, usableWidth, gap)
	case LongAcross:
		length = rollLength(quantity, long, short, usableWidth, gap)
	default:
		a := rollLength(quantity, short, long, usableWidth, gap)
		b := rollLength(quantity, long, short, usableWidth, gap)
		length = a
		if length < 0 || (b >= 0 && b < length) {
			length = b
		}
	}
	if length < 0 {
		return 0
	}
	return length
}
