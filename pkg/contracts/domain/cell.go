package domain

import (
	"math"
	"strconv"
)

// CellKind discriminates the three value shapes a source cell can carry.
// Cells arrive from CSV and spreadsheet transports as heterogeneous
// text/number/blank values; every coercion rule downstream switches on
// this tag rather than inspecting runtime types.
type CellKind int

const (
	// KindEmpty marks a blank cell.
	KindEmpty CellKind = iota
	// KindText marks a cell holding raw text.
	KindText
	// KindNumber marks a cell holding a parsed floating-point value.
	KindNumber
)

// Cell is a tagged variant over {Text, Number, Empty}.
type Cell struct {
	Kind   CellKind `json:"kind"`
	Text   string   `json:"text,omitempty"`
	Number float64  `json:"number,omitempty"`
}

// EmptyCell returns a blank cell.
func EmptyCell() Cell {
	return Cell{Kind: KindEmpty}
}

// TextCell returns a text cell. An empty string still counts as text;
// transports decide whether a blank source cell is Empty or Text("").
func TextCell(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(v float64) Cell {
	return Cell{Kind: KindNumber, Number: v}
}

// IsEmpty reports whether the cell is blank, treating whitespace-free
// empty text the same as a true blank.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || (c.Kind == KindText && c.Text == "")
}

// Float returns the numeric value of the cell and whether one is present.
// Text cells never satisfy this; callers wanting text-to-number coercion
// go through the type coercer instead.
func (c Cell) Float() (float64, bool) {
	if c.Kind != KindNumber {
		return 0, false
	}
	return c.Number, true
}

// String renders the cell for display and CSV export. NaN numbers render
// as the empty string so exports stay Excel-friendly.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		if math.IsNaN(c.Number) {
			return ""
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}
