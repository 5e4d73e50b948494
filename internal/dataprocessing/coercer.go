package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"capitalforge/pkg/contracts/domain"
)

// numericCleaner strips thousands separators and stray spaces before a
// text cell is parsed.
var numericCleaner = strings.NewReplacer(",", "", " ", "")

// parseNumeric parses a cleaned text value, with empty treated as zero.
func parseNumeric(raw string) (float64, error) {
	cleaned := numericCleaner.Replace(raw)
	if cleaned == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cleaned, 64)
}

// CoerceStrict converts an allow-listed financial column to numeric in
// place. Columns holding any text cells take the text path: separators
// stripped, empty cells become 0, and the first unparseable cell fails
// the whole column with a ColumnCoercionError, leaving it untouched.
// Columns that are already numeric take the lenient re-coercion path
// where blanks become NaN markers instead of failing.
func CoerceStrict(col *domain.Column) error {
	textTyped := false
	for _, c := range col.Cells {
		if c.Kind == domain.KindText {
			textTyped = true
			break
		}
	}

	if !textTyped {
		for i, c := range col.Cells {
			if c.Kind == domain.KindEmpty {
				col.Cells[i] = domain.NumberCell(math.NaN())
			}
		}
		return nil
	}

	coerced := make([]domain.Cell, len(col.Cells))
	for i, c := range col.Cells {
		switch c.Kind {
		case domain.KindNumber:
			coerced[i] = c
		case domain.KindEmpty:
			coerced[i] = domain.NumberCell(0)
		case domain.KindText:
			v, err := parseNumeric(c.Text)
			if err != nil {
				return &ColumnCoercionError{Column: col.Name, Row: i, Value: c.Text}
			}
			coerced[i] = domain.NumberCell(v)
		}
	}
	col.Cells = coerced
	return nil
}

// CoerceLenient converts a monthly-grid column to numeric in place with
// no failure mode: unparseable text, blanks and NaN markers all become 0.
func CoerceLenient(col *domain.Column) {
	for i, c := range col.Cells {
		switch c.Kind {
		case domain.KindNumber:
			if math.IsNaN(c.Number) {
				col.Cells[i] = domain.NumberCell(0)
			}
		case domain.KindText:
			v, err := parseNumeric(c.Text)
			if err != nil {
				v = 0
			}
			col.Cells[i] = domain.NumberCell(v)
		default:
			col.Cells[i] = domain.NumberCell(0)
		}
	}
}
