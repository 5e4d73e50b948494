package exporter

import (
	"fmt"
	"math"

	"capitalforge/pkg/contracts/domain"
)

// formatFloat formats a float64 for CSV output with exactly 2 decimal
// places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}

// formatCell renders a cell for CSV output. Empty cells stay empty
// rather than becoming "0".
func formatCell(c domain.Cell) string {
	if v, ok := c.Float(); ok {
		return formatFloat(v)
	}
	return c.String()
}
