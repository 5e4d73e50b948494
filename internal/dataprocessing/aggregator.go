package dataprocessing

import (
	"capitalforge/pkg/contracts/domain"
)

// Aggregate computes the derived total columns for a resolved, coerced
// table and returns them in append order:
//
//	TOTAL_2025_ACTUALS, TOTAL_2025_FORECASTS, TOTAL_2025_CAPITAL_PLAN,
//	TOTAL_ACTUALS_TO_DATE
//
// Each yearly total is the row-wise sum over the recognized columns of
// its monthly group, 0 when the group is empty. TOTAL_ACTUALS_TO_DATE
// adds ALL_PRIOR_YEARS_ACTUALS to the actuals total; when that field is
// absent it is defaulted to zero and a MissingRequiredFieldError is
// returned alongside the columns for the caller to surface as a warning.
func Aggregate(t *domain.Table) ([]*domain.Column, *MissingRequiredFieldError) {
	rows := t.RowCount()

	actuals := sumGroup(t, IsMonthlyActual)
	forecasts := sumGroup(t, IsMonthlyForecast)
	plans := sumGroup(t, IsMonthlyCapitalPlan)

	toDate := make([]float64, rows)
	var missing *MissingRequiredFieldError
	prior, ok := t.Column(FieldPriorYearsActuals)
	if !ok {
		missing = &MissingRequiredFieldError{Field: FieldPriorYearsActuals}
		copy(toDate, actuals)
	} else {
		for i := 0; i < rows; i++ {
			v, _ := prior.Cells[i].Float()
			toDate[i] = v + actuals[i]
		}
	}

	derived := []*domain.Column{
		derivedColumn(FieldTotalActuals, actuals),
		derivedColumn(FieldTotalForecasts, forecasts),
		derivedColumn(FieldTotalCapitalPlan, plans),
		derivedColumn(FieldTotalActualsToDate, toDate),
	}
	return derived, missing
}

// sumGroup sums, per row, every column whose resolved name the match
// function accepts.
func sumGroup(t *domain.Table, match func(string) bool) []float64 {
	sums := make([]float64, t.RowCount())
	for _, col := range t.Columns() {
		if !match(col.Name) {
			continue
		}
		for i, c := range col.Cells {
			if v, ok := c.Float(); ok {
				sums[i] += v
			}
		}
	}
	return sums
}

func derivedColumn(name string, values []float64) *domain.Column {
	cells := make([]domain.Cell, len(values))
	for i, v := range values {
		cells[i] = domain.NumberCell(v)
	}
	return &domain.Column{
		Name:       name,
		Original:   name,
		Recognized: true,
		Cells:      cells,
	}
}
