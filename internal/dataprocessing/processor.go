package dataprocessing

import (
	"fmt"
	"log/slog"

	"capitalforge/pkg/contracts/domain"
)

// Process runs one uploaded raw table through the full pipeline:
// normalize headers, resolve duplicates, coerce financial columns,
// append derived totals. It is pure with respect to package state; the
// input RawTable is not modified.
//
// Coercion failures and a missing ALL_PRIOR_YEARS_ACTUALS field are
// recoverable: the offending column keeps its text form (or the field
// defaults to zero) and the condition is recorded in the resolution
// report's warnings. The returned error is reserved for structurally
// unusable input (no header labels at all).
func Process(raw domain.RawTable) (*domain.Table, *domain.ResolutionReport, error) {
	if len(raw.Headers) == 0 {
		return nil, nil, fmt.Errorf("raw table has no header labels")
	}

	normalized := NormalizeHeaders(raw.Headers)
	resolved := ResolveDuplicates(normalized)

	report := &domain.ResolutionReport{
		Columns: make([]domain.ColumnResolution, len(raw.Headers)),
	}

	columns := make([]*domain.Column, len(resolved))
	for i, name := range resolved {
		columns[i] = &domain.Column{
			Name:       name,
			Original:   raw.Headers[i],
			Recognized: IsRecognized(name),
			Cells:      columnCells(raw.Rows, i),
		}
		report.Columns[i] = domain.ColumnResolution{
			Original:   raw.Headers[i],
			Final:      name,
			Recognized: columns[i].Recognized,
		}
	}

	table, err := domain.NewTable(columns)
	if err != nil {
		// Possible only when a synthesized duplicate name collides with
		// a pre-existing distinct label.
		return nil, nil, fmt.Errorf("building table: %w", err)
	}

	// Strict pass over allow-listed scalar financial columns. A failed
	// column stays text and is reported, not fatal.
	for _, col := range table.Columns() {
		if !IsFinancialScalar(col.Name) {
			continue
		}
		if cerr := CoerceStrict(col); cerr != nil {
			slog.Warn("financial column left uncoerced",
				slog.String("column", col.Name),
				slog.String("error", cerr.Error()))
			report.Warnings = append(report.Warnings, cerr.Error())
		}
	}

	// Lenient pass over the monthly grid: never fails, unparseable
	// cells become 0.
	for _, col := range table.Columns() {
		if IsMonthly(col.Name) {
			CoerceLenient(col)
		}
	}

	derived, missing := Aggregate(table)
	if missing != nil {
		slog.Warn("required field defaulted to zero",
			slog.String("field", missing.Field))
		report.Warnings = append(report.Warnings, missing.Error())
	}

	table, err = domain.NewTable(append(table.Columns(), derived...))
	if err != nil {
		return nil, nil, fmt.Errorf("appending derived columns: %w", err)
	}

	report.Unresolved = unresolvedFields(table)
	return table, report, nil
}

// columnCells extracts column idx from row-major data, padding short
// rows with empty cells so every column ends up the same length.
func columnCells(rows [][]domain.Cell, idx int) []domain.Cell {
	cells := make([]domain.Cell, len(rows))
	for i, row := range rows {
		if idx < len(row) {
			cells[i] = row[idx]
		} else {
			cells[i] = domain.EmptyCell()
		}
	}
	return cells
}

// unresolvedFields lists the expected catalog fields the table never
// received, for the caller to warn the user about.
func unresolvedFields(t *domain.Table) []string {
	var missing []string
	for _, name := range ExpectedFields() {
		if _, ok := t.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
