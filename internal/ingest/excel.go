package ingest

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"capitalforge/pkg/contracts/domain"
)

// ReadExcel decodes spreadsheet bytes into a raw table. When sheet is
// empty the first sheet of the workbook is used. Headers are not assumed
// to sit in row 0: rows are scanned top-down and the first row holding at
// least one non-empty text cell becomes the header row; everything below
// it is data.
func ReadExcel(data []byte, sheet string) (domain.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.RawTable{}, &FileReadError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, &FileReadError{Format: "xlsx", Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.RawTable{}, &FileReadError{Format: "xlsx", Err: err}
	}

	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		return domain.RawTable{}, &NoHeaderFoundError{Sheet: sheet}
	}

	raw := domain.RawTable{
		Headers: rows[headerRow],
		Rows:    make([][]domain.Cell, 0, len(rows)-headerRow-1),
	}
	for _, r := range rows[headerRow+1:] {
		row := make([]domain.Cell, len(r))
		for i, v := range r {
			row[i] = sheetCell(v)
		}
		raw.Rows = append(raw.Rows, row)
	}

	slog.Debug("decoded spreadsheet upload",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerRow),
		slog.Int("rows", len(raw.Rows)))
	return raw, nil
}

// findHeaderRow returns the index of the first row containing a
// non-empty text cell, or -1 when no such row exists. Rows made up
// solely of numbers or blanks are skipped; dirty exports often carry a
// few of those above the real header.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return i
			}
		}
	}
	return -1
}

// sheetCell maps one spreadsheet cell to the tagged cell variant.
// excelize renders every cell as a string; values that parse cleanly as
// numbers are tagged numeric so the coercer's numeric path applies to
// spreadsheet-typed columns.
func sheetCell(v string) domain.Cell {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return domain.EmptyCell()
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return domain.NumberCell(n)
	}
	return domain.TextCell(v)
}
