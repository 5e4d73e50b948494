package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"

	"capitalforge/pkg/contracts/domain"
)

// utf8BOM is stripped before CSV parsing; Excel prefixes it when saving
// CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV decodes CSV bytes into a raw table. Row 0 is the header row;
// ragged data rows are accepted and padded downstream. Cells arrive as
// text, with blank cells marked empty; numeric typing is the coercer's
// concern.
func ReadCSV(data []byte) (domain.RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return domain.RawTable{}, &FileReadError{Format: "csv", Err: err}
	}
	if len(records) == 0 {
		return domain.RawTable{}, &FileReadError{Format: "csv", Err: io.ErrUnexpectedEOF}
	}

	raw := domain.RawTable{
		Headers: records[0],
		Rows:    make([][]domain.Cell, 0, len(records)-1),
	}
	for _, record := range records[1:] {
		row := make([]domain.Cell, len(record))
		for i, v := range record {
			if v == "" {
				row[i] = domain.EmptyCell()
			} else {
				row[i] = domain.TextCell(v)
			}
		}
		raw.Rows = append(raw.Rows, row)
	}

	slog.Debug("decoded csv upload",
		slog.Int("columns", len(raw.Headers)),
		slog.Int("rows", len(raw.Rows)))
	return raw, nil
}
