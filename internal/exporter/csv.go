package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"capitalforge/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize the file as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter writes clean tables as CSV.
type CSVExporter struct {
	logger *slog.Logger
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{logger: logger.With("component", "csv_exporter")}
}

// WriteOptions configures CSV output.
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write streams the table as CSV: resolved column names as the header
// row, then one record per data row. Numeric cells render with two
// decimals, empty cells stay blank.
func (e *CSVExporter) Write(w io.Writer, t *domain.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	columns := t.Columns()
	record := make([]string, len(columns))
	for row := 0; row < t.RowCount(); row++ {
		for i, col := range columns {
			record[i] = formatCell(col.Cells[row])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to a CSV file, creating parent directories
// as needed. The file is always BOM-prefixed.
func (e *CSVExporter) WriteFile(path string, t *domain.Table) error {
	e.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("rows", t.RowCount()),
		slog.Int("columns", t.ColumnCount()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := e.Write(file, t, WriteOptions{BOMPrefix: true}); err != nil {
		return err
	}
	return file.Close()
}
