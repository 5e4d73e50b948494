package domain

import (
	"fmt"
)

// RawTable is the transport-level view of an uploaded file: the header row
// exactly as read, plus row-major cell data. Headers are order-significant
// and not required to be unique; rows may be ragged (short rows are padded
// with empty cells when the table is built).
type RawTable struct {
	Headers []string `json:"headers"`
	Rows    [][]Cell `json:"rows"`
}

// Column is a named, ordered sequence of cells inside a Table.
type Column struct {
	// Name is the resolved canonical name, unique within its Table
	// (possibly duplicate-suffixed, e.g. RATE_1).
	Name string `json:"name"`
	// Original is the raw header label the column was read under.
	Original string `json:"original"`
	// Recognized reports whether the resolved name matches a catalog
	// field or monthly-grid pattern.
	Recognized bool `json:"recognized"`
	Cells      []Cell `json:"cells"`
}

// Table is an ordered set of equally sized, uniquely named columns.
// It is built once per upload, transformed in place by the processing
// stages, and handed to callers read-only: the accessor surface exposes
// no mutation path.
type Table struct {
	columns []*Column
	byName  map[string]int
	rows    int
}

// NewTable builds a Table from resolved columns, enforcing the two Table
// invariants: equal row counts and unique column names.
func NewTable(columns []*Column) (*Table, error) {
	t := &Table{
		columns: columns,
		byName:  make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.byName[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		t.byName[col.Name] = i
		if i == 0 {
			t.rows = len(col.Cells)
			continue
		}
		if len(col.Cells) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, len(col.Cells), t.rows)
		}
	}
	return t, nil
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Columns returns the ordered columns. The slice is a copy; the Column
// values are shared, so callers must treat them as read-only.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the resolved names in column order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks a column up by its resolved canonical name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Cell returns the cell at (column name, row index). Missing columns and
// out-of-range rows read as empty.
func (t *Table) Cell(name string, row int) Cell {
	col, ok := t.Column(name)
	if !ok || row < 0 || row >= len(col.Cells) {
		return EmptyCell()
	}
	return col.Cells[row]
}

// FilterEqual returns a new Table holding only the rows whose cell in the
// named column renders equal to value. Filtering on a missing column
// yields an empty table with the same column set.
func (t *Table) FilterEqual(name, value string) *Table {
	keep := make([]int, 0, t.rows)
	if col, ok := t.Column(name); ok {
		for i, c := range col.Cells {
			if c.String() == value {
				keep = append(keep, i)
			}
		}
	}
	return t.selectRows(keep)
}

func (t *Table) selectRows(rows []int) *Table {
	columns := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cells := make([]Cell, len(rows))
		for j, r := range rows {
			cells[j] = col.Cells[r]
		}
		columns[i] = &Column{
			Name:       col.Name,
			Original:   col.Original,
			Recognized: col.Recognized,
			Cells:      cells,
		}
	}
	out, err := NewTable(columns)
	if err != nil {
		// Row selection cannot introduce duplicate names or ragged
		// columns; reaching here means the source table was invalid.
		panic(err)
	}
	return out
}
