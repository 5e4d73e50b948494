package dataprocessing

import "fmt"

// ColumnCoercionError reports a cell in a strictly coerced financial
// column that could not be parsed as a number. The column is left in its
// text form; callers surface the error as a per-column warning rather
// than aborting the upload.
type ColumnCoercionError struct {
	Column string
	Row    int
	Value  string
}

func (e *ColumnCoercionError) Error() string {
	return fmt.Sprintf("column %s: unparseable value %q at row %d", e.Column, e.Value, e.Row)
}

// MissingRequiredFieldError reports a field the aggregator depends on
// that is absent after header resolution. The pipeline defaults the
// field to zero and carries this as a warning.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field %s is absent after header resolution", e.Field)
}
