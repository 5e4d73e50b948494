package ingest

import (
	"errors"
	"fmt"
)

// errEmptyUpload marks an upload with no decodable bytes.
var errEmptyUpload = errors.New("upload is empty")

// FileReadError reports that uploaded bytes could not be decoded as the
// declared format. The pipeline aborts; no partial table is returned.
type FileReadError struct {
	Format string
	Err    error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("cannot decode upload as %s: %v", e.Format, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// NoHeaderFoundError reports a spreadsheet sheet with no row containing a
// non-empty text cell to serve as the header row.
type NoHeaderFoundError struct {
	Sheet string
}

func (e *NoHeaderFoundError) Error() string {
	return fmt.Sprintf("sheet %q has no header row", e.Sheet)
}
