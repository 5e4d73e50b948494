package ingest

import (
	"bytes"
	"path/filepath"
	"strings"

	"capitalforge/pkg/contracts/domain"
)

// Format identifies a supported upload format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "xlsx"
	FormatUnknown Format = ""
)

// xlsx files are zip archives; the magic bytes are enough to tell them
// apart from text.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// DetectFormat picks the upload format from the filename extension,
// falling back to content sniffing when the extension is missing or
// unfamiliar.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatExcel
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatExcel
	}
	if len(data) > 0 {
		return FormatCSV
	}
	return FormatUnknown
}

// Read decodes an upload according to its detected format.
func Read(filename string, data []byte) (domain.RawTable, error) {
	switch DetectFormat(filename, data) {
	case FormatExcel:
		return ReadExcel(data, "")
	case FormatCSV:
		return ReadCSV(data)
	default:
		return domain.RawTable{}, &FileReadError{Format: "unknown", Err: errEmptyUpload}
	}
}
