package exporter

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitalforge/pkg/contracts/domain"
)

func sampleTable(t *testing.T) *domain.Table {
	t.Helper()
	table, err := domain.NewTable([]*domain.Column{
		{Name: "PROJECT_NAME", Cells: []domain.Cell{
			domain.TextCell("Alpha"),
			domain.TextCell("Beta"),
		}},
		{Name: "BUSINESS_ALLOCATION", Cells: []domain.Cell{
			domain.NumberCell(1000),
			domain.NumberCell(13.4),
		}},
		{Name: "CURRENT_EAC", Cells: []domain.Cell{
			domain.NumberCell(math.NaN()),
			domain.EmptyCell(),
		}},
	})
	require.NoError(t, err)
	return table
}

func TestWrite_RendersHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVExporter(nil).Write(&buf, sampleTable(t), WriteOptions{})
	require.NoError(t, err)

	want := "PROJECT_NAME,BUSINESS_ALLOCATION,CURRENT_EAC\n" +
		"Alpha,1000.00,\n" +
		"Beta,13.40,\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_BOMPrefix(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVExporter(nil).Write(&buf, sampleTable(t), WriteOptions{BOMPrefix: true})
	require.NoError(t, err)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(out), "PROJECT_NAME")
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "clean.csv")
	err := NewCSVExporter(nil).WriteFile(path, sampleTable(t))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(data), "Alpha,1000.00")
}
