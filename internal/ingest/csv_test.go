package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitalforge/pkg/contracts/domain"
)

func TestReadCSV(t *testing.T) {
	data := []byte("Project Name,Business Allocation,2025 01 A\nAlpha,\"1,200\",100\nBeta,,200\n")

	raw, err := ReadCSV(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Project Name", "Business Allocation", "2025 01 A"}, raw.Headers)
	require.Len(t, raw.Rows, 2)

	assert.Equal(t, domain.TextCell("Alpha"), raw.Rows[0][0])
	assert.Equal(t, domain.TextCell("1,200"), raw.Rows[0][1])
	assert.Equal(t, domain.EmptyCell(), raw.Rows[1][1])
}

func TestReadCSVStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("A,B\n1,2\n")...)

	raw, err := ReadCSV(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, raw.Headers)
}

func TestReadCSVRaggedRows(t *testing.T) {
	raw, err := ReadCSV([]byte("A,B,C\n1,2\n1,2,3,4\n"))
	require.NoError(t, err)
	require.Len(t, raw.Rows, 2)
	assert.Len(t, raw.Rows[0], 2)
	assert.Len(t, raw.Rows[1], 4)
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV([]byte("A,B\nbad\"quote,2\n"))
	require.Error(t, err)

	var ferr *FileReadError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "csv", ferr.Format)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(nil)
	var ferr *FileReadError
	require.ErrorAs(t, err, &ferr)
}
