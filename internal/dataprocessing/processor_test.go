package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitalforge/pkg/contracts/domain"
)

func TestProcessEndToEnd(t *testing.T) {
	raw := domain.RawTable{
		Headers: []string{
			"Projec tId", "Project Name", "Portfolio OBS Level",
			"All Prior Years A", "Business Allocation",
			"2025 01 A", "2025 02 A", "2025 01 F", "2025 01 CP",
			"Rate", "Rate",
		},
		Rows: [][]domain.Cell{
			{
				domain.TextCell("P-001"), domain.TextCell("Alpha"), domain.TextCell("Infrastructure"),
				domain.TextCell("1,000"), domain.TextCell("5,000"),
				domain.NumberCell(100), domain.NumberCell(200), domain.TextCell("bad"), domain.EmptyCell(),
				domain.NumberCell(0.5), domain.NumberCell(0.7),
			},
			{
				domain.TextCell("P-002"), domain.TextCell("Beta"), domain.TextCell("Digital"),
				domain.TextCell(""), domain.TextCell("2,500.25"),
				domain.NumberCell(10), domain.EmptyCell(), domain.NumberCell(30), domain.NumberCell(40),
				domain.NumberCell(1.5), domain.NumberCell(1.7),
			},
		},
	}

	table, report, err := Process(raw)
	require.NoError(t, err)
	require.NotNil(t, report)

	// Header resolution.
	final, ok := report.Resolution("Projec tId")
	require.True(t, ok)
	assert.Equal(t, "PROJECT_ID", final)

	names := table.ColumnNames()
	assert.Contains(t, names, "RATE")
	assert.Contains(t, names, "RATE_1")
	assert.NotContains(t, names, "Rate")

	// Strict coercion of scalar financial columns.
	prior, ok := table.Column(FieldPriorYearsActuals)
	require.True(t, ok)
	v, _ := prior.Cells[0].Float()
	assert.Equal(t, 1000.0, v)
	v, _ = prior.Cells[1].Float()
	assert.Equal(t, 0.0, v) // empty text cell coerces to zero

	// Lenient coercion of the monthly grid: "bad" and blank become 0.
	forecast, ok := table.Column("2025_01_F")
	require.True(t, ok)
	v, _ = forecast.Cells[0].Float()
	assert.Equal(t, 0.0, v)

	// Derived totals.
	assertValues(t, mustColumn(t, table, FieldTotalActuals), 300, 10)
	assertValues(t, mustColumn(t, table, FieldTotalForecasts), 0, 30)
	assertValues(t, mustColumn(t, table, FieldTotalCapitalPlan), 0, 40)
	assertValues(t, mustColumn(t, table, FieldTotalActualsToDate), 1300, 10)

	// Missing grid months show up as unresolved expectations; supplied
	// ones do not.
	assert.Contains(t, report.Unresolved, "2025_03_A")
	assert.NotContains(t, report.Unresolved, "2025_01_A")
	assert.Empty(t, report.Warnings)
}

func TestProcessCoercionWarning(t *testing.T) {
	raw := domain.RawTable{
		Headers: []string{"Current EAC", "All Prior Years Actuals"},
		Rows: [][]domain.Cell{
			{domain.TextCell("oops"), domain.TextCell("10")},
		},
	}

	table, report, err := Process(raw)
	require.NoError(t, err)

	// The failed column keeps its text form and the failure is surfaced.
	eac, ok := table.Column(FieldCurrentEAC)
	require.True(t, ok)
	assert.Equal(t, domain.KindText, eac.Cells[0].Kind)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], FieldCurrentEAC)
}

func TestProcessMissingRequiredField(t *testing.T) {
	raw := domain.RawTable{
		Headers: []string{"Project Name", "2025 01 A"},
		Rows: [][]domain.Cell{
			{domain.TextCell("Alpha"), domain.NumberCell(42)},
		},
	}

	table, report, err := Process(raw)
	require.NoError(t, err)

	// Policy: default prior years to zero and warn, not abort.
	assertValues(t, mustColumn(t, table, FieldTotalActualsToDate), 42)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], FieldPriorYearsActuals)
	assert.Contains(t, report.Unresolved, FieldPriorYearsActuals)
}

func TestProcessRaggedRows(t *testing.T) {
	raw := domain.RawTable{
		Headers: []string{"Project Name", "Business Allocation"},
		Rows: [][]domain.Cell{
			{domain.TextCell("Alpha"), domain.TextCell("100")},
			{domain.TextCell("Beta")}, // short row padded with empty
		},
	}

	table, _, err := Process(raw)
	require.NoError(t, err)
	assertValues(t, mustColumn(t, table, FieldBusinessAllocation), 100, 0)
}

func TestProcessNoHeaders(t *testing.T) {
	_, _, err := Process(domain.RawTable{})
	require.Error(t, err)
}

func mustColumn(t *testing.T, table *domain.Table, name string) *domain.Column {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok, "column %s absent", name)
	return col
}
