package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitalforge/internal/dataprocessing"
)

const fixtureCSV = `Project Name,Portfolio OBS Level,Sub Portfolio OBS Level,Project Manager,BRS Classification,Business Allocation,Current EAC,All Prior Years Actuals,2025 01 A,2025 02 A,2025 01 F,2025 01 CP
Alpha,Infrastructure,Water,Jordan,Growth,"1,000",1200,500,100,50,80,90
Beta,Infrastructure,Roads,Riley,Sustain,2000,2500,0,200,100,150,120
Gamma,Digital,Apps,Jordan,Growth,3500,3100,250,300,150,210,180
`

func testService(t *testing.T) (*PortfolioService, string) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := NewPortfolioService(NewSnapshotStore(), logger)

	snap, cached, err := svc.CreateSnapshot(context.Background(), "projects.csv", []byte(fixtureCSV))
	require.NoError(t, err)
	require.False(t, cached)
	return svc, snap.ID
}

func TestCreateSnapshot_MemoizesByContent(t *testing.T) {
	svc, id := testService(t)

	again, cached, err := svc.CreateSnapshot(context.Background(), "renamed.csv", []byte(fixtureCSV))
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, id, again.ID)
}

func TestCreateSnapshot_RejectsEmptyUpload(t *testing.T) {
	svc, _ := testService(t)

	_, _, err := svc.CreateSnapshot(context.Background(), "empty.csv", nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestMetrics_Unfiltered(t *testing.T) {
	svc, id := testService(t)

	m, err := svc.Metrics(context.Background(), id, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, m.ProjectCount)
	assert.InDelta(t, 6500, m.BusinessAllocation, 1e-9)
	assert.InDelta(t, 6800, m.CurrentEAC, 1e-9)
	assert.InDelta(t, 1650, m.ActualsToDate, 1e-9)
}

func TestMetrics_Filtered(t *testing.T) {
	svc, id := testService(t)

	m, err := svc.Metrics(context.Background(), id, Filter{Portfolio: "Infrastructure"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.ProjectCount)
	assert.InDelta(t, 3000, m.BusinessAllocation, 1e-9)

	m, err = svc.Metrics(context.Background(), id, Filter{Manager: "Jordan"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.ProjectCount)
	assert.InDelta(t, 4500, m.BusinessAllocation, 1e-9)
}

func TestMetrics_AllSentinelMeansNoFilter(t *testing.T) {
	svc, id := testService(t)

	m, err := svc.Metrics(context.Background(), id, Filter{
		Portfolio:      FilterAll,
		SubPortfolio:   FilterAll,
		Manager:        FilterAll,
		Classification: FilterAll,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, m.ProjectCount)
}

func TestMetrics_UnknownSnapshot(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Metrics(context.Background(), "deadbeef", Filter{})
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestProjects_CarriesDerivedTotals(t *testing.T) {
	svc, id := testService(t)

	rows, err := svc.Projects(context.Background(), id, Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	alpha := rows[0]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, "Infrastructure", alpha.Portfolio)
	assert.Equal(t, "Jordan", alpha.Manager)
	assert.InDelta(t, 1000, alpha.BusinessAllocation, 1e-9)
	assert.InDelta(t, 150, alpha.TotalActuals, 1e-9)
	assert.InDelta(t, 650, alpha.ActualsToDate, 1e-9)
}

func TestTrends_SumsGridByMonth(t *testing.T) {
	svc, id := testService(t)

	points, err := svc.Trends(context.Background(), id, Filter{})
	require.NoError(t, err)
	require.Len(t, points, 12)

	jan := points[0]
	assert.Equal(t, 1, jan.Month)
	assert.InDelta(t, 600, jan.Actuals, 1e-9)
	assert.InDelta(t, 440, jan.Forecasts, 1e-9)
	assert.InDelta(t, 390, jan.CapitalPlan, 1e-9)

	feb := points[1]
	assert.InDelta(t, 300, feb.Actuals, 1e-9)
	assert.Zero(t, feb.Forecasts)

	for _, p := range points[2:] {
		assert.Zero(t, p.Actuals)
	}
}

func TestVariance_ReportsMissingColumns(t *testing.T) {
	svc, id := testService(t)

	v, err := svc.Variance(context.Background(), id, Filter{})
	require.NoError(t, err)
	require.Len(t, v.Points, 3)
	assert.Zero(t, v.Points[0].ForecastVsBA)
	assert.ElementsMatch(t, []string{
		dataprocessing.FieldQEForecastVsPlan,
		dataprocessing.FieldForecastVsBA,
	}, v.MissingColumns)
}

func TestAllocation_GroupsAndSorts(t *testing.T) {
	svc, id := testService(t)

	slices, err := svc.Allocation(context.Background(), id, DimensionPortfolio, Filter{})
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, AllocationSlice{Label: "Digital", Amount: 3500}, slices[0])
	assert.Equal(t, AllocationSlice{Label: "Infrastructure", Amount: 3000}, slices[1])
}

func TestAllocation_DefaultDimensionIsPortfolio(t *testing.T) {
	svc, id := testService(t)

	slices, err := svc.Allocation(context.Background(), id, "", Filter{})
	require.NoError(t, err)
	assert.Len(t, slices, 2)
}

func TestAllocation_UnknownDimension(t *testing.T) {
	svc, id := testService(t)

	_, err := svc.Allocation(context.Background(), id, "region", Filter{})
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestDetail_SingleProject(t *testing.T) {
	svc, id := testService(t)

	d, err := svc.Detail(context.Background(), id, "Alpha")
	require.NoError(t, err)

	assert.Equal(t, "Alpha", d.Identity[dataprocessing.FieldProjectName])
	assert.Equal(t, "Infrastructure", d.Identity[dataprocessing.FieldPortfolioLevel])
	assert.InDelta(t, 1000, d.Scalars[dataprocessing.FieldBusinessAllocation], 1e-9)
	assert.InDelta(t, 650, d.Scalars[dataprocessing.FieldTotalActualsToDate], 1e-9)

	require.Len(t, d.Monthly, 12)
	assert.InDelta(t, 100, d.Monthly[0].Actuals, 1e-9)
	assert.InDelta(t, 50, d.Monthly[1].Actuals, 1e-9)
}

func TestDetail_UnknownProject(t *testing.T) {
	svc, id := testService(t)

	_, err := svc.Detail(context.Background(), id, "Omega")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestFacets_DistinctSortedValues(t *testing.T) {
	svc, id := testService(t)

	facets, err := svc.Facets(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Digital", "Infrastructure"}, facets.Portfolios)
	assert.Equal(t, []string{"Jordan", "Riley"}, facets.Managers)
	assert.Equal(t, []string{"Growth", "Sustain"}, facets.Classifications)
}

func TestResolution_SurfacesReport(t *testing.T) {
	svc, id := testService(t)

	report, err := svc.Resolution(context.Background(), id)
	require.NoError(t, err)

	name, ok := report.Resolution("Project Name")
	require.True(t, ok)
	assert.Equal(t, dataprocessing.FieldProjectName, name)
	assert.NotEmpty(t, report.Unresolved)
}
