package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"capitalforge/internal/dataprocessing"
	"capitalforge/internal/ingest"
	"capitalforge/pkg/contracts/domain"
)

// FilterAll is the sentinel facet value meaning "do not filter".
const FilterAll = "All"

// Filter narrows queries to matching project rows. Empty or "All"
// values leave the corresponding dimension unfiltered.
type Filter struct {
	Portfolio      string `json:"portfolio"`
	SubPortfolio   string `json:"sub_portfolio"`
	Manager        string `json:"manager"`
	Classification string `json:"classification"`
}

// KeyMetrics are the headline portfolio totals.
type KeyMetrics struct {
	ProjectCount       int     `json:"project_count"`
	BusinessAllocation float64 `json:"business_allocation"`
	CurrentEAC         float64 `json:"current_eac"`
	ActualsToDate      float64 `json:"actuals_to_date"`
}

// MonthlyPoint is one month of the trend series, summed across rows and
// across duplicate grid columns.
type MonthlyPoint struct {
	Month          int     `json:"month"`
	Actuals        float64 `json:"actuals"`
	Forecasts      float64 `json:"forecasts"`
	CapitalPlan    float64 `json:"capital_plan"`
	AdjustedBudget float64 `json:"adjusted_budget"`
}

// ProjectSummary is one project row with its scalar and derived totals.
type ProjectSummary struct {
	Name               string  `json:"name"`
	Portfolio          string  `json:"portfolio"`
	SubPortfolio       string  `json:"sub_portfolio"`
	Manager            string  `json:"manager"`
	Classification     string  `json:"classification"`
	BusinessAllocation float64 `json:"business_allocation"`
	CurrentEAC         float64 `json:"current_eac"`
	TotalActuals       float64 `json:"total_actuals"`
	TotalForecasts     float64 `json:"total_forecasts"`
	TotalCapitalPlan   float64 `json:"total_capital_plan"`
	ActualsToDate      float64 `json:"actuals_to_date"`
}

// VariancePoint carries the two variance measures for one project.
type VariancePoint struct {
	Project            string  `json:"project"`
	QEForecastVsQEPlan float64 `json:"qe_forecast_vs_qe_plan"`
	ForecastVsBA       float64 `json:"forecast_vs_ba"`
}

// VarianceReport is the variance series plus any variance columns the
// upload did not carry.
type VarianceReport struct {
	Points         []VariancePoint `json:"points"`
	MissingColumns []string        `json:"missing_columns,omitempty"`
}

// AllocationSlice is one group of the allocation breakdown.
type AllocationSlice struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ProjectDetail is the single-project view: identity fields, financial
// scalars and the 12-month grid for that row.
type ProjectDetail struct {
	Identity map[string]string  `json:"identity"`
	Scalars  map[string]float64 `json:"scalars"`
	Monthly  []MonthlyPoint     `json:"monthly"`
}

// Facets lists the distinct values available per filter dimension.
type Facets struct {
	Portfolios      []string `json:"portfolios"`
	SubPortfolios   []string `json:"sub_portfolios"`
	Managers        []string `json:"managers"`
	Classifications []string `json:"classifications"`
}

// Allocation breakdown dimensions.
const (
	DimensionPortfolio      = "portfolio"
	DimensionSubPortfolio   = "sub_portfolio"
	DimensionClassification = "classification"
)

// PortfolioService answers portfolio queries over stored snapshots.
type PortfolioService struct {
	store  *SnapshotStore
	logger *slog.Logger
}

// NewPortfolioService creates a portfolio service backed by the given
// snapshot store.
func NewPortfolioService(store *SnapshotStore, logger *slog.Logger) *PortfolioService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortfolioService{
		store:  store,
		logger: logger.With("component", "portfolio_service"),
	}
}

// CreateSnapshot ingests and processes an uploaded file, storing the
// result under its content hash. Re-uploading identical bytes returns
// the cached snapshot; the bool reports a cache hit.
func (ps *PortfolioService) CreateSnapshot(ctx context.Context, filename string, data []byte) (*Snapshot, bool, error) {
	if len(data) == 0 {
		return nil, false, ErrEmptyUpload
	}

	id := ContentID(data)
	if snap, ok := ps.store.Get(id); ok {
		ps.logger.InfoContext(ctx, "snapshot cache hit",
			"snapshot_id", id,
			"file_name", filename)
		return snap, true, nil
	}

	raw, err := ingest.Read(filename, data)
	if err != nil {
		return nil, false, err
	}

	table, report, err := dataprocessing.Process(raw)
	if err != nil {
		return nil, false, fmt.Errorf("processing %s: %w", filename, err)
	}

	snap := &Snapshot{
		ID:        id,
		FileName:  filename,
		CreatedAt: time.Now().UTC(),
		Table:     table,
		Report:    report,
	}
	ps.store.Put(snap)

	ps.logger.InfoContext(ctx, "snapshot created",
		"snapshot_id", id,
		"file_name", filename,
		"rows", table.RowCount(),
		"columns", table.ColumnCount(),
		"warnings", len(report.Warnings))
	return snap, false, nil
}

// Snapshot returns the stored snapshot for an ID.
func (ps *PortfolioService) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	snap, ok := ps.store.Get(id)
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// Metrics computes the headline totals over the filtered rows.
func (ps *PortfolioService) Metrics(ctx context.Context, id string, f Filter) (*KeyMetrics, error) {
	t, err := ps.filtered(id, f)
	if err != nil {
		return nil, err
	}
	return &KeyMetrics{
		ProjectCount:       t.RowCount(),
		BusinessAllocation: columnSum(t, dataprocessing.FieldBusinessAllocation),
		CurrentEAC:         columnSum(t, dataprocessing.FieldCurrentEAC),
		ActualsToDate:      columnSum(t, dataprocessing.FieldTotalActualsToDate),
	}, nil
}

// Projects returns one summary per filtered row, in table order.
func (ps *PortfolioService) Projects(ctx context.Context, id string, f Filter) ([]ProjectSummary, error) {
	t, err := ps.filtered(id, f)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectSummary, 0, t.RowCount())
	for row := 0; row < t.RowCount(); row++ {
		out = append(out, ProjectSummary{
			Name:               t.Cell(dataprocessing.FieldProjectName, row).String(),
			Portfolio:          t.Cell(dataprocessing.FieldPortfolioLevel, row).String(),
			SubPortfolio:       t.Cell(dataprocessing.FieldSubPortfolioLevel, row).String(),
			Manager:            t.Cell(dataprocessing.FieldProjectManager, row).String(),
			Classification:     t.Cell(dataprocessing.FieldBRSClassification, row).String(),
			BusinessAllocation: cellValue(t.Cell(dataprocessing.FieldBusinessAllocation, row)),
			CurrentEAC:         cellValue(t.Cell(dataprocessing.FieldCurrentEAC, row)),
			TotalActuals:       cellValue(t.Cell(dataprocessing.FieldTotalActuals, row)),
			TotalForecasts:     cellValue(t.Cell(dataprocessing.FieldTotalForecasts, row)),
			TotalCapitalPlan:   cellValue(t.Cell(dataprocessing.FieldTotalCapitalPlan, row)),
			ActualsToDate:      cellValue(t.Cell(dataprocessing.FieldTotalActualsToDate, row)),
		})
	}
	return out, nil
}

// Trends sums the monthly grid per data type over the filtered rows,
// ordered January through December. Duplicate grid columns contribute
// to the same month.
func (ps *PortfolioService) Trends(ctx context.Context, id string, f Filter) ([]MonthlyPoint, error) {
	t, err := ps.filtered(id, f)
	if err != nil {
		return nil, err
	}

	var actuals, forecasts, plan, budget [13]float64
	for _, col := range t.Columns() {
		month := dataprocessing.MonthOf(col.Name)
		if month == 0 {
			continue
		}
		sum := cellsSum(col.Cells)
		switch {
		case dataprocessing.IsMonthlyActual(col.Name):
			actuals[month] += sum
		case dataprocessing.IsMonthlyForecast(col.Name):
			forecasts[month] += sum
		case dataprocessing.IsMonthlyCapitalPlan(col.Name):
			plan[month] += sum
		case dataprocessing.IsMonthlyAdjustedBudget(col.Name):
			budget[month] += sum
		}
	}

	points := make([]MonthlyPoint, 12)
	for m := 1; m <= 12; m++ {
		points[m-1] = MonthlyPoint{
			Month:          m,
			Actuals:        actuals[m],
			Forecasts:      forecasts[m],
			CapitalPlan:    plan[m],
			AdjustedBudget: budget[m],
		}
	}
	return points, nil
}

// Variance returns the per-project variance measures. Variance columns
// absent from the upload are reported, not fatal; their values read 0.
func (ps *PortfolioService) Variance(ctx context.Context, id string, f Filter) (*VarianceReport, error) {
	t, err := ps.filtered(id, f)
	if err != nil {
		return nil, err
	}

	report := &VarianceReport{Points: make([]VariancePoint, 0, t.RowCount())}
	for _, name := range []string{dataprocessing.FieldQEForecastVsPlan, dataprocessing.FieldForecastVsBA} {
		if _, ok := t.Column(name); !ok {
			report.MissingColumns = append(report.MissingColumns, name)
		}
	}

	for row := 0; row < t.RowCount(); row++ {
		report.Points = append(report.Points, VariancePoint{
			Project:            t.Cell(dataprocessing.FieldProjectName, row).String(),
			QEForecastVsQEPlan: cellValue(t.Cell(dataprocessing.FieldQEForecastVsPlan, row)),
			ForecastVsBA:       cellValue(t.Cell(dataprocessing.FieldForecastVsBA, row)),
		})
	}
	return report, nil
}

// Allocation groups BUSINESS_ALLOCATION by the requested dimension,
// largest group first. Rows with a blank group value fall under
// "Unassigned".
func (ps *PortfolioService) Allocation(ctx context.Context, id, dimension string, f Filter) ([]AllocationSlice, error) {
	var groupField string
	switch dimension {
	case DimensionPortfolio, "":
		groupField = dataprocessing.FieldPortfolioLevel
	case DimensionSubPortfolio:
		groupField = dataprocessing.FieldSubPortfolioLevel
	case DimensionClassification:
		groupField = dataprocessing.FieldBRSClassification
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
	}

	t, err := ps.filtered(id, f)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]float64)
	for row := 0; row < t.RowCount(); row++ {
		label := t.Cell(groupField, row).String()
		if label == "" {
			label = "Unassigned"
		}
		groups[label] += cellValue(t.Cell(dataprocessing.FieldBusinessAllocation, row))
	}

	out := make([]AllocationSlice, 0, len(groups))
	for label, amount := range groups {
		out = append(out, AllocationSlice{Label: label, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// Detail returns the single-project view for the first row whose
// project name matches.
func (ps *PortfolioService) Detail(ctx context.Context, id, name string) (*ProjectDetail, error) {
	snap, err := ps.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	t := snap.Table

	col, ok := t.Column(dataprocessing.FieldProjectName)
	if !ok {
		return nil, ErrNoProjectNameField
	}
	row := -1
	for i, c := range col.Cells {
		if c.String() == name {
			row = i
			break
		}
	}
	if row < 0 {
		return nil, ErrProjectNotFound
	}

	detail := &ProjectDetail{
		Identity: make(map[string]string),
		Scalars:  make(map[string]float64),
	}
	for _, field := range []string{
		dataprocessing.FieldPortfolioLevel,
		dataprocessing.FieldSubPortfolioLevel,
		dataprocessing.FieldMasterProjectID,
		dataprocessing.FieldProjectID,
		dataprocessing.FieldProjectName,
		dataprocessing.FieldProjectManager,
		dataprocessing.FieldBRSClassification,
		dataprocessing.FieldInitiativeProgram,
	} {
		if _, ok := t.Column(field); ok {
			detail.Identity[field] = t.Cell(field, row).String()
		}
	}

	var actuals, forecasts, plan, budget [13]float64
	for _, c := range t.Columns() {
		switch {
		case dataprocessing.IsMonthly(c.Name):
			month := dataprocessing.MonthOf(c.Name)
			if month == 0 {
				continue
			}
			v := cellValue(c.Cells[row])
			switch {
			case dataprocessing.IsMonthlyActual(c.Name):
				actuals[month] += v
			case dataprocessing.IsMonthlyForecast(c.Name):
				forecasts[month] += v
			case dataprocessing.IsMonthlyCapitalPlan(c.Name):
				plan[month] += v
			case dataprocessing.IsMonthlyAdjustedBudget(c.Name):
				budget[month] += v
			}
		case dataprocessing.IsFinancialScalar(c.Name), isDerivedTotal(c.Name):
			detail.Scalars[c.Name] = cellValue(c.Cells[row])
		}
	}

	detail.Monthly = make([]MonthlyPoint, 12)
	for m := 1; m <= 12; m++ {
		detail.Monthly[m-1] = MonthlyPoint{
			Month:          m,
			Actuals:        actuals[m],
			Forecasts:      forecasts[m],
			CapitalPlan:    plan[m],
			AdjustedBudget: budget[m],
		}
	}
	return detail, nil
}

// Facets lists the distinct non-empty values of every filterable
// column, sorted.
func (ps *PortfolioService) Facets(ctx context.Context, id string) (*Facets, error) {
	snap, err := ps.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	t := snap.Table
	return &Facets{
		Portfolios:      distinctValues(t, dataprocessing.FieldPortfolioLevel),
		SubPortfolios:   distinctValues(t, dataprocessing.FieldSubPortfolioLevel),
		Managers:        distinctValues(t, dataprocessing.FieldProjectManager),
		Classifications: distinctValues(t, dataprocessing.FieldBRSClassification),
	}, nil
}

// Resolution returns the resolution report recorded at processing time.
func (ps *PortfolioService) Resolution(ctx context.Context, id string) (*domain.ResolutionReport, error) {
	snap, err := ps.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Report, nil
}

// CleanTable returns the processed table, filtered, for export.
func (ps *PortfolioService) CleanTable(ctx context.Context, id string, f Filter) (*domain.Table, error) {
	return ps.filtered(id, f)
}

func (ps *PortfolioService) filtered(id string, f Filter) (*domain.Table, error) {
	snap, ok := ps.store.Get(id)
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	t := snap.Table
	for _, dim := range []struct {
		field string
		value string
	}{
		{dataprocessing.FieldPortfolioLevel, f.Portfolio},
		{dataprocessing.FieldSubPortfolioLevel, f.SubPortfolio},
		{dataprocessing.FieldProjectManager, f.Manager},
		{dataprocessing.FieldBRSClassification, f.Classification},
	} {
		if dim.value == "" || dim.value == FilterAll {
			continue
		}
		t = t.FilterEqual(dim.field, dim.value)
	}
	return t, nil
}

func isDerivedTotal(name string) bool {
	switch name {
	case dataprocessing.FieldTotalActuals,
		dataprocessing.FieldTotalForecasts,
		dataprocessing.FieldTotalCapitalPlan,
		dataprocessing.FieldTotalActualsToDate:
		return true
	}
	return false
}

// cellValue reads a cell as a finite number; text, empty and NaN cells
// read as 0 so sums stay finite.
func cellValue(c domain.Cell) float64 {
	v, ok := c.Float()
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func cellsSum(cells []domain.Cell) float64 {
	var sum float64
	for _, c := range cells {
		sum += cellValue(c)
	}
	return sum
}

func columnSum(t *domain.Table, name string) float64 {
	col, ok := t.Column(name)
	if !ok {
		return 0
	}
	return cellsSum(col.Cells)
}

func distinctValues(t *domain.Table, name string) []string {
	col, ok := t.Column(name)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, c := range col.Cells {
		s := c.String()
		if s == "" {
			continue
		}
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
