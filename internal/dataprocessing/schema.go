package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
)

// FieldKind classifies a canonical schema field.
type FieldKind int

const (
	// KindIdentity marks descriptive project fields left untouched by
	// numeric coercion.
	KindIdentity FieldKind = iota
	// KindFinancialScalar marks money/ratio fields under strict coercion.
	KindFinancialScalar
	// KindMonthlyActual marks a 2025_mm_A grid field.
	KindMonthlyActual
	// KindMonthlyForecast marks a 2025_mm_F grid field.
	KindMonthlyForecast
	// KindMonthlyCapitalPlan marks a 2025_mm_CP grid field.
	KindMonthlyCapitalPlan
	// KindMonthlyAdjustedBudget marks a 2025_mm_AB grid field, present
	// only in spreadsheet extractions.
	KindMonthlyAdjustedBudget
)

// CanonicalField is one member of the fixed schema catalog.
type CanonicalField struct {
	Name  string
	Kind  FieldKind
	Month int // 1..12 for monthly kinds, 0 otherwise
}

// GridYear is the year the monthly grid is coded against in export
// headers (2025_01_A and friends).
const GridYear = "2025"

// Canonical names the aggregator and presentation layer depend on.
const (
	FieldPortfolioLevel      = "PORTFOLIO_OBS_LEVEL"
	FieldSubPortfolioLevel   = "SUB_PORTFOLIO_OBS_LEVEL"
	FieldMasterProjectID     = "MASTER_PROJECT_ID"
	FieldProjectID           = "PROJECT_ID"
	FieldProjectName         = "PROJECT_NAME"
	FieldProjectManager      = "PROJECT_MANAGER"
	FieldBRSClassification   = "BRS_CLASSIFICATION"
	FieldInitiativeProgram   = "INITIATIVE_PROGRAM"
	FieldPriorYearsActuals   = "ALL_PRIOR_YEARS_ACTUALS"
	FieldBusinessAllocation  = "BUSINESS_ALLOCATION"
	FieldCurrentEAC          = "CURRENT_EAC"
	FieldQEForecastVsPlan    = "QE_FORECAST_VS_QE_PLAN"
	FieldForecastVsBA        = "FORECAST_VS_BA"

	FieldTotalActuals       = "TOTAL_2025_ACTUALS"
	FieldTotalForecasts     = "TOTAL_2025_FORECASTS"
	FieldTotalCapitalPlan   = "TOTAL_2025_CAPITAL_PLAN"
	FieldTotalActualsToDate = "TOTAL_ACTUALS_TO_DATE"
)

var identityFields = []string{
	FieldPortfolioLevel,
	FieldSubPortfolioLevel,
	FieldMasterProjectID,
	FieldProjectID,
	FieldProjectName,
	FieldProjectManager,
	FieldBRSClassification,
	FieldInitiativeProgram,
}

// financialScalars is the allow-list of non-grid fields under strict
// numeric coercion. Suffixed duplicates (RATE_1, QE_RUN_RATE_0, ...) are
// matched by pattern rather than enumerated; the hard-coded suffix
// guesses of the original allow-list are gone.
var financialScalars = []string{
	FieldPriorYearsActuals,
	FieldBusinessAllocation,
	FieldCurrentEAC,
	FieldQEForecastVsPlan,
	FieldForecastVsBA,
	"YE_RUN",
	"RATE",
	"QE_RUN",
	"QE_RUN_RATE",
}

// monthlySuffixes maps grid data-type suffixes to field kinds. AB only
// appears in spreadsheet extractions and carries no derived total.
var monthlySuffixes = []struct {
	Suffix string
	Kind   FieldKind
}{
	{"A", KindMonthlyActual},
	{"F", KindMonthlyForecast},
	{"CP", KindMonthlyCapitalPlan},
	{"AB", KindMonthlyAdjustedBudget},
}

// Recognition is pattern-based rather than exact-name matching so that
// resolver-suffixed duplicates (2025_01_A_1) and double-underscore
// variants (2025_01__A) are still swept into coercion and aggregation.
var (
	reMonthlyActual         = regexp.MustCompile(`^2025_.*_A(_\d+)?$`)
	reMonthlyForecast       = regexp.MustCompile(`^2025_.*_F(_\d+)?$`)
	reMonthlyCapitalPlan    = regexp.MustCompile(`^2025_.*_CP(_\d+)?$`)
	reMonthlyAdjustedBudget = regexp.MustCompile(`^2025_.*_AB(_\d+)?$`)
	reDupSuffix             = regexp.MustCompile(`_\d+$`)
	reMonth                 = regexp.MustCompile(`^2025_+(\d{2})`)
)

// Catalog returns every canonical field: identity fields, financial
// scalars, then the 12-month grid per data-type suffix.
func Catalog() []CanonicalField {
	fields := make([]CanonicalField, 0, len(identityFields)+len(financialScalars)+12*len(monthlySuffixes))
	for _, name := range identityFields {
		fields = append(fields, CanonicalField{Name: name, Kind: KindIdentity})
	}
	for _, name := range financialScalars {
		fields = append(fields, CanonicalField{Name: name, Kind: KindFinancialScalar})
	}
	for _, s := range monthlySuffixes {
		for m := 1; m <= 12; m++ {
			fields = append(fields, CanonicalField{
				Name:  MonthlyFieldName(m, s.Suffix),
				Kind:  s.Kind,
				Month: m,
			})
		}
	}
	return fields
}

// MonthlyFieldName builds the canonical grid name for a month and
// data-type suffix, e.g. MonthlyFieldName(3, "CP") == "2025_03_CP".
func MonthlyFieldName(month int, suffix string) string {
	return fmt.Sprintf("%s_%02d_%s", GridYear, month, suffix)
}

// IsMonthlyActual reports whether a resolved name is a 2025 monthly
// actuals column, duplicate suffixes included.
func IsMonthlyActual(name string) bool { return reMonthlyActual.MatchString(name) }

// IsMonthlyForecast reports whether a resolved name is a 2025 monthly
// forecast column.
func IsMonthlyForecast(name string) bool { return reMonthlyForecast.MatchString(name) }

// IsMonthlyCapitalPlan reports whether a resolved name is a 2025 monthly
// capital-plan column.
func IsMonthlyCapitalPlan(name string) bool { return reMonthlyCapitalPlan.MatchString(name) }

// IsMonthlyAdjustedBudget reports whether a resolved name is a 2025
// monthly adjusted-budget column.
func IsMonthlyAdjustedBudget(name string) bool { return reMonthlyAdjustedBudget.MatchString(name) }

// IsMonthly reports whether a resolved name belongs to any monthly-grid
// group.
func IsMonthly(name string) bool {
	return IsMonthlyActual(name) || IsMonthlyForecast(name) ||
		IsMonthlyCapitalPlan(name) || IsMonthlyAdjustedBudget(name)
}

// IsFinancialScalar reports whether a resolved name is an allow-listed
// scalar financial field, tolerating a single duplicate-resolver suffix.
func IsFinancialScalar(name string) bool {
	base := trimDupSuffix(name)
	for _, s := range financialScalars {
		if base == s || name == s {
			return true
		}
	}
	return false
}

// IsRecognized reports whether a resolved name matches any catalog field
// or grid pattern. Unrecognized columns pass through untouched.
func IsRecognized(name string) bool {
	if IsMonthly(name) || IsFinancialScalar(name) {
		return true
	}
	for _, f := range identityFields {
		if name == f {
			return true
		}
	}
	return false
}

// MonthOf extracts the 1-based month from a monthly-grid column name,
// returning 0 when the name carries no parsable month.
func MonthOf(name string) int {
	m := reMonth.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	month, err := strconv.Atoi(m[1])
	if err != nil || month < 1 || month > 12 {
		return 0
	}
	return month
}

// ExpectedFields lists the catalog names the presentation layer asks the
// caller to warn about when absent: identity fields, financial scalars,
// and the A/F/CP grid. The AB grid is optional and never reported.
func ExpectedFields() []string {
	names := make([]string, 0, len(identityFields)+len(financialScalars)+36)
	names = append(names, identityFields...)
	names = append(names, financialScalars...)
	for _, s := range monthlySuffixes {
		if s.Kind == KindMonthlyAdjustedBudget {
			continue
		}
		for m := 1; m <= 12; m++ {
			names = append(names, MonthlyFieldName(m, s.Suffix))
		}
	}
	return names
}

// trimDupSuffix strips one resolver suffix so suffixed duplicates group
// with their base field.
func trimDupSuffix(name string) string {
	return reDupSuffix.ReplaceAllString(name, "")
}
