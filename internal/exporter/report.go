package exporter

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"capitalforge/internal/services"
	"capitalforge/pkg/contracts/domain"
)

//go:embed templates/report.html
var reportFS embed.FS

// ReportData is everything the HTML report renders: headline metrics,
// the project table, the monthly trend series and the resolution
// appendix.
type ReportData struct {
	FileName    string
	SnapshotID  string
	GeneratedAt time.Time
	Metrics     *services.KeyMetrics
	Projects    []services.ProjectSummary
	Trends      []services.MonthlyPoint
	Resolution  *domain.ResolutionReport
}

// ReportRenderer renders the static HTML report.
type ReportRenderer struct {
	tmpl *template.Template
}

// NewReportRenderer parses the embedded report template.
func NewReportRenderer() (*ReportRenderer, error) {
	tmpl, err := template.New("report.html").Funcs(template.FuncMap{
		"money": formatFloat,
		"month": monthName,
	}).ParseFS(reportFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &ReportRenderer{tmpl: tmpl}, nil
}

// Render writes the report as a single self-contained HTML document.
func (r *ReportRenderer) Render(w io.Writer, data ReportData) error {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()
}
