package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitalforge/internal/services"
	"capitalforge/pkg/contracts/domain"
)

func TestRender_FullReport(t *testing.T) {
	renderer, err := NewReportRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = renderer.Render(&buf, ReportData{
		FileName:   "projects.csv",
		SnapshotID: "abc123",
		Metrics: &services.KeyMetrics{
			ProjectCount:       2,
			BusinessAllocation: 3000,
			CurrentEAC:         3700,
			ActualsToDate:      950,
		},
		Projects: []services.ProjectSummary{
			{Name: "Alpha", Portfolio: "Infrastructure", BusinessAllocation: 1000},
			{Name: "Beta", Portfolio: "Digital", BusinessAllocation: 2000},
		},
		Trends: []services.MonthlyPoint{
			{Month: 1, Actuals: 300, Forecasts: 230},
			{Month: 2, Actuals: 150},
		},
		Resolution: &domain.ResolutionReport{
			Columns: []domain.ColumnResolution{
				{Original: "Project Name", Final: "PROJECT_NAME", Recognized: true},
				{Original: "Mystery", Final: "MYSTERY", Recognized: false},
			},
			Warnings:   []string{"column CURRENT_EAC left uncoerced"},
			Unresolved: []string{"FORECAST_VS_BA"},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "projects.csv")
	assert.Contains(t, html, "abc123")
	assert.Contains(t, html, "3000.00")
	assert.Contains(t, html, "Alpha")
	assert.Contains(t, html, "January")
	assert.Contains(t, html, "PROJECT_NAME")
	assert.Contains(t, html, "MYSTERY")
	assert.Contains(t, html, "column CURRENT_EAC left uncoerced")
	assert.Contains(t, html, "FORECAST_VS_BA")
}

func TestRender_EscapesUserContent(t *testing.T) {
	renderer, err := NewReportRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = renderer.Render(&buf, ReportData{
		FileName: `<script>alert("x")</script>`,
		Metrics:  &services.KeyMetrics{},
		Resolution: &domain.ResolutionReport{},
	})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "<script>alert")
}
