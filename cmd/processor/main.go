// Command processor runs the header-normalization pipeline against a
// single exported file and writes the clean CSV and the HTML report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"capitalforge/internal/config"
	"capitalforge/internal/exporter"
	"capitalforge/internal/infrastructure"
	"capitalforge/internal/services"
)

func main() {
	inPath := flag.String("in", "", "input file (.csv or .xlsx)")
	outPath := flag.String("out", "", "clean CSV output path (defaults next to the input file)")
	reportPath := flag.String("report", "", "HTML report output path (empty skips the report)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: processor -in <file.csv|file.xlsx> [-out clean.csv] [-report report.html]")
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  *logLevel,
		Output: "stdout",
	})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if err := run(logger, *inPath, *outPath, *reportPath); err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, inPath, outPath, reportPath string) error {
	ctx := context.Background()
	started := time.Now()

	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	service := services.NewPortfolioService(services.NewSnapshotStore(), logger)
	snap, _, err := service.CreateSnapshot(ctx, filepath.Base(inPath), data)
	if err != nil {
		return err
	}

	for _, warning := range snap.Report.Warnings {
		logger.Warn("processing warning", "warning", warning)
	}
	if n := len(snap.Report.Unresolved); n > 0 {
		logger.Warn("expected fields not supplied", "count", n)
	}

	if outPath == "" {
		base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
		outPath = base + "_clean.csv"
	}
	if err := exporter.NewCSVExporter(logger).WriteFile(outPath, snap.Table); err != nil {
		return err
	}

	if reportPath != "" {
		if err := writeReport(ctx, service, snap, reportPath); err != nil {
			return err
		}
	}

	logger.Info("processing complete",
		"input", inPath,
		"output", outPath,
		"rows", snap.Table.RowCount(),
		"columns", snap.Table.ColumnCount(),
		"elapsed", time.Since(started).String())
	return nil
}

func writeReport(ctx context.Context, service *services.PortfolioService, snap *services.Snapshot, path string) error {
	renderer, err := exporter.NewReportRenderer()
	if err != nil {
		return err
	}

	metrics, err := service.Metrics(ctx, snap.ID, services.Filter{})
	if err != nil {
		return err
	}
	projects, err := service.Projects(ctx, snap.ID, services.Filter{})
	if err != nil {
		return err
	}
	trends, err := service.Trends(ctx, snap.ID, services.Filter{})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	err = renderer.Render(file, exporter.ReportData{
		FileName:   snap.FileName,
		SnapshotID: snap.ID,
		Metrics:    metrics,
		Projects:   projects,
		Trends:     trends,
		Resolution: snap.Report,
	})
	if err != nil {
		return err
	}
	return file.Close()
}
