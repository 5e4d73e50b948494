// Package exporter renders processed snapshots for download.
//
// CSVExporter writes the cleaned table as CSV, optionally prefixed with
// a UTF-8 BOM so Excel opens it correctly. ReportRenderer produces a
// static, self-contained HTML report with the key metrics, the project
// table, the monthly trend table and the header-resolution appendix.
package exporter
