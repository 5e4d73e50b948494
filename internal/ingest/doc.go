// Package ingest decodes uploaded CSV and Excel exports into the raw
// tabular form the processing core consumes. Decoding failures surface as
// FileReadError before the core is ever invoked; the spreadsheet path
// additionally scans for a header row and reports NoHeaderFoundError when
// a sheet has none.
package ingest
