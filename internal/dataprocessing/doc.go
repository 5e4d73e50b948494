// Package dataprocessing implements the header normalization and
// schema-reconciliation engine for capital-project financial exports.
//
// An uploaded file arrives as a domain.RawTable: a header row of arbitrary,
// human-edited labels plus row-major cell data. Process runs it through
// four stages:
//
//  1. Header normalization - case/punctuation folding plus a fixed
//     typo-correction table, mapping each raw label to a canonical token.
//  2. Duplicate resolution - deterministic _N suffixing so column names
//     are unique within the table.
//  3. Type coercion - financial scalar columns get a strict numeric pass
//     (failures surface as per-column warnings), the 2025 monthly grid
//     gets a lenient pass where anything unparseable becomes 0.
//  4. Aggregation - derived yearly totals and actuals-to-date appended as
//     new columns.
//
// Process is a pure function over its input: there is no package-level
// mutable state, and each upload is processed independently. Callers that
// want memoization key it by content hash (see internal/services).
package dataprocessing
