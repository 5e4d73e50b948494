package dataprocessing

import (
	"fmt"
	"strings"
)

// headerReplacer folds the punctuation observed in hand-edited export
// headers into underscores. Double underscores produced by adjacent
// substitutions are deliberately left alone; the monthly-grid patterns
// tolerate them.
var headerReplacer = strings.NewReplacer(
	" ", "_",
	"+", "_",
	".", "_",
	"-", "_",
)

// typoRule is one entry of the fixed typo-correction table. Rules are
// evaluated in order, each as an independent pass over the current
// string; a label may match several rules.
type typoRule struct {
	match string
	fix   func(s string) string
}

var typoRules = []typoRule{
	{"PROJEC_TID", func(s string) string {
		return strings.ReplaceAll(s, "PROJEC_TID", "PROJECT_ID")
	}},
	{"INI_MATIVE_PROGRAM", func(s string) string {
		return strings.ReplaceAll(s, "INI_MATIVE_PROGRAM", "INITIATIVE_PROGRAM")
	}},
	{"ALL_PRIOR_YEARS_A", func(s string) string {
		// Guarded so the expanded form is a fixed point: the expansion
		// itself contains the matched prefix.
		if strings.Contains(s, "ALL_PRIOR_YEARS_ACTUALS") {
			return s
		}
		return strings.ReplaceAll(s, "ALL_PRIOR_YEARS_A", "ALL_PRIOR_YEARS_ACTUALS")
	}},
	{"C_URRENT_EAC", func(s string) string {
		// Whole-string replacement, matching the source fix for the
		// "C URRENT_EAC" header.
		return "CURRENT_EAC"
	}},
	{"QE_RUN_RATE", func(s string) string {
		// No-op, retained so the correction table mirrors the full set
		// of observed header anomalies.
		return s
	}},
}

// NormalizeHeader maps a raw column label to its canonical token: trim,
// fold spaces and the punctuation set {+ . -} to underscores, upper-case,
// then apply the typo-correction table. It never fails and is idempotent;
// uniqueness across a header row is ResolveDuplicates' job.
func NormalizeHeader(raw string) string {
	s := strings.TrimSpace(raw)
	s = headerReplacer.Replace(s)
	s = strings.ToUpper(s)
	for _, rule := range typoRules {
		if strings.Contains(s, rule.match) {
			s = rule.fix(s)
		}
	}
	return s
}

// NormalizeHeaders normalizes every label of a header row in order.
// Non-string header cells are expected to have been stringified by the
// transport before reaching here.
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, label := range raw {
		out[i] = NormalizeHeader(label)
	}
	return out
}

// ResolveDuplicates assigns unique names to a normalized header sequence.
// For each distinct value occurring k>1 times, the first occurrence keeps
// the value and occurrence i (i >= 1, in positional order) becomes
// value_i. The result has the same length and relative order as the
// input. A collision between a synthesized name and a pre-existing label
// is not checked for; the table constructor rejects it downstream.
func ResolveDuplicates(labels []string) []string {
	counts := make(map[string]int, len(labels))
	for _, l := range labels {
		counts[l]++
	}

	out := make([]string, len(labels))
	seen := make(map[string]int, len(labels))
	for i, l := range labels {
		if counts[l] > 1 && seen[l] > 0 {
			out[i] = fmt.Sprintf("%s_%d", l, seen[l])
		} else {
			out[i] = l
		}
		seen[l]++
	}
	return out
}
