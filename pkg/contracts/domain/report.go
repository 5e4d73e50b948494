package domain

// ColumnResolution records how one raw header label was mapped.
type ColumnResolution struct {
	Original   string `json:"original"`
	Final      string `json:"final"`
	Recognized bool   `json:"recognized"`
}

// ResolutionReport describes the outcome of header normalization and
// coercion for one upload: the per-column mapping, the catalog fields the
// upload never supplied, and non-fatal warnings gathered along the way
// (coercion failures, defaulted required fields).
type ResolutionReport struct {
	Columns    []ColumnResolution `json:"columns"`
	Unresolved []string           `json:"unresolved,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// Resolution returns the final name a raw label was mapped to. When the
// same raw label appeared more than once, the first mapping wins.
func (r *ResolutionReport) Resolution(original string) (string, bool) {
	for _, c := range r.Columns {
		if c.Original == original {
			return c.Final, true
		}
	}
	return "", false
}
