package models

// SkippedRow records an import row that could not be applied.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary reports the outcome of a bulk import.
type ImportSummary struct {
	Applied int          `json:"applied"`
	Skipped []SkippedRow `json:"skipped"`
}
