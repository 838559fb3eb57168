package model

import "time"

// RowFailure describes a single row that could not be normalized during an
// import run. The run continues past it; failures are reported, not fatal.
type RowFailure struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row_index"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes one import run across all processed sheets.
// RecordsUnchanged counts rows whose stored record was already byte-identical,
// so a clean re-import reports zero inserted and zero updated.
type ImportResult struct {
	SheetsProcessed  int          `json:"sheets_processed"`
	RowsSucceeded    int          `json:"rows_succeeded"`
	RowsFailed       []RowFailure `json:"rows_failed"`
	RecordsInserted  int          `json:"records_inserted"`
	RecordsUpdated   int          `json:"records_updated"`
	RecordsUnchanged int          `json:"records_unchanged"`
	StartedAt        time.Time    `json:"started_at"`
	FinishedAt       time.Time    `json:"finished_at"`
}
