package model

import "time"

// HistoryExport is the top-level JSON structure for history export.
type HistoryExport struct {
	ExportedAt time.Time      `json:"exported_at"`
	TotalTests int            `json:"total_tests"`
	Entries    []HistoryEntry `json:"entries"`
}
