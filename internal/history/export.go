package history

import (
	"fmt"
	"time"

	"github.com/pavelanni/mocktest/internal/model"
)

// Export builds the export-ready view of the whole history log.
func (s *Store) Export() (model.HistoryExport, error) {
	entries, err := s.List()
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list history: %w", err)
	}
	return model.HistoryExport{
		ExportedAt: time.Now(),
		TotalTests: len(entries),
		Entries:    entries,
	}, nil
}
