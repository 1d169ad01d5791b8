package dto

// BulkEntryRequest names the entries a bulk operation applies to.
type BulkEntryRequest struct {
	EntryIDs []string `json:"entryIDs" binding:"required,min=1"`
}

// BatchItemResult is the per-item outcome of a batch operation. Failures are
// converted into result entries rather than raised, so one bad item never
// blocks the remainder.
type BatchItemResult struct {
	ID      string `json:"id"` // Entry or schedule ID the item refers to
	Success bool   `json:"success"`
	EntryID string `json:"entryID,omitempty"` // Produced entry, when applicable
	Error   string `json:"error,omitempty"`
}

// BatchSummary aggregates a batch run. Shared by bulkPost, bulkDelete,
// processDueSchedules and processAutoReversals.
type BatchSummary struct {
	Processed  int               `json:"processed"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	DryRun     bool              `json:"dryRun,omitempty"`
	Results    []BatchItemResult `json:"results"`
}

// Add folds one item outcome into the summary.
func (s *BatchSummary) Add(result BatchItemResult) {
	s.Processed++
	if result.Success {
		s.Successful++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, result)
}
