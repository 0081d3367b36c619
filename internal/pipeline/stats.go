package pipeline

import "time"

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total        int // Files resolved from the input path.
	Generated    int
	Skipped      int // Output already present, or another input owns it.
	Failed       int
	Interrupted  int // Queued but not finished when the run was cancelled.
	Placeholders int // Cells without a frame, across all generated sheets.
	OutputBytes  int64
	Elapsed      time.Duration
}
