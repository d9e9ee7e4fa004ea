package model

import "time"

// RunResult summarizes one pass of the pipeline.
type RunResult struct {
	RunAt         time.Time
	Count         int
	Previous      *Observation // last observation before this run, nil on first run
	Appended      bool
	HistoryLen    int
	ChartRendered bool
	ListCounts    map[string]int
}

// Changed reports whether the count moved against the previous observation.
func (r *RunResult) Changed() bool {
	return r.Previous != nil && r.Previous.Count != r.Count
}
