package model

import "time"

// Observation is a single rule count taken at a point in time.
type Observation struct {
	Date  time.Time
	Count int
}

// Series is the rule-count history, in insertion order.
type Series []Observation

// Last returns the most recent observation. ok is false for an empty series.
func (s Series) Last() (obs Observation, ok bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Counts returns the count of every observation as float64, for plotting.
func (s Series) Counts() []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = float64(o.Count)
	}
	return out
}

// Dates returns the timestamp of every observation.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, o := range s {
		out[i] = o.Date
	}
	return out
}
