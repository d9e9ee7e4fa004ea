package history

import (
	"fmt"
	"time"

	"RuleBadge/internal/model"
)

// DedupPolicy decides when a new reading equal to the last one is dropped.
type DedupPolicy string

const (
	// DedupValue drops any reading equal to the last one, however much time
	// has passed. A flat count therefore stays a single point until it moves.
	DedupValue DedupPolicy = "value"
	// DedupDay drops an equal reading only on the same calendar day.
	DedupDay DedupPolicy = "day"
	// DedupNone keeps every reading.
	DedupNone DedupPolicy = "none"
)

// ParseDedupPolicy maps a config string to a policy. Empty means DedupValue.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch p := DedupPolicy(s); p {
	case "":
		return DedupValue, nil
	case DedupValue, DedupDay, DedupNone:
		return p, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q", s)
	}
}

// Merge appends value observed at now unless the last observation already
// has the same count. The input series is never modified. appended reports
// whether a point was added.
func Merge(series model.Series, value int, now time.Time) (out model.Series, appended bool) {
	return MergeWithPolicy(series, value, now, DedupValue)
}

// MergeWithPolicy is Merge with an explicit de-duplication policy.
func MergeWithPolicy(series model.Series, value int, now time.Time, policy DedupPolicy) (out model.Series, appended bool) {
	if last, ok := series.Last(); ok && last.Count == value {
		switch policy {
		case DedupNone:
		case DedupDay:
			if sameDay(last.Date, now) {
				return series, false
			}
		default:
			return series, false
		}
	}

	out = make(model.Series, len(series), len(series)+1)
	copy(out, series)
	out = append(out, model.Observation{Date: now, Count: value})
	return out, true
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
