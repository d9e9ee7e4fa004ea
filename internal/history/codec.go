package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"RuleBadge/internal/model"
)

// point is the on-disk shape of one observation.
type point struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// dateLayouts are tried in order when reading a stored date. The zoneless
// layouts are what older history files contain.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result is the outcome of checking a history payload's shape.
type Result struct {
	Series model.Series
	Reason string
	ok     bool
}

// Valid reports whether the payload had the expected shape.
func (r Result) Valid() bool { return r.ok }

func valid(s model.Series) Result { return Result{Series: s, ok: true} }
func invalid(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that data is a JSON array of objects, each carrying a
// parseable "date" string and an integer "count". Dates without a zone are
// read in loc.
func Validate(data []byte, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return invalid("payload is not a JSON array: %v", err)
	}
	if elems == nil {
		// literal null
		return invalid("payload is null")
	}
	series := make(model.Series, 0, len(elems))
	for i, raw := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return invalid("element %d is not an object", i)
		}
		rawDate, ok := fields["date"]
		if !ok {
			return invalid("element %d has no date", i)
		}
		rawCount, ok := fields["count"]
		if !ok {
			return invalid("element %d has no count", i)
		}
		var ds string
		if err := json.Unmarshal(rawDate, &ds); err != nil {
			return invalid("element %d: date is not a string", i)
		}
		date, err := parseDate(ds, loc)
		if err != nil {
			return invalid("element %d: %v", i, err)
		}
		count, err := strconv.Atoi(string(bytes.TrimSpace(rawCount)))
		if err != nil {
			return invalid("element %d: count %s is not an integer", i, rawCount)
		}
		if count < 0 {
			return invalid("element %d: count %d is negative", i, count)
		}
		series = append(series, model.Observation{Date: date, Count: count})
	}
	return valid(series)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Encode serializes the series as an indented JSON array. Non-ASCII text is
// written as-is.
func Encode(s model.Series) ([]byte, error) {
	points := make([]point, len(s))
	for i, o := range s {
		points[i] = point{Date: o.Date.Format(time.RFC3339), Count: o.Count}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(points); err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return buf.Bytes(), nil
}
