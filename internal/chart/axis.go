package chart

import (
	"math"
	"strconv"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// AxisRange is a closed interval on one axis.
type AxisRange struct {
	Min float64
	Max float64
}

// YRange picks the count axis so flat or zero series do not collapse:
//   - all values equal to v != 0: [max(0, v-5), v+5]
//   - all values zero: [-1, 10]
//   - otherwise [0, max*1.1], lowered to min*1.1 when min is negative
func YRange(values []float64) AxisRange {
	if len(values) == 0 {
		return AxisRange{Min: -1, Max: 10}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		if hi == 0 {
			return AxisRange{Min: -1, Max: 10}
		}
		return AxisRange{Min: math.Max(0, hi-5), Max: hi + 5}
	}
	r := AxisRange{Min: 0, Max: hi * 1.1}
	if lo < 0 {
		r.Min = lo * 1.1
	}
	return r
}

// integerTicks places at most maxTicks+1 ticks on whole numbers inside r.
func integerTicks(r AxisRange, maxTicks int) []gochart.Tick {
	step := niceStep((r.Max - r.Min) / float64(maxTicks))
	var ticks []gochart.Tick
	for v := math.Ceil(r.Min/step) * step; v <= r.Max+1e-9; v += step {
		n := int64(math.Round(v))
		ticks = append(ticks, gochart.Tick{Value: float64(n), Label: strconv.FormatInt(n, 10)})
	}
	return ticks
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten, never below 1.
func niceStep(raw float64) float64 {
	if raw <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

// timeStep chooses a tick spacing for a span of time.
func timeStep(span time.Duration) time.Duration {
	const day = 24 * time.Hour
	switch {
	case span <= 2*time.Hour:
		return 15 * time.Minute
	case span <= 12*time.Hour:
		return time.Hour
	case span <= 2*day:
		return 6 * time.Hour
	case span <= 14*day:
		return day
	case span <= 90*day:
		return 7 * day
	case span <= 730*day:
		return 30 * day
	default:
		return 365 * day
	}
}

// dateAxis computes the x range and tick marks for the given dates. A single
// point is widened to a one-hour window so the axis has a width.
func dateAxis(dates []time.Time, layout string, loc *time.Location) (AxisRange, []gochart.Tick) {
	minT, maxT := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(minT) {
			minT = d
		}
		if d.After(maxT) {
			maxT = d
		}
	}
	if !maxT.After(minT) {
		minT = minT.Add(-30 * time.Minute)
		maxT = maxT.Add(30 * time.Minute)
	}

	step := timeStep(maxT.Sub(minT))
	var start time.Time
	if step >= 24*time.Hour {
		y, m, d := minT.In(loc).Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		start = minT.Truncate(step)
	}

	var ticks []gochart.Tick
	for t := start; !t.After(maxT) && len(ticks) < 24; t = t.Add(step) {
		if t.Before(minT) {
			continue
		}
		ticks = append(ticks, timeTick(t, layout, loc))
	}
	if len(ticks) < 2 {
		ticks = []gochart.Tick{timeTick(minT, layout, loc), timeTick(maxT, layout, loc)}
	}
	r := AxisRange{Min: gochart.TimeToFloat64(minT), Max: gochart.TimeToFloat64(maxT)}
	return r, ticks
}

func timeTick(t time.Time, layout string, loc *time.Location) gochart.Tick {
	return gochart.Tick{Value: gochart.TimeToFloat64(t), Label: t.In(loc).Format(layout)}
}
