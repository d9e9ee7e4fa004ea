// Package chart renders the rule-count history as a PNG line chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"RuleBadge/internal/model"
	"RuleBadge/internal/output"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("empty series")

var renderPNG = func(ch *gochart.Chart, w io.Writer) error {
	return ch.Render(gochart.PNG, w)
}

// Renderer draws trend charts with fixed options.
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer; unset options take their defaults.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// Render writes a PNG of the series to w.
func (r *Renderer) Render(series model.Series, w io.Writer) (err error) {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("chart panicked: %v", p)
		}
	}()

	ch, err := r.build(series)
	if err != nil {
		return err
	}
	if err := renderPNG(ch, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// RenderFile renders the series to path. The chart is best effort: an empty
// series or a rendering failure is logged and reported as rendered=false,
// and the file is left untouched. Only the final write can return an error.
func (r *Renderer) RenderFile(series model.Series, path string) (rendered bool, err error) {
	var buf bytes.Buffer
	if err := r.Render(series, &buf); err != nil {
		if errors.Is(err, ErrEmptySeries) {
			log.Printf("[INFO] history is empty, skipping chart")
		} else {
			log.Printf("[WARN] chart rendering failed, skipping: %v", err)
		}
		return false, nil
	}
	if err := output.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return false, fmt.Errorf("write chart: %w", err)
	}
	log.Printf("[INFO] chart written: %s (%d points)", path, len(series))
	return true, nil
}

func (r *Renderer) build(series model.Series) (*gochart.Chart, error) {
	lineColor, err := ParseColor(r.opts.LineColor)
	if err != nil {
		return nil, err
	}
	bgColor, err := ParseColor(r.opts.BackgroundColor)
	if err != nil {
		return nil, err
	}
	caps, ok := captionSets[r.opts.LabelLanguage]
	if !ok {
		caps = captionSets["en"]
	}

	dates := series.Dates()
	counts := series.Counts()
	xr, xTicks := dateAxis(dates, r.opts.DateFormat, r.opts.Location)
	yr := YRange(counts)

	// go-chart wants at least two values per series.
	if len(dates) == 1 {
		dates = append(dates, dates[0].Add(time.Second))
		counts = append(counts, counts[0])
	}

	return &gochart.Chart{
		Title:  caps.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			FillColor: bgColor,
			Padding:   gochart.Box{Top: 40, Left: 20, Right: 30, Bottom: 20},
		},
		Canvas: gochart.Style{FillColor: bgColor},
		XAxis: gochart.XAxis{
			Name:      caps.XAxis,
			Range:     &gochart.ContinuousRange{Min: xr.Min, Max: xr.Max},
			Ticks:     xTicks,
			TickStyle: gochart.Style{TextRotationDegrees: 45},
		},
		YAxis: gochart.YAxis{
			Name:  caps.YAxis,
			Range: &gochart.ContinuousRange{Min: yr.Min, Max: yr.Max},
			Ticks: integerTicks(yr, 10),
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name: caps.YAxis,
				Style: gochart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    4,
				},
				XValues: dates,
				YValues: counts,
			},
		},
	}, nil
}
