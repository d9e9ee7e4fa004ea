package chart

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Options controls how the trend chart looks. Zero fields take defaults.
type Options struct {
	DateFormat      string
	LineColor       string // hex, e.g. "#1f77b4"
	BackgroundColor string // hex
	LabelLanguage   string // "en" or "zh"
	Width           int
	Height          int
	Location        *time.Location
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DateFormat:      "2006-01-02",
		LineColor:       "#1f77b4",
		BackgroundColor: "#ffffff",
		LabelLanguage:   "en",
		Width:           1000,
		Height:          600,
		Location:        time.UTC,
	}
}

// withDefaults fills every unset field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DateFormat == "" {
		o.DateFormat = d.DateFormat
	}
	if o.LineColor == "" {
		o.LineColor = d.LineColor
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = d.BackgroundColor
	}
	if o.LabelLanguage == "" {
		o.LabelLanguage = d.LabelLanguage
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}

// Validate checks colors and language.
func (o Options) Validate() error {
	o = o.withDefaults()
	if _, err := ParseColor(o.LineColor); err != nil {
		return fmt.Errorf("line color: %w", err)
	}
	if _, err := ParseColor(o.BackgroundColor); err != nil {
		return fmt.Errorf("background color: %w", err)
	}
	if _, ok := captionSets[o.LabelLanguage]; !ok {
		return fmt.Errorf("unsupported label language %q", o.LabelLanguage)
	}
	return nil
}

type captions struct {
	Title string
	XAxis string
	YAxis string
}

var captionSets = map[string]captions{
	"en": {Title: "Rule count history", XAxis: "Date", YAxis: "Rules"},
	"zh": {Title: "规则数量历史记录", XAxis: "时间", YAxis: "规则数量"},
}

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ParseColor reads "#rrggbb" or "rrggbb".
func ParseColor(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)
	if !hexColor.MatchString(s) {
		return drawing.Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#")), nil
}
