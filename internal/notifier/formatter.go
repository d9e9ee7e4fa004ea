package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"RuleBadge/internal/model"
)

// FormatChange describes a count change for the chat.
func FormatChange(label string, res *model.RunResult, dateFormat string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(label), res.RunAt.Format(dateFormat)))
	if res.Previous != nil {
		delta := res.Count - res.Previous.Count
		b.WriteString(fmt.Sprintf("Rules: %d → %d (%+d)\n", res.Previous.Count, res.Count, delta))
		b.WriteString(fmt.Sprintf("Previous reading: %s\n", res.Previous.Date.Format(dateFormat)))
	} else {
		b.WriteString(fmt.Sprintf("Rules: %d\n", res.Count))
	}
	b.WriteString(fmt.Sprintf("History points: %d\n", res.HistoryLen))

	if len(res.ListCounts) > 0 {
		names := make([]string, 0, len(res.ListCounts))
		for name := range res.ListCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n<b>Lists:</b>\n")
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %s: %d\n", html.EscapeString(name), res.ListCounts[name]))
		}
	}
	return b.String()
}
