package badge

import (
	"strconv"

	"RuleBadge/internal/output"
)

// Badge is a Shields.io endpoint badge document.
type Badge struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

// New builds the badge showing count.
func New(label string, count int, color string) Badge {
	return Badge{
		SchemaVersion: 1,
		Label:         label,
		Message:       strconv.Itoa(count),
		Color:         color,
	}
}

// Write stores the badge at path.
func Write(path string, b Badge) error {
	return output.WriteJSON(path, b)
}
