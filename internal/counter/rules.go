// Package counter turns rule sources into counts.
package counter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidDocument means the rules document could not be read as JSON.
var ErrInvalidDocument = errors.New("invalid rules document")

// CountFile reads the rules document at path and counts its rules.
func CountFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules document: %w", err)
	}
	return Count(data)
}

// Count returns the number of rule objects carrying a "domain" key. Rules are
// taken from routing.rules when present, otherwise from the top-level rules
// array. A document with neither counts as zero.
func Count(data []byte) (int, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return 0, nil
	}

	rules, ok := lookupArray(root, "routing", "rules")
	if !ok {
		rules, _ = lookupArray(root, "rules")
	}

	n := 0
	for _, r := range rules {
		if obj, ok := r.(map[string]any); ok {
			if _, has := obj["domain"]; has {
				n++
			}
		}
	}
	return n, nil
}

func lookupArray(m map[string]any, path ...string) ([]any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	arr, ok := cur.([]any)
	return arr, ok
}
