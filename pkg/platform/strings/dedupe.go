// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  tCO2e ", "ha", "tCO2e", "", "  "})
//	// Returns: []string{"tCO2e", "ha"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// AppendUnique appends value to values unless an equal element is already
// present. Comparison is exact; allowed-unit and allowed-methodology sets are
// case-sensitive by contract.
func AppendUnique(values []string, value string) ([]string, bool) {
	for _, v := range values {
		if v == value {
			return values, false
		}
	}
	return append(values, value), true
}
