// Package utils provides small, generic helper functions used across
// different layers of the application, independent of domain logic.
package utils

import "strconv"

// AtoiDefault converts s to an int, returning def when s is empty or not a
// valid integer. Used for query-string pagination parameters, which arrive
// untrimmed and untrusted.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
