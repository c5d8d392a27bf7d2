// Package utils provides small parsing helpers for HTTP request parameters.
// Handlers use them to read numeric path ids and query values without
// repeating strconv boilerplate.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	id := utils.AtoiDefault(c.Param("id"), 0) // 0 signals an invalid id
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// AtouDefault converts a string to a uint, returning def when the value is
// empty, malformed, or negative. Used for optional query parameters that name
// record ids, e.g. the exclude_id filter on deal name checks.
func AtouDefault(s string, def uint) uint {
	if s == "" {
		return def
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def
	}
	return uint(n)
}
