package util

import "strconv"

// ParseIntDefault parses s as an int, falling back to def when empty or
// malformed. Query parameters never abort a request over a bad number.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
