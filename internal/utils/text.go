package utils

import "strings"

// ShortName collapses runs of whitespace in s and cuts it to at most limit
// runes, ending with "..." when it was cut. The result never exceeds limit.
func ShortName(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	return strings.TrimRight(string(runes[:limit-3]), " ") + "..."
}
