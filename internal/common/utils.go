package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub == "" {
			continue
		}
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeLower trims surrounding whitespace and converts to lower case.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
