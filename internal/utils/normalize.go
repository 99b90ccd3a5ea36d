package utils

import "strings"

// NormalizePhone strips spaces, dashes and parentheses so equivalent numbers
// dedup against each other.
func NormalizePhone(raw string) string {
	normalized := strings.TrimSpace(raw)
	for _, ch := range []string{" ", "-", "(", ")"} {
		normalized = strings.ReplaceAll(normalized, ch, "")
	}
	return normalized
}

// NormalizeIdentity normalizes Aadhaar and Voter ID values to a comparable
// form: no whitespace or dashes, upper case.
func NormalizeIdentity(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	return strings.ToUpper(normalized)
}
