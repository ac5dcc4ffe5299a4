package utils

import "strings"

// NormalizeRuleValue trims and lowercases a user-entered rule value.
func NormalizeRuleValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// DedupeFold normalizes values and drops empties and case-insensitive duplicates,
// keeping first occurrence order.
func DedupeFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := NormalizeRuleValue(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
