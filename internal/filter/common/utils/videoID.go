package utils

import "regexp"

var (
	watchIDPattern  = regexp.MustCompile(`(?:v=|/)([\w-]{11})(?:\?|&|/|$)`)
	shortsIDPattern = regexp.MustCompile(`shorts/([\w-]{11})`)
)

// VideoIDFromLink extracts the 11 character video id from a permalink.
// Returns "" when the link carries no id.
func VideoIDFromLink(href string) string {
	if m := shortsIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	if m := watchIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}
