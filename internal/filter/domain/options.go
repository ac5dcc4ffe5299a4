package domain

import (
	"fmt"
	"strings"
	"time"
)

// MatchMode is the comparison strategy used for keyword rules.
type MatchMode uint8

const (
	// MatchPartial is substring containment. It is the default.
	MatchPartial MatchMode = iota
	// MatchWord matches the pattern as a whole word.
	MatchWord
	// MatchExact requires full-string equality.
	MatchExact
)

// String returns the storage representation of the match mode.
func (m MatchMode) String() string {
	switch m {
	case MatchPartial:
		return "partial"
	case MatchWord:
		return "word"
	case MatchExact:
		return "exact"
	default:
		return fmt.Sprintf("MatchMode(%d)", m)
	}
}

// ParseMatchMode converts a string into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "partial":
		return MatchPartial, nil
	case "word":
		return MatchWord, nil
	case "exact":
		return MatchExact, nil
	default:
		return 0, fmt.Errorf("unsupported MatchMode: %q", s)
	}
}

// MatchOptions controls how MatchEngine compares text against a pattern.
type MatchOptions struct {
	Mode          MatchMode
	CaseSensitive bool
}

// DisplayStyle is how a blocked element is suppressed.
type DisplayStyle uint8

const (
	// StyleHide removes the element from layout.
	StyleHide DisplayStyle = iota
	// StyleBlur blurs the element and lowers its opacity.
	StyleBlur
	// StyleReplace swaps the element content for a placeholder.
	StyleReplace
)

// String returns the storage representation of the style.
func (s DisplayStyle) String() string {
	switch s {
	case StyleHide:
		return "hide"
	case StyleBlur:
		return "blur"
	case StyleReplace:
		return "replace"
	default:
		return fmt.Sprintf("DisplayStyle(%d)", s)
	}
}

// ParseDisplayStyle converts a string into a DisplayStyle.
// Unknown or empty values fall back to StyleHide; ok reports whether the input was recognised.
func ParseDisplayStyle(s string) (style DisplayStyle, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hide":
		return StyleHide, true
	case "blur":
		return StyleBlur, true
	case "replace":
		return StyleReplace, true
	default:
		return StyleHide, false
	}
}

// DefaultScanInterval is the debounce delay used when options do not set one.
const DefaultScanInterval = 1000 * time.Millisecond

// Options is the immutable match/display options value captured at scan start.
type Options struct {
	Style        DisplayStyle
	Match        MatchOptions
	ScanInterval time.Duration
}

// DefaultOptions returns the options applied when the settings store holds none.
func DefaultOptions() Options {
	return Options{
		Style:        StyleHide,
		Match:        MatchOptions{Mode: MatchPartial, CaseSensitive: false},
		ScanInterval: DefaultScanInterval,
	}
}

// Debounce returns the scan interval, substituting the default for non-positive values.
func (o Options) Debounce() time.Duration {
	if o.ScanInterval <= 0 {
		return DefaultScanInterval
	}
	return o.ScanInterval
}
