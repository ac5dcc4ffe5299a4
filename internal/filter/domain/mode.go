package domain

import (
	"fmt"
	"strings"
)

// FilterMode selects deny-list or allow-list semantics. Exactly one is active at a time.
type FilterMode uint8

const (
	// ModeBlock hides videos matching a blocked keyword or creator.
	ModeBlock FilterMode = iota
	// ModeShow keeps only videos related to an interest term visible.
	ModeShow
)

// String returns the storage representation of the mode.
func (m FilterMode) String() string {
	switch m {
	case ModeBlock:
		return "block"
	case ModeShow:
		return "show"
	default:
		return fmt.Sprintf("FilterMode(%d)", m)
	}
}

// ParseFilterMode converts "block" or "show" (case-insensitive) into a FilterMode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return ModeBlock, nil
	case "show":
		return ModeShow, nil
	default:
		return 0, fmt.Errorf("unsupported FilterMode: %q", s)
	}
}
