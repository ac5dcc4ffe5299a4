package domain

import (
	"fmt"
	"strings"
)

// RuleKind identifies which user list a rule belongs to.
//
// keyword  - matched against the video title using the global match mode
// creator  - matched against the creator name, always as a substring
// interest - show-mode allow list term
type RuleKind uint8

const (
	// RuleKeyword is a blocked title keyword.
	RuleKeyword RuleKind = iota
	// RuleCreator is a blocked creator (channel) name.
	RuleCreator
	// RuleInterest is a show-mode interest term.
	RuleInterest
)

// String returns a stable string representation of the rule kind.
func (k RuleKind) String() string {
	switch k {
	case RuleKeyword:
		return "keyword"
	case RuleCreator:
		return "creator"
	case RuleInterest:
		return "interest"
	default:
		return fmt.Sprintf("RuleKind(%d)", k)
	}
}

// ParseRuleKind converts a string into a RuleKind.
// Accepts singular and plural forms, case-insensitive.
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keyword", "keywords":
		return RuleKeyword, nil
	case "creator", "creators", "channel", "channels":
		return RuleCreator, nil
	case "interest", "interests":
		return RuleInterest, nil
	default:
		return 0, fmt.Errorf("unsupported RuleKind: %q", s)
	}
}

// FilterRule is a single entry of one of the user lists.
// Rules are immutable once stored; uniqueness is case-insensitive within a kind.
type FilterRule struct {
	Kind  RuleKind
	Value string
}

// NewFilterRule constructs a FilterRule and validates its fields.
// The value is trimmed but otherwise kept as provided.
func NewFilterRule(kind RuleKind, value string) (FilterRule, error) {
	r := FilterRule{Kind: kind, Value: strings.TrimSpace(value)}
	if err := r.Validate(); err != nil {
		return FilterRule{}, err
	}
	return r, nil
}

// Validate checks the FilterRule for required fields and supported values.
func (r FilterRule) Validate() error {
	if r.Value == "" {
		return fmt.Errorf("rule value must not be empty")
	}
	switch r.Kind {
	case RuleKeyword, RuleCreator, RuleInterest:
		// ok
	default:
		return fmt.Errorf("unsupported RuleKind: %d", r.Kind)
	}
	return nil
}

// SameAs reports whether two rules collide under the case-insensitive uniqueness rule.
func (r FilterRule) SameAs(o FilterRule) bool {
	return r.Kind == o.Kind && strings.EqualFold(r.Value, o.Value)
}

// ContainsFold reports whether list already holds value, ignoring case.
func ContainsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
