package settings

import (
	"fmt"
	"time"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Storage keys.
const (
	KeyBlockedKeywords  = "blockedKeywords"
	KeyBlockedCreators  = "blockedCreators"
	KeyInterestKeywords = "interestKeywords"
	KeyFilterMode       = "filterMode"
	KeyEnabled          = "enabled"
	KeyOptions          = "options"
	KeyStatistics       = "statistics"
)

// AllKeys lists every key the repository understands.
var AllKeys = []string{
	KeyBlockedKeywords, KeyBlockedCreators, KeyInterestKeywords,
	KeyFilterMode, KeyEnabled, KeyOptions, KeyStatistics,
}

// CheckKey returns ErrUnknownKey for keys outside AllKeys.
func CheckKey(key string) error {
	for _, k := range AllKeys {
		if k == key {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func listKey(kind domain.RuleKind) (string, error) {
	switch kind {
	case domain.RuleKeyword:
		return KeyBlockedKeywords, nil
	case domain.RuleCreator:
		return KeyBlockedCreators, nil
	case domain.RuleInterest:
		return KeyInterestKeywords, nil
	default:
		return "", fmt.Errorf("%w: rule kind %d", ErrUnknownKey, kind)
	}
}

// OptionsRecord is the stored shape of the options object. Absent fields keep
// their defaults when merged.
type OptionsRecord struct {
	BlockMode     *string `json:"blockMode,omitempty" yaml:"blockMode" koanf:"blockMode"`
	PartialMatch  *string `json:"partialMatch,omitempty" yaml:"partialMatch" koanf:"partialMatch"`
	CaseSensitive *bool   `json:"caseSensitive,omitempty" yaml:"caseSensitive" koanf:"caseSensitive"`
	ScanInterval  *int64  `json:"scanInterval,omitempty" yaml:"scanInterval" koanf:"scanInterval"` // milliseconds
}

// Merge overlays the record onto base. Unknown enum values are ignored, except
// the display style which falls back to hide.
func (o OptionsRecord) Merge(base domain.Options) domain.Options {
	out := base
	if o.BlockMode != nil {
		out.Style, _ = domain.ParseDisplayStyle(*o.BlockMode)
	}
	if o.PartialMatch != nil {
		if m, err := domain.ParseMatchMode(*o.PartialMatch); err == nil {
			out.Match.Mode = m
		}
	}
	if o.CaseSensitive != nil {
		out.Match.CaseSensitive = *o.CaseSensitive
	}
	if o.ScanInterval != nil && *o.ScanInterval > 0 {
		out.ScanInterval = time.Duration(*o.ScanInterval) * time.Millisecond
	}
	return out
}

// NewOptionsRecord converts options into their complete stored form.
func NewOptionsRecord(o domain.Options) OptionsRecord {
	style := o.Style.String()
	mode := o.Match.Mode.String()
	cs := o.Match.CaseSensitive
	ms := o.Debounce().Milliseconds()
	return OptionsRecord{BlockMode: &style, PartialMatch: &mode, CaseSensitive: &cs, ScanInterval: &ms}
}
