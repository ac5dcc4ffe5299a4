package policy

import (
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/match"
)

// RuleSet is the block-mode rule lists compiled against one MatchOptions value.
// It is immutable and safe for concurrent use.
type RuleSet struct {
	opts     domain.MatchOptions
	keywords []match.Pattern
	creators []string
	exact    Prefilter
}

// Compile builds a RuleSet. build may be nil; it is only consulted in exact mode.
func Compile(keywords, creators []string, opts domain.MatchOptions, build PrefilterBuilder) *RuleSet {
	rs := &RuleSet{
		opts:     opts,
		keywords: make([]match.Pattern, 0, len(keywords)),
		creators: make([]string, 0, len(creators)),
	}
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		p := match.Compile(kw, opts)
		rs.keywords = append(rs.keywords, p)
		folded = append(folded, p.Normalized())
	}
	for _, c := range creators {
		if c != "" {
			rs.creators = append(rs.creators, c)
		}
	}
	if opts.Mode == domain.MatchExact && build != nil && len(folded) > 0 {
		rs.exact = build(folded)
	}
	return rs
}

// Empty reports whether the set has no rules at all.
func (rs *RuleSet) Empty() bool {
	return len(rs.keywords) == 0 && len(rs.creators) == 0
}

// Decide evaluates keywords in list order, then creators in list order.
// The first hit wins; a keyword hit always beats a creator hit.
func (rs *RuleSet) Decide(v domain.VideoCandidate) domain.Decision {
	if kw, ok := rs.matchKeyword(v.Title); ok {
		return domain.KeywordDecision(kw)
	}
	for _, c := range rs.creators {
		if match.MatchesCreator(v.CreatorName, c, rs.opts.CaseSensitive) {
			return domain.CreatorDecision(c)
		}
	}
	return domain.AllowDecision()
}

func (rs *RuleSet) matchKeyword(title string) (string, bool) {
	if title == "" {
		return "", false
	}
	if rs.exact != nil && !rs.exact.MightContain(match.Fold(title, rs.opts.CaseSensitive)) {
		return "", false
	}
	for _, p := range rs.keywords {
		if p.Match(title) {
			return p.Raw(), true
		}
	}
	return "", false
}
