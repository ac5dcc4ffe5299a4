// Package policy turns settings and a video candidate into a render decision.
package policy

import (
	"context"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Options configures a Policy.
type Options struct {
	// Prefilter indexes exact-mode keywords. Nil disables the prefilter.
	Prefilter PrefilterBuilder
}

// Policy composes the match engine (block mode) and the relevance classifier (show mode).
type Policy struct {
	relevance Relevance
	prefilter PrefilterBuilder
}

// New returns a Policy. relevance may be nil when show mode is never used;
// show-mode decisions then fail closed.
func New(relevance Relevance, opts Options) *Policy {
	return &Policy{relevance: relevance, prefilter: opts.Prefilter}
}

// Plan is the immutable decision input captured at scan start.
type Plan struct {
	mode      domain.FilterMode
	rules     *RuleSet
	interests []string
	relevance Relevance
}

// Prepare snapshots the settings for one scan pass.
func (p *Policy) Prepare(s domain.Settings) *Plan {
	plan := &Plan{mode: s.Mode, relevance: p.relevance}
	if s.Mode == domain.ModeShow {
		plan.interests = append([]string(nil), s.InterestKeywords...)
		return plan
	}
	plan.rules = Compile(s.BlockedKeywords, s.BlockedCreators, s.Options.Match, p.prefilter)
	return plan
}

// Mode returns the filter mode the plan was prepared for.
func (pl *Plan) Mode() domain.FilterMode { return pl.mode }

// Empty reports whether the plan has nothing to evaluate.
func (pl *Plan) Empty() bool {
	if pl.mode == domain.ModeShow {
		return len(pl.interests) == 0
	}
	return pl.rules.Empty()
}

// Decide returns the decision for v. Block-mode decisions never suspend.
func (pl *Plan) Decide(ctx context.Context, v domain.VideoCandidate) domain.Decision {
	if pl.mode != domain.ModeShow {
		return pl.rules.Decide(v)
	}
	if pl.relevance == nil {
		return domain.ShowDecision(domain.NotRelated())
	}
	return domain.ShowDecision(pl.relevance.Classify(ctx, v, pl.interests))
}

// DecideBlock evaluates v against the block lists regardless of plan mode.
// The watch-page interstitial and channel banner only consider block rules.
func (pl *Plan) DecideBlock(v domain.VideoCandidate) domain.Decision {
	if pl.rules == nil {
		return domain.AllowDecision()
	}
	return pl.rules.Decide(v)
}
