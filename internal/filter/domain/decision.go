package domain

import "fmt"

// Decision is the outcome of evaluating a video under the active filter mode.
// Pure value type; consumed immediately by the render effector and never retained.
//
// In block mode at most one of MatchedKeyword/MatchedCreator is set.
// In show mode MatchedInterest is set when Show is true and the classifier named a term.
type Decision struct {
	Mode            FilterMode
	Block           bool
	Show            bool
	MatchedKeyword  string
	MatchedCreator  string
	MatchedInterest string
}

// Suppress reports whether the element must be hidden under this decision.
func (d Decision) Suppress() bool {
	if d.Mode == ModeShow {
		return !d.Show
	}
	return d.Block
}

// Reason returns a human-readable explanation of a block decision.
func (d Decision) Reason() string {
	switch {
	case d.MatchedKeyword != "":
		return fmt.Sprintf("Blocked keyword: %q", d.MatchedKeyword)
	case d.MatchedCreator != "":
		return fmt.Sprintf("Blocked creator: %q", d.MatchedCreator)
	case d.Mode == ModeShow && !d.Show:
		return "Not in your interests"
	default:
		return ""
	}
}

// MatchedTerm returns whichever rule value produced the decision.
func (d Decision) MatchedTerm() string {
	switch {
	case d.MatchedKeyword != "":
		return d.MatchedKeyword
	case d.MatchedCreator != "":
		return d.MatchedCreator
	default:
		return d.MatchedInterest
	}
}

// AllowDecision returns a block-mode decision that leaves the video visible.
func AllowDecision() Decision { return Decision{Mode: ModeBlock} }

// KeywordDecision blocks because of a title keyword.
func KeywordDecision(keyword string) Decision {
	return Decision{Mode: ModeBlock, Block: true, MatchedKeyword: keyword}
}

// CreatorDecision blocks because of a creator rule.
func CreatorDecision(creator string) Decision {
	return Decision{Mode: ModeBlock, Block: true, MatchedCreator: creator}
}

// ShowDecision builds a show-mode decision from a relevance verdict.
func ShowDecision(v RelevanceVerdict) Decision {
	if !v.Related {
		return Decision{Mode: ModeShow}
	}
	return Decision{Mode: ModeShow, Show: true, MatchedInterest: v.MatchedTerm}
}
