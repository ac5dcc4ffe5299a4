package domain

// RelevanceVerdict is the show-mode classification of a single video.
type RelevanceVerdict struct {
	Related     bool
	MatchedTerm string
}

// NotRelated is the fail-closed verdict.
func NotRelated() RelevanceVerdict { return RelevanceVerdict{} }

// RelatedTo returns a positive verdict for term.
func RelatedTo(term string) RelevanceVerdict {
	return RelevanceVerdict{Related: true, MatchedTerm: term}
}
