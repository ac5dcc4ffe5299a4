package policy

import (
	"context"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Relevance is the show-mode classifier the policy delegates to.
type Relevance interface {
	Classify(ctx context.Context, v domain.VideoCandidate, interests []string) domain.RelevanceVerdict
}

// Prefilter is a probabilistic membership test over case-folded keywords.
// A false result must be definitive.
type Prefilter interface {
	MightContain(s string) bool
}

// PrefilterBuilder indexes exact-mode keywords when a rule set is compiled.
type PrefilterBuilder func(folded []string) Prefilter
