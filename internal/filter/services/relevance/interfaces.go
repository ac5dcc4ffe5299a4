package relevance

import (
	"context"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Request is the content sent to an external semantic classifier.
type Request struct {
	Title       string
	Creator     string
	Description string
	Labels      []string
}

// Backend is one external classification contract. Each backend interprets
// its own response shape and returns either a verdict or an error.
type Backend interface {
	Classify(ctx context.Context, req Request) (domain.RelevanceVerdict, error)
}

// VerdictCache memoizes verdicts by content identity and interest signature.
type VerdictCache interface {
	Get(key string) (domain.RelevanceVerdict, bool)
	Put(key string, v domain.RelevanceVerdict)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}
