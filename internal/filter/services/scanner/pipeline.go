package scanner

import (
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/ruleindex"
	"github.com/haukened/tubefilter/internal/filter/repos/ruleindex/bloom"
	"github.com/haukened/tubefilter/internal/filter/services/policy"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
)

// Pipeline is a Scanner together with the classifier its policy consults.
type Pipeline struct {
	Classifier *relevance.Classifier
	Scanner    *Scanner
}

// NewPipeline builds the relevance classifier, a policy with a bloom
// prefilter over exact keywords, and a Scanner for doc. backend and cache may
// be nil.
func NewPipeline(doc domain.Document, backend relevance.Backend, cache relevance.VerdictCache, opts Options) *Pipeline {
	cls := relevance.New(backend, relevance.Options{Cache: cache, Logger: opts.Logger})
	factory := bloom.NewFactory()
	pol := policy.New(cls, policy.Options{
		Prefilter: func(folded []string) policy.Prefilter {
			return ruleindex.NewExactIndex(factory, folded)
		},
	})
	return &Pipeline{Classifier: cls, Scanner: New(doc, pol, opts)}
}
