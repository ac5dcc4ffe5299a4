package classifier

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
)

// Chain tries each backend in order until one returns without error.
// A negative verdict is an answer, not a failure, and stops the chain.
type Chain []relevance.Backend

// NewChain drops nil backends.
func NewChain(backends ...relevance.Backend) Chain {
	out := make(Chain, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (ch Chain) Classify(ctx context.Context, req relevance.Request) (domain.RelevanceVerdict, error) {
	if len(ch) == 0 {
		return domain.NotRelated(), errors.New("classifier: no backends configured")
	}
	var errs error
	for _, b := range ch {
		v, err := b.Classify(ctx, req)
		if err == nil {
			return v, nil
		}
		errs = multierr.Append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return domain.NotRelated(), errs
}

var _ relevance.Backend = Chain(nil)
