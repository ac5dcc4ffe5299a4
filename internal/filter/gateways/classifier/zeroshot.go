package classifier

import (
	"context"
	"fmt"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
)

// AcceptanceThreshold is the score the best label must exceed.
const AcceptanceThreshold = 0.65

// ZeroShot is a zero-shot classification backend.
type ZeroShot struct {
	client
}

// NewZeroShot returns a ZeroShot backend for cfg.URL.
func NewZeroShot(cfg Config, opts ...Option) *ZeroShot {
	return &ZeroShot{client: newClient("zero-shot", cfg, opts...)}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify picks the highest scoring label and accepts it above AcceptanceThreshold.
func (z *ZeroShot) Classify(ctx context.Context, req relevance.Request) (domain.RelevanceVerdict, error) {
	payload := zeroShotRequest{
		Inputs:     fmt.Sprintf("%s. Channel: %s. %s", req.Title, req.Creator, req.Description),
		Parameters: zeroShotParameters{CandidateLabels: req.Labels},
	}
	var resp zeroShotResponse
	if err := z.postJSON(ctx, payload, &resp); err != nil {
		return domain.NotRelated(), err
	}
	if len(resp.Labels) == 0 || len(resp.Labels) != len(resp.Scores) {
		return domain.NotRelated(), fmt.Errorf("%w: zero-shot: %d labels, %d scores",
			ErrMalformedResponse, len(resp.Labels), len(resp.Scores))
	}
	best := 0
	for i, s := range resp.Scores {
		if s > resp.Scores[best] {
			best = i
		}
	}
	if resp.Scores[best] > AcceptanceThreshold {
		return domain.RelatedTo(resp.Labels[best]), nil
	}
	return domain.NotRelated(), nil
}

var _ relevance.Backend = (*ZeroShot)(nil)
