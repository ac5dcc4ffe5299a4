package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
)

const (
	completionMaxTokens   = 50
	completionTemperature = 0.3
)

// Completion is a free-text completion backend.
type Completion struct {
	client
}

// NewCompletion returns a Completion backend for cfg.URL.
func NewCompletion(cfg Config, opts ...Option) *Completion {
	return &Completion{client: newClient("completion", cfg, opts...)}
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Classify asks the model whether the video relates to a label. The answer is
// accepted only when it is affirmative and names the label verbatim.
func (c *Completion) Classify(ctx context.Context, req relevance.Request) (domain.RelevanceVerdict, error) {
	var resp completionResponse
	if err := c.postJSON(ctx, completionRequest{
		Prompt:      completionPrompt(req),
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	}, &resp); err != nil {
		return domain.NotRelated(), err
	}
	if len(resp.Choices) == 0 {
		return domain.NotRelated(), fmt.Errorf("%w: completion: empty choices", ErrMalformedResponse)
	}
	return interpretCompletion(resp.Choices[0].Text, req.Labels), nil
}

func interpretCompletion(text string, labels []string) domain.RelevanceVerdict {
	text = strings.ToLower(text)
	if !strings.Contains(text, "yes") && !strings.Contains(text, "related") {
		return domain.NotRelated()
	}
	for _, label := range labels {
		if label != "" && strings.Contains(text, strings.ToLower(label)) {
			return domain.RelatedTo(label)
		}
	}
	return domain.NotRelated()
}

func completionPrompt(req relevance.Request) string {
	return fmt.Sprintf(
		"Video title: %q\nChannel: %q\nDescription: %q\n\n"+
			"Determine if this video is related to any of these topics: %s. If yes, which topic?",
		req.Title, req.Creator, req.Description, strings.Join(req.Labels, ", "),
	)
}

var _ relevance.Backend = (*Completion)(nil)
