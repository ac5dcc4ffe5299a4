package scanner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
	"github.com/haukened/tubefilter/internal/filter/services/render"
)

type titleBackend struct {
	mu      sync.Mutex
	related map[string]string
	titles  []string
}

func (b *titleBackend) Classify(_ context.Context, req relevance.Request) (domain.RelevanceVerdict, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.titles = append(b.titles, req.Title)
	if term, ok := b.related[req.Title]; ok {
		return domain.RelatedTo(term), nil
	}
	return domain.NotRelated(), nil
}

func TestNewPipeline(t *testing.T) {
	cases := []struct {
		name       string
		settings   func() domain.Settings
		hidden     []string
		visible    []string
		interest   []string
		backendHit int
	}{
		{
			name: "exact keywords go through the prefilter",
			settings: func() domain.Settings {
				s := blockSettings([]string{"plain", "foo"}, nil)
				s.Options.Mode = domain.MatchExact
				return s
			},
			hidden:  []string{"v2"},
			visible: []string{"v1", "v3"},
		},
		{
			name: "show mode consults the backend",
			settings: func() domain.Settings {
				s := domain.DefaultSettings()
				s.Mode = domain.ModeShow
				s.InterestKeywords = []string{"comedy"}
				return s
			},
			hidden:     []string{"v2", "v3"},
			interest:   []string{"v1"},
			backendHit: 3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parse(t, homePage, "https://www.youtube.com/")
			backend := &titleBackend{related: map[string]string{"Foo show": "comedy"}}
			p := NewPipeline(doc, backend, nil, Options{Logger: log.NewNoopLogger()})
			require.NotNil(t, p.Classifier)
			require.NotNil(t, p.Scanner)

			_, err := p.Scanner.Scan(context.Background(), Pass{Page: domain.PageHome, Settings: tc.settings(), Generation: 1})
			require.NoError(t, err)
			p.Scanner.Wait()

			for _, id := range tc.hidden {
				assert.Equal(t, "none", byID(t, doc, id).Style("display"), id)
			}
			for _, id := range tc.visible {
				assert.Empty(t, byID(t, doc, id).Style("display"), id)
			}
			for _, id := range tc.interest {
				assert.True(t, byID(t, doc, id).HasClass(render.ClassInterestMatch), id)
			}
			assert.Equal(t, uint64(tc.backendHit), p.Classifier.ExternalCalls())
		})
	}
}
