// Package relevance decides whether a video is of interest in show mode.
package relevance

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Options configures a Classifier.
type Options struct {
	// Cache may be nil, in which case nothing is memoized.
	Cache  VerdictCache
	Logger log.Logger
}

// Classifier tries direct containment first and defers to the backend
// otherwise. Backend failures are fail-closed and never cached.
type Classifier struct {
	backend Backend
	cache   VerdictCache
	logger  log.Logger
	calls   atomic.Uint64
}

// New returns a Classifier. backend may be nil, which limits classification to
// direct containment.
func New(backend Backend, opts Options) *Classifier {
	c := &Classifier{backend: backend, cache: opts.Cache, logger: opts.Logger}
	if c.logger == nil {
		c.logger = log.GetLogger()
	}
	return c
}

// Classify returns whether v relates to any interest term.
func (c *Classifier) Classify(ctx context.Context, v domain.VideoCandidate, interests []string) domain.RelevanceVerdict {
	if len(interests) == 0 {
		return domain.NotRelated()
	}
	if term, ok := directMatch(v, interests); ok {
		return domain.RelatedTo(term)
	}

	key := CacheKey(v.ExternalID, interests)
	if key != "" && c.cache != nil {
		if verdict, ok := c.cache.Get(key); ok {
			return verdict
		}
	}
	if c.backend == nil {
		return domain.NotRelated()
	}

	c.calls.Add(1)
	verdict, err := c.backend.Classify(ctx, Request{
		Title:       v.Title,
		Creator:     v.CreatorName,
		Description: v.Description,
		Labels:      interests,
	})
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn(map[string]any{
				"component": "relevance",
				"video_id":  v.ExternalID,
				"error":     err,
			}, "classifier call failed, treating as not related")
		}
		return domain.NotRelated()
	}
	if ctx.Err() != nil {
		// session ended while the call was in flight
		return domain.NotRelated()
	}
	if key != "" && c.cache != nil {
		c.cache.Put(key, verdict)
	}
	return verdict
}

// Reset drops every cached verdict. Called on page navigation.
func (c *Classifier) Reset() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// ExternalCalls returns how many backend calls were issued.
func (c *Classifier) ExternalCalls() uint64 { return c.calls.Load() }

// CacheKey builds the verdict cache key from a video id and the interest list.
// The list is lower-cased and sorted so reordering does not split the cache.
// Videos without an id are not cacheable and yield "".
func CacheKey(externalID string, interests []string) string {
	if externalID == "" {
		return ""
	}
	sig := make([]string, len(interests))
	for i, t := range interests {
		sig[i] = strings.ToLower(t)
	}
	sort.Strings(sig)
	return externalID + ":" + strings.Join(sig, ",")
}

func directMatch(v domain.VideoCandidate, interests []string) (string, bool) {
	blob := strings.ToLower(v.Title + " " + v.CreatorName + " " + v.Description)
	for _, term := range interests {
		if term == "" {
			continue
		}
		if strings.Contains(blob, strings.ToLower(term)) {
			return term, true
		}
	}
	return "", false
}
