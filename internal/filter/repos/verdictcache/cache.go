// Package verdictcache is the bounded relevance verdict cache.
package verdictcache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
)

// verdictCache is an LRU-backed relevance.VerdictCache with hit/miss/eviction counters.
type verdictCache struct {
	lru       *lru.Cache[string, domain.RelevanceVerdict]
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache always misses. Used when size <= 0.
type disabledCache struct{}

// newLRU is a seam for tests to force constructor errors.
var newLRU = lru.NewWithEvict[string, domain.RelevanceVerdict]

// New creates a cache holding at most size verdicts. size <= 0 disables caching.
func New(size int) (relevance.VerdictCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}
	vc := &verdictCache{}
	// evictions include Purge on navigation
	cache, err := newLRU(size, func(string, domain.RelevanceVerdict) {
		vc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	vc.lru = cache
	return vc, nil
}

func (c *verdictCache) Get(key string) (domain.RelevanceVerdict, bool) {
	if v, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return v, true
	}
	c.misses.Add(1)
	return domain.RelevanceVerdict{}, false
}

func (c *verdictCache) Put(key string, v domain.RelevanceVerdict) { c.lru.Add(key, v) }

func (c *verdictCache) Len() int { return c.lru.Len() }

func (c *verdictCache) Purge() { c.lru.Purge() }

func (c *verdictCache) Stats() (hits, misses, evictions uint64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

func (*disabledCache) Get(string) (domain.RelevanceVerdict, bool) {
	return domain.RelevanceVerdict{}, false
}
func (*disabledCache) Put(string, domain.RelevanceVerdict) {}
func (*disabledCache) Len() int                            { return 0 }
func (*disabledCache) Purge()                              {}
func (*disabledCache) Stats() (uint64, uint64, uint64)     { return 0, 0, 0 }

var _ relevance.VerdictCache = (*verdictCache)(nil)
var _ relevance.VerdictCache = (*disabledCache)(nil)
