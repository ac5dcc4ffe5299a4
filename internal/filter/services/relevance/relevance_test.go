package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) Classify(ctx context.Context, req Request) (domain.RelevanceVerdict, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.RelevanceVerdict), args.Error(1)
}

// mapCache is an unbounded VerdictCache for tests.
type mapCache struct {
	m            map[string]domain.RelevanceVerdict
	hits, misses uint64
}

func newMapCache() *mapCache { return &mapCache{m: map[string]domain.RelevanceVerdict{}} }

func (c *mapCache) Get(k string) (domain.RelevanceVerdict, bool) {
	v, ok := c.m[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}
func (c *mapCache) Put(k string, v domain.RelevanceVerdict) { c.m[k] = v }
func (c *mapCache) Len() int                               { return len(c.m) }
func (c *mapCache) Purge()                                 { c.m = map[string]domain.RelevanceVerdict{} }
func (c *mapCache) Stats() (uint64, uint64, uint64)        { return c.hits, c.misses, 0 }

var video = domain.VideoCandidate{
	Title:       "Building a compiler",
	CreatorName: "Some Channel",
	ExternalID:  "abcdefghijk",
}

func newClassifier(b Backend, c VerdictCache) *Classifier {
	return New(b, Options{Cache: c, Logger: log.NewNoopLogger()})
}

func TestClassify_EmptyInterests(t *testing.T) {
	b := &mockBackend{}
	c := newClassifier(b, nil)
	assert.Equal(t, domain.NotRelated(), c.Classify(context.Background(), video, nil))
	b.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestClassify_DirectMatchShortCircuits(t *testing.T) {
	b := &mockBackend{}
	c := newClassifier(b, newMapCache())
	cases := []struct {
		name      string
		interests []string
		want      string
	}{
		{"title", []string{"cooking", "Compiler"}, "Compiler"},
		{"creator", []string{"some channel"}, "some channel"},
		{"first in list order wins", []string{"building", "compiler"}, "building"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(context.Background(), video, tc.interests)
			assert.Equal(t, domain.RelatedTo(tc.want), got)
		})
	}
	assert.Equal(t, uint64(0), c.ExternalCalls())
	b.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestClassify_DescriptionParticipates(t *testing.T) {
	c := newClassifier(nil, nil)
	v := video
	v.Description = "a deep dive into LLVM"
	assert.True(t, c.Classify(context.Background(), v, []string{"llvm"}).Related)
}

func TestClassify_CachesSuccess(t *testing.T) {
	b := &mockBackend{}
	cache := newMapCache()
	c := newClassifier(b, cache)
	interests := []string{"programming"}
	b.On("Classify", mock.Anything, mock.Anything).Return(domain.RelatedTo("programming"), nil).Once()

	first := c.Classify(context.Background(), video, interests)
	second := c.Classify(context.Background(), video, interests)

	assert.Equal(t, first, second)
	assert.True(t, first.Related)
	assert.Equal(t, uint64(1), c.ExternalCalls())
	b.AssertExpectations(t)
}

func TestClassify_CachesNegativeVerdicts(t *testing.T) {
	b := &mockBackend{}
	c := newClassifier(b, newMapCache())
	b.On("Classify", mock.Anything, mock.Anything).Return(domain.NotRelated(), nil).Once()

	c.Classify(context.Background(), video, []string{"cooking"})
	c.Classify(context.Background(), video, []string{"cooking"})
	assert.Equal(t, uint64(1), c.ExternalCalls())
}

func TestClassify_FailuresAreNotCached(t *testing.T) {
	b := &mockBackend{}
	c := newClassifier(b, newMapCache())
	b.On("Classify", mock.Anything, mock.Anything).Return(domain.RelevanceVerdict{}, errors.New("503")).Twice()

	assert.False(t, c.Classify(context.Background(), video, []string{"cooking"}).Related)
	assert.False(t, c.Classify(context.Background(), video, []string{"cooking"}).Related)
	assert.Equal(t, uint64(2), c.ExternalCalls())
	b.AssertExpectations(t)
}

func TestClassify_NoExternalIDIsNeverCached(t *testing.T) {
	b := &mockBackend{}
	cache := newMapCache()
	c := newClassifier(b, cache)
	v := video
	v.ExternalID = ""
	b.On("Classify", mock.Anything, mock.Anything).Return(domain.RelatedTo("x"), nil).Twice()

	c.Classify(context.Background(), v, []string{"x-ray"})
	c.Classify(context.Background(), v, []string{"x-ray"})
	assert.Equal(t, 0, cache.Len())
	b.AssertExpectations(t)
}

func TestClassify_CancelledSessionDiscardsResult(t *testing.T) {
	b := &mockBackend{}
	cache := newMapCache()
	c := newClassifier(b, cache)
	ctx, cancel := context.WithCancel(context.Background())
	b.On("Classify", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(domain.RelatedTo("cooking"), nil).Once()

	assert.False(t, c.Classify(ctx, video, []string{"cooking"}).Related)
	assert.Equal(t, 0, cache.Len())
}

func TestClassify_Reset(t *testing.T) {
	b := &mockBackend{}
	cache := newMapCache()
	c := newClassifier(b, cache)
	b.On("Classify", mock.Anything, mock.Anything).Return(domain.NotRelated(), nil)
	c.Classify(context.Background(), video, []string{"cooking"})
	assert.Equal(t, 1, cache.Len())
	c.Reset()
	assert.Equal(t, 0, cache.Len())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "", CacheKey("", []string{"a"}))
	assert.Equal(t, CacheKey("id", []string{"B", "a"}), CacheKey("id", []string{"a", "b"}))
	assert.Equal(t, "id:a,b", CacheKey("id", []string{"b", "A"}))
	assert.NotEqual(t, CacheKey("id", []string{"a"}), CacheKey("id2", []string{"a"}))
}
