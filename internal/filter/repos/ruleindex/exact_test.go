package ruleindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// setFilter is an exact BloomFilter used to observe what the index stores.
type setFilter struct {
	keys     map[string]struct{}
	capacity uint64
}

func (s *setFilter) Add(key []byte) { s.keys[string(key)] = struct{}{} }
func (s *setFilter) MightContain(key []byte) bool {
	_, ok := s.keys[string(key)]
	return ok
}

type setFactory struct{ last *setFilter }

func (f *setFactory) New(capacity uint64, _ float64) BloomFilter {
	f.last = &setFilter{keys: map[string]struct{}{}, capacity: capacity}
	return f.last
}

func TestExactIndex(t *testing.T) {
	f := &setFactory{}
	x := NewExactIndex(f, []string{"spoiler", "drama"})
	assert.Equal(t, uint64(2), f.last.capacity)
	assert.True(t, x.MightContain("spoiler"))
	assert.False(t, x.MightContain("news"))
}

func TestExactIndex_NilIsPermissive(t *testing.T) {
	var x *ExactIndex
	assert.True(t, x.MightContain("anything"))
}
