package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/tubefilter/internal/filter/repos/ruleindex"
)

// filter wraps a bits-and-blooms filter. Writes are serialized; a compiled
// rule set only reads after construction.
type filter struct {
	mu sync.RWMutex
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

func (f *filter) MightContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key)
}

type factory struct {
	sizer ruleindex.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() ruleindex.BloomFactory { return factory{sizer: NewSizer()} }

func (f factory) New(capacity uint64, fpRate float64) ruleindex.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}

var _ ruleindex.BloomFilter = (*filter)(nil)
var _ ruleindex.BloomFactory = factory{}
