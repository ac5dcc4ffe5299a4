package ruleindex

// DefaultFPRate is the false positive target for rule indexes.
const DefaultFPRate = 0.01

// ExactIndex answers "might this normalized title equal any rule value".
// A false answer is definitive; a true answer must be confirmed by the caller.
type ExactIndex struct {
	bf BloomFilter
}

// NewExactIndex indexes values, which must already be case folded by the caller.
func NewExactIndex(f BloomFactory, values []string) *ExactIndex {
	bf := f.New(uint64(len(values)), DefaultFPRate)
	for _, v := range values {
		bf.Add([]byte(v))
	}
	return &ExactIndex{bf: bf}
}

// MightContain reports whether s may be one of the indexed values.
func (x *ExactIndex) MightContain(s string) bool {
	if x == nil || x.bf == nil {
		return true
	}
	return x.bf.MightContain([]byte(s))
}
