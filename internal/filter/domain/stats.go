package domain

import (
	"sort"
	"time"
)

// BlockRecord describes one block decision applied to a page element.
type BlockRecord struct {
	Title          string
	Creator        string
	MatchedKeyword string
	MatchedCreator string
	PageType       PageType
	At             time.Time
}

// LastBlocked is the persisted summary of the most recent block.
type LastBlocked struct {
	Title     string    `json:"title"`
	Channel   string    `json:"channel"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Statistics are cumulative block counters.
type Statistics struct {
	BlockedCount  uint64            `json:"blockedCount"`
	LastBlocked   *LastBlocked      `json:"lastBlocked,omitempty"`
	KeywordCounts map[string]uint64 `json:"keywordCounts"`
	CreatorCounts map[string]uint64 `json:"creatorCounts"`
}

// NewStatistics returns zeroed statistics with initialised maps.
func NewStatistics() Statistics {
	return Statistics{
		KeywordCounts: map[string]uint64{},
		CreatorCounts: map[string]uint64{},
	}
}

// Record folds a block record into the counters.
func (s *Statistics) Record(r BlockRecord) {
	if s.KeywordCounts == nil {
		s.KeywordCounts = map[string]uint64{}
	}
	if s.CreatorCounts == nil {
		s.CreatorCounts = map[string]uint64{}
	}
	s.BlockedCount++
	reason := ""
	if r.MatchedKeyword != "" {
		s.KeywordCounts[r.MatchedKeyword]++
		reason = "keyword: " + r.MatchedKeyword
	}
	if r.MatchedCreator != "" {
		s.CreatorCounts[r.MatchedCreator]++
		reason = "creator: " + r.MatchedCreator
	}
	s.LastBlocked = &LastBlocked{Title: r.Title, Channel: r.Creator, Reason: reason, Timestamp: r.At}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s Statistics) Clone() Statistics {
	out := Statistics{
		BlockedCount:  s.BlockedCount,
		KeywordCounts: make(map[string]uint64, len(s.KeywordCounts)),
		CreatorCounts: make(map[string]uint64, len(s.CreatorCounts)),
	}
	for k, v := range s.KeywordCounts {
		out.KeywordCounts[k] = v
	}
	for k, v := range s.CreatorCounts {
		out.CreatorCounts[k] = v
	}
	if s.LastBlocked != nil {
		lb := *s.LastBlocked
		out.LastBlocked = &lb
	}
	return out
}

// Count is a rule value with its block count.
type Count struct {
	Value string `json:"value"`
	Count uint64 `json:"count"`
}

// TopN returns the n highest counts in descending order, ties broken by value.
// n <= 0 returns every entry.
func TopN(counts map[string]uint64, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
