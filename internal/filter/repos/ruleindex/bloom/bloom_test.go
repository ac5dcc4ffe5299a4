package bloom

import (
	"fmt"
	"sync"
	"testing"

	"github.com/haukened/tubefilter/internal/filter/repos/ruleindex"
)

func TestSizer_Size(t *testing.T) {
	s := NewSizer()
	m, k := s.Size(1000, 0.01)
	if m < 9000 || m > 10000 {
		t.Fatalf("unexpected m=%d for n=1000 p=0.01", m)
	}
	if k != 7 {
		t.Fatalf("unexpected k=%d, want 7", k)
	}
	m0, k0 := s.Size(0, 5)
	if m0 == 0 || k0 == 0 {
		t.Fatalf("defaults must clamp to >=1, got m=%d k=%d", m0, k0)
	}
}

func TestFactory_New_Basic(t *testing.T) {
	bf := NewFactory().New(128, 0.01)
	key := []byte("spoiler")
	if bf.MightContain(key) {
		t.Fatalf("unexpected positive before add")
	}
	bf.Add(key)
	if !bf.MightContain(key) {
		t.Fatalf("expected maybe after add")
	}
}

func TestFilter_ConcurrentReads(t *testing.T) {
	bf := NewFactory().New(64, 0.01)
	for i := 0; i < 64; i++ {
		bf.Add([]byte(fmt.Sprintf("kw%02d", i)))
	}
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 64; i++ {
				if !bf.MightContain([]byte(fmt.Sprintf("kw%02d", i))) {
					t.Errorf("false negative for kw%02d", i)
				}
			}
		}()
	}
	wg.Wait()
}

func TestExactIndex_WithBloom(t *testing.T) {
	x := ruleindex.NewExactIndex(NewFactory(), []string{"full title one", "full title two"})
	if !x.MightContain("full title one") {
		t.Fatalf("indexed value must never be a false negative")
	}
}
