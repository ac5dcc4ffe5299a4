package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

var (
	exact     = domain.MatchOptions{Mode: domain.MatchExact}
	exactCS   = domain.MatchOptions{Mode: domain.MatchExact, CaseSensitive: true}
	word      = domain.MatchOptions{Mode: domain.MatchWord}
	wordCS    = domain.MatchOptions{Mode: domain.MatchWord, CaseSensitive: true}
	partial   = domain.MatchOptions{Mode: domain.MatchPartial}
	partialCS = domain.MatchOptions{Mode: domain.MatchPartial, CaseSensitive: true}
)

func TestMatches(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		pattern string
		opts    domain.MatchOptions
		want    bool
	}{
		{"exact equal", "Cat", "cat", exact, true},
		{"exact case sensitive differs", "Cat", "cat", exactCS, false},
		{"exact case sensitive equal", "Cat", "Cat", exactCS, true},
		{"exact substring is not enough", "the cat", "cat", exact, false},
		{"exact no trimming", "cat ", "cat", exact, false},

		{"word matches whole word", "the cat sat", "cat", word, true},
		{"word rejects prefix", "category", "cat", word, false},
		{"word case insensitive", "The CAT sat", "cat", word, true},
		{"word case sensitive", "The CAT sat", "cat", wordCS, false},
		{"word punctuation boundary", "cat, dog", "cat", word, true},
		{"word metacharacters escaped", "price is 1.5x today", "1.5x", word, true},
		{"word dot is literal", "price is 105x today", "1.5x", word, false},
		{"word phrase", "learn go fast", "go fast", word, true},

		{"partial substring", "category", "cat", partial, true},
		{"partial case folding", "CATEGORY", "Cat", partial, true},
		{"partial case sensitive", "CATEGORY", "cat", partialCS, false},
		{"partial absent", "dog", "cat", partial, false},

		{"empty text", "", "cat", partial, false},
		{"empty pattern", "cat", "", partial, false},
		{"empty pattern word", "cat", "", word, false},
		{"both empty exact", "", "", exact, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.text, tc.pattern, tc.opts))
		})
	}
}

func TestMatchesCreator_IgnoresMatchMode(t *testing.T) {
	// the creator check takes no mode at all; exact-mode settings still use substring rules
	assert.True(t, MatchesCreator("barstool", "bar", false))
	assert.True(t, MatchesCreator("BarStool", "bar", false))
	assert.False(t, MatchesCreator("BarStool", "bar", true))
	assert.False(t, MatchesCreator("", "bar", false))
	assert.False(t, MatchesCreator("bar", "", false))
}

func TestPattern_Accessors(t *testing.T) {
	p := Compile("Spoiler", partial)
	assert.Equal(t, "Spoiler", p.Raw())
	assert.Equal(t, "spoiler", p.Normalized())
	assert.False(t, Pattern{}.Match("anything"))
	assert.Equal(t, "ABC", Fold("ABC", true))
}
