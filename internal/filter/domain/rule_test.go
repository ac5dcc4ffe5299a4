package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRuleKind(t *testing.T) {
	cases := []struct {
		in      string
		want    RuleKind
		wantErr bool
	}{
		{"keyword", RuleKeyword, false},
		{"Keywords", RuleKeyword, false},
		{"creators", RuleCreator, false},
		{"channel", RuleCreator, false},
		{" interest ", RuleInterest, false},
		{"tags", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRuleKind(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) RuleKind {
	t.Helper()
	k, err := ParseRuleKind(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return k
}

func TestNewFilterRule(t *testing.T) {
	r, err := NewFilterRule(RuleKeyword, "  spoiler ")
	assert.NoError(t, err)
	assert.Equal(t, "spoiler", r.Value)

	_, err = NewFilterRule(RuleCreator, "   ")
	assert.Error(t, err)

	_, err = NewFilterRule(RuleKind(42), "x")
	assert.Error(t, err)
}

func TestFilterRule_SameAs(t *testing.T) {
	a := FilterRule{Kind: RuleKeyword, Value: "Spoiler"}
	assert.True(t, a.SameAs(FilterRule{Kind: RuleKeyword, Value: "spoiler"}))
	assert.False(t, a.SameAs(FilterRule{Kind: RuleCreator, Value: "spoiler"}))
	assert.True(t, ContainsFold([]string{"a", "SPOILER"}, "spoiler"))
	assert.False(t, ContainsFold(nil, "spoiler"))
}
