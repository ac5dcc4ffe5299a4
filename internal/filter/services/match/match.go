// Package match implements the keyword and creator comparison rules.
// Everything here is pure: no state, no I/O, and no input makes it panic.
package match

import (
	"regexp"
	"strings"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Pattern is a keyword compiled once for a given MatchOptions.
// The zero Pattern never matches.
type Pattern struct {
	raw  string
	norm string
	opts domain.MatchOptions
	word *regexp.Regexp
}

// Compile prepares pattern for repeated matching. Word mode builds the
// boundary regexp here so scan passes do not recompile it per element.
func Compile(pattern string, opts domain.MatchOptions) Pattern {
	if pattern == "" {
		return Pattern{}
	}
	p := Pattern{raw: pattern, norm: fold(pattern, opts.CaseSensitive), opts: opts}
	if opts.Mode == domain.MatchWord {
		expr := `\b` + regexp.QuoteMeta(pattern) + `\b`
		if !opts.CaseSensitive {
			expr = "(?i)" + expr
		}
		// QuoteMeta output always compiles.
		p.word = regexp.MustCompile(expr)
	}
	return p
}

// Raw returns the pattern as the user stored it.
func (p Pattern) Raw() string { return p.raw }

// Normalized returns the pattern after case folding.
func (p Pattern) Normalized() string { return p.norm }

// Match reports whether text matches the compiled pattern.
func (p Pattern) Match(text string) bool {
	if p.raw == "" || text == "" {
		return false
	}
	switch p.opts.Mode {
	case domain.MatchExact:
		return fold(text, p.opts.CaseSensitive) == p.norm
	case domain.MatchWord:
		return p.word.MatchString(text)
	default:
		return strings.Contains(fold(text, p.opts.CaseSensitive), p.norm)
	}
}

// Matches reports whether text matches pattern under opts.
func Matches(text, pattern string, opts domain.MatchOptions) bool {
	return Compile(pattern, opts).Match(text)
}

// MatchesCreator reports whether creator contains pattern. Creator rules are
// always substring rules; the global match mode does not apply to them.
func MatchesCreator(creator, pattern string, caseSensitive bool) bool {
	if creator == "" || pattern == "" {
		return false
	}
	return strings.Contains(fold(creator, caseSensitive), fold(pattern, caseSensitive))
}

// Fold applies the case policy to s.
func Fold(s string, caseSensitive bool) string { return fold(s, caseSensitive) }

func fold(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}
