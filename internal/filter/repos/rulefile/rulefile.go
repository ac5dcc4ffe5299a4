// Package rulefile reads and writes settings documents as YAML, JSON or TOML.
package rulefile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

// ParserFor picks a parser from a file extension or a bare format name.
func ParserFor(pathOrFormat string) (koanf.Parser, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(pathOrFormat), "."))
	if ext == "" {
		ext = strings.ToLower(pathOrFormat)
	}
	switch ext {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "json":
		return json.Parser(), nil
	case "toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported rule file format %q", pathOrFormat)
	}
}

// Load parses one rule file.
func Load(path string) (settings.Document, error) {
	parser, err := ParserFor(path)
	if err != nil {
		return settings.Document{}, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return settings.Document{}, fmt.Errorf("failed to load rule file %s: %w", path, err)
	}
	return fromKoanf(k, path)
}

// LoadDirectory loads every supported file under dir in lexical order and
// merges them: lists are concatenated, scalars are last-wins.
// Files with other extensions are skipped.
func LoadDirectory(dir string) (settings.Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if _, perr := ParserFor(path); perr == nil {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return settings.Document{}, err
	}
	sort.Strings(paths)

	var merged settings.Document
	for _, p := range paths {
		doc, err := Load(p)
		if err != nil {
			return settings.Document{}, err
		}
		merged = merge(merged, doc)
	}
	return merged, nil
}

func fromKoanf(k *koanf.Koanf, path string) (settings.Document, error) {
	var doc settings.Document
	list := func(key string) []string {
		if !k.Exists(key) {
			return nil
		}
		out := k.Strings(key)
		if out == nil {
			out = []string{}
		}
		return out
	}
	doc.BlockedKeywords = list(settings.KeyBlockedKeywords)
	doc.BlockedCreators = list(settings.KeyBlockedCreators)
	doc.InterestKeywords = list(settings.KeyInterestKeywords)

	if mode := k.String(settings.KeyFilterMode); mode != "" {
		if _, err := domain.ParseFilterMode(mode); err != nil {
			return settings.Document{}, fmt.Errorf("rule file %s: %w", path, err)
		}
		doc.FilterMode = mode
	}
	if k.Exists(settings.KeyEnabled) {
		enabled := k.Bool(settings.KeyEnabled)
		doc.Enabled = &enabled
	}
	if k.Exists(settings.KeyOptions) {
		var opts settings.OptionsRecord
		if err := k.Unmarshal(settings.KeyOptions, &opts); err != nil {
			return settings.Document{}, fmt.Errorf("rule file %s: options: %w", path, err)
		}
		doc.Options = &opts
	}
	return doc, nil
}

func merge(a, b settings.Document) settings.Document {
	out := a
	if b.BlockedKeywords != nil {
		out.BlockedKeywords = append(append([]string{}, a.BlockedKeywords...), b.BlockedKeywords...)
	}
	if b.BlockedCreators != nil {
		out.BlockedCreators = append(append([]string{}, a.BlockedCreators...), b.BlockedCreators...)
	}
	if b.InterestKeywords != nil {
		out.InterestKeywords = append(append([]string{}, a.InterestKeywords...), b.InterestKeywords...)
	}
	if b.FilterMode != "" {
		out.FilterMode = b.FilterMode
	}
	if b.Enabled != nil {
		out.Enabled = b.Enabled
	}
	if b.Options != nil {
		out.Options = b.Options
	}
	return out
}

// Marshal encodes doc in the given format (yaml, json or toml).
func Marshal(doc settings.Document, format string) ([]byte, error) {
	parser, err := ParserFor(format)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	// empty delimiter: statistics keys may contain dots
	if err := k.Load(confmap.Provider(toMap(doc), ""), nil); err != nil {
		return nil, err
	}
	return k.Marshal(parser)
}

func toMap(doc settings.Document) map[string]any {
	m := map[string]any{
		settings.KeyBlockedKeywords:  nonNil(doc.BlockedKeywords),
		settings.KeyBlockedCreators:  nonNil(doc.BlockedCreators),
		settings.KeyInterestKeywords: nonNil(doc.InterestKeywords),
	}
	if doc.FilterMode != "" {
		m[settings.KeyFilterMode] = doc.FilterMode
	}
	if doc.Enabled != nil {
		m[settings.KeyEnabled] = *doc.Enabled
	}
	if o := doc.Options; o != nil {
		opts := map[string]any{}
		if o.BlockMode != nil {
			opts["blockMode"] = *o.BlockMode
		}
		if o.PartialMatch != nil {
			opts["partialMatch"] = *o.PartialMatch
		}
		if o.CaseSensitive != nil {
			opts["caseSensitive"] = *o.CaseSensitive
		}
		if o.ScanInterval != nil {
			opts["scanInterval"] = *o.ScanInterval
		}
		m[settings.KeyOptions] = opts
	}
	if s := doc.Statistics; s != nil {
		stats := map[string]any{
			"blockedCount":  int64(s.BlockedCount),
			"keywordCounts": counts(s.KeywordCounts),
			"creatorCounts": counts(s.CreatorCounts),
		}
		if lb := s.LastBlocked; lb != nil {
			stats["lastBlocked"] = map[string]any{
				"title":     lb.Title,
				"channel":   lb.Channel,
				"reason":    lb.Reason,
				"timestamp": lb.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			}
		}
		m[settings.KeyStatistics] = stats
	}
	return m
}

func nonNil(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func counts(in map[string]uint64) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = int64(v)
	}
	return out
}
