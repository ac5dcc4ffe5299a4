package rulefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

func TestLoad_YAML(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "base.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Spoiler", "drama"}, doc.BlockedKeywords)
	assert.Equal(t, []string{"SomeChannel"}, doc.BlockedCreators)
	assert.Nil(t, doc.InterestKeywords)
	assert.Equal(t, "block", doc.FilterMode)
	assert.Nil(t, doc.Enabled)
	require.NotNil(t, doc.Options)
	assert.Equal(t, "blur", *doc.Options.BlockMode)
	assert.Equal(t, "word", *doc.Options.PartialMatch)
	assert.Nil(t, doc.Options.CaseSensitive)
	assert.Equal(t, int64(500), *doc.Options.ScanInterval)
}

func TestLoadDirectory_Merges(t *testing.T) {
	doc, err := LoadDirectory("testdata")
	require.NoError(t, err)
	assert.Equal(t, []string{"Spoiler", "drama", "reaction"}, doc.BlockedKeywords)
	assert.Equal(t, []string{"golang"}, doc.InterestKeywords)
	assert.Equal(t, "show", doc.FilterMode)
	require.NotNil(t, doc.Enabled)
	assert.False(t, *doc.Enabled)
	require.NotNil(t, doc.Options)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "notes.txt"))
	assert.Error(t, err)

	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`filterMode = "sometimes"`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	style, mode := "replace", "exact"
	cs := true
	var ms int64 = 1500
	enabled := true
	stats := domain.NewStatistics()
	stats.Record(domain.BlockRecord{Title: "t", MatchedKeyword: "1.5x"})
	doc := settings.Document{
		BlockedKeywords: []string{"a", "b"},
		FilterMode:      "block",
		Enabled:         &enabled,
		Options:         &settings.OptionsRecord{BlockMode: &style, PartialMatch: &mode, CaseSensitive: &cs, ScanInterval: &ms},
		Statistics:      &stats,
	}
	for _, format := range []string{"yaml", "json", "toml"} {
		t.Run(format, func(t *testing.T) {
			raw, err := Marshal(doc, format)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "export."+format)
			require.NoError(t, os.WriteFile(path, raw, 0o600))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, doc.BlockedKeywords, got.BlockedKeywords)
			assert.Equal(t, []string{}, got.BlockedCreators)
			assert.Equal(t, "block", got.FilterMode)
			assert.Equal(t, doc.Options, got.Options)
			assert.True(t, *got.Enabled)
		})
	}
	_, err := Marshal(doc, "xml")
	assert.Error(t, err)
}
