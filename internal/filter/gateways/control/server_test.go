package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
	"github.com/haukened/tubefilter/internal/filter/repos/settings/bolt"
	"github.com/haukened/tubefilter/internal/filter/repos/stats"
)

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) NotifySettingsUpdated() { c.n.Add(1) }

type fixture struct {
	srv      *httptest.Server
	repo     *settings.Repository
	stats    *stats.Recorder
	notifier *countingNotifier
}

func newFixture(t *testing.T, resolve ChannelResolver) *fixture {
	t.Helper()
	st, err := bolt.New(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	repo := settings.NewRepository(st)
	rec := stats.New(context.Background(), repo, stats.Options{Logger: log.NewNoopLogger()})
	n := &countingNotifier{}
	s := New(repo, rec, n, Options{Logger: log.NewNoopLogger(), ResolveChannel: resolve})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, repo: repo, stats: rec, notifier: n}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *fixture) notified(t *testing.T, want int32) {
	t.Helper()
	assert.Eventually(t, func() bool { return f.notifier.n.Load() == want }, time.Second, 5*time.Millisecond)
}

func TestSettingsUpdated(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.do(t, http.MethodPost, "/v1/settings-updated", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	f.notified(t, 1)
}

func TestOptions(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.repo.SetMode(context.Background(), domain.ModeShow))

	resp := f.do(t, http.MethodGet, "/v1/options", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body OptionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Enabled)
	assert.Equal(t, "show", body.FilterMode)
	require.NotNil(t, body.Options.BlockMode)
	assert.Equal(t, "hide", *body.Options.BlockMode)
	assert.Equal(t, int64(1000), *body.Options.ScanInterval)
}

func TestRules(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.do(t, http.MethodPost, "/v1/rules/keywords", `{"value":"  Spoiler "}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var added RuleRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&added))
	assert.Equal(t, "spoiler", added.Value)
	f.notified(t, 1)

	resp = f.do(t, http.MethodPost, "/v1/rules/keyword", `{"value":"SPOILER"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/v1/rules/keyword", `{"value":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/v1/rules/keyword", `{"value":"`+strings.Repeat("x", 300)+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/v1/rules/keyword", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/v1/rules/colours", `{"value":"red"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/v1/rules/keywords", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []string{"spoiler"}, list)

	resp = f.do(t, http.MethodDelete, "/v1/rules/keywords/Spoiler", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	f.notified(t, 2)

	resp = f.do(t, http.MethodDelete, "/v1/rules/keywords/spoiler", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/v1/rules/creators", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []string{}, list)
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)
	f.stats.Record(domain.BlockRecord{Title: "a", MatchedKeyword: "spoiler"})
	f.stats.Record(domain.BlockRecord{Title: "b", MatchedKeyword: "spoiler"})
	f.stats.Record(domain.BlockRecord{Title: "c", Creator: "Chan", MatchedCreator: "chan"})

	resp := f.do(t, http.MethodGet, "/v1/stats?top=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint64(3), body.Total.BlockedCount)
	assert.Equal(t, uint64(3), body.Page.BlockedCount)
	assert.Equal(t, []domain.Count{{Value: "spoiler", Count: 2}}, body.TopKeywords)
	assert.Equal(t, []domain.Count{{Value: "chan", Count: 1}}, body.TopCreators)
	require.NotNil(t, body.Total.LastBlocked)
	assert.Equal(t, "c", body.Total.LastBlocked.Title)

	resp = f.do(t, http.MethodGet, "/v1/stats?top=-2", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/v1/stats/reset", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, uint64(0), f.stats.Snapshot().BlockedCount)

	persisted, err := f.repo.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), persisted.BlockedCount)
}

func TestChannel(t *testing.T) {
	resolve := func(_ context.Context, link string) (string, bool, error) {
		switch link {
		case "/@known":
			return "Known Channel", true, nil
		case "/@broken":
			return "", false, errors.New("target closed")
		}
		return "", false, nil
	}
	f := newFixture(t, resolve)

	resp := f.do(t, http.MethodGet, "/v1/channel?link=%2F%40known", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body ChannelResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Known Channel", body.Channel)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/channel?link=%2F%40other", "").StatusCode)
	assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodGet, "/v1/channel?link=%2F%40broken", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/v1/channel", "").StatusCode)
}

func TestChannel_DisabledWithoutResolver(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/channel?link=x", "").StatusCode)
}

func decodeOptions(t *testing.T, resp *http.Response) OptionsResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body OptionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSetMode(t *testing.T) {
	f := newFixture(t, nil)

	body := decodeOptions(t, f.do(t, http.MethodPut, "/v1/mode", `{"filterMode":"Show"}`))
	assert.Equal(t, "show", body.FilterMode)
	f.notified(t, 1)

	s, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeShow, s.Mode)

	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", `{"filterMode":"allow"}`},
		{"empty mode", `{}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPut, "/v1/mode", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	f.notified(t, 1)
}

func TestSetEnabled(t *testing.T) {
	f := newFixture(t, nil)

	body := decodeOptions(t, f.do(t, http.MethodPut, "/v1/enabled", `{"enabled":false}`))
	assert.False(t, body.Enabled)
	f.notified(t, 1)

	body = decodeOptions(t, f.do(t, http.MethodPut, "/v1/enabled", `{"enabled":true}`))
	assert.True(t, body.Enabled)
	f.notified(t, 2)

	resp := f.do(t, http.MethodPut, "/v1/enabled", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPut, "/v1/enabled", `{"enabled":"no"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	f.notified(t, 2)
}

func TestSetOptions(t *testing.T) {
	f := newFixture(t, nil)

	body := decodeOptions(t, f.do(t, http.MethodPut, "/v1/options", `{"blockMode":"blur","caseSensitive":true}`))
	assert.Equal(t, "blur", *body.Options.BlockMode)
	assert.True(t, *body.Options.CaseSensitive)
	assert.Equal(t, "partial", *body.Options.PartialMatch, "absent fields keep their stored value")
	f.notified(t, 1)

	body = decodeOptions(t, f.do(t, http.MethodPut, "/v1/options", `{"partialMatch":"word","scanInterval":250}`))
	assert.Equal(t, "blur", *body.Options.BlockMode)
	assert.Equal(t, "word", *body.Options.PartialMatch)
	assert.Equal(t, int64(250), *body.Options.ScanInterval)
	f.notified(t, 2)

	s, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StyleBlur, s.Options.Style)
	assert.Equal(t, 250*time.Millisecond, s.Options.ScanInterval)

	tests := []struct {
		name string
		body string
	}{
		{"unknown style", `{"blockMode":"sparkle"}`},
		{"unknown match mode", `{"partialMatch":"fuzzy"}`},
		{"non-positive interval", `{"scanInterval":0}`},
		{"malformed", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPut, "/v1/options", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	f.notified(t, 2)
}

func TestImportExport(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.do(t, http.MethodPost, "/v1/import",
		`{"blockedKeywords":["Spoiler","spoiler","drama"],"filterMode":"block","options":{"blockMode":"replace"}}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	f.notified(t, 1)

	resp = f.do(t, http.MethodGet, "/v1/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc settings.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, []string{"spoiler", "drama"}, doc.BlockedKeywords)
	assert.Equal(t, "block", doc.FilterMode)
	require.NotNil(t, doc.Options)
	assert.Equal(t, "replace", *doc.Options.BlockMode)
	require.NotNil(t, doc.Statistics)

	for _, body := range []string{`{"filterMode":"maybe"}`, `{"options":{"partialMatch":"fuzzy"}}`, `nope`} {
		resp := f.do(t, http.MethodPost, "/v1/import", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	f.notified(t, 1)
}
