package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/gateways/htmldoc"
)

const fixture = `<html><body>` +
	`<ytd-video-renderer id="v" style="height: 120px"><a id="thumbnail" href="/watch?v=dQw4w9WgXcQ"><img></a><span id="video-title">Spoiler alert</span></ytd-video-renderer>` +
	`</body></html>`

func load(t *testing.T) (*htmldoc.Document, domain.Element) {
	t.Helper()
	doc, err := htmldoc.Parse(strings.NewReader(fixture), "https://www.youtube.com/")
	require.NoError(t, err)
	el, ok, err := doc.Query(context.Background(), "#v")
	require.NoError(t, err)
	require.True(t, ok)
	return doc, el
}

func snapshot(t *testing.T, doc *htmldoc.Document) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, doc.Render(&sb))
	return sb.String()
}

func TestApply_Idempotent(t *testing.T) {
	decisions := []domain.Decision{
		domain.KeywordDecision("spoiler"),
		domain.CreatorDecision("someone"),
		domain.ShowDecision(domain.RelatedTo("go")),
		domain.ShowDecision(domain.NotRelated()),
	}
	for _, style := range []domain.DisplayStyle{domain.StyleHide, domain.StyleBlur, domain.StyleReplace} {
		for _, d := range decisions {
			t.Run(style.String()+"/"+d.Reason()+d.MatchedInterest, func(t *testing.T) {
				doc, el := load(t)
				require.NoError(t, Apply(el, d, style))
				once := snapshot(t, doc)
				require.NoError(t, Apply(el, d, style))
				assert.Equal(t, once, snapshot(t, doc))
			})
		}
	}
}

func TestApply_Hide(t *testing.T) {
	_, el := load(t)
	require.NoError(t, Apply(el, domain.KeywordDecision("spoiler"), domain.StyleHide))
	assert.Equal(t, "none", el.Style("display"))
	assert.True(t, el.HasClass(ClassBlocked))
	reason, _ := el.Attr(AttrReason)
	assert.Equal(t, `Blocked keyword: "spoiler"`, reason)
}

func TestApply_Blur(t *testing.T) {
	_, el := load(t)
	require.NoError(t, Apply(el, domain.CreatorDecision("someone"), domain.StyleBlur))
	assert.Equal(t, blurFilter, el.Style("filter"))
	assert.Equal(t, blurOpacity, el.Style("opacity"))
	assert.Equal(t, "", el.Style("display"))
	title, _ := el.Attr("title")
	assert.Equal(t, `Blocked: Blocked creator: "someone"`, title)
}

func TestApply_ReplaceSnapshotsOnce(t *testing.T) {
	_, el := load(t)
	orig, err := el.InnerHTML()
	require.NoError(t, err)

	require.NoError(t, Apply(el, domain.KeywordDecision("spoiler"), domain.StyleReplace))
	saved, ok := el.Attr(AttrOriginal)
	require.True(t, ok)
	assert.Equal(t, orig, saved)
	ph, ok := el.Query("." + ClassPlaceholder)
	require.True(t, ok)
	assert.Equal(t, `Blocked keyword: "spoiler"`, ph.Text())
	assert.Equal(t, "120px", ph.Style("height"))

	// a second application must not snapshot the placeholder
	require.NoError(t, Apply(el, domain.KeywordDecision("other"), domain.StyleReplace))
	saved, _ = el.Attr(AttrOriginal)
	assert.Equal(t, orig, saved)
	ph, _ = el.Query("." + ClassPlaceholder)
	assert.Equal(t, "120px", ph.Style("height"))
}

func TestApply_StyleSwitchRestoresFirst(t *testing.T) {
	_, el := load(t)
	orig, _ := el.InnerHTML()
	require.NoError(t, Apply(el, domain.KeywordDecision("spoiler"), domain.StyleReplace))
	require.NoError(t, Apply(el, domain.KeywordDecision("spoiler"), domain.StyleBlur))
	got, _ := el.InnerHTML()
	assert.Equal(t, orig, got)
	_, saved := el.Attr(AttrOriginal)
	assert.False(t, saved)
}

func TestApply_AllowRestores(t *testing.T) {
	for _, style := range []domain.DisplayStyle{domain.StyleHide, domain.StyleBlur, domain.StyleReplace} {
		t.Run(style.String(), func(t *testing.T) {
			doc, el := load(t)
			before := snapshot(t, doc)
			require.NoError(t, Apply(el, domain.KeywordDecision("spoiler"), style))
			require.NoError(t, Apply(el, domain.AllowDecision(), style))
			assert.Equal(t, before, snapshot(t, doc))
		})
	}
}

func TestApply_ShowMatchBadgeOnce(t *testing.T) {
	doc, el := load(t)
	require.NoError(t, Apply(el, domain.KeywordDecision("x"), domain.StyleHide))
	d := domain.ShowDecision(domain.RelatedTo("golang"))
	require.NoError(t, Apply(el, d, domain.StyleHide))
	require.NoError(t, Apply(el, d, domain.StyleHide))

	assert.Equal(t, "", el.Style("display"))
	assert.False(t, el.HasClass(ClassBlocked))
	assert.True(t, el.HasClass(ClassInterestMatch))
	badges, err := doc.QueryAll(context.Background(), "#thumbnail ."+ClassBadge)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "golang", badges[0].Text())
	thumb, _ := el.Query("#thumbnail")
	assert.Equal(t, "relative", thumb.Style("position"))
}

func TestApply_ShowHideBranch(t *testing.T) {
	_, el := load(t)
	require.NoError(t, Apply(el, domain.ShowDecision(domain.NotRelated()), domain.StyleBlur))
	assert.Equal(t, "none", el.Style("display"))
	assert.True(t, el.HasClass(ClassBlocked))
}

func TestClear_RemovesBadge(t *testing.T) {
	doc, el := load(t)
	require.NoError(t, Apply(el, domain.ShowDecision(domain.RelatedTo("go")), domain.StyleHide))
	require.NoError(t, Clear(el))
	badges, _ := doc.QueryAll(context.Background(), "."+ClassBadge)
	assert.Empty(t, badges)
	assert.False(t, el.HasClass(ClassInterestMatch))
}
