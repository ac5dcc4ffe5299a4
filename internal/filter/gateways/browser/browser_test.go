package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
)

type recordingHandler struct {
	added []int
	urls  []string
}

func (h *recordingHandler) OnMutation(added int) { h.added = append(h.added, added) }
func (h *recordingHandler) Navigate(url string)  { h.urls = append(h.urls, url) }

func TestRouter_Mutations(t *testing.T) {
	h := &recordingHandler{}
	r := &router{doc: &Document{}, h: h, logger: log.NewNoopLogger(), run: func(f func()) { f() }}

	r.binding(bindingMutation, "3")
	r.binding(bindingMutation, "not a number")
	r.binding("someone_else", "5")

	assert.Equal(t, []int{3}, h.added)
}

func TestRouter_Actions(t *testing.T) {
	doc := &Document{}
	r := &router{doc: doc, h: &recordingHandler{}, logger: log.NewNoopLogger(), run: func(f func()) { f() }}

	shown, unblocked := 0, 0
	doc.onShowAnyway = func() { shown++ }
	doc.onUnblock = func() { unblocked++ }

	r.binding(bindingAction, actionShowAnyway)
	r.binding(bindingAction, actionShowAnyway)
	r.binding(bindingAction, actionUnblock)
	r.binding(bindingAction, "dance")

	assert.Equal(t, 1, shown, "callbacks fire once per overlay")
	assert.Equal(t, 1, unblocked)
}

func TestRouter_Navigate(t *testing.T) {
	h := &recordingHandler{}
	r := &router{doc: &Document{}, h: h, logger: log.NewNoopLogger(), run: func(f func()) { f() }}
	r.navigate("https://www.youtube.com/watch?v=AAAAAAAAAAA")
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=AAAAAAAAAAA"}, h.urls)
}

func TestRouter_NavigateOffSite(t *testing.T) {
	h := &recordingHandler{}
	r := &router{doc: &Document{}, h: h, site: "youtube.com", logger: log.NewNoopLogger(), run: func(f func()) { f() }}
	r.navigate("https://accounts.google.com/signin")
	r.navigate("about:blank")
	r.navigate("https://m.youtube.com/results?search_query=go")
	assert.Equal(t, []string{"https://m.youtube.com/results?search_query=go"}, h.urls)
}

func TestDocument_ImplementsPorts(t *testing.T) {
	var _ domain.Document = NewDocument(nil)
	var _ domain.PageChrome = NewDocument(nil)
}
