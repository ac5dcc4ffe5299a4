package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTypeFromPath(t *testing.T) {
	cases := map[string]PageType{
		"/":                    PageHome,
		"":                     PageHome,
		"/results":             PageSearch,
		"/feed/subscriptions":  PageSubscriptions,
		"/feed/trending":       PageTrending,
		"/feed/explore":        PageExplore,
		"/watch":               PageWatch,
		"/channel/UC123":       PageChannel,
		"/c/someone":           PageChannel,
		"/user/someone":        PageChannel,
		"/@handle":             PageChannel,
		"/shorts/abcdefghijk":  PageShorts,
		"/playlist":            PagePlaylist,
		"/account":             PageUnknown,
		"/feed/history":        PageUnknown,
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, PageTypeFromPath(path))
		})
	}
}

func TestPageTypeFromURL(t *testing.T) {
	assert.Equal(t, PageWatch, PageTypeFromURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, PageSearch, PageTypeFromURL("https://www.youtube.com/results?search_query=go"))
	assert.Equal(t, PageUnknown, PageTypeFromURL("://bad"))
	assert.Equal(t, "watch", PageWatch.String())
	assert.Equal(t, "unknown", PageType(200).String())
}
