package domain

import (
	"net/url"
	"strings"
)

// PageType classifies the current page by URL path. Each type has its own
// location strategy in the scanner.
type PageType uint8

const (
	PageUnknown PageType = iota
	PageHome
	PageSearch
	PageSubscriptions
	PageTrending
	PageExplore
	PageWatch
	PageChannel
	PageShorts
	PagePlaylist
)

var pageNames = map[PageType]string{
	PageUnknown:       "unknown",
	PageHome:          "home",
	PageSearch:        "search",
	PageSubscriptions: "subscriptions",
	PageTrending:      "trending",
	PageExplore:       "explore",
	PageWatch:         "watch",
	PageChannel:       "channel",
	PageShorts:        "shorts",
	PagePlaylist:      "playlist",
}

func (p PageType) String() string {
	if s, ok := pageNames[p]; ok {
		return s
	}
	return "unknown"
}

var channelPrefixes = []string{"/channel/", "/c/", "/user/", "/@"}

// PageTypeFromPath maps a URL path to a PageType.
func PageTypeFromPath(path string) PageType {
	switch {
	case path == "" || path == "/":
		return PageHome
	case strings.HasPrefix(path, "/results"):
		return PageSearch
	case strings.HasPrefix(path, "/feed/subscriptions"):
		return PageSubscriptions
	case strings.HasPrefix(path, "/feed/trending"):
		return PageTrending
	case strings.HasPrefix(path, "/feed/explore"):
		return PageExplore
	case strings.HasPrefix(path, "/watch"):
		return PageWatch
	case strings.HasPrefix(path, "/shorts"):
		return PageShorts
	case strings.HasPrefix(path, "/playlist"):
		return PagePlaylist
	}
	for _, p := range channelPrefixes {
		if strings.HasPrefix(path, p) {
			return PageChannel
		}
	}
	return PageUnknown
}

// PageTypeFromURL parses raw and classifies its path. Unparseable input is PageUnknown.
func PageTypeFromURL(raw string) PageType {
	u, err := url.Parse(raw)
	if err != nil {
		return PageUnknown
	}
	return PageTypeFromPath(u.Path)
}
