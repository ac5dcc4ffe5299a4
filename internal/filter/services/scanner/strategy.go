package scanner

import "github.com/haukened/tubefilter/internal/filter/domain"

// Fields locates the candidate fields inside one video element.
type Fields struct {
	Title       string
	Creator     string
	Description string
	Link        string
}

// Strategy is the element-location strategy for one page type.
type Strategy struct {
	// Items selects candidate elements in block mode.
	Items string
	// ShowItems selects candidate elements in show mode.
	ShowItems string
	Fields    Fields
}

var defaultFields = Fields{
	Title:       "#video-title, .title-wrapper h3, .title",
	Creator:     "#channel-name a, #metadata a, .ytd-channel-name a",
	Description: "#description, #description-text, .description",
	Link:        "a#thumbnail",
}

var shortsFields = Fields{
	Title:   "#video-title",
	Creator: "#channel-name a, #text-container a",
	Link:    "a#thumbnail, a.reel-item-endpoint",
}

const (
	homeItems    = "ytd-rich-item-renderer, ytd-grid-video-renderer, ytd-video-renderer"
	channelItems = "ytd-grid-video-renderer, ytd-rich-item-renderer"
)

// Page-level selectors.
const (
	WatchTitleSelector   = ".ytd-video-primary-info-renderer .title"
	WatchCreatorSelector = "#owner #text a"
	ChannelNameSelector  = "#channel-name #text, #channel-header-container .ytd-channel-name"
	ChannelLinkSelector  = "ytd-channel-name"
)

var strategies = map[domain.PageType]Strategy{
	domain.PageHome:          {Items: homeItems, ShowItems: homeItems, Fields: defaultFields},
	domain.PageSearch:        {Items: "ytd-video-renderer", ShowItems: "ytd-video-renderer", Fields: defaultFields},
	domain.PageSubscriptions: {Items: "ytd-grid-video-renderer", ShowItems: "ytd-grid-video-renderer", Fields: defaultFields},
	domain.PageTrending:      {Items: "ytd-video-renderer", ShowItems: "ytd-video-renderer", Fields: defaultFields},
	domain.PageExplore: {
		Items:     "ytd-rich-grid-renderer ytd-rich-item-renderer",
		ShowItems: "ytd-rich-grid-renderer ytd-rich-item-renderer",
		Fields:    defaultFields,
	},
	domain.PageWatch:    {Items: "ytd-compact-video-renderer", ShowItems: "ytd-compact-video-renderer", Fields: defaultFields},
	domain.PageChannel:  {Items: channelItems, ShowItems: channelItems, Fields: defaultFields},
	domain.PageShorts:   {Items: "ytd-reel-video-renderer", ShowItems: "ytd-reel-video-renderer", Fields: shortsFields},
	domain.PagePlaylist: {Items: "ytd-playlist-video-renderer", ShowItems: "ytd-playlist-video-renderer", Fields: defaultFields},
}

// StrategyFor returns the strategy for a page type. Pages without a listing,
// PageUnknown among them, have none.
func StrategyFor(p domain.PageType) (Strategy, bool) {
	s, ok := strategies[p]
	return s, ok
}

// Selector returns the item selector for the filter mode.
func (s Strategy) Selector(mode domain.FilterMode) string {
	if mode == domain.ModeShow && s.ShowItems != "" {
		return s.ShowItems
	}
	return s.Items
}
