package domain

import "context"

// Element is a single node of the rendered page. Implementations exist for a
// live browser tab and for a parsed HTML document.
//
// Mutators return an error because a live element may detach between calls.
type Element interface {
	// Query returns the first descendant matching a CSS selector list.
	Query(selector string) (Element, bool)
	// Text returns the trimmed text content.
	Text() string
	Attr(name string) (string, bool)
	SetAttr(name, value string) error
	RemoveAttr(name string) error
	HasClass(name string) bool
	AddClass(name string) error
	RemoveClass(name string) error
	// Style returns an inline style property, or "" when unset.
	Style(property string) string
	// SetStyle sets an inline style property. An empty value clears it.
	SetStyle(property, value string) error
	InnerHTML() (string, error)
	SetInnerHTML(markup string) error
	AppendHTML(markup string) error
	// Remove detaches the element from the document.
	Remove() error
	// Height is the rendered height in CSS pixels; 0 when unknown.
	Height() int
}

// Document is the element tree of the current page.
type Document interface {
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	Query(ctx context.Context, selector string) (Element, bool, error)
	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)
}

// Interstitial is the full-page overlay shown on a watch page whose primary video is blocked.
type Interstitial struct {
	Reason string
	// OnShowAnyway is invoked after the overlay is dismissed by the user.
	OnShowAnyway func()
}

// Banner is the channel-page notice with an unblock action.
type Banner struct {
	Channel   string
	OnUnblock func()
}

// PageChrome renders page-level UI outside of individual video elements.
type PageChrome interface {
	ShowInterstitial(ctx context.Context, i Interstitial) error
	ShowBanner(ctx context.Context, b Banner) error
}
