package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Document is the live page of a browser tab.
type Document struct {
	page *rod.Page

	mu           sync.Mutex
	onShowAnyway func()
	onUnblock    func()
}

var (
	_ domain.Document   = (*Document)(nil)
	_ domain.PageChrome = (*Document)(nil)
)

// NewDocument wraps page.
func NewDocument(page *rod.Page) *Document {
	return &Document{page: page}
}

func (d *Document) QueryAll(ctx context.Context, selector string) ([]domain.Element, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	out := make([]domain.Element, len(els))
	for i, el := range els {
		out[i] = &Element{el: el}
	}
	return out, nil
}

func (d *Document) Query(ctx context.Context, selector string) (domain.Element, bool, error) {
	ok, el, err := d.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("query %q: %w", selector, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Element{el: el}, true, nil
}

func (d *Document) Location(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

const interstitialJS = `(reason) => {
	if (document.querySelector(".tubefilter-interstitial")) return;
	const overlay = document.createElement("div");
	overlay.className = "tubefilter-interstitial";
	overlay.style.cssText = "position:fixed;inset:0;z-index:9999;background:rgba(0,0,0,.9);color:#fff;display:flex;flex-direction:column;align-items:center;justify-content:center";
	const title = document.createElement("h2");
	title.textContent = "This video has been blocked";
	const msg = document.createElement("p");
	msg.textContent = reason;
	const back = document.createElement("button");
	back.textContent = "Go Back";
	back.onclick = () => history.back();
	const show = document.createElement("button");
	show.textContent = "Show Anyway";
	show.onclick = () => { overlay.remove(); window.__tubefilter_action("show-anyway"); };
	overlay.append(title, msg, back, show);
	document.body.appendChild(overlay);
	const video = document.querySelector("video");
	if (video) video.pause();
}`

const bannerJS = `(channel) => {
	if (document.querySelector(".tubefilter-channel-banner")) return;
	const banner = document.createElement("div");
	banner.className = "tubefilter-channel-banner";
	banner.style.cssText = "background:#c00;color:#fff;padding:12px;text-align:center";
	banner.textContent = "This channel (" + channel + ") is blocked. ";
	const button = document.createElement("button");
	button.textContent = "Unblock";
	button.onclick = () => { banner.remove(); window.__tubefilter_action("unblock"); };
	banner.appendChild(button);
	const header = document.querySelector("#channel-header");
	if (header && header.parentNode) header.parentNode.insertBefore(banner, header);
	else document.body.prepend(banner);
}`

// ShowInterstitial covers the page with the blocked-video overlay.
func (d *Document) ShowInterstitial(ctx context.Context, i domain.Interstitial) error {
	d.mu.Lock()
	d.onShowAnyway = i.OnShowAnyway
	d.mu.Unlock()
	if _, err := d.page.Context(ctx).Eval(interstitialJS, i.Reason); err != nil {
		return fmt.Errorf("show interstitial: %w", err)
	}
	return nil
}

// ShowBanner inserts the channel banner above the channel header.
func (d *Document) ShowBanner(ctx context.Context, b domain.Banner) error {
	d.mu.Lock()
	d.onUnblock = b.OnUnblock
	d.mu.Unlock()
	if _, err := d.page.Context(ctx).Eval(bannerJS, b.Channel); err != nil {
		return fmt.Errorf("show banner: %w", err)
	}
	return nil
}

// action dispatches a button press reported by the page.
func (d *Document) action(name string) bool {
	d.mu.Lock()
	var fn func()
	switch name {
	case actionShowAnyway:
		fn, d.onShowAnyway = d.onShowAnyway, nil
	case actionUnblock:
		fn, d.onUnblock = d.onUnblock, nil
	}
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
