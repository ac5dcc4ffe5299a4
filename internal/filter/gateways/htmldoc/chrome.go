package htmldoc

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Class names of the page-level overlays.
const (
	InterstitialClass = "tubefilter-interstitial"
	BannerClass       = "tubefilter-channel-banner"
)

var (
	interstitialTmpl = template.Must(template.New("interstitial").Parse(
		`<div class="` + InterstitialClass + `" style="position: fixed; inset: 0; z-index: 9999; background: rgba(0,0,0,0.9); color: #fff; display: flex; flex-direction: column; align-items: center; justify-content: center">` +
			`<h2>This video has been blocked</h2><p>{{.Reason}}</p>` +
			`<button data-action="go-back">Go Back</button><button data-action="show-anyway">Show Anyway</button></div>`))
	bannerTmpl = template.Must(template.New("banner").Parse(
		`<div class="` + BannerClass + `" style="background: #c00; color: #fff; padding: 12px; text-align: center">` +
			`This channel ({{.Channel}}) is blocked. <button data-action="unblock">Unblock</button></div>`))
)

// ShowInterstitial inserts the blocked-video overlay once. The offline
// document has no user, so the callbacks never fire.
func (d *Document) ShowInterstitial(_ context.Context, i domain.Interstitial) error {
	return d.insertOnce(InterstitialClass, interstitialTmpl, i, false)
}

// ShowBanner prepends the channel banner once.
func (d *Document) ShowBanner(_ context.Context, b domain.Banner) error {
	return d.insertOnce(BannerClass, bannerTmpl, b, true)
}

func (d *Document) insertOnce(class string, tmpl *template.Template, data any, prepend bool) error {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return fmt.Errorf("render %s: %w", class, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if cascadia.Query(d.root, cascadia.MustCompile("."+class)) != nil {
		return nil
	}
	body := d.body()
	nodes, err := html.ParseFragment(strings.NewReader(sb.String()), body)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if prepend && body.FirstChild != nil {
			body.InsertBefore(n, body.FirstChild)
			continue
		}
		body.AppendChild(n)
	}
	return nil
}

var _ domain.PageChrome = (*Document)(nil)
