// Package browser drives a Chrome tab over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/common/utils"
)

const (
	bindingMutation = "__tubefilter_mutation"
	bindingAction   = "__tubefilter_action"

	actionShowAnyway = "show-anyway"
	actionUnblock    = "unblock"

	navigateTimeout = 30 * time.Second
)

// observerJS reports the number of nodes added by each mutation batch.
const observerJS = `() => {
	if (window.__tubefilterObserver) return;
	const install = () => {
		const obs = new MutationObserver((mutations) => {
			let added = 0;
			for (const m of mutations) added += m.addedNodes.length;
			if (added > 0 && window.__tubefilter_mutation) window.__tubefilter_mutation(String(added));
		});
		obs.observe(document.body || document.documentElement, { childList: true, subtree: true });
		window.__tubefilterObserver = obs;
	};
	if (document.body) install();
	else document.addEventListener("DOMContentLoaded", install);
}`

// Config configures a Session.
type Config struct {
	// RemoteURL is the DevTools endpoint of a running browser. Empty launches a local one.
	RemoteURL string
	Headless  bool
	Logger    log.Logger
}

// Handler receives page events.
type Handler interface {
	OnMutation(added int)
	Navigate(url string)
}

// Session owns the browser connection and the filtered tab.
type Session struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	doc     *Document
	site    string
	logger  log.Logger
}

// Launch connects to (or starts) a browser and opens a tab on startURL.
func Launch(ctx context.Context, cfg Config, startURL string) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	s := &Session{logger: logger, site: utils.SiteOf(startURL)}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(cfg.Headless).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
	}

	s.browser = rod.New().ControlURL(wsURL).Context(ctx)
	if err := s.browser.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	s.page = page
	s.doc = NewDocument(page)

	for _, name := range []string{bindingMutation, bindingAction} {
		if err := (proto.RuntimeAddBinding{Name: name}).Call(page); err != nil {
			s.cleanup()
			return nil, fmt.Errorf("browser: add binding %s: %w", name, err)
		}
	}
	if _, err := page.EvalOnNewDocument("(" + observerJS + ")()"); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: install observer: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(startURL); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: navigate %s: %w", startURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logger.Warn(map[string]any{"component": "browser", "url": startURL, "error": err}, "page load wait timed out")
	}
	// the page may have loaded before the observer was registered
	if _, err := page.Eval(observerJS); err != nil {
		logger.Warn(map[string]any{"component": "browser", "error": err}, "could not install observer on current document")
	}
	logger.Info(map[string]any{"component": "browser", "url": startURL, "remote": cfg.RemoteURL != ""}, "browser tab ready")
	return s, nil
}

// Document returns the live document of the tab.
func (s *Session) Document() *Document { return s.doc }

// Watch forwards page events to h until ctx is done. It blocks.
// Handlers that talk back to the page run on their own goroutine so the
// event loop keeps draining.
func (s *Session) Watch(ctx context.Context, h Handler) {
	r := &router{doc: s.doc, h: h, site: s.site, logger: s.logger, run: func(f func()) { go f() }}
	s.page.Context(ctx).EachEvent(
		func(e *proto.RuntimeBindingCalled) { r.binding(e.Name, e.Payload) },
		func(e *proto.PageFrameNavigated) {
			if e.Frame != nil && e.Frame.ParentID == "" {
				r.navigate(e.Frame.URL)
			}
		},
		func(e *proto.PageNavigatedWithinDocument) { r.navigate(e.URL) },
	)()
}

// Close shuts the tab and the browser it launched.
func (s *Session) Close() error {
	s.cleanup()
	return nil
}

func (s *Session) cleanup() {
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}

// router turns binding calls into handler events.
type router struct {
	doc    *Document
	h      Handler
	site   string // navigations off this site are not page sessions
	logger log.Logger
	run    func(func())
}

func (r *router) navigate(url string) {
	if r.site != "" && utils.SiteOf(url) != r.site {
		r.logger.Debug(map[string]any{"component": "browser", "url": url}, "navigation off site ignored")
		return
	}
	r.run(func() { r.h.Navigate(url) })
}

func (r *router) binding(name, payload string) {
	switch name {
	case bindingMutation:
		n, err := strconv.Atoi(payload)
		if err != nil {
			r.logger.Debug(map[string]any{"component": "browser", "payload": payload}, "malformed mutation payload")
			return
		}
		r.h.OnMutation(n)
	case bindingAction:
		r.run(func() {
			if !r.doc.action(payload) {
				r.logger.Debug(map[string]any{"component": "browser", "action": payload}, "page action without handler")
			}
		})
	}
}
