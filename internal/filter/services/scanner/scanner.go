// Package scanner locates video elements on a page and applies decisions to them.
package scanner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/haukened/tubefilter/internal/filter/common/clock"
	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/common/utils"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/policy"
	"github.com/haukened/tubefilter/internal/filter/services/render"
)

// Element markers. AttrProcessed holds the settings generation the element
// was last decided under.
const (
	AttrProcessed     = "data-tubefilter-processed"
	AttrShowProcessed = "data-tubefilter-show-processed"
)

const (
	DefaultMarkerReset = 100 * time.Millisecond
	DefaultMaxInflight = 4
	unblockTimeout     = 5 * time.Second
)

// Options configures a Scanner.
type Options struct {
	Clock  clock.Clock
	Logger log.Logger
	// Chrome renders the interstitial and channel banner. Nil disables both.
	Chrome domain.PageChrome
	Stats  StatsSink
	// Unblocker backs the banner's unblock action.
	Unblocker Unblocker
	// OnSettingsChanged runs after the banner changed the stored settings.
	OnSettingsChanged func()
	// MaxInflight bounds concurrent show-mode classifications.
	MaxInflight int64
	// MarkerReset is the delay before show-mode markers are cleared.
	MarkerReset time.Duration
}

// Pass is the input of one scan.
type Pass struct {
	Page       domain.PageType
	Settings   domain.Settings
	Generation uint64
}

// Result summarises one scan.
type Result struct {
	Located    int
	Decided    int
	Suppressed int
	Dispatched int
}

// Scanner runs scan passes against one document.
type Scanner struct {
	doc    domain.Document
	policy *policy.Policy
	opts   Options
	logger log.Logger
	sem    *semaphore.Weighted

	inflight sync.WaitGroup

	mu                sync.Mutex
	interstitialShown bool
	showAnyway        bool
	bannerShown       bool
}

// New returns a Scanner for doc.
func New(doc domain.Document, p *policy.Policy, opts Options) *Scanner {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = DefaultMaxInflight
	}
	if opts.MarkerReset <= 0 {
		opts.MarkerReset = DefaultMarkerReset
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Scanner{
		doc:    doc,
		policy: p,
		opts:   opts,
		logger: logger,
		sem:    semaphore.NewWeighted(opts.MaxInflight),
	}
}

// ResetPage re-arms the once-per-page interstitial and banner.
func (s *Scanner) ResetPage() {
	s.mu.Lock()
	s.interstitialShown = false
	s.showAnyway = false
	s.bannerShown = false
	s.mu.Unlock()
}

// Wait blocks until every dispatched show-mode classification has been applied.
func (s *Scanner) Wait() {
	s.inflight.Wait()
}

// Scan runs one pass. A panic inside the pass is recovered and returned as an
// error. Show-mode classifications continue after Scan returns, bound to ctx.
func (s *Scanner) Scan(ctx context.Context, pass Pass) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan aborted: %v", r)
			s.logger.Error(map[string]any{"component": "scanner", "page": pass.Page.String(), "panic": r}, "scan pass aborted")
		}
	}()

	settings := pass.Settings
	if !settings.Enabled {
		return res, s.clearAll(ctx)
	}
	plan := s.policy.Prepare(settings)

	switch pass.Page {
	case domain.PageWatch:
		s.checkPrimary(ctx, plan, pass.Page)
	case domain.PageChannel:
		s.checkChannel(ctx, plan)
	}

	if plan.Empty() {
		return res, s.clearAll(ctx)
	}

	strategy, ok := StrategyFor(pass.Page)
	if !ok {
		s.logger.Debug(map[string]any{"component": "scanner", "page": pass.Page.String()}, "no listing on this page")
		return res, nil
	}
	elements, err := s.doc.QueryAll(ctx, strategy.Selector(plan.Mode()))
	if err != nil {
		return res, fmt.Errorf("locate elements: %w", err)
	}
	res.Located = len(elements)

	if plan.Mode() == domain.ModeShow {
		s.scanShow(ctx, plan, settings.Options, strategy.Fields, elements, &res)
	} else {
		s.scanBlock(plan, settings.Options, strategy.Fields, elements, pass, &res)
		if s.opts.Stats != nil && res.Suppressed > 0 {
			if ferr := s.opts.Stats.Flush(ctx); ferr != nil {
				s.logger.Warn(map[string]any{"component": "scanner", "error": ferr}, "could not persist statistics")
			}
		}
	}

	s.logger.Debug(map[string]any{
		"component":  "scanner",
		"page":       pass.Page.String(),
		"mode":       plan.Mode().String(),
		"located":    res.Located,
		"decided":    res.Decided,
		"suppressed": res.Suppressed,
		"dispatched": res.Dispatched,
	}, "scan pass complete")
	return res, nil
}

func (s *Scanner) scanBlock(plan *policy.Plan, opts domain.Options, f Fields, elements []domain.Element, pass Pass, res *Result) {
	gen := strconv.FormatUint(pass.Generation, 10)
	for _, el := range elements {
		if v, ok := el.Attr(AttrProcessed); ok && v == gen {
			continue
		}
		if err := el.SetAttr(AttrProcessed, gen); err != nil {
			continue
		}
		wasBlocked := el.HasClass(render.ClassBlocked)
		if _, replaced := el.Attr(render.AttrOriginal); replaced {
			// the placeholder hides the fields
			_ = render.Clear(el)
		}
		v := Extract(el, f)
		if !v.Decidable() {
			continue
		}
		d := plan.DecideBlock(v)
		res.Decided++
		if err := render.Apply(el, d, opts.Style); err != nil {
			s.logger.Debug(map[string]any{"component": "scanner", "error": err}, "could not render decision")
			continue
		}
		if !d.Block {
			continue
		}
		res.Suppressed++
		if s.opts.Stats != nil && !wasBlocked {
			s.opts.Stats.Record(domain.BlockRecord{
				Title:          v.Title,
				Creator:        v.CreatorName,
				MatchedKeyword: d.MatchedKeyword,
				MatchedCreator: d.MatchedCreator,
				PageType:       pass.Page,
			})
		}
	}
}

func (s *Scanner) scanShow(ctx context.Context, plan *policy.Plan, opts domain.Options, f Fields, elements []domain.Element, res *Result) {
	var marked []domain.Element
	for _, el := range elements {
		if _, ok := el.Attr(AttrShowProcessed); ok {
			continue
		}
		if err := el.SetAttr(AttrShowProcessed, "true"); err != nil {
			continue
		}
		marked = append(marked, el)
		v := Extract(el, f)
		if !v.Decidable() {
			continue
		}
		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}
		res.Dispatched++
		s.inflight.Add(1)
		go s.classify(ctx, plan, opts.Style, el, v)
	}
	if len(marked) == 0 {
		return
	}
	s.opts.Clock.AfterFunc(s.opts.MarkerReset, func() {
		for _, el := range marked {
			_ = el.RemoveAttr(AttrShowProcessed)
		}
	})
}

func (s *Scanner) classify(ctx context.Context, plan *policy.Plan, style domain.DisplayStyle, el domain.Element, v domain.VideoCandidate) {
	defer s.inflight.Done()
	defer s.sem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(map[string]any{"component": "scanner", "panic": r}, "classification aborted")
		}
	}()
	d := plan.Decide(ctx, v)
	// late verdicts belong to a document that is gone
	if ctx.Err() != nil {
		return
	}
	if err := render.Apply(el, d, style); err != nil {
		s.logger.Debug(map[string]any{"component": "scanner", "error": err}, "could not render decision")
	}
}

func (s *Scanner) checkPrimary(ctx context.Context, plan *policy.Plan, page domain.PageType) {
	if s.opts.Chrome == nil {
		return
	}
	s.mu.Lock()
	skip := s.interstitialShown || s.showAnyway
	s.mu.Unlock()
	if skip {
		return
	}

	v := domain.VideoCandidate{
		Title:       s.pageText(ctx, WatchTitleSelector),
		CreatorName: s.pageText(ctx, WatchCreatorSelector),
	}
	if !v.Decidable() {
		return
	}
	d := plan.DecideBlock(v)
	if !d.Block {
		return
	}

	s.mu.Lock()
	if s.interstitialShown {
		s.mu.Unlock()
		return
	}
	s.interstitialShown = true
	s.mu.Unlock()

	err := s.opts.Chrome.ShowInterstitial(ctx, domain.Interstitial{
		Reason: d.Reason(),
		OnShowAnyway: func() {
			s.mu.Lock()
			s.showAnyway = true
			s.mu.Unlock()
		},
	})
	if err != nil {
		s.logger.Warn(map[string]any{"component": "scanner", "error": err}, "could not show interstitial")
		return
	}
	if s.opts.Stats != nil {
		s.opts.Stats.Record(domain.BlockRecord{
			Title:          v.Title,
			Creator:        v.CreatorName,
			MatchedKeyword: d.MatchedKeyword,
			MatchedCreator: d.MatchedCreator,
			PageType:       page,
		})
	}
}

func (s *Scanner) checkChannel(ctx context.Context, plan *policy.Plan) {
	if s.opts.Chrome == nil {
		return
	}
	s.mu.Lock()
	shown := s.bannerShown
	s.mu.Unlock()
	if shown {
		return
	}
	name := s.pageText(ctx, ChannelNameSelector)
	if name == "" {
		return
	}
	if d := plan.DecideBlock(domain.VideoCandidate{CreatorName: name}); !d.Block {
		return
	}

	s.mu.Lock()
	s.bannerShown = true
	s.mu.Unlock()

	err := s.opts.Chrome.ShowBanner(ctx, domain.Banner{
		Channel:   name,
		OnUnblock: func() { s.unblock(name) },
	})
	if err != nil {
		s.logger.Warn(map[string]any{"component": "scanner", "error": err}, "could not show channel banner")
	}
}

func (s *Scanner) unblock(name string) {
	if s.opts.Unblocker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), unblockTimeout)
	defer cancel()
	removed, err := s.opts.Unblocker.UnblockChannel(ctx, name)
	if err != nil {
		s.logger.Warn(map[string]any{"component": "scanner", "channel": name, "error": err}, "could not unblock channel")
		return
	}
	s.logger.Info(map[string]any{"component": "scanner", "channel": name, "removed": removed}, "channel unblocked")
	if s.opts.OnSettingsChanged != nil {
		s.opts.OnSettingsChanged()
	}
}

func (s *Scanner) pageText(ctx context.Context, selector string) string {
	el, ok, err := s.doc.Query(ctx, selector)
	if err != nil || !ok {
		return ""
	}
	return el.Text()
}

// clearAll restores every element a previous pass touched.
func (s *Scanner) clearAll(ctx context.Context) error {
	sel := "[" + AttrProcessed + "], [" + AttrShowProcessed + "], ." + render.ClassBlocked + ", ." + render.ClassInterestMatch
	elements, err := s.doc.QueryAll(ctx, sel)
	if err != nil {
		return fmt.Errorf("locate processed elements: %w", err)
	}
	for _, el := range elements {
		if err := render.Clear(el); err != nil {
			s.logger.Debug(map[string]any{"component": "scanner", "error": err}, "could not clear element")
		}
		_ = el.RemoveAttr(AttrProcessed)
		_ = el.RemoveAttr(AttrShowProcessed)
	}
	return nil
}

// Extract reads a video candidate out of el.
func Extract(el domain.Element, f Fields) domain.VideoCandidate {
	var v domain.VideoCandidate
	if t, ok := el.Query(f.Title); ok {
		v.Title = t.Text()
		if v.Title == "" {
			v.Title, _ = t.Attr("title")
		}
	}
	if c, ok := el.Query(f.Creator); ok {
		v.CreatorName = c.Text()
	}
	if f.Description != "" {
		if d, ok := el.Query(f.Description); ok {
			v.Description = d.Text()
		}
	}
	if f.Link != "" {
		if a, ok := el.Query(f.Link); ok {
			if href, ok := a.Attr("href"); ok {
				v.ExternalID = utils.VideoIDFromLink(href)
			}
		}
	}
	return v
}

// ChannelFromLink resolves the creator name for a link on the current page.
// Links inside a channel-name container resolve to the container's text.
func ChannelFromLink(ctx context.Context, doc domain.Document, link string) (string, bool, error) {
	containers, err := doc.QueryAll(ctx, ChannelLinkSelector)
	if err != nil {
		return "", false, err
	}
	for _, c := range containers {
		a, ok := c.Query("a")
		if !ok || !sameLink(a, link) {
			continue
		}
		if t, ok := c.Query("#text"); ok && t.Text() != "" {
			return t.Text(), true, nil
		}
		return a.Text(), a.Text() != "", nil
	}
	anchors, err := doc.QueryAll(ctx, "a")
	if err != nil {
		return "", false, err
	}
	for _, a := range anchors {
		if sameLink(a, link) {
			return a.Text(), a.Text() != "", nil
		}
	}
	return "", false, nil
}

func sameLink(a domain.Element, link string) bool {
	href, ok := a.Attr("href")
	if !ok || href == "" {
		return false
	}
	return href == link || strings.HasSuffix(link, href) && strings.HasPrefix(href, "/")
}
