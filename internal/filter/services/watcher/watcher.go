// Package watcher keeps filtering current as the page mutates.
//
// The watcher is a two-state machine. A mutation moves it from Idle to
// ScanScheduled and (re)arms the debounce timer; the timer firing runs one
// scan and returns it to Idle. A settings update bypasses the timer. At most
// one scan runs at a time and a request arriving during a scan is dropped.
package watcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/haukened/tubefilter/internal/filter/common/clock"
	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/scanner"
)

// State of the watcher.
type State int

const (
	StateIdle State = iota
	StateScanScheduled
)

func (s State) String() string {
	if s == StateScanScheduled {
		return "scan_scheduled"
	}
	return "idle"
}

// Options configures a Watcher.
type Options struct {
	Clock  clock.Clock
	Logger log.Logger
	// Relevance is reset on navigation so verdicts do not outlive their page.
	Relevance Resetter
	// Stats has its page counters reset on navigation.
	Stats PageResetter
	// Debounce overrides the scan interval from the stored options.
	Debounce time.Duration
}

// Watcher schedules scan passes.
type Watcher struct {
	scanner  Scanner
	settings SettingsSource
	opts     Options
	clock    clock.Clock
	logger   log.Logger

	mu         sync.Mutex
	state      State
	timer      clock.Timer
	timerSeq   uint64
	debounce   time.Duration
	generation uint64
	page       domain.PageType
	url        string
	session    string
	base       context.Context
	sessionCtx context.Context
	cancel     context.CancelFunc

	scanning atomic.Bool
	scans    atomic.Uint64
	dropped  atomic.Uint64
}

// New returns an idle watcher. Call Start before reporting mutations.
func New(sc Scanner, src SettingsSource, opts Options) *Watcher {
	w := &Watcher{
		scanner:  sc,
		settings: src,
		opts:     opts,
		clock:    opts.Clock,
		logger:   opts.Logger,
		debounce: domain.DefaultScanInterval,
		base:     context.Background(),
	}
	if w.clock == nil {
		w.clock = clock.RealClock{}
	}
	if w.logger == nil {
		w.logger = log.GetLogger()
	}
	if opts.Debounce > 0 {
		w.debounce = opts.Debounce
	}
	w.sessionCtx, w.cancel = context.WithCancel(w.base)
	return w
}

// Start binds the watcher to ctx and runs the initial synchronous scan of url.
func (w *Watcher) Start(ctx context.Context, url string) {
	w.mu.Lock()
	w.base = ctx
	w.mu.Unlock()
	w.Navigate(url)
}

// Stop cancels the pending timer and the current page session.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
	w.cancel()
}

// OnMutation reports a DOM mutation that added nodes. It (re)arms the debounce timer.
func (w *Watcher) OnMutation(added int) {
	if added <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sessionCtx.Err() != nil {
		return
	}
	w.stopTimerLocked()
	w.timerSeq++
	seq := w.timerSeq
	w.state = StateScanScheduled
	w.timer = w.clock.AfterFunc(w.debounce, func() { w.fire(seq) })
}

func (w *Watcher) fire(seq uint64) {
	w.mu.Lock()
	if seq != w.timerSeq || w.state != StateScanScheduled {
		w.mu.Unlock()
		return
	}
	w.state = StateIdle
	w.timer = nil
	w.mu.Unlock()
	w.scan("debounce", false)
}

// NotifySettingsUpdated re-decides every element immediately, bypassing the debounce.
func (w *Watcher) NotifySettingsUpdated() {
	w.mu.Lock()
	w.generation++
	w.mu.Unlock()
	if !w.scan("settings", true) {
		// the running pass may predate the update; pending mutations keep their timer
		w.OnMutation(1)
	}
}

// Navigate starts a new page session for url. Classifications still running
// for the previous page are cancelled and their verdicts discarded.
func (w *Watcher) Navigate(url string) {
	w.mu.Lock()
	w.cancel()
	w.stopTimerLocked()
	w.sessionCtx, w.cancel = context.WithCancel(w.base)
	w.session = uuid.NewString()
	w.url = url
	w.page = domain.PageTypeFromURL(url)
	w.generation++
	session, page := w.session, w.page
	w.mu.Unlock()

	if w.opts.Relevance != nil {
		w.opts.Relevance.Reset()
	}
	if w.opts.Stats != nil {
		w.opts.Stats.ResetPage()
	}
	w.scanner.ResetPage()
	w.logger.Debug(map[string]any{"component": "watcher", "session": session, "page": page.String(), "url": url}, "page session started")
	if !w.scan("navigate", false) {
		// the new page must not wait for a mutation to be scanned
		w.OnMutation(1)
	}
}

// scan runs one pass unless another is in flight. It reports whether it ran.
// supersede cancels the pending debounce once the pass is known to run.
func (w *Watcher) scan(trigger string, supersede bool) bool {
	if !w.scanning.CompareAndSwap(false, true) {
		w.dropped.Add(1)
		w.logger.Debug(map[string]any{"component": "watcher", "trigger": trigger}, "scan in flight, request dropped")
		return false
	}
	defer w.scanning.Store(false)

	w.mu.Lock()
	if supersede {
		w.stopTimerLocked()
	}
	ctx, page, gen, session := w.sessionCtx, w.page, w.generation, w.session
	w.mu.Unlock()
	if ctx.Err() != nil {
		return true
	}

	settings, err := w.settings.Load(ctx)
	if err != nil {
		w.logger.Warn(map[string]any{"component": "watcher", "error": err}, "could not load settings, scan skipped")
		return true
	}
	if w.opts.Debounce <= 0 {
		w.mu.Lock()
		w.debounce = settings.Options.Debounce()
		w.mu.Unlock()
	}

	w.scans.Add(1)
	if _, err := w.scanner.Scan(ctx, scanner.Pass{Page: page, Settings: settings, Generation: gen}); err != nil {
		w.logger.Error(map[string]any{"component": "watcher", "session": session, "trigger": trigger, "error": err}, "scan pass failed")
	}
	return true
}

func (w *Watcher) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerSeq++
	w.state = StateIdle
}

// State returns the current state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Session returns the id of the current page session.
func (w *Watcher) Session() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Page returns the type and URL of the current page.
func (w *Watcher) Page() (domain.PageType, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page, w.url
}

// Generation returns the settings generation elements are decided under.
func (w *Watcher) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

// Scans returns the number of scan passes run.
func (w *Watcher) Scans() uint64 { return w.scans.Load() }

// Dropped returns the number of scan requests dropped because a scan was in flight.
func (w *Watcher) Dropped() uint64 { return w.dropped.Load() }
