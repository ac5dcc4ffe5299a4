// Package stats accumulates block statistics and persists them best-effort.
package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/haukened/tubefilter/internal/filter/common/clock"
	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Persister loads and saves the cumulative counters.
type Persister interface {
	Statistics(ctx context.Context) (domain.Statistics, error)
	SaveStatistics(ctx context.Context, s domain.Statistics) error
}

// Options configures a Recorder.
type Options struct {
	Clock  clock.Clock
	Logger log.Logger
}

// Recorder keeps two sets of counters: cumulative ones that are persisted, and
// page ones that reset on navigation.
type Recorder struct {
	mu     sync.Mutex
	total  domain.Statistics
	page   domain.Statistics
	dirty  bool
	p      Persister
	clock  clock.Clock
	logger log.Logger
}

// New loads persisted counters. A load failure is logged and counting starts
// from zero.
func New(ctx context.Context, p Persister, opts Options) *Recorder {
	r := &Recorder{
		total:  domain.NewStatistics(),
		page:   domain.NewStatistics(),
		p:      p,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
	if r.clock == nil {
		r.clock = clock.RealClock{}
	}
	if r.logger == nil {
		r.logger = log.GetLogger()
	}
	if p != nil {
		s, err := p.Statistics(ctx)
		if err != nil {
			r.logger.Warn(map[string]any{"component": "stats", "error": err}, "could not load statistics, starting from zero")
		} else {
			r.total = s
		}
	}
	return r
}

// Record folds one block into both counter sets. It never blocks on I/O.
func (r *Recorder) Record(rec domain.BlockRecord) {
	if rec.At.IsZero() {
		rec.At = r.clock.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total.Record(rec)
	r.page.Record(rec)
	r.dirty = true
}

// Snapshot returns a copy of the cumulative counters.
func (r *Recorder) Snapshot() domain.Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total.Clone()
}

// PageSnapshot returns a copy of the counters for the current page.
func (r *Recorder) PageSnapshot() domain.Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page.Clone()
}

// ResetPage zeroes the page counters. Called on navigation.
func (r *Recorder) ResetPage() {
	r.mu.Lock()
	r.page = domain.NewStatistics()
	r.mu.Unlock()
}

// Flush persists the cumulative counters if they changed since the last flush.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	if !r.dirty || r.p == nil {
		r.mu.Unlock()
		return nil
	}
	snap := r.total.Clone()
	r.dirty = false
	r.mu.Unlock()

	if err := r.p.SaveStatistics(ctx, snap); err != nil {
		r.mu.Lock()
		r.dirty = true
		r.mu.Unlock()
		return fmt.Errorf("save statistics: %w", err)
	}
	return nil
}

// Reset zeroes every counter and persists the empty state.
func (r *Recorder) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.total = domain.NewStatistics()
	r.page = domain.NewStatistics()
	r.dirty = true
	r.mu.Unlock()
	return r.Flush(ctx)
}
