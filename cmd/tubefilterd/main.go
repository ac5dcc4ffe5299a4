package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/haukened/tubefilter/internal/filter/common/clock"
	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/config"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/gateways/browser"
	"github.com/haukened/tubefilter/internal/filter/gateways/classifier"
	"github.com/haukened/tubefilter/internal/filter/gateways/control"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
	"github.com/haukened/tubefilter/internal/filter/repos/settings/bolt"
	"github.com/haukened/tubefilter/internal/filter/repos/stats"
	"github.com/haukened/tubefilter/internal/filter/repos/verdictcache"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
	"github.com/haukened/tubefilter/internal/filter/services/scanner"
	"github.com/haukened/tubefilter/internal/filter/services/watcher"
)

const (
	version = "0.1.0-dev"
	appName = "tubefilterd"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the daemon.
type Application struct {
	config   *config.AppConfig
	repos    *repositories
	session  *browser.Session
	pipeline *pipeline
	server   *http.Server
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info(map[string]any{
		"version":      version,
		"env":          cfg.Env,
		"log_level":    cfg.LogLevel,
		"listen":       cfg.Listen,
		"settings_db":  cfg.SettingsDB,
		"start_url":    cfg.StartURL,
		"cache_size":   cfg.CacheSize,
		"max_inflight": cfg.MaxInflight,
	}, "Starting "+appName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	app, err := buildApplication(ctx, cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Daemon failed")
	}
	log.Info(nil, appName+" stopped gracefully")
}

// buildApplication constructs all components and wires them together.
func buildApplication(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	session, err := browser.Launch(ctx, browser.Config{
		RemoteURL: cfg.BrowserURL,
		Headless:  cfg.Headless,
		Logger:    logger,
	}, cfg.StartURL)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to start browser: %w", err), repos.Close())
	}

	doc := session.Document()
	p := buildPipeline(cfg, repos, buildClassifier(cfg), doc, doc, logger)

	srv := control.New(repos.settings, repos.stats, p.watcher, control.Options{
		Logger: logger,
		ResolveChannel: func(ctx context.Context, link string) (string, bool, error) {
			return scanner.ChannelFromLink(ctx, doc, link)
		},
	})

	return &Application{
		config:   cfg,
		repos:    repos,
		session:  session,
		pipeline: p,
		server: &http.Server{
			Addr:              cfg.Listen,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// repositories holds all repository implementations.
type repositories struct {
	store    settings.Store
	settings *settings.Repository
	stats    *stats.Recorder
	verdicts relevance.VerdictCache
}

// Close releases the settings store.
func (r *repositories) Close() error {
	return r.store.Close()
}

// buildRepositories opens the settings store and the caches.
func buildRepositories(ctx context.Context, cfg *config.AppConfig, logger log.Logger) (*repositories, error) {
	store, err := bolt.New(cfg.SettingsDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	repo := settings.NewRepository(store)

	verdicts, err := verdictcache.New(cfg.CacheSize)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create verdict cache: %w", err), store.Close())
	}
	log.Info(map[string]any{
		"type":     "LRU",
		"size":     cfg.CacheSize,
		"disabled": cfg.CacheSize == 0,
	}, "Relevance cache configured")

	rec := stats.New(ctx, repo, stats.Options{Clock: clock.RealClock{}, Logger: logger})
	meta := store.Meta()
	log.Info(map[string]any{
		"settings_db": cfg.SettingsDB,
		"version":     meta.Version,
		"blocked":     rec.Snapshot().BlockedCount,
	}, "Settings store opened")

	return &repositories{store: store, settings: repo, stats: rec, verdicts: verdicts}, nil
}

// buildClassifier chains the zero-shot endpoint with the optional completion fallback.
func buildClassifier(cfg *config.AppConfig) relevance.Backend {
	primary := classifier.NewZeroShot(classifier.Config{
		URL:     cfg.ClassifierURL,
		Token:   cfg.ClassifierToken,
		Timeout: cfg.ClassifierTimeout,
	})
	if cfg.ClassifierFallbackURL == "" {
		return classifier.NewChain(primary)
	}
	fallback := classifier.NewCompletion(classifier.Config{
		URL:     cfg.ClassifierFallbackURL,
		Token:   cfg.ClassifierToken,
		Timeout: cfg.ClassifierTimeout,
	})
	return classifier.NewChain(primary, fallback)
}

// pipeline is the scanning core bound to one document.
type pipeline struct {
	classifier *relevance.Classifier
	scanner    *scanner.Scanner
	watcher    *watcher.Watcher
}

// buildPipeline wires policy, scanner and watcher around doc.
func buildPipeline(cfg *config.AppConfig, repos *repositories, backend relevance.Backend, doc domain.Document, chrome domain.PageChrome, logger log.Logger) *pipeline {
	clk := clock.RealClock{}

	var w *watcher.Watcher
	p := scanner.NewPipeline(doc, backend, repos.verdicts, scanner.Options{
		Clock:       clk,
		Logger:      logger,
		Chrome:      chrome,
		Stats:       repos.stats,
		Unblocker:   repos.settings,
		MaxInflight: int64(cfg.MaxInflight),
		OnSettingsChanged: func() {
			w.NotifySettingsUpdated()
		},
	})
	w = watcher.New(p.Scanner, repos.settings, watcher.Options{
		Clock:     clk,
		Logger:    logger,
		Relevance: p.Classifier,
		Stats:     repos.stats,
	})
	return &pipeline{classifier: p.Classifier, scanner: p.Scanner, watcher: w}
}

// Run starts watching the page and serving the control API, and blocks until
// ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	doc := app.session.Document()
	startURL, err := doc.Location(ctx)
	if err != nil {
		startURL = app.config.StartURL
	}
	app.pipeline.watcher.Start(ctx, startURL)
	go app.session.Watch(ctx, app.pipeline.watcher)

	serveErr := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Info(map[string]any{"address": app.config.Listen}, "Control API started")

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("control API failed: %w", err)
		}
	}

	log.Info(nil, "Shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	return multierr.Combine(runErr, app.shutdown(shutdownCtx))
}

func (app *Application) shutdown(ctx context.Context) error {
	app.pipeline.watcher.Stop()
	hits, misses, evictions := app.repos.verdicts.Stats()
	log.Info(map[string]any{
		"scans":            app.pipeline.watcher.Scans(),
		"dropped":          app.pipeline.watcher.Dropped(),
		"classifier_calls": app.pipeline.classifier.ExternalCalls(),
		"cache_hits":       hits,
		"cache_misses":     misses,
		"cache_evictions":  evictions,
	}, "Session totals")
	errs := app.server.Shutdown(ctx)
	if err := app.repos.stats.Flush(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	errs = multierr.Append(errs, app.session.Close())
	errs = multierr.Append(errs, app.repos.Close())
	if errs != nil {
		log.Warn(map[string]any{"error": errs}, "Errors during shutdown")
		return errs
	}
	log.Info(nil, "Graceful shutdown completed")
	return nil
}
