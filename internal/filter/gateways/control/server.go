// Package control serves the local messaging API of the daemon.
package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

const defaultTop = 5

// Options configures a Server.
type Options struct {
	Logger log.Logger
	// ResolveChannel backs GET /v1/channel. Nil disables the route.
	ResolveChannel ChannelResolver
}

// Server holds the API handlers.
type Server struct {
	rules    Rules
	stats    Stats
	notifier Notifier
	resolve  ChannelResolver
	logger   log.Logger
}

// New returns a Server.
func New(rules Rules, stats Stats, notifier Notifier, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Server{rules: rules, stats: stats, notifier: notifier, resolve: opts.ResolveChannel, logger: logger}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP registers the API routes on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Post("/v1/settings-updated", s.handleSettingsUpdated)
	r.Get("/v1/options", s.handleOptions)
	r.Put("/v1/options", s.handleSetOptions)
	r.Put("/v1/mode", s.handleSetMode)
	r.Put("/v1/enabled", s.handleSetEnabled)
	r.Post("/v1/import", s.handleImport)
	r.Get("/v1/export", s.handleExport)
	r.Get("/v1/stats", s.handleStats)
	r.Post("/v1/stats/reset", s.handleStatsReset)
	r.Get("/v1/rules/{list}", s.handleListRules)
	r.Post("/v1/rules/{list}", s.handleAddRule)
	r.Delete("/v1/rules/{list}/{value}", s.handleRemoveRule)
	if s.resolve != nil {
		r.Get("/v1/channel", s.handleChannel)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug(map[string]any{
			"component":  "control",
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}, "request served")
	})
}

// notify is fire-and-forget; the rescan runs after the response is written.
func (s *Server) notify() {
	if s.notifier != nil {
		go s.notifier.NotifySettingsUpdated()
	}
}

func (s *Server) handleSettingsUpdated(w http.ResponseWriter, _ *http.Request) {
	s.notify()
	w.WriteHeader(http.StatusAccepted)
}

// OptionsResponse is the body of GET /v1/options.
type OptionsResponse struct {
	Enabled    bool                   `json:"enabled"`
	FilterMode string                 `json:"filterMode"`
	Options    settings.OptionsRecord `json:"options"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	s.writeOptions(w, r)
}

func (s *Server) writeOptions(w http.ResponseWriter, r *http.Request) {
	st, err := s.rules.Load(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, OptionsResponse{
		Enabled:    st.Enabled,
		FilterMode: st.Mode.String(),
		Options:    settings.NewOptionsRecord(st.Options),
	})
}

// ModeRequest is the body of PUT /v1/mode.
type ModeRequest struct {
	FilterMode string `json:"filterMode"`
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	mode, err := domain.ParseFilterMode(req.FilterMode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.rules.SetMode(r.Context(), mode); err != nil {
		s.fail(w, http.StatusInternalServerError, "could not set filter mode", err)
		return
	}
	s.notify()
	s.writeOptions(w, r)
}

// EnabledRequest is the body of PUT /v1/enabled.
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req EnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		http.Error(w, "body must be {\"enabled\": true|false}", http.StatusBadRequest)
		return
	}
	if err := s.rules.SetEnabled(r.Context(), *req.Enabled); err != nil {
		s.fail(w, http.StatusInternalServerError, "could not set enabled", err)
		return
	}
	s.notify()
	s.writeOptions(w, r)
}

// handleSetOptions merges a partial options record onto the stored options.
func (s *Server) handleSetOptions(w http.ResponseWriter, r *http.Request) {
	var rec settings.OptionsRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkOptions(rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := s.rules.Load(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not load settings", err)
		return
	}
	if err := s.rules.SetOptions(r.Context(), rec.Merge(st.Options)); err != nil {
		s.fail(w, http.StatusInternalServerError, "could not set options", err)
		return
	}
	s.notify()
	s.writeOptions(w, r)
}

// checkOptions rejects values that Merge would silently ignore.
func checkOptions(rec settings.OptionsRecord) error {
	if rec.BlockMode != nil {
		if _, ok := domain.ParseDisplayStyle(*rec.BlockMode); !ok {
			return fmt.Errorf("unsupported blockMode: %q", *rec.BlockMode)
		}
	}
	if rec.PartialMatch != nil {
		if _, err := domain.ParseMatchMode(*rec.PartialMatch); err != nil {
			return err
		}
	}
	if rec.ScanInterval != nil && *rec.ScanInterval <= 0 {
		return fmt.Errorf("scanInterval must be positive, got %d", *rec.ScanInterval)
	}
	return nil
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var doc settings.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if doc.FilterMode != "" {
		if _, err := domain.ParseFilterMode(doc.FilterMode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if doc.Options != nil {
		if err := checkOptions(*doc.Options); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := s.rules.Import(r.Context(), doc); err != nil {
		s.fail(w, http.StatusInternalServerError, "could not import settings", err)
		return
	}
	s.notify()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.rules.Export(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not export settings", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// StatsResponse is the body of GET /v1/stats.
type StatsResponse struct {
	Total       domain.Statistics `json:"total"`
	Page        domain.Statistics `json:"page"`
	TopKeywords []domain.Count    `json:"topKeywords"`
	TopCreators []domain.Count    `json:"topCreators"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	top := defaultTop
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "top must be a non-negative integer", http.StatusBadRequest)
			return
		}
		top = n
	}
	total := s.stats.Snapshot()
	writeJSON(w, http.StatusOK, StatsResponse{
		Total:       total,
		Page:        s.stats.PageSnapshot(),
		TopKeywords: domain.TopN(total.KeywordCounts, top),
		TopCreators: domain.TopN(total.CreatorCounts, top),
	})
}

func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	if err := s.stats.Reset(r.Context()); err != nil {
		s.fail(w, http.StatusInternalServerError, "could not reset statistics", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseList(w, r)
	if !ok {
		return
	}
	list, err := s.rules.List(r.Context(), kind)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not read rules", err)
		return
	}
	if list == nil {
		list = []string{}
	}
	writeJSON(w, http.StatusOK, list)
}

// RuleRequest is the body of POST /v1/rules/{list}.
type RuleRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseList(w, r)
	if !ok {
		return
	}
	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	value, err := s.rules.AddRule(r.Context(), kind, req.Value)
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, settings.ErrEmptyRule), errors.As(err, &verrs):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, settings.ErrDuplicateRule):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		s.fail(w, http.StatusInternalServerError, "could not add rule", err)
		return
	}
	s.notify()
	writeJSON(w, http.StatusCreated, RuleRequest{Value: value})
}

func (s *Server) handleRemoveRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseList(w, r)
	if !ok {
		return
	}
	err := s.rules.RemoveRule(r.Context(), kind, chi.URLParam(r, "value"))
	switch {
	case errors.Is(err, settings.ErrRuleNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.fail(w, http.StatusInternalServerError, "could not remove rule", err)
		return
	}
	s.notify()
	w.WriteHeader(http.StatusNoContent)
}

// ChannelResponse is the body of GET /v1/channel.
type ChannelResponse struct {
	Channel string `json:"channel"`
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	if link == "" {
		http.Error(w, "link is required", http.StatusBadRequest)
		return
	}
	name, ok, err := s.resolve(r.Context(), link)
	if err != nil {
		s.fail(w, http.StatusBadGateway, "could not query page", err)
		return
	}
	if !ok {
		http.Error(w, "channel not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ChannelResponse{Channel: name})
}

func parseList(w http.ResponseWriter, r *http.Request) (domain.RuleKind, bool) {
	kind, err := domain.ParseRuleKind(chi.URLParam(r, "list"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return 0, false
	}
	return kind, true
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	s.logger.Error(map[string]any{"component": "control", "error": err}, msg)
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
