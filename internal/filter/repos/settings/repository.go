// Package settings is the typed view over the key-value settings store.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/haukened/tubefilter/internal/filter/common/utils"
	"github.com/haukened/tubefilter/internal/filter/domain"
)

// ruleInput is validated before a rule is stored.
type ruleInput struct {
	Value string `validate:"required,max=256"`
}

// Repository reads settings with defaults applied and performs the
// read-modify-write list edits. Edits are serialized.
type Repository struct {
	store    Store
	mu       sync.Mutex
	validate *validator.Validate
}

// NewRepository wraps store.
func NewRepository(store Store) *Repository {
	return &Repository{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Store returns the underlying key-value store.
func (r *Repository) Store() Store { return r.store }

// Load returns the full settings. Absent keys take their documented defaults.
func (r *Repository) Load(ctx context.Context) (domain.Settings, error) {
	rec, err := r.store.Get(ctx, KeyBlockedKeywords, KeyBlockedCreators, KeyInterestKeywords,
		KeyFilterMode, KeyEnabled, KeyOptions)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return decodeSettings(rec)
}

func decodeSettings(rec Record) (domain.Settings, error) {
	s := domain.DefaultSettings()
	var errs []error
	decode := func(key string, dst any) {
		raw, ok := rec[key]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", key, err))
		}
	}
	decode(KeyBlockedKeywords, &s.BlockedKeywords)
	decode(KeyBlockedCreators, &s.BlockedCreators)
	decode(KeyInterestKeywords, &s.InterestKeywords)
	decode(KeyEnabled, &s.Enabled)

	var mode string
	decode(KeyFilterMode, &mode)
	if mode != "" {
		if m, err := domain.ParseFilterMode(mode); err == nil {
			s.Mode = m
		}
	}
	var opts OptionsRecord
	decode(KeyOptions, &opts)
	s.Options = opts.Merge(s.Options)

	if s.BlockedKeywords == nil {
		s.BlockedKeywords = []string{}
	}
	if s.BlockedCreators == nil {
		s.BlockedCreators = []string{}
	}
	if s.InterestKeywords == nil {
		s.InterestKeywords = []string{}
	}
	return s, errors.Join(errs...)
}

// List returns one rule list.
func (r *Repository) List(ctx context.Context, kind domain.RuleKind) ([]string, error) {
	key, err := listKey(kind)
	if err != nil {
		return nil, err
	}
	return r.readList(ctx, key)
}

// AddRule trims and lower-cases value and appends it to the list for kind.
// It returns the stored value.
func (r *Repository) AddRule(ctx context.Context, kind domain.RuleKind, value string) (string, error) {
	key, err := listKey(kind)
	if err != nil {
		return "", err
	}
	value = utils.NormalizeRuleValue(value)
	if value == "" {
		return "", ErrEmptyRule
	}
	if err := r.validate.Struct(ruleInput{Value: value}); err != nil {
		return "", fmt.Errorf("invalid rule: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.readList(ctx, key)
	if err != nil {
		return "", err
	}
	if domain.ContainsFold(list, value) {
		return "", fmt.Errorf("%w: %s %q", ErrDuplicateRule, kind, value)
	}
	return value, r.writeJSON(ctx, key, append(list, value))
}

// RemoveRule deletes value (case-insensitive) from the list for kind.
func (r *Repository) RemoveRule(ctx context.Context, kind domain.RuleKind, value string) error {
	key, err := listKey(kind)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.readList(ctx, key)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !strings.EqualFold(v, strings.TrimSpace(value)) {
			out = append(out, v)
		}
	}
	if len(out) == len(list) {
		return fmt.Errorf("%w: %s %q", ErrRuleNotFound, kind, value)
	}
	return r.writeJSON(ctx, key, out)
}

// UnblockChannel removes every blocked creator contained in channelName,
// ignoring case. It returns the removed entries.
func (r *Repository) UnblockChannel(ctx context.Context, channelName string) ([]string, error) {
	name := strings.ToLower(strings.TrimSpace(channelName))
	if name == "" {
		return nil, ErrEmptyRule
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.readList(ctx, KeyBlockedCreators)
	if err != nil {
		return nil, err
	}
	var removed []string
	kept := make([]string, 0, len(list))
	for _, c := range list {
		if c != "" && strings.Contains(name, strings.ToLower(c)) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, r.writeJSON(ctx, KeyBlockedCreators, kept)
}

// SetMode stores the filter mode.
func (r *Repository) SetMode(ctx context.Context, mode domain.FilterMode) error {
	return r.writeJSON(ctx, KeyFilterMode, mode.String())
}

// SetEnabled stores the global enable flag.
func (r *Repository) SetEnabled(ctx context.Context, enabled bool) error {
	return r.writeJSON(ctx, KeyEnabled, enabled)
}

// SetOptions stores a complete options object.
func (r *Repository) SetOptions(ctx context.Context, o domain.Options) error {
	return r.writeJSON(ctx, KeyOptions, NewOptionsRecord(o))
}

// Import replaces lists, mode and options from an imported document in one write.
// Lists are normalized and de-duplicated; nil fields are left untouched.
func (r *Repository) Import(ctx context.Context, doc Document) error {
	rec := Record{}
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		rec[key] = raw
		return nil
	}
	var errs []error
	if doc.BlockedKeywords != nil {
		errs = append(errs, put(KeyBlockedKeywords, utils.DedupeFold(doc.BlockedKeywords)))
	}
	if doc.BlockedCreators != nil {
		errs = append(errs, put(KeyBlockedCreators, utils.DedupeFold(doc.BlockedCreators)))
	}
	if doc.InterestKeywords != nil {
		errs = append(errs, put(KeyInterestKeywords, utils.DedupeFold(doc.InterestKeywords)))
	}
	if doc.FilterMode != "" {
		m, err := domain.ParseFilterMode(doc.FilterMode)
		if err != nil {
			return err
		}
		errs = append(errs, put(KeyFilterMode, m.String()))
	}
	if doc.Enabled != nil {
		errs = append(errs, put(KeyEnabled, *doc.Enabled))
	}
	if doc.Options != nil {
		errs = append(errs, put(KeyOptions, NewOptionsRecord(doc.Options.Merge(domain.DefaultOptions()))))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("encode import: %w", err)
	}
	if len(rec) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Set(ctx, rec)
}

// Export returns the current settings and statistics as a Document.
func (r *Repository) Export(ctx context.Context) (Document, error) {
	s, err := r.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	stats, err := r.Statistics(ctx)
	if err != nil {
		return Document{}, err
	}
	opts := NewOptionsRecord(s.Options)
	enabled := s.Enabled
	return Document{
		BlockedKeywords:  s.BlockedKeywords,
		BlockedCreators:  s.BlockedCreators,
		InterestKeywords: s.InterestKeywords,
		FilterMode:       s.Mode.String(),
		Enabled:          &enabled,
		Options:          &opts,
		Statistics:       &stats,
	}, nil
}

// Statistics returns the persisted counters, zeroed when absent.
func (r *Repository) Statistics(ctx context.Context) (domain.Statistics, error) {
	rec, err := r.store.Get(ctx, KeyStatistics)
	if err != nil {
		return domain.Statistics{}, err
	}
	stats := domain.NewStatistics()
	if raw, ok := rec[KeyStatistics]; ok {
		if err := json.Unmarshal(raw, &stats); err != nil {
			return domain.NewStatistics(), fmt.Errorf("decode %s: %w", KeyStatistics, err)
		}
	}
	if stats.KeywordCounts == nil {
		stats.KeywordCounts = map[string]uint64{}
	}
	if stats.CreatorCounts == nil {
		stats.CreatorCounts = map[string]uint64{}
	}
	return stats, nil
}

// SaveStatistics overwrites the persisted counters.
func (r *Repository) SaveStatistics(ctx context.Context, s domain.Statistics) error {
	return r.writeJSON(ctx, KeyStatistics, s)
}

func (r *Repository) readList(ctx context.Context, key string) ([]string, error) {
	rec, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var list []string
	if raw, ok := rec[key]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return list, nil
}

func (r *Repository) writeJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.store.Set(ctx, Record{key: raw})
}
