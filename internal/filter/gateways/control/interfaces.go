package control

import (
	"context"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

// Notifier receives the "settings updated" message.
type Notifier interface {
	NotifySettingsUpdated()
}

// Rules is the settings repository surface the API exposes.
type Rules interface {
	Load(ctx context.Context) (domain.Settings, error)
	List(ctx context.Context, kind domain.RuleKind) ([]string, error)
	AddRule(ctx context.Context, kind domain.RuleKind, value string) (string, error)
	RemoveRule(ctx context.Context, kind domain.RuleKind, value string) error
	SetMode(ctx context.Context, mode domain.FilterMode) error
	SetEnabled(ctx context.Context, enabled bool) error
	SetOptions(ctx context.Context, o domain.Options) error
	Import(ctx context.Context, doc settings.Document) error
	Export(ctx context.Context) (settings.Document, error)
}

// Stats exposes the block counters.
type Stats interface {
	Snapshot() domain.Statistics
	PageSnapshot() domain.Statistics
	Reset(ctx context.Context) error
}

// ChannelResolver resolves the creator name for a link on the current page.
type ChannelResolver func(ctx context.Context, link string) (string, bool, error)
