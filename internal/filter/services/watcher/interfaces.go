package watcher

import (
	"context"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/services/scanner"
)

// Scanner runs one pass over the current document.
type Scanner interface {
	Scan(ctx context.Context, pass scanner.Pass) (scanner.Result, error)
	ResetPage()
}

// SettingsSource reads the current settings.
type SettingsSource interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// Resetter drops page-scoped state.
type Resetter interface {
	Reset()
}

// PageResetter drops page-scoped counters.
type PageResetter interface {
	ResetPage()
}
