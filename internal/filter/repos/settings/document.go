package settings

import "github.com/haukened/tubefilter/internal/filter/domain"

// Document is the import/export shape of the settings.
type Document struct {
	BlockedKeywords  []string           `json:"blockedKeywords,omitempty" koanf:"blockedKeywords"`
	BlockedCreators  []string           `json:"blockedCreators,omitempty" koanf:"blockedCreators"`
	InterestKeywords []string           `json:"interestKeywords,omitempty" koanf:"interestKeywords"`
	FilterMode       string             `json:"filterMode,omitempty" koanf:"filterMode"`
	Enabled          *bool              `json:"enabled,omitempty" koanf:"enabled"`
	Options          *OptionsRecord     `json:"options,omitempty" koanf:"options"`
	Statistics       *domain.Statistics `json:"statistics,omitempty" koanf:"-"`
}
