package domain

// Settings is the full persisted user configuration.
type Settings struct {
	Enabled          bool
	Mode             FilterMode
	BlockedKeywords  []string
	BlockedCreators  []string
	InterestKeywords []string
	Options          Options
}

// DefaultSettings returns the configuration used for keys absent from the store.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		Mode:             ModeBlock,
		BlockedKeywords:  []string{},
		BlockedCreators:  []string{},
		InterestKeywords: []string{},
		Options:          DefaultOptions(),
	}
}

// HasCriteria reports whether the active mode has anything to evaluate.
// A scan with no criteria does nothing.
func (s Settings) HasCriteria() bool {
	if s.Mode == ModeShow {
		return len(s.InterestKeywords) > 0
	}
	return len(s.BlockedKeywords) > 0 || len(s.BlockedCreators) > 0
}

// List returns the slice holding rules of the given kind.
func (s Settings) List(kind RuleKind) []string {
	switch kind {
	case RuleKeyword:
		return s.BlockedKeywords
	case RuleCreator:
		return s.BlockedCreators
	case RuleInterest:
		return s.InterestKeywords
	default:
		return nil
	}
}
