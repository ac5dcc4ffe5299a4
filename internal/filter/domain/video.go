package domain

// VideoCandidate is the text extracted from one located element for a single scan pass.
// It is never persisted.
type VideoCandidate struct {
	Title       string
	CreatorName string
	Description string // show mode only; may be empty
	ExternalID  string // platform video id parsed from a permalink; may be empty
}

// Decidable reports whether the candidate carries enough text to be evaluated.
// Elements with an empty title or creator are skipped silently.
func (v VideoCandidate) Decidable() bool {
	return v.Title != "" && v.CreatorName != ""
}
