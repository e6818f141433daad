package review

import "context"

// DocumentStore port for the per-deck analysis/decisions documents.
// Implementations must lazily create empty-but-valid documents on
// first touch and rewrite the whole document on save.
type DocumentStore interface {
	LoadAnalysis(ctx context.Context, sermonID string) (*AnalysisDocument, error)
	SaveAnalysis(ctx context.Context, doc *AnalysisDocument) error
	LoadDecisions(ctx context.Context, sermonID string) (*DecisionsDocument, error)
	SaveDecisions(ctx context.Context, doc *DecisionsDocument) error

	// MutateAnalysis and MutateDecisions run fn under the deck's write
	// lock so concurrent read-modify-write cycles cannot lose updates.
	MutateAnalysis(ctx context.Context, sermonID string, fn func(*AnalysisDocument) error) (*AnalysisDocument, error)
	MutateDecisions(ctx context.Context, sermonID string, fn func(*DecisionsDocument) error) (*DecisionsDocument, error)
}
