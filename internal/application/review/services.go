package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appsermons "github.com/apologia/backend/internal/application/sermons"
	domain "github.com/apologia/backend/internal/domain/review"
	"github.com/apologia/backend/internal/domain/sermons"
	"github.com/apologia/backend/internal/domain/suggest"
	"github.com/apologia/backend/internal/infra/pptx"
)

// Service implements the analyze / decide / regenerate use-cases.
type Service struct {
	Decks     *appsermons.Service
	Docs      domain.DocumentStore
	Suggest   suggest.Client
	Artifacts sermons.ArtifactStore // nil disables archiving
	Clock     Clock
	// DataDir is the durable state root; per-deck output lives at
	// <DataDir>/sermons/<id>/output.pptx next to its documents.
	DataDir string
}

type Clock interface {
	Now() time.Time
}

func (s *Service) openDeck(ctx context.Context, id sermons.DeckID) (*pptx.Presentation, *sermons.Deck, error) {
	deck, err := s.Decks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	path, err := s.Decks.ResolveFilePath(deck)
	if err != nil {
		return nil, nil, err
	}
	pres, err := pptx.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, sermons.ErrFileMissing
		}
		return nil, nil, err
	}
	return pres, deck, nil
}

// Slides returns every slide's extracted text.
func (s *Service) Slides(ctx context.Context, id sermons.DeckID) ([]domain.SlideContent, error) {
	pres, _, err := s.openDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SlideContent, 0, pres.SlideCount())
	for n := 1; n <= pres.SlideCount(); n++ {
		text, err := pres.SlideText(n)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.SlideContent{
			SlideID:      sermons.SlideID(id, n),
			SlideNumber:  n,
			OriginalText: text,
		})
	}
	return out, nil
}

// AnalyzeSlide runs inference on one slide and replaces that slide's
// analysis entry.
func (s *Service) AnalyzeSlide(ctx context.Context, id sermons.DeckID, n int) (*domain.SlideAnalysis, error) {
	if n < 1 {
		return nil, domain.ErrInvalidSlideNumber
	}
	pres, _, err := s.openDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	text, err := pres.SlideText(n)
	if err != nil {
		return nil, err
	}

	slideID := sermons.SlideID(id, n)
	suggestions, err := s.Suggest.Analyze(ctx, slideID, text)
	if err != nil {
		return nil, err
	}

	analysis := domain.SlideAnalysis{
		SlideID:      slideID,
		SlideNumber:  n,
		OriginalText: text,
		Suggestions:  suggestions,
	}
	if _, err := s.Docs.MutateAnalysis(ctx, string(id), func(doc *domain.AnalysisDocument) error {
		doc.UpsertSlide(analysis)
		return nil
	}); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Analysis returns the deck's whole analysis document.
func (s *Service) Analysis(ctx context.Context, id sermons.DeckID) (*domain.AnalysisDocument, error) {
	if _, err := s.Decks.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.Docs.LoadAnalysis(ctx, string(id))
}

// SlideAnalysis returns one slide's analysis entry.
func (s *Service) SlideAnalysis(ctx context.Context, id sermons.DeckID, n int) (*domain.SlideAnalysis, error) {
	if n < 1 {
		return nil, domain.ErrInvalidSlideNumber
	}
	doc, err := s.Analysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if slide := doc.Slide(sermons.SlideID(id, n)); slide != nil {
		return slide, nil
	}
	return nil, domain.ErrNoAnalysis
}

// SaveDecisions replaces slide n's decision entry and bumps the
// document timestamp.
func (s *Service) SaveDecisions(ctx context.Context, id sermons.DeckID, n int, decisions []domain.SuggestionDecision) (*domain.SlideDecision, error) {
	if n < 1 {
		return nil, domain.ErrInvalidSlideNumber
	}
	for _, d := range decisions {
		if !domain.ValidDecision(d.Decision) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDecision, d.Decision)
		}
	}
	if _, err := s.Decks.Get(ctx, id); err != nil {
		return nil, err
	}

	slide := domain.SlideDecision{
		SlideID:     sermons.SlideID(id, n),
		SlideNumber: n,
		Decisions:   decisions,
	}
	if _, err := s.Docs.MutateDecisions(ctx, string(id), func(doc *domain.DecisionsDocument) error {
		doc.UpdatedAt = s.Clock.Now().UTC()
		doc.UpsertSlide(slide)
		return nil
	}); err != nil {
		return nil, err
	}
	return &slide, nil
}

// Decisions returns the deck's whole decisions document.
func (s *Service) Decisions(ctx context.Context, id sermons.DeckID) (*domain.DecisionsDocument, error) {
	if _, err := s.Decks.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.Docs.LoadDecisions(ctx, string(id))
}

// OutputPath is the fixed per-deck location of the generated file.
func (s *Service) OutputPath(id sermons.DeckID) string {
	return filepath.Join(s.DataDir, "sermons", string(id), "output.pptx")
}

// Generate reconciles suggestions with decisions and writes a fresh
// copy of the deck with the substitutions applied. The whole output is
// regenerated every run; a failed save leaves any previous output
// untouched.
func (s *Service) Generate(ctx context.Context, id sermons.DeckID) error {
	analysis, err := s.Analysis(ctx, id)
	if err != nil {
		return err
	}
	decisions, err := s.Docs.LoadDecisions(ctx, string(id))
	if err != nil {
		return err
	}
	replacements := domain.Reconcile(analysis, decisions)

	pres, _, err := s.openDeck(ctx, id)
	if err != nil {
		return err
	}
	for n := 1; n <= pres.SlideCount(); n++ {
		repls := replacements[sermons.SlideID(id, n)]
		if len(repls) == 0 {
			continue
		}
		converted := make([]pptx.Replacement, len(repls))
		for i, r := range repls {
			converted[i] = pptx.Replacement{Original: r.Original, Replacement: r.Replacement}
		}
		if err := pres.ApplyReplacements(n, converted); err != nil {
			return err
		}
	}

	outputPath := s.OutputPath(id)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := pres.Save(outputPath); err != nil {
		return err
	}

	artifactURL := ""
	if s.Artifacts != nil {
		key := fmt.Sprintf("%s/output.pptx", id)
		url, err := s.Artifacts.Upload(ctx, outputPath, key)
		if err != nil {
			return err
		}
		artifactURL = url
	}
	return s.Decks.Repo.UpdateOutput(ctx, id, sermons.StatusGenerated, artifactURL)
}

// Output returns the generated file's path and download filename.
func (s *Service) Output(ctx context.Context, id sermons.DeckID) (string, string, error) {
	if _, err := s.Decks.Get(ctx, id); err != nil {
		return "", "", err
	}
	path := s.OutputPath(id)
	if _, err := os.Stat(path); err != nil {
		return "", "", domain.ErrNoOutput
	}
	return path, fmt.Sprintf("%s-updated.pptx", id), nil
}
