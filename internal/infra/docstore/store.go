// Package docstore persists per-deck analysis and decision documents
// as pretty-printed JSON files, one pair per deck directory. Documents
// are created lazily with empty-but-valid content and rewritten
// wholesale on every save; a per-deck mutex serializes writers so a
// read-modify-write cycle cannot lose an update.
package docstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/apologia/backend/internal/domain/review"
)

type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// New creates a store rooted at dir (one subdirectory per deck id).
func New(dir string) *Store {
	return &Store{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

func (s *Store) deckLock(sermonID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sermonID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sermonID] = l
	}
	return l
}

func (s *Store) deckDir(sermonID string) string {
	return filepath.Join(s.root, sermonID)
}

func (s *Store) analysisPath(sermonID string) string {
	return filepath.Join(s.deckDir(sermonID), "analysis.json")
}

func (s *Store) decisionsPath(sermonID string) string {
	return filepath.Join(s.deckDir(sermonID), "decisions.json")
}

// ensure initializes the deck directory and both documents. Callers
// must hold the deck lock.
func (s *Store) ensure(sermonID string) error {
	if err := os.MkdirAll(s.deckDir(sermonID), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.analysisPath(sermonID)); os.IsNotExist(err) {
		doc := &review.AnalysisDocument{
			SermonID:  sermonID,
			CreatedAt: s.now().UTC(),
			Slides:    []review.SlideAnalysis{},
		}
		if err := writeJSON(s.analysisPath(sermonID), doc); err != nil {
			return err
		}
	}
	if _, err := os.Stat(s.decisionsPath(sermonID)); os.IsNotExist(err) {
		doc := &review.DecisionsDocument{
			SermonID:  sermonID,
			UpdatedAt: s.now().UTC(),
			Slides:    []review.SlideDecision{},
		}
		if err := writeJSON(s.decisionsPath(sermonID), doc); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON serializes first and only then touches the file, so a
// marshal failure leaves the on-disk document in its prior state.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) LoadAnalysis(ctx context.Context, sermonID string) (*review.AnalysisDocument, error) {
	l := s.deckLock(sermonID)
	l.Lock()
	defer l.Unlock()
	return s.loadAnalysisLocked(sermonID)
}

func (s *Store) loadAnalysisLocked(sermonID string) (*review.AnalysisDocument, error) {
	if err := s.ensure(sermonID); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.analysisPath(sermonID))
	if err != nil {
		return nil, err
	}
	var doc review.AnalysisDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) SaveAnalysis(ctx context.Context, doc *review.AnalysisDocument) error {
	l := s.deckLock(doc.SermonID)
	l.Lock()
	defer l.Unlock()
	if err := s.ensure(doc.SermonID); err != nil {
		return err
	}
	return writeJSON(s.analysisPath(doc.SermonID), doc)
}

func (s *Store) LoadDecisions(ctx context.Context, sermonID string) (*review.DecisionsDocument, error) {
	l := s.deckLock(sermonID)
	l.Lock()
	defer l.Unlock()
	return s.loadDecisionsLocked(sermonID)
}

func (s *Store) loadDecisionsLocked(sermonID string) (*review.DecisionsDocument, error) {
	if err := s.ensure(sermonID); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.decisionsPath(sermonID))
	if err != nil {
		return nil, err
	}
	var doc review.DecisionsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) SaveDecisions(ctx context.Context, doc *review.DecisionsDocument) error {
	l := s.deckLock(doc.SermonID)
	l.Lock()
	defer l.Unlock()
	if err := s.ensure(doc.SermonID); err != nil {
		return err
	}
	return writeJSON(s.decisionsPath(doc.SermonID), doc)
}

// MutateAnalysis runs fn on the loaded document and persists the
// result, all under the deck lock.
func (s *Store) MutateAnalysis(ctx context.Context, sermonID string, fn func(*review.AnalysisDocument) error) (*review.AnalysisDocument, error) {
	l := s.deckLock(sermonID)
	l.Lock()
	defer l.Unlock()
	doc, err := s.loadAnalysisLocked(sermonID)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := writeJSON(s.analysisPath(sermonID), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MutateDecisions runs fn on the loaded document and persists the
// result, all under the deck lock.
func (s *Store) MutateDecisions(ctx context.Context, sermonID string, fn func(*review.DecisionsDocument) error) (*review.DecisionsDocument, error) {
	l := s.deckLock(sermonID)
	l.Lock()
	defer l.Unlock()
	doc, err := s.loadDecisionsLocked(sermonID)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := writeJSON(s.decisionsPath(sermonID), doc); err != nil {
		return nil, err
	}
	return doc, nil
}
