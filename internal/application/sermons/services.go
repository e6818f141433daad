package sermons

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	domain "github.com/apologia/backend/internal/domain/sermons"
)

// Service implements use-cases untuk Deck
type Service struct {
	Repo      domain.Repository
	Clock     Clock
	UploadDir string
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

//
// ==== USE CASES ====
//

// Command untuk upload deck
type UploadCommand struct {
	SermonName string
	SeriesName string
	WeekOrDate string
	PastorName string
	Filename   string
	File       io.Reader
}

// Upload stores the file under uploads/<id>/<filename> and inserts the
// deck row. Metadata content is not validated.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.Deck, error) {
	id := uuid.New().String()
	now := s.Clock.Now().UTC()

	dir := filepath.Join(s.UploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, cmd.Filename)
	out, err := os.Create(dest)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(out, cmd.File); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	deck := &domain.Deck{
		ID:               domain.DeckID(id),
		SermonName:       cmd.SermonName,
		SeriesName:       cmd.SeriesName,
		WeekOrDate:       cmd.WeekOrDate,
		PastorName:       cmd.PastorName,
		Status:           domain.StatusUploaded,
		FilePath:         id + "/" + cmd.Filename,
		OriginalFilename: cmd.Filename,
		CreatedAt:        now,
	}
	if err := s.Repo.Save(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// List semua deck, terbaru duluan
func (s *Service) List(ctx context.Context) ([]*domain.Deck, error) {
	return s.Repo.List(ctx)
}

// Get ambil 1 deck by id
func (s *Service) Get(ctx context.Context, id domain.DeckID) (*domain.Deck, error) {
	return s.Repo.Get(ctx, id)
}

// ResolveFilePath locates the stored deck file: the recorded path when
// absolute and still present, then relative to the upload root, then
// the reconstructed <id>/<originalFilename> location.
func (s *Service) ResolveFilePath(d *domain.Deck) (string, error) {
	if filepath.IsAbs(d.FilePath) {
		if _, err := os.Stat(d.FilePath); err == nil {
			return d.FilePath, nil
		}
	}

	candidate := filepath.Join(s.UploadDir, d.FilePath)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	fallback := filepath.Join(s.UploadDir, string(d.ID), d.OriginalFilename)
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}
	return "", domain.ErrFileMissing
}
