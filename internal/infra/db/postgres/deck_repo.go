package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/apologia/backend/internal/domain/sermons"
)

type DeckRepository struct{ db *sql.DB }

func NewDeckRepository(db *sql.DB) *DeckRepository { return &DeckRepository{db: db} }

// EnsureSchema creates the sermons table and its listing index.
func (r *DeckRepository) EnsureSchema(ctx context.Context) error {
	const table = `
CREATE TABLE IF NOT EXISTS sermons (
  id TEXT PRIMARY KEY,
  sermon_name TEXT NOT NULL,
  series_name TEXT,
  week_or_date TEXT,
  pastor_name TEXT,
  status TEXT NOT NULL,
  file_path TEXT NOT NULL,
  original_filename TEXT NOT NULL,
  artifact_url TEXT,
  created_at TIMESTAMPTZ NOT NULL
);`
	if _, err := r.db.ExecContext(ctx, table); err != nil {
		return err
	}
	const index = `CREATE INDEX IF NOT EXISTS idx_sermons_created_at ON sermons (created_at DESC);`
	_, err := r.db.ExecContext(ctx, index)
	return err
}

func (r *DeckRepository) Save(ctx context.Context, d *domain.Deck) error {
	const q = `
INSERT INTO sermons
(id, sermon_name, series_name, week_or_date, pastor_name,
 status, file_path, original_filename, artifact_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		d.ID, d.SermonName, nullable(d.SeriesName), nullable(d.WeekOrDate), nullable(d.PastorName),
		d.Status, d.FilePath, d.OriginalFilename, nullable(d.ArtifactURL), created,
	)
	return err
}

const deckColumns = `id, sermon_name, series_name, week_or_date, pastor_name,
       status, file_path, original_filename, artifact_url, created_at`

func scanDeck(row interface{ Scan(...any) error }) (*domain.Deck, error) {
	var d domain.Deck
	var series, week, pastor, artifact sql.NullString
	if err := row.Scan(
		&d.ID, &d.SermonName, &series, &week, &pastor,
		&d.Status, &d.FilePath, &d.OriginalFilename, &artifact, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.SeriesName = series.String
	d.WeekOrDate = week.String
	d.PastorName = pastor.String
	d.ArtifactURL = artifact.String
	return &d, nil
}

func (r *DeckRepository) Get(ctx context.Context, id domain.DeckID) (*domain.Deck, error) {
	const q = `SELECT ` + deckColumns + ` FROM sermons WHERE id=$1 LIMIT 1;`
	d, err := scanDeck(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

func (r *DeckRepository) List(ctx context.Context) ([]*domain.Deck, error) {
	const q = `SELECT ` + deckColumns + ` FROM sermons ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeckRepository) UpdateOutput(ctx context.Context, id domain.DeckID, status domain.Status, artifactURL string) error {
	const q = `UPDATE sermons SET status = $1, artifact_url = $2 WHERE id = $3;`
	_, err := r.db.ExecContext(ctx, q, status, nullable(artifactURL), id)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
