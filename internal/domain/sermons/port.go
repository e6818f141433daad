package sermons

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, d *Deck) error
	Get(ctx context.Context, id DeckID) (*Deck, error)
	List(ctx context.Context) ([]*Deck, error)
	UpdateOutput(ctx context.Context, id DeckID, status Status, artifactURL string) error
}

// ArtifactStore port (interface untuk penyimpanan artefak)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}
