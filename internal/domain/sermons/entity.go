package sermons

import (
	"fmt"
	"time"
)

// ID tipe untuk Deck
type DeckID string

// Status lifecycle tag, free-form
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusGenerated Status = "generated"
)

// Aggregate Root: Deck (one uploaded sermon presentation)
type Deck struct {
	ID               DeckID    `json:"id"`
	SermonName       string    `json:"sermonName"`
	SeriesName       string    `json:"seriesName,omitempty"`
	WeekOrDate       string    `json:"weekOrDate,omitempty"`
	PastorName       string    `json:"pastorName,omitempty"`
	Status           Status    `json:"status"`
	FilePath         string    `json:"filePath"`
	OriginalFilename string    `json:"originalFilename"`
	ArtifactURL      string    `json:"artifact_url,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SlideID returns the composite slide identifier "deckId:slideNumber".
func SlideID(id DeckID, n int) string {
	return fmt.Sprintf("%s:%d", id, n)
}
