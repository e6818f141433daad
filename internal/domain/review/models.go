package review

import "time"

// Decision enum
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
	DecisionEdited   Decision = "edited"
)

// ValidDecision reports whether d is one of the three known dispositions.
func ValidDecision(d Decision) bool {
	switch d {
	case DecisionAccepted, DecisionRejected, DecisionEdited:
		return true
	}
	return false
}

// Suggestion is one AI-proposed text edit for a slide. Immutable once
// produced by the inference client.
type Suggestion struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Original    string   `json:"original"`
	Proposed    string   `json:"proposed"`
	Explanation string   `json:"explanation,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// SlideContent is the extracted text of one slide.
type SlideContent struct {
	SlideID      string `json:"slideId"`
	SlideNumber  int    `json:"slideNumber"`
	OriginalText string `json:"originalText"`
}

// SlideAnalysis holds the suggestions for one slide. Replaced wholesale
// when the slide is re-analyzed.
type SlideAnalysis struct {
	SlideID      string       `json:"slideId"`
	SlideNumber  int          `json:"slideNumber"`
	OriginalText string       `json:"originalText"`
	Suggestions  []Suggestion `json:"suggestions"`
}

// AnalysisDocument is the per-deck analysis record, slideId unique.
type AnalysisDocument struct {
	SermonID  string          `json:"sermonId"`
	CreatedAt time.Time       `json:"createdAt"`
	Slides    []SlideAnalysis `json:"slides"`
}

// UpsertSlide replaces the entry with the same slideId or appends.
func (d *AnalysisDocument) UpsertSlide(a SlideAnalysis) {
	for i, existing := range d.Slides {
		if existing.SlideID == a.SlideID {
			d.Slides[i] = a
			return
		}
	}
	d.Slides = append(d.Slides, a)
}

// Slide returns the analysis for slideId, or nil.
func (d *AnalysisDocument) Slide(slideID string) *SlideAnalysis {
	for i := range d.Slides {
		if d.Slides[i].SlideID == slideID {
			return &d.Slides[i]
		}
	}
	return nil
}

// SuggestionDecision is a human disposition for one suggestion.
// FinalText only matters when Decision == edited.
type SuggestionDecision struct {
	SuggestionID string   `json:"suggestionId"`
	Decision     Decision `json:"decision"`
	FinalText    string   `json:"finalText,omitempty"`
}

// SlideDecision holds the acted-on decisions for one slide, in the
// order the user submitted them.
type SlideDecision struct {
	SlideID     string               `json:"slideId"`
	SlideNumber int                  `json:"slideNumber"`
	Decisions   []SuggestionDecision `json:"decisions"`
}

// DecisionsDocument is the per-deck decision record, slideId unique.
type DecisionsDocument struct {
	SermonID  string          `json:"sermonId"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Slides    []SlideDecision `json:"slides"`
}

// UpsertSlide replaces the entry with the same slideId or appends.
func (d *DecisionsDocument) UpsertSlide(s SlideDecision) {
	for i, existing := range d.Slides {
		if existing.SlideID == s.SlideID {
			d.Slides[i] = s
			return
		}
	}
	d.Slides = append(d.Slides, s)
}

// Slide returns the decisions for slideId, or nil.
func (d *DecisionsDocument) Slide(slideID string) *SlideDecision {
	for i := range d.Slides {
		if d.Slides[i].SlideID == slideID {
			return &d.Slides[i]
		}
	}
	return nil
}
