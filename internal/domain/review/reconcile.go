package review

// Replacement is one original→replacement substitution for a slide.
type Replacement struct {
	Original    string
	Replacement string
}

type suggestionKey struct {
	slideID      string
	suggestionID string
}

// Reconcile merges a deck's analysis and decisions into the final
// per-slide substitution lists.
//
// Suggestions are looked up by (slideId, suggestionId), so a decision
// on one slide can never resolve a suggestion produced for another
// slide even when the inference service reuses short ids. Decisions
// referencing unknown suggestions are skipped silently. Rejected
// decisions produce nothing; accepted ones substitute the proposed
// text; edited ones substitute the supplied final text, falling back
// to the proposed text when the final text is empty. Order follows the
// decision list, duplicates included.
func Reconcile(analysis *AnalysisDocument, decisions *DecisionsDocument) map[string][]Replacement {
	lookup := make(map[suggestionKey]Suggestion)
	for _, slide := range analysis.Slides {
		for _, s := range slide.Suggestions {
			lookup[suggestionKey{slide.SlideID, s.ID}] = s
		}
	}

	out := make(map[string][]Replacement)
	for _, slide := range decisions.Slides {
		var repls []Replacement
		for _, d := range slide.Decisions {
			suggestion, ok := lookup[suggestionKey{slide.SlideID, d.SuggestionID}]
			if !ok {
				continue
			}
			switch d.Decision {
			case DecisionRejected:
				continue
			case DecisionAccepted:
				repls = append(repls, Replacement{suggestion.Original, suggestion.Proposed})
			case DecisionEdited:
				final := d.FinalText
				if final == "" {
					final = suggestion.Proposed
				}
				repls = append(repls, Replacement{suggestion.Original, final})
			}
		}
		if len(repls) > 0 {
			out[slide.SlideID] = repls
		}
	}
	return out
}
