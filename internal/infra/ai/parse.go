// Package ai holds the pieces shared by the inference providers:
// parsing the suggestion JSON an agent returns, tolerant of wrapping
// commentary around the object.
package ai

import (
	"encoding/json"
	"strings"

	"github.com/apologia/backend/internal/domain/review"
	"github.com/apologia/backend/internal/domain/suggest"
)

type suggestionEnvelope struct {
	Suggestions []suggestionItem `json:"suggestions"`
}

type suggestionItem struct {
	ID          *string  `json:"id"`
	Category    *string  `json:"category"`
	Original    *string  `json:"original"`
	Proposed    *string  `json:"proposed"`
	Explanation string   `json:"explanation"`
	Confidence  *float64 `json:"confidence"`
}

// ParseSuggestions decodes the agent payload into suggestion records.
// When the payload is not valid JSON as-is, the substring between the
// first '{' and the last '}' is retried, which tolerates models that
// wrap the object in prose. If that retry also fails, the original
// parse error propagates. A missing "suggestions" field means an empty
// list; an item missing a required field fails the whole call.
func ParseSuggestions(payload string) ([]review.Suggestion, error) {
	raw, err := extractJSON(payload)
	if err != nil {
		return nil, suggest.Errorf("unparseable suggestion payload: %v", err)
	}

	var env suggestionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, suggest.Errorf("suggestion payload schema: %v", err)
	}

	out := make([]review.Suggestion, 0, len(env.Suggestions))
	for i, item := range env.Suggestions {
		if item.ID == nil || item.Category == nil || item.Original == nil || item.Proposed == nil {
			return nil, suggest.Errorf("suggestion %d missing required field", i)
		}
		out = append(out, review.Suggestion{
			ID:          *item.ID,
			Category:    *item.Category,
			Original:    *item.Original,
			Proposed:    *item.Proposed,
			Explanation: item.Explanation,
			Confidence:  item.Confidence,
		})
	}
	return out, nil
}

// extractJSON returns payload verbatim when it parses, otherwise the
// first-brace..last-brace substring when that parses instead.
func extractJSON(payload string) (json.RawMessage, error) {
	var probe any
	origErr := json.Unmarshal([]byte(payload), &probe)
	if origErr == nil {
		return json.RawMessage(payload), nil
	}

	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, origErr
	}
	inner := payload[start : end+1]
	if err := json.Unmarshal([]byte(inner), &probe); err != nil {
		return nil, origErr
	}
	return json.RawMessage(inner), nil
}
