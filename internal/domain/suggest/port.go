package suggest

import (
	"context"

	"github.com/apologia/backend/internal/domain/review"
)

// Client is the inference port: given a slide id and its extracted
// text, return the agent's ordered suggestion list.
type Client interface {
	Analyze(ctx context.Context, slideID, slideText string) ([]review.Suggestion, error)
}
