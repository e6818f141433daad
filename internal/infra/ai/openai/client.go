package openai

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/apologia/backend/internal/domain/review"
	"github.com/apologia/backend/internal/domain/suggest"
	infraai "github.com/apologia/backend/internal/infra/ai"
	"github.com/apologia/backend/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client adapts an OpenAI chat model to the suggestion port. It asks
// for a JSON object response and runs it through the same parser as
// the agent runtime.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Analyze(ctx context.Context, slideID, slideText string) ([]review.Suggestion, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(slideID, slideText)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, suggest.Errorf("chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, suggest.Errorf("chat completion returned no choices")
	}

	return infraai.ParseSuggestions(resp.Choices[0].Message.Content)
}
