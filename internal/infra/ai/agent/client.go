// Package agent invokes the hosted suggestion agent over HTTP and
// unwraps the completion payload, which the runtime returns in several
// shapes depending on how the invocation was served.
package agent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apologia/backend/internal/domain/review"
	"github.com/apologia/backend/internal/domain/suggest"
	infraai "github.com/apologia/backend/internal/infra/ai"
)

const (
	envRegion   = "AWS_REGION"
	envAgentID  = "BEDROCK_AGENT_ID"
	envAliasID  = "BEDROCK_AGENT_ALIAS_ID"
	envEndpoint = "BEDROCK_AGENT_ENDPOINT"
)

type Client struct {
	httpClient *http.Client
	// endpoint overrides the region-derived runtime endpoint; used by
	// tests and on-prem deployments.
	endpoint string
}

func NewClient(endpoint string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		endpoint:   endpoint,
	}
}

func loadEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", &suggest.ConfigError{Variable: name}
	}
	return v, nil
}

// Analyze sends the slide to the agent and returns its suggestions.
// Configuration is resolved per call and fails before any network I/O.
func (c *Client) Analyze(ctx context.Context, slideID, slideText string) ([]review.Suggestion, error) {
	region, err := loadEnv(envRegion)
	if err != nil {
		return nil, err
	}
	agentID, err := loadEnv(envAgentID)
	if err != nil {
		return nil, err
	}
	aliasID, err := loadEnv(envAliasID)
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = os.Getenv(envEndpoint)
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://bedrock-agent-runtime.%s.amazonaws.com", region)
	}

	input, err := json.Marshal(map[string]string{
		"slideId":   slideID,
		"slideText": slideText,
	})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]string{"inputText": string(input)})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/agents/%s/agentAliases/%s/sessions/%s/text",
		strings.TrimRight(endpoint, "/"), agentID, aliasID, uuid.New().String())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, suggest.Errorf("invoke agent: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, suggest.Errorf("read agent response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, suggest.Errorf("agent returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	completion, err := readCompletion(raw)
	if err != nil {
		return nil, err
	}
	return infraai.ParseSuggestions(completion)
}

// The runtime's completion arrives in one of several shapes, tried in
// a fixed priority order:
//
//	completionString — {"completion": "..."}
//	completionBytes  — {"completion": {"bytes": "<base64>"}}
//	completionEvents — {"completion": [{"chunk": {"bytes": "..."}}, ...]}
//	outputText       — {"outputText": "..."}
//	rawBody          — a body that is not an envelope at all
type envelope struct {
	Completion json.RawMessage `json:"completion"`
	OutputText string          `json:"outputText"`
}

func readCompletion(raw []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Not an envelope: treat the readable body as the completion.
		return string(raw), nil
	}

	if len(env.Completion) > 0 && string(env.Completion) != "null" {
		var s string
		if err := json.Unmarshal(env.Completion, &s); err == nil {
			return s, nil
		}
		var blob struct {
			Bytes string `json:"bytes"`
		}
		if err := json.Unmarshal(env.Completion, &blob); err == nil && blob.Bytes != "" {
			return decodeChunk(blob.Bytes), nil
		}
		var events []map[string]json.RawMessage
		if err := json.Unmarshal(env.Completion, &events); err == nil {
			return concatEvents(events)
		}
	}

	if env.OutputText != "" {
		return env.OutputText, nil
	}

	var top map[string]json.RawMessage
	_ = json.Unmarshal(raw, &top)
	return "", suggest.Errorf("response missing completion content: %v", keys(top))
}

// concatEvents joins the chunk fragments in arrival order. An event
// stream with no chunk bytes is an error naming the event keys seen.
func concatEvents(events []map[string]json.RawMessage) (string, error) {
	var b strings.Builder
	var eventKeys []string
	gotChunk := false
	for _, ev := range events {
		eventKeys = append(eventKeys, strings.Join(keys(ev), ","))
		chunkRaw, ok := ev["chunk"]
		if !ok {
			continue
		}
		var chunk struct {
			Bytes string `json:"bytes"`
		}
		if err := json.Unmarshal(chunkRaw, &chunk); err != nil || chunk.Bytes == "" {
			continue
		}
		b.WriteString(decodeChunk(chunk.Bytes))
		gotChunk = true
	}
	if !gotChunk {
		return "", suggest.Errorf("empty completion stream, events: %v", eventKeys)
	}
	return b.String(), nil
}

// decodeChunk treats chunk bytes as base64; fragments that are not
// valid base64 are taken as literal text.
func decodeChunk(s string) string {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return string(data)
	}
	return s
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
