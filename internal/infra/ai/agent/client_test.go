package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apologia/backend/internal/domain/suggest"
)

const suggestionBody = `{"suggestions": [{"id": "s1", "category": "grammar", "original": "a", "proposed": "b"}]}`

func setAgentEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envRegion, "us-east-1")
	t.Setenv(envAgentID, "AGENT123")
	t.Setenv(envAliasID, "ALIAS456")
	t.Setenv(envEndpoint, "")
}

func newAgentServer(t *testing.T, respond func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/agents/AGENT123/agentAliases/ALIAS456/sessions/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			InputText string `json:"inputText"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		var input map[string]string
		if err := json.Unmarshal([]byte(body.InputText), &input); err != nil {
			t.Errorf("inputText is not embedded JSON: %v", err)
		} else if input["slideId"] != "deck:1" {
			t.Errorf("slideId = %q", input["slideId"])
		}
		respond(w)
	}))
}

func TestAnalyzeCompletionString(t *testing.T) {
	setAgentEnv(t)
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]string{"completion": suggestionBody})
	})
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("unexpected suggestions: %#v", got)
	}
}

func TestAnalyzeCompletionBytes(t *testing.T) {
	setAgentEnv(t)
	encoded := base64.StdEncoding.EncodeToString([]byte(suggestionBody))
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		fmt.Fprintf(w, `{"completion": {"bytes": %q}}`, encoded)
	})
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
}

func TestAnalyzeCompletionEventStream(t *testing.T) {
	setAgentEnv(t)
	// The payload split across two chunk events.
	half := len(suggestionBody) / 2
	first := base64.StdEncoding.EncodeToString([]byte(suggestionBody[:half]))
	second := base64.StdEncoding.EncodeToString([]byte(suggestionBody[half:]))
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		fmt.Fprintf(w, `{"completion": [{"chunk": {"bytes": %q}}, {"chunk": {"bytes": %q}}]}`, first, second)
	})
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 || got[0].Proposed != "b" {
		t.Fatalf("unexpected suggestions: %#v", got)
	}
}

func TestAnalyzeOutputTextFallback(t *testing.T) {
	setAgentEnv(t)
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]string{"outputText": suggestionBody})
	})
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
}

func TestAnalyzeRawBodyFallback(t *testing.T) {
	setAgentEnv(t)
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		// Not a JSON envelope at all; prose wrapping the object.
		fmt.Fprintf(w, "Sure! %s Done.", suggestionBody)
	})
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
}

func TestAnalyzeEmptyEventStream(t *testing.T) {
	setAgentEnv(t)
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		fmt.Fprint(w, `{"completion": [{"trace": {}}]}`)
	})
	defer srv.Close()

	_, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err == nil {
		t.Fatal("expected error for chunkless stream")
	}
	if !errors.Is(err, suggest.ErrAgent) {
		t.Errorf("error not wrapped in ErrAgent: %v", err)
	}
	if !strings.Contains(err.Error(), "trace") {
		t.Errorf("error should name the event keys seen: %v", err)
	}
}

func TestAnalyzeNon2xx(t *testing.T) {
	setAgentEnv(t)
	srv := newAgentServer(t, func(w http.ResponseWriter) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := NewClient(srv.URL).Analyze(context.Background(), "deck:1", "slide text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, suggest.ErrAgent) {
		t.Errorf("error not wrapped in ErrAgent: %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestAnalyzeMissingConfig(t *testing.T) {
	t.Setenv(envRegion, "")
	t.Setenv(envAgentID, "AGENT123")
	t.Setenv(envAliasID, "ALIAS456")

	_, err := NewClient("").Analyze(context.Background(), "deck:1", "slide text")
	var cfgErr *suggest.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if cfgErr.Variable != envRegion {
		t.Errorf("Variable = %q, want %q", cfgErr.Variable, envRegion)
	}
	if !errors.Is(err, suggest.ErrAgent) {
		t.Errorf("ConfigError should unwrap to ErrAgent: %v", err)
	}
}

func TestDecodeChunkLiteralFallback(t *testing.T) {
	if got := decodeChunk("not base64!!"); got != "not base64!!" {
		t.Errorf("decodeChunk = %q", got)
	}
	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))
	if got := decodeChunk(encoded); got != "hello" {
		t.Errorf("decodeChunk(base64) = %q", got)
	}
}
