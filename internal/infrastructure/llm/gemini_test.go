package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DailyBrief/internal/config"
)

func newGeminiTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeminiClient(config.LLMConfig{
		Provider: config.ProviderGemini,
		Endpoint: srv.URL,
		APIKey:   "gm-test",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	return client
}

func TestGeminiGenerateJSON(t *testing.T) {
	t.Parallel()

	var body, path, key string
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body, path, key = string(raw), r.URL.Path, r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"sections\":{}}"}]}}]}`))
	})

	raw, err := client.GenerateJSON(context.Background(), "structure this")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if string(raw) != `{"sections":{}}` {
		t.Fatalf("unexpected payload %s", raw)
	}
	if !strings.HasSuffix(path, ":generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	if key != "gm-test" {
		t.Fatalf("api key not sent, got %q", key)
	}
	if !strings.Contains(body, "structure this") || !strings.Contains(body, "application/json") {
		t.Fatalf("request lacks prompt or json mime type: %s", body)
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	t.Parallel()

	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	if _, err := client.GenerateText(context.Background(), "hello"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	gen, err := New(config.LLMConfig{Provider: config.ProviderGemini})
	if err != nil || gen != nil {
		t.Fatalf("no key must disable generation, got %v, %v", gen, err)
	}

	if _, err := NewGeminiClient(config.LLMConfig{}); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}

	gen, err = New(config.LLMConfig{Provider: config.ProviderGemini, APIKey: "gm", Endpoint: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := gen.(*GeminiClient); !ok {
		t.Fatalf("expected *GeminiClient, got %T", gen)
	}
}
