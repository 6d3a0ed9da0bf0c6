package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DailyBrief/internal/config"
)

func newTestClient(t *testing.T, path string, handler http.HandlerFunc) *ChatGPTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewChatGPTClient(config.LLMConfig{
		Provider: config.ProviderOpenAI,
		Endpoint: srv.URL + path,
		APIKey:   "sk-test",
		Timeout:  5 * time.Second,
	})
}

func TestGenerateJSONChatCompletions(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := newTestClient(t, "/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte("{\"choices\":[{\"message\":{\"content\":\"```json\\n{\\\"sections\\\":{}}\\n```\"}}]}"))
	})

	raw, err := client.GenerateJSON(context.Background(), "structure this")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if string(raw) != `{"sections":{}}` {
		t.Fatalf("unexpected payload %s", raw)
	}
	format, ok := captured["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("json mode not requested: %v", captured["response_format"])
	}
	if captured["model"] != "gpt-4.1-mini" {
		t.Fatalf("default model not applied: %v", captured["model"])
	}
}

func TestGenerateTextResponsesAPI(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "/v1/responses", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["input"] != "cover please" {
			t.Errorf("unexpected input %v", body["input"])
		}
		if _, ok := body["text"]; ok {
			t.Error("text mode must not request a json format")
		}
		_, _ = w.Write([]byte(`{"output":[{"content":[{"text":"A calm harbor."}]}]}`))
	})

	text, err := client.GenerateText(context.Background(), "cover please")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "A calm harbor." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantErr: ErrEmptyResponse},
		{name: "invalid json", status: http.StatusOK, body: `{"choices":[{"message":{"content":"not json"}}]}`, wantErr: ErrInvalidJSON},
		{name: "server error", status: http.StatusBadGateway, body: `oops`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, "/v1/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.GenerateJSON(context.Background(), "p")
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMisconfiguredClient(t *testing.T) {
	t.Parallel()

	client := NewChatGPTClient(config.LLMConfig{Endpoint: "https://api.example.org"})
	if _, err := client.GenerateText(context.Background(), "p"); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}

	gen, err := New(config.LLMConfig{Provider: config.ProviderOpenAI})
	if err != nil || gen != nil {
		t.Fatalf("no key should disable the generator, got %v %v", gen, err)
	}
	if _, err := NewGeminiClient(config.LLMConfig{Provider: config.ProviderGemini}); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured for gemini, got %v", err)
	}
}
