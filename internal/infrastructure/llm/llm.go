// Package llm provides generative text clients for OpenAI-compatible APIs and
// Gemini.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

var (
	// ErrMisconfigured is returned when credentials, endpoint or model are missing.
	ErrMisconfigured = errors.New("llm client misconfigured")
	// ErrEmptyResponse is returned when the service answers with no text.
	ErrEmptyResponse = errors.New("llm returned empty response")
	// ErrInvalidJSON is returned when a JSON reply does not parse.
	ErrInvalidJSON = errors.New("llm returned invalid json")
)

// New returns the configured generator, or nil when no API key is set so
// callers use their offline fallbacks.
func New(cfg config.LLMConfig) (ports.TextGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}
	if cfg.Provider == config.ProviderGemini {
		client, err := NewGeminiClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return NewChatGPTClient(cfg), nil
}

// parseJSON accepts a bare JSON document, optionally wrapped in a markdown
// code fence.
func parseJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%w: %.80s", ErrInvalidJSON, text)
	}
	return json.RawMessage(text), nil
}
