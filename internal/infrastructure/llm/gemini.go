package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

// GeminiClient implements ports.TextGenerator with the Gemini API.
type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
	timeout      time.Duration
}

var _ ports.TextGenerator = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client. A non-empty endpoint overrides the
// API base URL.
func NewGeminiClient(cfg config.LLMConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMisconfigured
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" && !strings.Contains(endpoint, "openai.com") {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &GeminiClient{
		client:       client,
		model:        cfg.ResolvedModel(),
		systemPrompt: safePrompt(cfg.SystemPrompt),
		timeout:      timeout,
	}, nil
}

// GenerateJSON asks for an application/json reply and validates it.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	text, err := g.generate(ctx, prompt, "application/json")
	if err != nil {
		return nil, err
	}
	return parseJSON(text)
}

// GenerateText asks for a plain-text reply.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, "")
}

func (g *GeminiClient) generate(ctx context.Context, prompt, mime string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
	}
	if mime != "" {
		genCfg.ResponseMIMEType = mime
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
