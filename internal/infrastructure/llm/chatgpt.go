package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

// ChatGPTClient implements ports.TextGenerator against OpenAI-compatible
// chat-completions or responses endpoints.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.TextGenerator = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.LLMConfig) *ChatGPTClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.ResolvedModel(),
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateJSON requests a JSON object and validates the reply.
func (c *ChatGPTClient) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	text, err := c.complete(ctx, prompt, true)
	if err != nil {
		return nil, err
	}
	return parseJSON(text)
}

// GenerateText requests a plain-text reply.
func (c *ChatGPTClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, false)
}

func (c *ChatGPTClient) usesResponsesAPI() bool {
	return strings.HasSuffix(strings.TrimRight(c.endpoint, "/"), "/responses")
}

func (c *ChatGPTClient) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", ErrMisconfigured
	}

	body, err := json.Marshal(c.requestBody(prompt, jsonMode))
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chatgpt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var reply completionReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decode chatgpt reply: %w", err)
	}
	text := strings.TrimSpace(reply.text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *ChatGPTClient) requestBody(prompt string, jsonMode bool) map[string]any {
	system := safePrompt(c.systemPrompt)
	if c.usesResponsesAPI() {
		body := map[string]any{
			"model":        c.model,
			"instructions": system,
			"input":        prompt,
		}
		if jsonMode {
			body["text"] = map[string]any{"format": map[string]string{"type": "json_object"}}
		}
		return body
	}

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	return body
}

// completionReply covers both chat-completions and responses payloads.
type completionReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (r completionReply) text() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	if r.OutputText != "" {
		return r.OutputText
	}
	var parts []string
	for _, out := range r.Output {
		for _, content := range out.Content {
			if content.Text != "" {
				parts = append(parts, content.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are an editor-engine that only answers with the requested output."
	}
	return prompt
}
