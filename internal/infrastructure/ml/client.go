package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"DailyBrief/internal/config"
	"DailyBrief/internal/ports"
)

// ErrNoImage is returned when the service answers without an image URL.
var ErrNoImage = errors.New("image service returned no url")

// Client talks to an external image-generation service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.ImageGenerator = (*Client)(nil)

// NewClient creates a reusable HTTP client. It returns nil when no endpoint
// is configured.
func NewClient(cfg config.ImagesConfig) *Client {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// GenerateImage posts the prompt and returns the image URL from the reply.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.post(ctx, map[string]any{"prompt": prompt}, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.ImageURL) == "" {
		return "", ErrNoImage
	}
	return resp.ImageURL, nil
}

func (c *Client) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
