package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/scanner"
)

// feedPayload is the automation document shared by the endpoint and file
// scanners.
type feedPayload struct {
	NewsText   string `json:"newsText"`
	TechText   string `json:"techText"`
	SportsText string `json:"sportsText"`
}

func (p feedPayload) input() domain.RawInput {
	var in domain.RawInput
	in.Append(domain.BucketNews, p.NewsText)
	in.Append(domain.BucketTech, p.TechText)
	in.Append(domain.BucketSports, p.SportsText)
	return in
}

// EndpointScanner polls an automation HTTP endpoint with ?date=YYYY-MM-DD.
type EndpointScanner struct {
	client *http.Client
}

// NewEndpointScanner wires an HTTP client.
func NewEndpointScanner(client *http.Client) *EndpointScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &EndpointScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (e *EndpointScanner) Name() string {
	return config.ScannerEndpoint
}

// Scan fetches the day's payload. A null body yields empty input.
func (e *EndpointScanner) Scan(ctx context.Context, req scanner.Request) (domain.RawInput, error) {
	endpoint, err := url.Parse(req.URL)
	if err != nil || req.URL == "" {
		return domain.RawInput{}, fmt.Errorf("invalid endpoint %q for site %s", req.URL, req.SiteName)
	}
	query := endpoint.Query()
	query.Set("date", req.Date())
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return domain.RawInput{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-store")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return domain.RawInput{}, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RawInput{}, fmt.Errorf("feed returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RawInput{}, fmt.Errorf("read feed: %w", err)
	}
	var payload *feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.RawInput{}, fmt.Errorf("decode feed: %w", err)
	}
	if payload == nil {
		return domain.RawInput{}, nil
	}
	return payload.input(), nil
}

// FileScanner reads <dir>/<date>.json written by an external automation.
type FileScanner struct{}

// NewFileScanner builds the local-file strategy.
func NewFileScanner() *FileScanner {
	return &FileScanner{}
}

// Name identifies the strategy inside the registry.
func (f *FileScanner) Name() string {
	return config.ScannerFile
}

// Scan returns empty input when the file for the day does not exist.
func (f *FileScanner) Scan(_ context.Context, req scanner.Request) (domain.RawInput, error) {
	dir := req.URL
	if dir == "" {
		dir = "automation"
	}
	path := filepath.Join(dir, req.Date()+".json")

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.RawInput{}, nil
	}
	if err != nil {
		return domain.RawInput{}, fmt.Errorf("read %s: %w", path, err)
	}

	var payload feedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.RawInput{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return payload.input(), nil
}
