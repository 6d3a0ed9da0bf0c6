package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/scanner"
)

const (
	defaultSelector = "article h2, article h3"
	userAgent       = "DailyBrief/1.0"
)

// HTMLScanner extracts headline text from category pages with a CSS selector.
type HTMLScanner struct {
	client *http.Client
}

// NewHTMLScanner wires an HTTP client.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return config.ScannerHTML
}

// Scan reads each category page, or the source URL when no categories are
// configured. Every matched element becomes one sentence attributed to the
// site.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) (domain.RawInput, error) {
	pages := req.Categories
	if len(pages) == 0 && req.URL != "" {
		pages = []scanner.Category{{Name: req.SiteName, URL: req.URL}}
	}
	if len(pages) == 0 {
		return domain.RawInput{}, fmt.Errorf("no pages provided for site %s", req.SiteName)
	}

	selector := req.Selector
	if selector == "" {
		selector = defaultSelector
	}
	bucket := req.Bucket
	if bucket == "" {
		bucket = domain.BucketNews
	}

	var (
		in   domain.RawInput
		seen = map[string]struct{}{}
		n    int
	)
	for _, page := range pages {
		doc, err := fetchDocument(ctx, h.client, page.URL, req.Options["userAgent"])
		if err != nil {
			return domain.RawInput{}, fmt.Errorf("page %s: %w", page.Name, err)
		}

		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if req.MaxItems > 0 && n >= req.MaxItems {
				return false
			}
			text := collapseSpace(s.Text())
			if text == "" {
				return true
			}
			if _, dup := seen[text]; dup {
				return true
			}
			seen[text] = struct{}{}
			n++
			in.Append(bucket, sentence(text)+" Sources: "+req.SiteName+".")
			return true
		})
	}
	return in, nil
}

func sentence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return text
	}
	return text + "."
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL, agent string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if agent == "" {
		agent = userAgent
	}
	req.Header.Set("User-Agent", agent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
