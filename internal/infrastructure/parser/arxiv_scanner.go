package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/scanner"
)

const (
	arxivBaseURL = "https://arxiv.org"
)

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// paper is one listing entry.
type paper struct {
	ID          string
	Title       string
	Abstract    string
	URL         string
	Category    string
	PublishedAt time.Time
}

// brief renders the paper as one tech-bucket paragraph: title, the first
// sentence of the abstract and a source line.
func (p paper) brief() string {
	abstract := p.Abstract
	if i := strings.Index(abstract, ". "); i >= 0 {
		abstract = abstract[:i+1]
	}
	text := strings.TrimSuffix(p.Title, ".") + ": " + abstract
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return text + " Sources: arXiv."
}

// ArxivScanner crawls category listings and turns the requested day's papers
// into tech-bucket text.
type ArxivScanner struct {
	client   *http.Client
	pageSize int
}

// NewArxivScanner wires an HTTP client; pageSize defaults to 200.
func NewArxivScanner(client *http.Client) *ArxivScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ArxivScanner{client: client, pageSize: 200}
}

// Name identifies the strategy inside the registry.
func (a *ArxivScanner) Name() string {
	return config.ScannerArxiv
}

// Scan walks through each category URL and collects papers published on the
// requested day, capped at MaxItems when set.
func (a *ArxivScanner) Scan(ctx context.Context, req scanner.Request) (domain.RawInput, error) {
	if len(req.Categories) == 0 {
		return domain.RawInput{}, fmt.Errorf("no categories provided for site %s", req.SiteName)
	}

	targetDay := time.Date(req.Day.Year(), req.Day.Month(), req.Day.Day(), 0, 0, 0, 0, time.UTC)
	var papers []paper
	seen := map[string]struct{}{}

	for _, cat := range req.Categories {
		skip := 0
		for {
			pageURL, err := buildPageURL(cat.URL, skip, a.pageSize)
			if err != nil {
				return domain.RawInput{}, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			doc, err := fetchDocument(ctx, a.client, pageURL, req.Options["userAgent"])
			if err != nil {
				return domain.RawInput{}, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			pagePapers, shouldContinue := a.extractPapers(doc, targetDay, cat.Name)
			for _, p := range pagePapers {
				if _, ok := seen[p.ID]; ok {
					continue
				}
				seen[p.ID] = struct{}{}
				papers = append(papers, p)
			}

			if !shouldContinue {
				break
			}
			skip += a.pageSize
		}
	}

	if req.MaxItems > 0 && len(papers) > req.MaxItems {
		papers = papers[:req.MaxItems]
	}

	bucket := req.Bucket
	if bucket == "" {
		bucket = domain.BucketTech
	}
	var in domain.RawInput
	for _, p := range papers {
		in.Append(bucket, p.brief())
	}
	return in, nil
}

func (a *ArxivScanner) extractPapers(doc *goquery.Document, targetDay time.Time, category string) ([]paper, bool) {
	var (
		collected    []paper
		continueScan = true
		processed    int
	)

	doc.Find("dl > dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		dd := dt.Next()
		processed++

		p := parseEntry(dt, dd, category)
		if p.Title == "" {
			return true
		}

		day := p.PublishedAt.UTC().Truncate(24 * time.Hour)
		if day.Equal(targetDay) {
			collected = append(collected, p)
		}
		if day.Before(targetDay) {
			continueScan = false
			return false
		}

		return true
	})

	if processed < a.pageSize {
		continueScan = false
	}

	return collected, continueScan
}

func parseEntry(dt, dd *goquery.Selection, category string) paper {
	link := dt.Find("a[href*=\"/abs/\"]").First()
	href, _ := link.Attr("href")

	id := strings.TrimSpace(link.Text())
	if id == "" {
		id = strings.TrimPrefix(href, "/abs/")
	}
	if href != "" && !strings.HasPrefix(href, "http") {
		href = strings.TrimSuffix(arxivBaseURL, "/") + href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	summary := dd.Find("p.mathjax").First().Text()
	summary = collapseSpace(strings.TrimPrefix(strings.TrimSpace(summary), "Abstract:"))

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	publishedAt := time.Now().UTC()
	if match := dateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			publishedAt = parsed
		}
	}

	if id == "" {
		id = href
	}

	return paper{
		ID:          id,
		Title:       collapseSpace(title),
		Abstract:    summary,
		URL:         href,
		Category:    category,
		PublishedAt: publishedAt,
	}
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid category url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
