// Package cover produces one artwork per (issue date, section) and caches it
// in the issue repository.
package cover

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/taxonomy"
)

const defaultTimeout = 30 * time.Second

// Deps wires the cache. Store is required; both generators are optional.
type Deps struct {
	Store   ports.CoverStore
	Text    ports.TextGenerator
	Images  ports.ImageGenerator
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Cache implements ports.CoverProvider.
type Cache struct {
	store   ports.CoverStore
	text    ports.TextGenerator
	images  ports.ImageGenerator
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Recorder
}

var _ ports.CoverProvider = (*Cache)(nil)

// NewCache constructs the cover cache.
func NewCache(deps Deps) *Cache {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:   deps.Store,
		text:    deps.Text,
		images:  deps.Images,
		timeout: timeout,
		logger:  logger.With("component", "cover"),
		metrics: deps.Metrics,
	}
}

// GetOrCreate returns the stored cover or generates, stores and returns a
// new one. Generator failures fall back to offline output; only store errors
// are returned.
func (c *Cache) GetOrCreate(ctx context.Context, issue *domain.Issue, section domain.SectionKey) (domain.CoverImage, error) {
	existing, ok, err := c.store.GetCover(ctx, issue.Date, section)
	if err != nil {
		return domain.CoverImage{}, fmt.Errorf("load cover %s/%s: %w", issue.Date, section, err)
	}
	if ok {
		c.metrics.CoverRequest(metrics.CoverCached)
		return existing, nil
	}

	keywords := Keywords(issue.Sections.ItemsFor(section))
	if keywords == nil {
		keywords = []string{}
	}
	prompt := c.prompt(ctx, issue.Date, section, keywords)
	cover := domain.CoverImage{
		Section:  section,
		ImageURL: c.image(ctx, section, prompt),
		Prompt:   prompt,
		Keywords: keywords,
	}

	if err := c.store.SaveCover(ctx, issue.Date, cover); err != nil {
		return domain.CoverImage{}, fmt.Errorf("save cover %s/%s: %w", issue.Date, section, err)
	}
	return cover, nil
}

func (c *Cache) prompt(ctx context.Context, date string, section domain.SectionKey, keywords []string) string {
	fallback := FallbackPrompt(date, section, keywords)
	if c.text == nil {
		c.metrics.CoverRequest(metrics.CoverFallbackText)
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	generated, err := c.text.GenerateText(callCtx, PromptRequest(date, section, keywords))
	generated = strings.TrimSpace(generated)
	if err != nil || generated == "" {
		c.logger.Warn("cover prompt fallback", "section", section, "error", err)
		c.metrics.CoverRequest(metrics.CoverFallbackText)
		return fallback
	}
	return generated
}

func (c *Cache) image(ctx context.Context, section domain.SectionKey, prompt string) string {
	if c.images != nil {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		url, err := c.images.GenerateImage(callCtx, prompt)
		if err == nil && strings.TrimSpace(url) != "" {
			c.metrics.CoverRequest(metrics.CoverGenerated)
			return url
		}
		c.logger.Warn("cover image fallback", "section", section, "error", err)
	}
	c.metrics.CoverRequest(metrics.CoverFallbackImage)
	return GradientSVG(section, prompt)
}

// FallbackPrompt is the templated prompt used when no text service answers.
func FallbackPrompt(date string, section domain.SectionKey, keywords []string) string {
	return fmt.Sprintf("%s cover on %s: %s; minimal high-contrast abstract editorial style, no text.",
		section, date, strings.Join(keywords, ", "))
}

// PromptRequest asks the text service for a one-sentence image prompt.
func PromptRequest(date string, section domain.SectionKey, keywords []string) string {
	style := "tasteful abstract editorial style, no photorealistic faces"
	if section == taxonomy.Tech {
		style = "modern minimal tech illustration style"
	}
	return fmt.Sprintf(`Create an image-generation prompt for a Daily Brief cover image.

Constraints:
- Date context: %s
- Block: %s
- Top keywords: %s
- Visual style: %s
- Clean composition, high contrast, no text on image.
- Professional newspaper/Notion hybrid aesthetic.
- No logos, no watermarks.

Return one prompt sentence only.`, date, section, strings.Join(keywords, ", "), style)
}
