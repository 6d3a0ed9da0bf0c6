package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/scanner"
)

// StrategySource implements ports.FeedSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.FeedSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

type scanResult struct {
	input domain.RawInput
	err   error
}

// FetchDaily runs the primary sources concurrently and merges their texts in
// configuration order. Fallback sources run only when the primaries yield no
// text. A failing source is logged and skipped; an error is returned only
// when every source that ran failed.
func (s *StrategySource) FetchDaily(ctx context.Context, day time.Time) (domain.RawInput, error) {
	if s.registry == nil {
		return domain.RawInput{}, fmt.Errorf("scanner registry is not configured")
	}

	var primary, fallback []config.SourceConfig
	for _, src := range s.sources {
		if src.Fallback {
			fallback = append(fallback, src)
		} else {
			primary = append(primary, src)
		}
	}

	s.debug("fetch daily", "primary", len(primary), "fallback", len(fallback), "day", day.Format(domain.DateLayout))

	merged, errs := s.run(ctx, day, primary)
	if merged.IsEmpty() && len(fallback) > 0 {
		s.debug("primary sources empty, trying fallbacks")
		var fbErrs []error
		merged, fbErrs = s.run(ctx, day, fallback)
		errs = append(errs, fbErrs...)
	}

	if merged.IsEmpty() && len(errs) > 0 && len(errs) == len(primary)+len(fallback) {
		return domain.RawInput{}, fmt.Errorf("all feed sources failed: %w", errors.Join(errs...))
	}
	return merged, nil
}

func (s *StrategySource) run(ctx context.Context, day time.Time, sources []config.SourceConfig) (domain.RawInput, []error) {
	results := make([]scanResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			in, err := s.scan(gctx, day, src)
			if err != nil {
				s.warn("source failed", "source", src.Name, "scanner", src.Scanner, "error", err)
			}
			results[i] = scanResult{input: in, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		merged domain.RawInput
		errs   []error
	)
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", sources[i].Name, res.err))
			continue
		}
		for _, b := range domain.Buckets {
			merged.Append(b, stripMarkup(res.input.Text(b)))
		}
		s.debug("source produced text", "source", sources[i].Name, "empty", res.input.IsEmpty())
	}
	return merged, errs
}

func (s *StrategySource) scan(ctx context.Context, day time.Time, src config.SourceConfig) (domain.RawInput, error) {
	strategy, err := s.registry.Resolve(src.Scanner)
	if err != nil {
		return domain.RawInput{}, err
	}
	if src.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, src.Timeout)
		defer cancel()
	}

	req := scanner.Request{
		Day:        day,
		SiteName:   src.Name,
		Bucket:     domain.Bucket(src.Bucket),
		URL:        src.URL,
		Token:      src.Token,
		Selector:   src.Selector,
		MaxItems:   src.MaxItems,
		Options:    src.Options,
		Categories: toScannerCategories(src.Categories),
	}
	return strategy.Scan(ctx, req)
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

// stripMarkup removes HTML tags paragraph by paragraph.
func stripMarkup(text string) string {
	if !strings.Contains(text, "<") || !strings.Contains(text, ">") {
		return text
	}
	paragraphs := strings.Split(text, "\n\n")
	out := paragraphs[:0]
	for _, p := range paragraphs {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p))
		if err != nil {
			out = append(out, p)
			continue
		}
		if clean := collapseSpace(doc.Text()); clean != "" {
			out = append(out, clean)
		}
	}
	return strings.Join(out, "\n\n")
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
