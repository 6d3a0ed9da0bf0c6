package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/taxonomy"
)

// ErrNoInput is returned when a day has no feed text and no live data source
// could fill the issue.
var ErrNoInput = errors.New("automation feed missing for selected day")

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid issue date")

const (
	defaultRecentWindow  = 7
	defaultArchiveWindow = 60
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.FeedSource
	Builder    ports.IssueBuilder
	Sports     ports.SportsFeed
	Covers     ports.CoverProvider
	Repository ports.IssueRepository
	Notifier   ports.Notifier
	Registry   *taxonomy.Registry
	Location   *time.Location
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
	Clock      func() time.Time
}

// Pipeline implements the ingestion workflow and the read use cases.
type Pipeline struct {
	source     ports.FeedSource
	builder    ports.IssueBuilder
	sports     ports.SportsFeed
	covers     ports.CoverProvider
	repository ports.IssueRepository
	notifier   ports.Notifier
	registry   *taxonomy.Registry
	loc        *time.Location
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// IngestRequest is one ingestion call. An empty Date means today in the
// pipeline timezone.
type IngestRequest struct {
	Date  string
	Input domain.RawInput
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	registry := deps.Registry
	if registry == nil {
		registry = taxonomy.Default()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		builder:    deps.Builder,
		sports:     deps.Sports,
		covers:     deps.Covers,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		registry:   registry,
		loc:        loc,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        now,
	}
}

// Today is the current calendar date in the pipeline timezone.
func (p *Pipeline) Today() string {
	return p.now().In(p.loc).Format(domain.DateLayout)
}

// ProcessDay ingests the calendar date of day in the pipeline timezone.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (*domain.Issue, error) {
	return p.Ingest(ctx, IngestRequest{Date: day.In(p.loc).Format(domain.DateLayout)})
}

// loadFeeds fetches the configured feeds for date. A failing feed source is
// treated as empty input so live sports data can still fill the issue.
func (p *Pipeline) loadFeeds(ctx context.Context, date string, day time.Time) domain.RawInput {
	if p.source == nil {
		return domain.RawInput{}
	}
	input, err := p.source.FetchDaily(ctx, day)
	if err != nil {
		p.logger.Warn("feed acquisition failed", "date", date, "error", err)
		return domain.RawInput{}
	}
	return input
}

// Ingest builds, enriches and persists the issue for one date. Without
// request text the configured feeds are loaded for the date. Repository
// failures are logged as an error run and returned; every other external
// failure has already been absorbed by the collaborators.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*domain.Issue, error) {
	if p.builder == nil || p.repository == nil {
		return nil, fmt.Errorf("pipeline is not configured")
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = p.Today()
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, p.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	input := req.Input
	if input.IsEmpty() {
		input = p.loadFeeds(ctx, date, day)
	}

	sportsOn := p.sports != nil && p.sports.Enabled()
	if input.IsEmpty() && !sportsOn {
		return nil, ErrNoInput
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID, "date", date)
	started := p.now()
	logger.Info("ingestion started", "sports", sportsOn)

	issue, err := p.ingest(ctx, logger, date, input, sportsOn)
	took := p.now().Sub(started)
	if err != nil {
		p.metrics.IngestRun(string(domain.RunError), took)
		p.logRun(ctx, logger, date, domain.RunError, err)
		logger.Error("ingestion failed", "error", err)
		return nil, err
	}

	p.metrics.IngestRun(string(domain.RunSuccess), took)
	p.logRun(ctx, logger, date, domain.RunSuccess, nil)
	logger.Info("ingestion finished",
		"status", issue.Status,
		"items", issue.Sections.ItemCount(),
		"took", took)

	p.notify(ctx, logger, issue)
	return issue, nil
}

func (p *Pipeline) ingest(ctx context.Context, logger *slog.Logger, date string, input domain.RawInput, sportsOn bool) (*domain.Issue, error) {
	issue := p.builder.BuildIssue(ctx, date, input)
	p.registry.Normalize(issue)

	if sportsOn {
		p.sports.Apply(ctx, issue)
	}
	domain.AttachReadTimes(issue)

	if p.covers != nil {
		for _, key := range p.registry.Keys() {
			cover, err := p.covers.GetOrCreate(ctx, issue, key)
			if err != nil {
				return nil, fmt.Errorf("cover %s: %w", key, err)
			}
			issue.Covers[key] = cover
		}
	}

	now := p.now().UTC()
	issue.CreatedAt = now
	existing, err := p.repository.GetByDate(ctx, date)
	switch {
	case err == nil:
		issue.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load existing issue: %w", err)
	}
	issue.UpdatedAt = now

	if err := p.repository.Save(ctx, issue, input); err != nil {
		return nil, fmt.Errorf("save issue: %w", err)
	}

	moved, err := p.repository.Rotate(ctx, p.now().In(p.loc))
	if err != nil {
		return nil, fmt.Errorf("rotate archive: %w", err)
	}
	if moved > 0 {
		logger.Info("issues archived", "count", moved)
	}
	return issue, nil
}

func (p *Pipeline) logRun(ctx context.Context, logger *slog.Logger, date string, status domain.RunStatus, cause error) {
	run := domain.IngestRun{Date: date, Status: status, CreatedAt: p.now().UTC()}
	if cause != nil {
		run.Error = cause.Error()
	}
	if err := p.repository.LogRun(ctx, run); err != nil {
		logger.Error("record ingest run", "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, issue *domain.Issue) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishDigest(ctx, Digest(p.registry, issue)); err != nil {
		logger.Warn("notification failed", "error", err)
	}
}

// Digest renders a short plain-text summary of an issue: one line per
// section with its item count and the first headline.
func Digest(registry *taxonomy.Registry, issue *domain.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily brief %s (%s)\n", issue.Date, issue.Status)
	for _, def := range registry.Sections() {
		items := issue.Sections.ItemsFor(def.Key)
		fmt.Fprintf(&b, "\n%s: %d items", def.Key, len(items))
		if len(items) > 0 {
			fmt.Fprintf(&b, "\n• %s", items[0].Headline)
		}
	}
	return b.String()
}

// IssueByDate rotates the archive and returns the issue stored for date.
func (p *Pipeline) IssueByDate(ctx context.Context, date string) (*domain.Issue, error) {
	if err := p.rotate(ctx); err != nil {
		return nil, err
	}
	issue, err := p.repository.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	p.registry.Normalize(issue)
	return issue, nil
}

// IssueOrLatest returns the issue for date or, when it does not exist, the
// most recent one. found reports whether the requested date was served.
func (p *Pipeline) IssueOrLatest(ctx context.Context, date string) (issue *domain.Issue, found bool, err error) {
	issue, err = p.IssueByDate(ctx, date)
	if err == nil {
		return issue, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	issue, err = p.repository.GetLatest(ctx)
	if err != nil {
		return nil, false, err
	}
	p.registry.Normalize(issue)
	return issue, false, nil
}

// RecentWindow lists the newest active issues; limit defaults to 7.
func (p *Pipeline) RecentWindow(ctx context.Context, limit int) ([]*domain.Issue, error) {
	if limit <= 0 {
		limit = defaultRecentWindow
	}
	if err := p.rotate(ctx); err != nil {
		return nil, err
	}
	issues, err := p.repository.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	for _, issue := range issues {
		p.registry.Normalize(issue)
	}
	return issues, nil
}

// ArchiveWindow lists the newest archived issues; limit defaults to 60.
func (p *Pipeline) ArchiveWindow(ctx context.Context, limit int) ([]*domain.Issue, error) {
	if limit <= 0 {
		limit = defaultArchiveWindow
	}
	issues, err := p.repository.ListArchived(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived: %w", err)
	}
	for _, issue := range issues {
		p.registry.Normalize(issue)
	}
	return issues, nil
}

// Rotate moves issues past the retention window into the archive.
func (p *Pipeline) Rotate(ctx context.Context) (int, error) {
	moved, err := p.repository.Rotate(ctx, p.now().In(p.loc))
	if err != nil {
		return 0, fmt.Errorf("rotate archive: %w", err)
	}
	return moved, nil
}

func (p *Pipeline) rotate(ctx context.Context) error {
	_, err := p.Rotate(ctx)
	return err
}
