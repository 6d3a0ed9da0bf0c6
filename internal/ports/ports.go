package ports

import (
	"context"
	"encoding/json"
	"time"

	"DailyBrief/internal/domain"
)

// TextGenerator calls a generative text service. GenerateJSON must return a
// syntactically valid JSON document or an error.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator turns a prompt into an image locator (URL or data URI).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// IssueRepository persists issues, archives old ones and keeps the run log.
type IssueRepository interface {
	Save(ctx context.Context, issue *domain.Issue, input domain.RawInput) error
	GetByDate(ctx context.Context, date string) (*domain.Issue, error)
	GetLatest(ctx context.Context) (*domain.Issue, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Issue, error)
	ListArchived(ctx context.Context, limit int) ([]*domain.Issue, error)
	Rotate(ctx context.Context, today time.Time) (int, error)
	LogRun(ctx context.Context, run domain.IngestRun) error
}

// CoverStore keeps at most one cover per (date, section).
type CoverStore interface {
	GetCover(ctx context.Context, date string, section domain.SectionKey) (domain.CoverImage, bool, error)
	SaveCover(ctx context.Context, date string, cover domain.CoverImage) error
}

// FeedSource loads the raw automation texts for a day.
type FeedSource interface {
	FetchDaily(ctx context.Context, day time.Time) (domain.RawInput, error)
}

// IssueBuilder turns raw texts into a structured issue and never fails.
type IssueBuilder interface {
	BuildIssue(ctx context.Context, date string, input domain.RawInput) *domain.Issue
}

// SportsFeed merges live match data into an issue.
type SportsFeed interface {
	Enabled() bool
	Apply(ctx context.Context, issue *domain.Issue)
}

// CoverProvider returns the cover of one section, creating it on first use.
type CoverProvider interface {
	GetOrCreate(ctx context.Context, issue *domain.Issue, section domain.SectionKey) (domain.CoverImage, error)
}

// Notifier streams ingestion summaries to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
