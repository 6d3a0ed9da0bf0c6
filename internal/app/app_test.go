package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/taxonomy"
	"DailyBrief/internal/usecase"
)

func TestApplicationIngestsOfflineFromFileFeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	feed := `{"newsText":"Cyprus parliament approved the 2026 budget in Nicosia. Sources: Cyprus Mail.","techText":"A new open-source LLM tops coding benchmarks. Sources: arXiv."}`
	if err := os.WriteFile(filepath.Join(dir, "2026-02-17.json"), []byte(feed), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	cfg := config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Archive:  config.ArchiveConfig{RetentionDays: config.RetentionDays},
		Feeds: config.FeedsConfig{Sources: []config.SourceConfig{
			{Name: "automation-dir", Scanner: config.ScannerFile, URL: dir},
		}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	a, err := New(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	issue, err := a.Ingest(ctx, "2026-02-17")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if issue.Status != domain.StatusReady || issue.Sections.ItemCount() == 0 {
		t.Fatalf("unexpected issue: status=%s items=%d", issue.Status, issue.Sections.ItemCount())
	}
	for _, key := range taxonomy.Default().Keys() {
		c, ok := issue.Covers[key]
		if !ok || !strings.HasPrefix(c.ImageURL, "data:image/svg+xml;base64,") {
			t.Fatalf("section %s lacks an offline cover: %+v", key, c)
		}
	}

	stored, err := a.pipeline.IssueByDate(ctx, "2026-02-17")
	if err != nil {
		t.Fatalf("IssueByDate: %v", err)
	}
	if stored.Sections.ItemCount() != issue.Sections.ItemCount() {
		t.Fatalf("stored issue differs: %d vs %d items", stored.Sections.ItemCount(), issue.Sections.ItemCount())
	}

	if _, err := a.Ingest(ctx, "2026-02-18"); !errors.Is(err, usecase.ErrNoInput) {
		t.Fatalf("expected ErrNoInput for a day without feed, got %v", err)
	}
}

func TestApplicationRejectsBadCron(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Scheduler: config.SchedulerConfig{CronExpression: "every morning"},
	}
	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if err := a.RunWorker(context.Background()); err == nil {
		t.Fatal("expected cron parse error")
	}
}
