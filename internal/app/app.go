package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"DailyBrief/internal/classifier"
	"DailyBrief/internal/config"
	"DailyBrief/internal/cover"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/extraction"
	"DailyBrief/internal/infrastructure/httpapi"
	"DailyBrief/internal/infrastructure/llm"
	"DailyBrief/internal/infrastructure/ml"
	"DailyBrief/internal/infrastructure/parser"
	"DailyBrief/internal/infrastructure/scheduler"
	"DailyBrief/internal/infrastructure/storage"
	"DailyBrief/internal/infrastructure/telegram"
	"DailyBrief/internal/logging"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/scanner"
	"DailyBrief/internal/sports"
	"DailyBrief/internal/taxonomy"
	"DailyBrief/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	repo     *storage.Repository
	pipeline *usecase.Pipeline
	registry *prometheus.Registry
}

// New opens storage, runs migrations and wires every collaborator. A
// migration failure is fatal.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(metrics.WithRegistry(promRegistry))

	repo, err := storage.Open(ctx, cfg.Database,
		storage.WithRetention(cfg.Archive.RetentionDays),
		storage.WithLogger(baseLogger.With("component", "storage")),
		storage.WithMetrics(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	baseLogger.Info("storage ready", storage.Describe(cfg.Database))

	registry := taxonomy.Default()

	text, err := llm.New(cfg.LLM)
	switch {
	case err != nil:
		baseLogger.Warn("text generator unavailable, heuristic fallbacks only", "error", err)
		text = nil
	case text == nil:
		baseLogger.Info("no text generator configured, heuristic fallbacks only")
	}

	var images ports.ImageGenerator
	if client := ml.NewClient(cfg.Images); client != nil {
		images = client
	}

	var notifier ports.Notifier
	if n := telegram.NewNotifier(cfg.Notifications.Telegram); n != nil {
		notifier = n
	}

	builder := extraction.NewOrchestrator(extraction.Deps{
		Registry:   registry,
		Classifier: classifier.New(registry, nil),
		Generator:  text,
		Timeout:    cfg.LLM.Timeout,
		Logger:     baseLogger.With("component", "extraction"),
		Metrics:    recorder,
	})

	unifier := sports.NewUnifier(sports.Deps{
		Config:   cfg.Sports,
		Registry: registry,
		Logger:   baseLogger,
		Metrics:  recorder,
	})

	covers := cover.NewCache(cover.Deps{
		Store:   repo,
		Text:    text,
		Images:  images,
		Timeout: cfg.Images.Timeout,
		Logger:  baseLogger,
		Metrics: recorder,
	})

	feedClient := &http.Client{Timeout: 30 * time.Second}
	scanners := scanner.NewRegistry(
		parser.NewEndpointScanner(feedClient),
		parser.NewFileScanner(),
		parser.NewHTMLScanner(feedClient),
		parser.NewArxivScanner(feedClient),
	)
	source := parser.NewStrategySource(scanners, cfg.Feeds.Sources, baseLogger.With("component", "source"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Builder:    builder,
		Sports:     unifier,
		Covers:     covers,
		Repository: repo,
		Notifier:   notifier,
		Registry:   registry,
		Location:   cfg.Scheduler.Location(),
		Logger:     baseLogger.With("component", "pipeline"),
		Metrics:    recorder,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		repo:     repo,
		pipeline: pipeline,
		registry: promRegistry,
	}, nil
}

// Close releases the storage handle.
func (a *Application) Close() error {
	return a.repo.Close()
}

// Ingest runs one ingestion for date (today when empty) from the configured feeds.
func (a *Application) Ingest(ctx context.Context, date string) (*domain.Issue, error) {
	return a.pipeline.Ingest(ctx, usecase.IngestRequest{Date: date})
}

// Rotate archives issues past the retention window.
func (a *Application) Rotate(ctx context.Context) (int, error) {
	return a.pipeline.Rotate(ctx)
}

// RunWorker ingests on the configured cron schedule until ctx is done.
func (a *Application) RunWorker(ctx context.Context) error {
	sched, err := a.startScheduler(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	return a.stopScheduler(sched)
}

// Serve runs the HTTP API until ctx is done. With withWorker the cron
// scheduler runs in the same process.
func (a *Application) Serve(ctx context.Context, withWorker bool) error {
	if withWorker {
		sched, err := a.startScheduler(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.stopScheduler(sched); err != nil {
				a.logger.Warn("scheduler stop", "error", err)
			}
		}()
	}

	api := httpapi.NewServer(httpapi.Deps{
		Service:  a.pipeline,
		Health:   a.repo.Ping,
		Gatherer: a.registry,
		Logger:   a.logger.With("component", "http"),
	})
	return api.ListenAndServe(ctx, a.cfg.HTTP.Addr)
}

func (a *Application) startScheduler(ctx context.Context) (*usecase.Scheduler, error) {
	driver, err := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.logger.With("component", "scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "worker"))
	if err := sched.Start(ctx); err != nil {
		return nil, fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Location().String())
	return sched, nil
}

func (a *Application) stopScheduler(sched *usecase.Scheduler) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return sched.Stop(ctx)
}
