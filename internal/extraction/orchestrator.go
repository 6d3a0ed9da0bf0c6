// Package extraction turns raw automation text into a structured issue,
// preferring a generative pass and degrading to the heuristic classifier.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"DailyBrief/internal/classifier"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/taxonomy"
)

const defaultTimeout = 45 * time.Second

var errNoGenerator = errors.New("text generator not configured")

// Deps wires the orchestrator collaborators. Only Registry is required.
type Deps struct {
	Registry   *taxonomy.Registry
	Classifier *classifier.Classifier
	Generator  ports.TextGenerator
	Timeout    time.Duration
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Orchestrator implements ports.IssueBuilder.
type Orchestrator struct {
	registry   *taxonomy.Registry
	classifier *classifier.Classifier
	generator  ports.TextGenerator
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

var _ ports.IssueBuilder = (*Orchestrator)(nil)

// NewOrchestrator constructs the extraction component.
func NewOrchestrator(deps Deps) *Orchestrator {
	registry := deps.Registry
	if registry == nil {
		registry = taxonomy.Default()
	}
	cls := deps.Classifier
	if cls == nil {
		cls = classifier.New(registry, nil)
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry:   registry,
		classifier: cls,
		generator:  deps.Generator,
		timeout:    timeout,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

type draft struct {
	issue     *domain.Issue
	heuristic bool
}

// BuildIssue never fails. With no usable text it returns the empty issue with
// status missing; otherwise every external failure is absorbed by a fallback.
func (o *Orchestrator) BuildIssue(ctx context.Context, date string, input domain.RawInput) *domain.Issue {
	if input.IsEmpty() {
		return o.registry.EmptyIssue(date)
	}

	structure := Fallback(o.structure(date, input), o.heuristicIssue(date, input))
	d := structure(ctx)

	if !d.heuristic {
		narrate := Fallback(o.narrate(d.issue), o.heuristicNarratives(d.issue))
		d.issue = narrate(ctx)
	}

	domain.RefreshStatus(d.issue)
	d.issue.RawInput = input.Provenance()
	domain.AttachReadTimes(d.issue)
	return d.issue
}

func (o *Orchestrator) structure(date string, input domain.RawInput) Producer[draft] {
	return func(ctx context.Context) (draft, error) {
		if o.generator == nil {
			return draft{}, errNoGenerator
		}
		ctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		raw, err := o.generator.GenerateJSON(ctx, StructurePrompt(o.registry, date, input))
		if err != nil {
			return draft{}, fmt.Errorf("generate issue: %w", err)
		}
		issue := o.registry.EmptyIssue(date)
		if err := decodeIssue(raw, issue, o.registry); err != nil {
			return draft{}, fmt.Errorf("decode issue: %w", err)
		}
		return draft{issue: issue}, nil
	}
}

func (o *Orchestrator) heuristicIssue(date string, input domain.RawInput) Recovery[draft] {
	return func(_ context.Context, cause error) draft {
		o.absorb("structure", cause)
		issue := o.registry.EmptyIssue(date)
		o.classifier.Apply(issue, input)
		return draft{issue: issue, heuristic: true}
	}
}

func (o *Orchestrator) narrate(issue *domain.Issue) Producer[*domain.Issue] {
	return func(ctx context.Context) (*domain.Issue, error) {
		if o.generator == nil {
			return nil, errNoGenerator
		}
		prompt, err := NarrativePrompt(o.registry, issue)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		raw, err := o.generator.GenerateJSON(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate narratives: %w", err)
		}
		n, err := decodeNarratives(raw, issue)
		if err != nil {
			return nil, fmt.Errorf("decode narratives: %w", err)
		}
		o.logger.Debug("narratives merged", "date", issue.Date, "count", n)
		return issue, nil
	}
}

func (o *Orchestrator) heuristicNarratives(issue *domain.Issue) Recovery[*domain.Issue] {
	return func(_ context.Context, cause error) *domain.Issue {
		o.absorb("narrative", cause)
		o.classifier.FillNarratives(issue)
		return issue
	}
}

func (o *Orchestrator) absorb(stage string, cause error) {
	o.metrics.ExtractionFallback(stage)
	if errors.Is(cause, errNoGenerator) {
		o.logger.Debug("generative stage skipped", "stage", stage)
		return
	}
	o.logger.Warn("generative stage failed, using heuristics", "stage", stage, "error", cause)
}
