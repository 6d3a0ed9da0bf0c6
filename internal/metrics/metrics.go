// Package metrics exposes Prometheus instrumentation for the ingestion pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cover request outcomes.
const (
	CoverCached        = "cached"
	CoverGenerated     = "generated"
	CoverFallbackText  = "fallback_prompt"
	CoverFallbackImage = "fallback_image"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace overrides the metric namespace.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithRegistry registers metrics on reg instead of the default registerer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(r *Recorder) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// Recorder records pipeline metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	namespace string
	registry  prometheus.Registerer

	ingestRuns          *prometheus.CounterVec
	ingestDuration      prometheus.Histogram
	extractionFallbacks *prometheus.CounterVec
	sportsFailures      *prometheus.CounterVec
	sportsGames         *prometheus.CounterVec
	coverRequests       *prometheus.CounterVec
	archiveRotations    prometheus.Counter
}

// New builds and registers every metric.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "dailybrief",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)
	r.ingestRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "ingest_runs_total",
		Help:      "Ingestion attempts by outcome",
	}, []string{"outcome"})
	r.ingestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Wall time of a full ingestion",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	r.extractionFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "extraction_fallbacks_total",
		Help:      "Generative stages replaced by the heuristic path",
	}, []string{"stage"})
	r.sportsFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "sports_fetch_failures_total",
		Help:      "Sports provider requests that were discarded",
	}, []string{"sport"})
	r.sportsGames = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "sports_games_total",
		Help:      "Normalized games routed into a match-center bucket",
	}, []string{"bucket"})
	r.coverRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "cover_requests_total",
		Help:      "Cover lookups by result",
	}, []string{"result"})
	r.archiveRotations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "archive_rotations_total",
		Help:      "Issues moved from the active table to the archive",
	})

	return r
}

// IngestRun records an ingestion outcome and its duration.
func (r *Recorder) IngestRun(outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.ingestRuns.WithLabelValues(outcome).Inc()
	r.ingestDuration.Observe(took.Seconds())
}

// ExtractionFallback counts a generative stage that fell back.
func (r *Recorder) ExtractionFallback(stage string) {
	if r == nil {
		return
	}
	r.extractionFallbacks.WithLabelValues(stage).Inc()
}

// SportsFailure counts a discarded provider response.
func (r *Recorder) SportsFailure(sport string) {
	if r == nil {
		return
	}
	r.sportsFailures.WithLabelValues(sport).Inc()
}

// SportsGames counts games routed into bucket.
func (r *Recorder) SportsGames(bucket string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.sportsGames.WithLabelValues(bucket).Add(float64(n))
}

// CoverRequest counts a cover lookup result.
func (r *Recorder) CoverRequest(result string) {
	if r == nil {
		return
	}
	r.coverRequests.WithLabelValues(result).Inc()
}

// ArchiveRotations counts rotated issues.
func (r *Recorder) ArchiveRotations(n int) {
	if r == nil || n == 0 {
		return
	}
	r.archiveRotations.Add(float64(n))
}
