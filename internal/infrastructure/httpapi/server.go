// Package httpapi exposes issues, ingestion and operational endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/usecase"
)

const defaultIssueWindow = 7

// IssueService is the subset of the pipeline served over HTTP.
type IssueService interface {
	Ingest(ctx context.Context, req usecase.IngestRequest) (*domain.Issue, error)
	IssueByDate(ctx context.Context, date string) (*domain.Issue, error)
	RecentWindow(ctx context.Context, limit int) ([]*domain.Issue, error)
	ArchiveWindow(ctx context.Context, limit int) ([]*domain.Issue, error)
}

// Deps wires the server collaborators. Health and Gatherer are optional.
type Deps struct {
	Service  IssueService
	Health   func(ctx context.Context) error
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server is the JSON API.
type Server struct {
	service  IssueService
	health   func(ctx context.Context) error
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewServer builds the API server.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		service:  deps.Service,
		health:   deps.Health,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/issues", s.handleIssues)
	mux.HandleFunc("GET /api/archive", s.handleArchive)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http api listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type ingestBody struct {
	Date       string `json:"date"`
	NewsText   string `json:"newsText"`
	TechText   string `json:"techText"`
	SportsText string `json:"sportsText"`
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if date := query.Get("date"); date != "" {
		issue, err := s.service.IssueByDate(r.Context(), date)
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"issue": nil, "error": "Issue not found"})
			return
		}
		if err != nil {
			s.fail(w, "load issue", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
		return
	}

	issues, err := s.service.RecentWindow(r.Context(), intParam(query.Get("window"), defaultIssueWindow))
	if err != nil {
		s.fail(w, "list issues", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": nonNil(issues)})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	issues, err := s.service.ArchiveWindow(r.Context(), intParam(r.URL.Query().Get("limit"), 0))
	if err != nil {
		s.fail(w, "list archive", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": nonNil(issues)})
}

// handleIngest accepts an optional JSON body. A missing or malformed body is
// treated as an empty request, which ingests the configured feeds.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var body ingestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = ingestBody{}
	}
	if body.Date == "" {
		body.Date = r.URL.Query().Get("date")
	}

	issue, err := s.service.Ingest(r.Context(), usecase.IngestRequest{
		Date: body.Date,
		Input: domain.RawInput{
			News:   body.NewsText,
			Tech:   body.TechText,
			Sports: body.SportsText,
		},
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{"issue": issue})
	case errors.Is(err, usecase.ErrNoInput):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":     "Automation feed missing for selected day",
			"status":    domain.StatusMissing,
			"retryable": true,
		})
	case errors.Is(err, usecase.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	default:
		s.logger.Error("ingestion request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "Ingestion failed",
			"detail": err.Error(),
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(started))
	})
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func nonNil(issues []*domain.Issue) []*domain.Issue {
	if issues == nil {
		return []*domain.Issue{}
	}
	return issues
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
