package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/usecase"
)

type fakeService struct {
	issues    map[string]*domain.Issue
	ingestErr error
	requests  []usecase.IngestRequest
	windows   []int
	archives  []int
}

func (f *fakeService) Ingest(_ context.Context, req usecase.IngestRequest) (*domain.Issue, error) {
	f.requests = append(f.requests, req)
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return &domain.Issue{Date: req.Date, Status: domain.StatusReady}, nil
}

func (f *fakeService) IssueByDate(_ context.Context, date string) (*domain.Issue, error) {
	if issue, ok := f.issues[date]; ok {
		return issue, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeService) RecentWindow(_ context.Context, limit int) ([]*domain.Issue, error) {
	f.windows = append(f.windows, limit)
	return nil, nil
}

func (f *fakeService) ArchiveWindow(_ context.Context, limit int) ([]*domain.Issue, error) {
	f.archives = append(f.archives, limit)
	return []*domain.Issue{{Date: "2026-01-01", Status: domain.StatusReady}}, nil
}

func newTestServer(t *testing.T, svc *fakeService, health func(context.Context) error) *httptest.Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics.New(metrics.WithRegistry(reg)).IngestRun("success", 0)

	srv := httptest.NewServer(NewServer(Deps{
		Service:  svc,
		Health:   health,
		Gatherer: reg,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestIssuesByDate(t *testing.T) {
	t.Parallel()

	svc := &fakeService{issues: map[string]*domain.Issue{
		"2026-02-17": {Date: "2026-02-17", Status: domain.StatusReady},
	}}
	srv := newTestServer(t, svc, nil)

	resp, err := http.Get(srv.URL + "/api/issues?date=2026-02-17")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body := decode(t, resp)
	issue, _ := body["issue"].(map[string]any)
	if issue["date"] != "2026-02-17" {
		t.Fatalf("unexpected body: %v", body)
	}

	resp, err = http.Get(srv.URL + "/api/issues?date=2020-01-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["error"] != "Issue not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestIssuesWindowAndArchive(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	srv := newTestServer(t, svc, nil)

	for _, path := range []string{"/api/issues", "/api/issues?window=3", "/api/issues?window=abc"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		body := decode(t, resp)
		if issues, ok := body["issues"].([]any); !ok || len(issues) != 0 {
			t.Fatalf("%s: expected empty issues array, got %v", path, body)
		}
	}
	if got := svc.windows; len(got) != 3 || got[0] != 7 || got[1] != 3 || got[2] != 7 {
		t.Fatalf("unexpected window limits: %v", got)
	}

	resp, err := http.Get(srv.URL + "/api/archive?limit=30")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	body := decode(t, resp)
	if issues, _ := body["issues"].([]any); len(issues) != 1 || svc.archives[0] != 30 {
		t.Fatalf("unexpected archive response: %v limits=%v", body, svc.archives)
	}
}

func TestIngest(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	srv := newTestServer(t, svc, nil)

	payload := `{"date":"2026-02-17","newsText":"Cyprus budget passes.","techText":"Chips."}`
	resp, err := http.Post(srv.URL+"/api/ingest", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req := svc.requests[0]
	if req.Date != "2026-02-17" || req.Input.News != "Cyprus budget passes." || req.Input.Tech != "Chips." {
		t.Fatalf("unexpected request: %+v", req)
	}

	resp, err = http.Post(srv.URL+"/api/ingest?date=2026-02-18", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if req := svc.requests[1]; req.Date != "2026-02-18" || !req.Input.IsEmpty() {
		t.Fatalf("malformed body must become an empty request: %+v", req)
	}
}

func TestIngestErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		field  string
		want   string
	}{
		{err: usecase.ErrNoInput, status: http.StatusNotFound, field: "status", want: "missing"},
		{err: usecase.ErrInvalidDate, status: http.StatusBadRequest, field: "error", want: "invalid issue date"},
		{err: errors.New("database is locked"), status: http.StatusInternalServerError, field: "detail", want: "database is locked"},
	}
	for _, tc := range cases {
		srv := newTestServer(t, &fakeService{ingestErr: tc.err}, nil)
		resp, err := http.Post(srv.URL+"/api/ingest", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		if resp.StatusCode != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, resp.StatusCode)
		}
		if body := decode(t, resp); body[tc.field] != tc.want {
			t.Fatalf("%v: unexpected body %v", tc.err, body)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	healthy := newTestServer(t, &fakeService{}, func(context.Context) error { return nil })
	resp, err := http.Get(healthy.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK || decode(t, resp)["status"] != "ok" {
		t.Fatalf("unexpected health status %d", resp.StatusCode)
	}

	down := newTestServer(t, &fakeService{}, func(context.Context) error { return errors.New("db down") })
	resp, err = http.Get(down.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}

	resp, err = http.Get(healthy.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `dailybrief_ingest_runs_total{outcome="success"} 1`) {
		t.Fatalf("metrics output missing ingest counter:\n%s", raw)
	}
}
