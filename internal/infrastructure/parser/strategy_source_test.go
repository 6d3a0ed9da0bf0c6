package parser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/scanner"
)

type stubScanner struct {
	name string

	mu     sync.Mutex
	byURL  map[string]domain.RawInput
	failOn map[string]bool
	calls  []string
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Scan(_ context.Context, req scanner.Request) (domain.RawInput, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.URL)
	s.mu.Unlock()
	if s.failOn[req.URL] {
		return domain.RawInput{}, errors.New("boom")
	}
	return s.byURL[req.URL], nil
}

func (s *stubScanner) called(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == url {
			return true
		}
	}
	return false
}

func TestStrategySourceMergesInConfigOrder(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name: "stub",
		byURL: map[string]domain.RawInput{
			"a": {News: "<p>Cyprus <b>budget</b> passes.</p>"},
			"b": {News: "Greek ferry strike ends.", Tech: "Chip exports rise."},
		},
		failOn: map[string]bool{"broken": true},
	}
	src := NewStrategySource(scanner.NewRegistry(stub), []config.SourceConfig{
		{Name: "first", Scanner: "stub", URL: "a"},
		{Name: "broken", Scanner: "stub", URL: "broken"},
		{Name: "second", Scanner: "stub", URL: "b"},
		{Name: "file", Scanner: "stub", URL: "fallback", Fallback: true},
	}, nil)

	in, err := src.FetchDaily(context.Background(), feedDay)
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if in.News != "Cyprus budget passes.\n\nGreek ferry strike ends." {
		t.Fatalf("unexpected news: %q", in.News)
	}
	if in.Tech != "Chip exports rise." {
		t.Fatalf("unexpected tech: %q", in.Tech)
	}
	if stub.called("fallback") {
		t.Fatal("fallback source queried although primaries produced text")
	}
}

func TestStrategySourceUsesFallbackWhenPrimariesEmpty(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name:   "stub",
		byURL:  map[string]domain.RawInput{"fallback": {Sports: "AEK win."}},
		failOn: map[string]bool{"feed": true},
	}
	src := NewStrategySource(scanner.NewRegistry(stub), []config.SourceConfig{
		{Name: "feed", Scanner: "stub", URL: "feed"},
		{Name: "file", Scanner: "stub", URL: "fallback", Fallback: true},
	}, nil)

	in, err := src.FetchDaily(context.Background(), feedDay)
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if in.Sports != "AEK win." {
		t.Fatalf("unexpected sports: %q", in.Sports)
	}
}

func TestStrategySourceAllFailed(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(scanner.NewRegistry(), []config.SourceConfig{
		{Name: "ghost", Scanner: "missing"},
	}, nil)

	if _, err := src.FetchDaily(context.Background(), feedDay); err == nil {
		t.Fatal("expected error when every source failed")
	}
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "plain text", want: "plain text"},
		{in: "<p>one</p>\n\n<p>two &amp; three</p>", want: "one\n\ntwo & three"},
		{in: "<div>  </div>\n\nkept", want: "kept"},
	}
	for _, tc := range cases {
		if got := stripMarkup(tc.in); got != tc.want {
			t.Fatalf("stripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
