package sports

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/taxonomy"
)

const footballPayload = `{"response":[
  {"fixture":{"id":11,"date":"2025-02-10T17:00:00+00:00","status":{"short":"NS","long":"Not Started"}},
   "league":{"name":"1. Division","country":"Cyprus"},
   "teams":{"home":{"name":"Omonia"},"away":{"name":"APOEL"}},"goals":{"home":null,"away":null}},
  {"fixture":{"id":12,"date":"2025-02-10T13:00:00+00:00","status":{"short":"FT","long":"Match Finished"}},
   "league":{"name":"1. Division","country":"Cyprus"},
   "teams":{"home":{"name":"AEK Larnaca"},"away":{"name":"Anorthosis"}},"goals":{"home":2,"away":"1"}},
  {"fixture":{"id":13,"date":"2025-02-10T15:00:00+00:00","status":{"short":"1H","long":"First Half"}},
   "league":{"name":"Super League 1","country":"Greece"},
   "teams":{"home":{"name":"PAOK"},"away":{"name":"Aris"}},"goals":{"home":0,"away":0}},
  {"fixture":{"id":14,"date":"2025-02-10T15:00:00+00:00","status":{"short":"NS"}},
   "league":{"name":"Liga Portugal","country":"Portugal"},
   "teams":{"home":{"name":"Benfica"},"away":{"name":"Porto"}}},
  "broken"
]}`

const basketballPayload = `{"response":[
  {"id":7,"date":"2025-02-10T19:45:00+00:00","status":{"short":"Q3","long":"Quarter 3"},
   "league":{"name":"Euroleague","country":"Europe"},
   "teams":{"home":{"name":"Olympiacos"},"away":{"name":"Real Madrid"}},
   "scores":{"home":{"total":61},"away":{"total":58}}}
]}`

type providerStub struct {
	mu         sync.Mutex
	football   func(w http.ResponseWriter)
	basketball func(w http.ResponseWriter)
	requests   []*http.Request
}

func (s *providerStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(context.Background()))
	s.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/fixtures"):
		s.football(w)
	case strings.HasSuffix(r.URL.Path, "/games"):
		s.basketball(w)
	default:
		http.NotFound(w, r)
	}
}

func (s *providerStub) seen() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func writeBody(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func failWith(status int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
	}
}

func newTestUnifier(t *testing.T, stub *providerStub, cfg config.SportsConfig) *Unifier {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg.FootballEndpoint = srv.URL + "/fixtures"
	cfg.BasketballEndpoint = srv.URL + "/games"
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Athens"
	}
	return NewUnifier(Deps{Config: cfg, Client: srv.Client()})
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]State{
		"FT": Finished, "pen": Finished, "CANC": Finished,
		"1H": Live, "HT": Live, "Q4": Live, "OT": Live,
		"NS": Upcoming, "TBD": Upcoming, "": Upcoming, "PST": Upcoming,
	}
	for code, want := range cases {
		if got := ClassifyStatus(code); got != want {
			t.Fatalf("ClassifyStatus(%q) = %s, want %s", code, got, want)
		}
	}
}

func TestParseFootballSkipsBrokenRows(t *testing.T) {
	t.Parallel()

	games, err := ParseFootball([]byte(footballPayload))
	if err != nil {
		t.Fatalf("ParseFootball: %v", err)
	}
	if len(games) != 4 {
		t.Fatalf("expected 4 games, got %d", len(games))
	}
	finished := games[1]
	if finished.HomeScore == nil || *finished.HomeScore != 2 || finished.AwayScore == nil || *finished.AwayScore != 1 {
		t.Fatalf("numeric-string scores not parsed: %+v", finished)
	}
	if games[3].StatusLong != "Not Started" {
		t.Fatalf("missing long status should default, got %q", games[3].StatusLong)
	}
	if games[0].HomeScore != nil {
		t.Fatal("null score should stay absent")
	}
}

func TestBucketizeRoutesAndSorts(t *testing.T) {
	t.Parallel()

	at := func(h int) time.Time { return time.Date(2025, 2, 10, h, 0, 0, 0, time.UTC) }
	games := []Game{
		{Sport: Football, Competition: "UEFA Europa Conference League", Kickoff: at(20)},
		{Sport: Football, Competition: "UEFA Europa League", Kickoff: at(18)},
		{Sport: Football, Competition: "Premier League", Country: "England", Kickoff: at(16)},
		{Sport: Football, Competition: "Premier League", Country: "Russia", Kickoff: at(16)},
		{Sport: Football, Competition: "1. Division", Country: "Cyprus", Kickoff: at(19)},
		{Sport: Football, Competition: "1. Division", Country: "Cyprus", Kickoff: at(15)},
		{Sport: Basketball, Competition: "Basket League", Country: "Greece", Kickoff: at(17)},
		{Sport: Football, Competition: "Euroleague", Kickoff: at(17)},
	}

	got := Bucketize(games)

	if len(got) != len(BucketKeys()) {
		t.Fatalf("expected every bucket present, got %d", len(got))
	}
	counts := map[string]int{}
	for key, list := range got {
		counts[key] = len(list)
	}
	want := map[string]int{
		"football_cyprus_league":     2,
		"football_europa_league":     1,
		"football_conference_league": 1,
		"football_premier_league":    1,
		"basketball_greek_league":    1,
	}
	for key := range counts {
		if counts[key] != want[key] {
			t.Fatalf("bucket %s: got %d games, want %d", key, counts[key], want[key])
		}
	}
	cyprus := got["football_cyprus_league"]
	if !cyprus[0].Kickoff.Before(cyprus[1].Kickoff) {
		t.Fatal("bucket not sorted by kickoff")
	}
}

func TestToItemTemplates(t *testing.T) {
	t.Parallel()

	athens, err := time.LoadLocation("Europe/Athens")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	two, one := 2, 1
	kickoff := time.Date(2025, 2, 10, 17, 0, 0, 0, time.UTC)

	upcoming := ToItem(Game{Sport: Football, Competition: "1. Division", Country: "Cyprus",
		StatusShort: "NS", StatusLong: "Not Started", HomeTeam: "Omonia", AwayTeam: "APOEL", Kickoff: kickoff}, athens, "Europe/Athens")
	if upcoming.Headline != "Omonia vs APOEL · 19:00 Athens" {
		t.Fatalf("unexpected upcoming headline %q", upcoming.Headline)
	}
	if diff := cmp.Diff([]string{"Competition: 1. Division (Cyprus)", "Kickoff: 19:00 (Europe/Athens)"}, upcoming.KeyFacts); diff != "" {
		t.Fatalf("key facts mismatch (-want +got):\n%s", diff)
	}

	final := ToItem(Game{Sport: Basketball, Competition: "Euroleague", StatusShort: "FT", StatusLong: "Game Finished",
		HomeTeam: "Olympiacos", AwayTeam: "Real Madrid", HomeScore: &two, AwayScore: &one}, athens, "Europe/Athens")
	if final.Headline != "Olympiacos 2-1 Real Madrid" || final.KeyFacts[1] != "Final score: Olympiacos 2-1 Real Madrid" {
		t.Fatalf("unexpected final item %+v", final)
	}
	if final.Sources[0].Title != "API-SPORTS Basketball" || final.Sources[0].Publisher != "API-SPORTS" {
		t.Fatalf("unexpected source %+v", final.Sources[0])
	}

	abandoned := ToItem(Game{Sport: Football, StatusShort: "CANC", StatusLong: "Cancelled", HomeTeam: "A", AwayTeam: "B"}, athens, "Europe/Athens")
	if abandoned.Headline != "A vs B (Cancelled)" || abandoned.KeyFacts[1] != "Status: Cancelled" {
		t.Fatalf("unexpected scoreless final %+v", abandoned)
	}
}

func TestApplyFillsMatchCenter(t *testing.T) {
	t.Parallel()

	stub := &providerStub{football: writeBody(footballPayload), basketball: writeBody(basketballPayload)}
	u := newTestUnifier(t, stub, config.SportsConfig{APIKey: "direct-key"})

	issue := taxonomy.Default().EmptyIssue("2025-02-10")
	u.Apply(context.Background(), issue)

	if issue.Status != domain.StatusReady {
		t.Fatalf("expected ready, got %s", issue.Status)
	}
	cyprus, _ := issue.Sections.Subsection(domain.Route{Section: taxonomy.MatchCenter, Subsection: "football_cyprus_league"})
	if len(cyprus.Items) != 2 {
		t.Fatalf("expected 2 cyprus games, got %d", len(cyprus.Items))
	}
	if cyprus.Items[0].Headline != "AEK Larnaca 2-1 Anorthosis" {
		t.Fatalf("earliest kickoff should come first, got %q", cyprus.Items[0].Headline)
	}
	wantNarrative := "2 match updates for Football · Cyprus League on 2025-02-10: 1 upcoming, 0 live/in-progress, 1 completed. All times are shown in Europe/Athens."
	if cyprus.Narrative != wantNarrative {
		t.Fatalf("unexpected narrative %q", cyprus.Narrative)
	}

	greek, _ := issue.Sections.Subsection(domain.Route{Section: taxonomy.MatchCenter, Subsection: "football_greek_super_league"})
	if len(greek.Items) != 1 || greek.Items[0].KeyFacts[1] != "Live status: First Half" {
		t.Fatalf("unexpected live game %+v", greek.Items)
	}

	euro, _ := issue.Sections.Subsection(domain.Route{Section: taxonomy.MatchCenter, Subsection: "basketball_euroleague"})
	if len(euro.Items) != 1 || euro.Items[0].Headline != "Olympiacos 61-58 Real Madrid" {
		t.Fatalf("unexpected euroleague items %+v", euro.Items)
	}

	empty, _ := issue.Sections.Subsection(domain.Route{Section: taxonomy.MatchCenter, Subsection: "national_world_cup"})
	if !strings.HasPrefix(empty.Narrative, "No scheduled or completed matches were detected") {
		t.Fatalf("unexpected empty narrative %q", empty.Narrative)
	}

	for _, r := range stub.seen() {
		if r.Header.Get("x-apisports-key") != "direct-key" {
			t.Fatalf("missing api key header on %s", r.URL.Path)
		}
		if r.Header.Get("x-rapidapi-key") != "" {
			t.Fatal("rapidapi header sent without a rapidapi key")
		}
		if r.URL.Query().Get("date") != "2025-02-10" || r.URL.Query().Get("timezone") != "Europe/Athens" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
	}
}

func TestProviderFailureIsIsolated(t *testing.T) {
	t.Parallel()

	stub := &providerStub{football: writeBody(footballPayload), basketball: failWith(http.StatusBadGateway)}
	u := newTestUnifier(t, stub, config.SportsConfig{RapidAPIKey: "rapid"})

	games := u.FetchGames(context.Background(), "2025-02-10")
	if len(games) != 4 {
		t.Fatalf("football games lost when basketball failed: %d", len(games))
	}
	for _, g := range games {
		if g.Sport != Football {
			t.Fatalf("unexpected sport %s", g.Sport)
		}
	}
	for _, r := range stub.seen() {
		if r.Header.Get("x-rapidapi-key") != "rapid" || r.Header.Get("x-rapidapi-host") == "" {
			t.Fatalf("rapidapi headers missing on %s", r.URL.Path)
		}
	}
}

func TestHungProviderIsCutAtTimeout(t *testing.T) {
	t.Parallel()

	stub := &providerStub{basketball: writeBody(basketballPayload)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/fixtures") {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		stub.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	u := NewUnifier(Deps{
		Config: config.SportsConfig{
			APIKey:             "key",
			FootballEndpoint:   srv.URL + "/fixtures",
			BasketballEndpoint: srv.URL + "/games",
			Timezone:           "Europe/Athens",
			Timeout:            time.Second,
		},
		Client: srv.Client(),
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})

	started := time.Now()
	games := u.FetchGames(context.Background(), "2025-02-10")
	took := time.Since(started)

	if len(games) != 1 || games[0].Sport != Basketball {
		t.Fatalf("basketball games lost when football hung: %+v", games)
	}
	if took > 3*time.Second {
		t.Fatalf("FetchGames waited %s for a hung provider", took)
	}

	out := logs.String()
	if !strings.Contains(out, "provider failed") || !strings.Contains(out, "sport=football") {
		t.Fatalf("timeout not logged: %s", out)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if n := strings.Count(line, "component=sports"); n != 1 {
			t.Fatalf("expected one component attribute, got %d in %q", n, line)
		}
	}
}

func TestDisabledFeedLeavesIssueUntouched(t *testing.T) {
	t.Parallel()

	stub := &providerStub{football: writeBody(footballPayload), basketball: writeBody(basketballPayload)}
	u := newTestUnifier(t, stub, config.SportsConfig{})

	if u.Enabled() {
		t.Fatal("feed without credentials must be disabled")
	}
	if games := u.FetchGames(context.Background(), "2025-02-10"); len(games) != 0 {
		t.Fatalf("expected no games, got %d", len(games))
	}

	issue := taxonomy.Default().EmptyIssue("2025-02-10")
	u.Apply(context.Background(), issue)
	if issue.Status != domain.StatusMissing {
		t.Fatalf("status changed to %s", issue.Status)
	}
	if n := len(stub.seen()); n != 0 {
		t.Fatalf("disabled feed issued %d requests", n)
	}
}
