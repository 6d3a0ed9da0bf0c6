package sports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/taxonomy"
)

// Deps wires the unifier collaborators. Client defaults to one with the
// configured request timeout.
type Deps struct {
	Config   config.SportsConfig
	Registry *taxonomy.Registry
	Client   *http.Client
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Unifier pulls fixtures from both providers and fills the match center.
type Unifier struct {
	cfg      config.SportsConfig
	registry *taxonomy.Registry
	client   *http.Client
	location *time.Location
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

var _ ports.SportsFeed = (*Unifier)(nil)

// NewUnifier builds a unifier; an unknown timezone falls back to UTC.
func NewUnifier(deps Deps) *Unifier {
	registry := deps.Registry
	if registry == nil {
		registry = taxonomy.Default()
	}
	client := deps.Client
	if client == nil {
		client = &http.Client{Timeout: deps.Config.RequestTimeout()}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.UTC
		cfg.Timezone = "UTC"
	}
	return &Unifier{
		cfg:      cfg,
		registry: registry,
		client:   client,
		location: loc,
		logger:   logger.With("component", "sports"),
		metrics:  deps.Metrics,
	}
}

// Enabled reports whether any provider credential is configured.
func (u *Unifier) Enabled() bool {
	return u.cfg.Enabled()
}

type provider struct {
	sport    Sport
	endpoint string
	parse    func([]byte) ([]Game, error)
}

// FetchGames queries both providers concurrently. A failing provider is
// logged and contributes no games; it never affects the other one.
func (u *Unifier) FetchGames(ctx context.Context, date string) []Game {
	if !u.Enabled() {
		return nil
	}

	providers := []provider{
		{sport: Football, endpoint: u.cfg.FootballEndpoint, parse: ParseFootball},
		{sport: Basketball, endpoint: u.cfg.BasketballEndpoint, parse: ParseBasketball},
	}

	var (
		mu    sync.Mutex
		games []Game
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range providers {
		if strings.TrimSpace(p.endpoint) == "" {
			continue
		}
		g.Go(func() error {
			fetched, err := u.fetch(gctx, p, date)
			if err != nil {
				u.logger.Warn("provider failed", "sport", p.sport, "error", err)
				u.metrics.SportsFailure(string(p.sport))
				return nil
			}
			mu.Lock()
			games = append(games, fetched...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return games
}

func (u *Unifier) fetch(ctx context.Context, p provider, date string) ([]Game, error) {
	endpoint, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("date", date)
	query.Set("timezone", u.cfg.Timezone)
	endpoint.RawQuery = query.Encode()

	ctx, cancel := context.WithTimeout(ctx, u.cfg.RequestTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(u.cfg.APIKey); key != "" {
		req.Header.Set("x-apisports-key", key)
	}
	if key := strings.TrimSpace(u.cfg.RapidAPIKey); key != "" {
		req.Header.Set("x-rapidapi-key", key)
		req.Header.Set("x-rapidapi-host", endpoint.Host)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", p.sport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s provider returned status %d", p.sport, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", p.sport, err)
	}
	return p.parse(body)
}

// Apply writes fixtures into every match-center subsection. Nothing changes
// when the feed is disabled.
func (u *Unifier) Apply(ctx context.Context, issue *domain.Issue) {
	if !u.Enabled() || issue == nil {
		return
	}
	def, err := u.registry.Section(taxonomy.MatchCenter)
	if err != nil {
		return
	}
	if issue.Sections == nil {
		issue.Sections = domain.Sections{}
	}

	buckets := Bucketize(u.FetchGames(ctx, issue.Date))
	for _, subDef := range def.Subsections {
		label := subDef.Label(taxonomy.English)
		games := buckets[subDef.Key]
		items := make([]domain.Item, 0, len(games))
		for _, g := range games {
			items = append(items, ToItem(g, u.location, u.cfg.Timezone))
		}
		sub := issue.Sections.Ensure(taxonomy.MatchCenter, subDef.Key, label)
		sub.Items = items
		sub.Narrative = Narrative(label, issue.Date, u.cfg.Timezone, games)
		u.metrics.SportsGames(subDef.Key, len(games))
	}

	if issue.Sections.ItemCount() > 0 {
		issue.Status = domain.StatusReady
	}
	u.logger.Info("match center updated", "date", issue.Date, "items", len(issue.Sections.ItemsFor(taxonomy.MatchCenter)))
}
