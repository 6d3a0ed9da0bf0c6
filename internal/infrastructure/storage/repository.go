// Package storage persists daily issues, their covers and the ingest log in
// either an embedded SQLite file or a PostgreSQL server.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/metrics"
	"DailyBrief/internal/ports"
)

// Option customizes a Repository.
type Option func(*Repository)

// WithRetention overrides how many days an issue stays in the active table.
func WithRetention(days int) Option {
	return func(r *Repository) {
		if days > 0 {
			r.retention = days
		}
	}
}

// WithLogger sets the logger used for migrations and rotation.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records archive rotations.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Repository) {
		r.metrics = m
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// Repository implements ports.IssueRepository and ports.CoverStore.
type Repository struct {
	db        *sql.DB
	dialect   Dialect
	retention int
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
}

var (
	_ ports.IssueRepository = (*Repository)(nil)
	_ ports.CoverStore      = (*Repository)(nil)
)

// New wraps an open connection pool. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Repository {
	r := &Repository{
		db:        db,
		dialect:   dialect,
		retention: config.RetentionDays,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "storage", "backend", dialect.Name)
	return r
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks that the backend is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) timestamp(t time.Time) string {
	if t.IsZero() {
		t = r.now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Save upserts the issue keyed by date. The last writer wins.
func (r *Repository) Save(ctx context.Context, issue *domain.Issue, input domain.RawInput) error {
	payload, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("encode issue %s: %w", issue.Date, err)
	}

	query, args, err := r.dialect.builder().
		Insert(tableIssues).
		Columns("issue_date", "issue_json", "ingest_status", "raw_input_news", "raw_input_tech", "raw_input_sports", "created_at", "updated_at").
		Values(issue.Date, string(payload), string(issue.Status),
			nullable(input.News), nullable(input.Tech), nullable(input.Sports),
			r.timestamp(issue.CreatedAt), r.timestamp(issue.UpdatedAt)).
		Suffix(issueUpsert).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save issue %s: %w", issue.Date, err)
	}
	return nil
}

// GetByDate checks the active table first, then the archive.
func (r *Repository) GetByDate(ctx context.Context, date string) (*domain.Issue, error) {
	for _, table := range []string{tableIssues, tableArchive} {
		issue, err := r.queryOne(ctx, r.dialect.builder().
			Select("issue_json").From(table).Where(sq.Eq{"issue_date": date}))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return issue, err
	}
	return nil, domain.ErrNotFound
}

// GetLatest returns the newest active issue, or the newest archived one when
// the active table is empty.
func (r *Repository) GetLatest(ctx context.Context) (*domain.Issue, error) {
	for _, table := range []string{tableIssues, tableArchive} {
		issue, err := r.queryOne(ctx, r.dialect.builder().
			Select("issue_json").From(table).OrderBy("issue_date DESC").Limit(1))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return issue, err
	}
	return nil, domain.ErrNotFound
}

// ListRecent returns active issues, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.Issue, error) {
	return r.list(ctx, tableIssues, limit)
}

// ListArchived returns archived issues, newest first.
func (r *Repository) ListArchived(ctx context.Context, limit int) ([]*domain.Issue, error) {
	return r.list(ctx, tableArchive, limit)
}

func (r *Repository) queryOne(ctx context.Context, b sq.SelectBuilder) (*domain.Issue, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var payload string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query issue: %w", err)
	}
	return decodeIssue(payload)
}

func (r *Repository) list(ctx context.Context, table string, limit int) ([]*domain.Issue, error) {
	if limit <= 0 {
		return []*domain.Issue{}, nil
	}
	query, args, err := r.dialect.builder().
		Select("issue_json").From(table).OrderBy("issue_date DESC").Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	issues := []*domain.Issue{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue, err := decodeIssue(payload)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return issues, nil
}

func decodeIssue(payload string) (*domain.Issue, error) {
	var issue domain.Issue
	if err := json.Unmarshal([]byte(payload), &issue); err != nil {
		return nil, fmt.Errorf("decode stored issue: %w", err)
	}
	return &issue, nil
}

// Rotate moves every active issue older than the retention window into the
// archive. Each row moves in its own transaction, so a repeated call only
// touches rows still left in the active table.
func (r *Repository) Rotate(ctx context.Context, today time.Time) (int, error) {
	cutoff := today.AddDate(0, 0, -r.retention).Format(domain.DateLayout)

	dates, err := r.staleDates(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, date := range dates {
		if err := r.archive(ctx, date); err != nil {
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		r.logger.Info("rotated issues into archive", "count", moved, "cutoff", cutoff)
		r.metrics.ArchiveRotations(moved)
	}
	return moved, nil
}

func (r *Repository) staleDates(ctx context.Context, cutoff string) ([]string, error) {
	query, args, err := r.dialect.builder().
		Select("issue_date").From(tableIssues).Where(sq.Lt{"issue_date": cutoff}).OrderBy("issue_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stale query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stale issues: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func (r *Repository) archive(ctx context.Context, date string) error {
	source := sq.Select(issueColumns).
		Column("? AS archived_at", r.timestamp(time.Time{})).
		From(tableIssues).
		Where(sq.Eq{"issue_date": date})

	insert, insertArgs, err := r.dialect.builder().
		Insert(tableArchive).
		Columns("issue_date", "issue_json", "ingest_status", "raw_input_news", "raw_input_tech", "raw_input_sports", "created_at", "updated_at", "archived_at").
		Select(source).
		Suffix(issueUpsert + ",\n\tarchived_at = EXCLUDED.archived_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive insert: %w", err)
	}
	remove, removeArgs, err := r.dialect.builder().
		Delete(tableIssues).Where(sq.Eq{"issue_date": date}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive delete: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive %s: %w", date, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
		return fmt.Errorf("archive issue %s: %w", date, err)
	}
	if _, err := tx.ExecContext(ctx, remove, removeArgs...); err != nil {
		return fmt.Errorf("delete active issue %s: %w", date, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive %s: %w", date, err)
	}
	return nil
}

// GetCover returns the stored cover for (date, section).
func (r *Repository) GetCover(ctx context.Context, date string, section domain.SectionKey) (domain.CoverImage, bool, error) {
	query, args, err := r.dialect.builder().
		Select("image_url", "prompt", "keywords_json").
		From(tableCovers).
		Where(sq.Eq{"issue_date": date, "block_name": string(section)}).
		ToSql()
	if err != nil {
		return domain.CoverImage{}, false, fmt.Errorf("build cover query: %w", err)
	}

	cover := domain.CoverImage{Section: section}
	var keywords string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&cover.ImageURL, &cover.Prompt, &keywords)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CoverImage{}, false, nil
	}
	if err != nil {
		return domain.CoverImage{}, false, fmt.Errorf("query cover: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &cover.Keywords); err != nil {
		return domain.CoverImage{}, false, fmt.Errorf("decode cover keywords: %w", err)
	}
	if cover.Keywords == nil {
		cover.Keywords = []string{}
	}
	return cover, true, nil
}

// SaveCover upserts the cover for (date, cover.Section).
func (r *Repository) SaveCover(ctx context.Context, date string, cover domain.CoverImage) error {
	keywords := cover.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	encoded, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	query, args, err := r.dialect.builder().
		Insert(tableCovers).
		Columns("issue_date", "block_name", "image_url", "prompt", "keywords_json", "created_at").
		Values(date, string(cover.Section), cover.ImageURL, cover.Prompt, string(encoded), r.timestamp(time.Time{})).
		Suffix(`ON CONFLICT (issue_date, block_name) DO UPDATE SET
	image_url = EXCLUDED.image_url,
	prompt = EXCLUDED.prompt,
	keywords_json = EXCLUDED.keywords_json,
	created_at = EXCLUDED.created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cover upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save cover %s/%s: %w", date, cover.Section, err)
	}
	return nil
}

// LogRun appends one ingest audit entry.
func (r *Repository) LogRun(ctx context.Context, run domain.IngestRun) error {
	query, args, err := r.dialect.builder().
		Insert(tableRuns).
		Columns("issue_date", "status", "error_message", "created_at").
		Values(run.Date, string(run.Status), nullable(run.Error), r.timestamp(run.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("log run %s: %w", run.Date, err)
	}
	return nil
}

// Runs returns the newest audit entries first.
func (r *Repository) Runs(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	query, args, err := r.dialect.builder().
		Select("issue_date", "status", "error_message", "created_at").
		From(tableRuns).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun
	for rows.Next() {
		var (
			run       domain.IngestRun
			status    string
			message   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&run.Date, &status, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = domain.RunStatus(status)
		run.Error = message.String
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
