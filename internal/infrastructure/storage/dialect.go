package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Dialect captures what differs between the two SQL backends.
type Dialect struct {
	Name        string
	driver      string
	placeholder sq.PlaceholderFormat
	serialKey   string
}

var (
	// SQLite is the embedded file-backed store (modernc.org/sqlite).
	SQLite = Dialect{
		Name:        "sqlite",
		driver:      "sqlite",
		placeholder: sq.Question,
		serialKey:   "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	// Postgres is the networked relational server (lib/pq).
	Postgres = Dialect{
		Name:        "postgres",
		driver:      "postgres",
		placeholder: sq.Dollar,
		serialKey:   "BIGSERIAL PRIMARY KEY",
	}
)

func (d Dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

const (
	tableIssues  = "daily_issues"
	tableArchive = "archived_issues"
	tableCovers  = "issue_covers"
	tableRuns    = "ingest_runs"
	legacyCovers = "issue_covers_legacy"
	columnSports = "raw_input_sports"
	issueColumns = "issue_date, issue_json, ingest_status, raw_input_news, raw_input_tech, raw_input_sports, created_at, updated_at"
	coverColumns = "issue_date, block_name, image_url, prompt, keywords_json, created_at"
)

const issueUpsert = `ON CONFLICT (issue_date) DO UPDATE SET
	issue_json = EXCLUDED.issue_json,
	ingest_status = EXCLUDED.ingest_status,
	raw_input_news = EXCLUDED.raw_input_news,
	raw_input_tech = EXCLUDED.raw_input_tech,
	raw_input_sports = EXCLUDED.raw_input_sports,
	created_at = EXCLUDED.created_at,
	updated_at = EXCLUDED.updated_at`

func issueTableDDL(table string, archived bool) string {
	extra := ""
	if archived {
		extra = ",\n\tarchived_at TEXT NOT NULL"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	issue_date TEXT PRIMARY KEY,
	issue_json TEXT NOT NULL,
	ingest_status TEXT NOT NULL,
	raw_input_news TEXT,
	raw_input_tech TEXT,
	raw_input_sports TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL%s
)`, table, extra)
}

func coversTableDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	issue_date TEXT NOT NULL,
	block_name TEXT NOT NULL,
	image_url TEXT NOT NULL,
	prompt TEXT NOT NULL,
	keywords_json TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (issue_date, block_name)
)`, table)
}

func (d Dialect) schema() []string {
	return []string{
		issueTableDDL(tableIssues, false),
		issueTableDDL(tableArchive, true),
		coversTableDDL(tableCovers),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s,
	issue_date TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TEXT NOT NULL
)`, tableRuns, d.serialKey),
	}
}
