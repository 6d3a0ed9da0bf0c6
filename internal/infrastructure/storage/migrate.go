package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// addedColumns are the nullable columns absent from tables created by the
// first release.
var addedColumns = []struct{ table, name string }{
	{tableIssues, columnSports},
	{tableArchive, columnSports},
	{tableArchive, "created_at"},
	{tableArchive, "updated_at"},
}

// Migrate creates missing tables, adds columns introduced after the first
// release and removes the legacy section check on covers. Every step is
// guarded by a detection query so it is safe to run on each start.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	for _, col := range addedColumns {
		present, err := r.hasColumn(ctx, col.table, col.name)
		if err != nil {
			return err
		}
		if present {
			continue
		}
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", col.table, col.name)); err != nil {
			return fmt.Errorf("add %s.%s: %w", col.table, col.name, err)
		}
		r.logger.Info("added column", "table", col.table, "column", col.name)
	}

	if r.dialect.Name == Postgres.Name {
		return r.dropPostgresCoverChecks(ctx)
	}
	return r.rebuildSQLiteCovers(ctx)
}

func (r *Repository) hasColumn(ctx context.Context, table, column string) (bool, error) {
	if r.dialect.Name == Postgres.Name {
		query, args, err := r.dialect.columnQuery(table, column)
		if err != nil {
			return false, fmt.Errorf("build column query: %w", err)
		}
		var n int
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return false, fmt.Errorf("inspect %s: %w", table, err)
		}
		return n > 0, nil
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			kind    string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &kind, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scan %s columns: %w", table, err)
		}
		if strings.EqualFold(name, column) {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate %s columns: %w", table, err)
	}
	return found, nil
}

// columnQuery counts matching columns in the connection's current schema only.
func (d Dialect) columnQuery(table, column string) (string, []any, error) {
	return d.builder().
		Select("COUNT(*)").
		From("information_schema.columns").
		Where("table_schema = current_schema()").
		Where(sq.Eq{"table_name": table, "column_name": column}).
		ToSql()
}

func (r *Repository) rebuildSQLiteCovers(ctx context.Context) error {
	var ddl string
	err := r.db.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", tableCovers).Scan(&ddl)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", tableCovers, err)
	}
	if !strings.Contains(strings.ToUpper(ddl), "CHECK") {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cover rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tableCovers, legacyCovers),
		coversTableDDL(tableCovers),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tableCovers, coverColumns, coverColumns, legacyCovers),
		fmt.Sprintf("DROP TABLE %s", legacyCovers),
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("rebuild %s: %w", tableCovers, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cover rebuild: %w", err)
	}
	r.logger.Info("rebuilt table without legacy check", "table", tableCovers)
	return nil
}

func (r *Repository) dropPostgresCoverChecks(ctx context.Context) error {
	query, args, err := r.dialect.builder().
		Select("conname").
		From("pg_constraint").
		Where("conrelid = ?::regclass", tableCovers).
		Where(sq.Eq{"contype": "c"}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build constraint query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inspect %s constraints: %w", tableCovers, err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan constraint: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate constraints: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}

	for _, name := range names {
		stmt := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", tableCovers, pq.QuoteIdentifier(name))
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop constraint %s: %w", name, err)
		}
		r.logger.Info("dropped legacy check", "table", tableCovers, "constraint", name)
	}
	return nil
}
