package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/doclog/internal/ir"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Export describes one materialized query result.
type Export struct {
	// Table is the destination table name.
	Table string

	// QueryID is the id of the query that produced the rows.
	QueryID string

	// Source names the log that was queried.
	Source string

	// Filter is the filter as given by the caller, for provenance.
	Filter string

	// Rows are the records or partial records, in result order.
	Rows []ir.IRValue
}

// Info is the provenance row of an export table.
type Info struct {
	Table    string
	QueryID  string
	Source   string
	Filter   string
	RowCount int
}

// ValidateTableName rejects names that are not plain SQL identifiers or
// that collide with the store's own tables.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q: must match %s", name, tableNamePattern)
	}
	if strings.EqualFold(name, "exports") || strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return fmt.Errorf("invalid table name %q: reserved", name)
	}
	return nil
}

// WriteExport replaces exp.Table with exp.Rows in a single transaction.
// Either the whole export lands or nothing changes.
func (s *Store) WriteExport(ctx context.Context, exp Export) error {
	if err := ValidateTableName(exp.Table); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	docs := make([]string, len(exp.Rows))
	for i, row := range exp.Rows {
		doc, err := marshalDoc(row)
		if err != nil {
			return fmt.Errorf("write export: row %d: %w", i+1, err)
		}
		docs[i] = doc
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write export: begin: %w", err)
	}
	defer tx.Rollback()

	table := quoteIdent(exp.Table)
	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		"CREATE TABLE " + table + " (seq INTEGER PRIMARY KEY, doc TEXT NOT NULL)",
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	}

	if err := insertDocs(ctx, tx, table, docs); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exports (table_name, query_id, source, filter, row_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET
			query_id = excluded.query_id,
			source = excluded.source,
			filter = excluded.filter,
			row_count = excluded.row_count
	`, exp.Table, exp.QueryID, exp.Source, exp.Filter, len(docs))
	if err != nil {
		return fmt.Errorf("write export: provenance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write export: commit: %w", err)
	}
	return nil
}

func insertDocs(ctx context.Context, tx *sql.Tx, table string, docs []string) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (seq, doc) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, doc := range docs {
		if _, err := stmt.ExecContext(ctx, i+1, doc); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return nil
}

// ReadExport returns the canonical JSON rows of an export table, ordered
// by seq.
func (s *Store) ReadExport(ctx context.Context, table string) ([]string, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM "+quoteIdent(table)+" ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("read export: scan: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListExports returns the provenance of every export table, ordered by
// table name.
func (s *Store) ListExports(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, query_id, source, filter, row_count
		FROM exports
		ORDER BY table_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Table, &info.QueryID, &info.Source, &info.Filter, &info.RowCount); err != nil {
			return nil, fmt.Errorf("list exports: scan: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
