package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelbrown/dhmcp/internal/storage"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements storage.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordCall(ctx context.Context, rec *storage.CallRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calls (id, tool, worker, duration_ms, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Tool, rec.Worker, rec.DurationMS, rec.Status, rec.Error,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting call record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCall(ctx context.Context, id string) (*storage.CallRecord, error) {
	// Try exact match first, then prefix match
	rec, err := s.getCallExact(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying call: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, worker, duration_ms, status, error, created_at
		FROM calls WHERE id LIKE ? || '%'`, id)
	if err != nil {
		return nil, fmt.Errorf("querying call: %w", err)
	}
	defer rows.Close()

	var matches []*storage.CallRecord
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("call not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous call prefix %q matches %d records", id, len(matches))
	}
}

func (s *SQLiteStore) getCallExact(ctx context.Context, id string) (*storage.CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tool, worker, duration_ms, status, error, created_at
		FROM calls WHERE id = ?`, id)
	return scanCallRow(row)
}

func (s *SQLiteStore) ListCalls(ctx context.Context, opts storage.CallListOptions) ([]storage.CallRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, tool, worker, duration_ms, status, error, created_at FROM calls`
	var conds []string
	var args []any

	if opts.Tool != "" {
		conds = append(conds, `tool = ?`)
		args = append(args, opts.Tool)
	}
	if opts.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(opts.Status))
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing calls: %w", err)
	}
	defer rows.Close()

	var records []storage.CallRecord
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Scanner interface to work with both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanCallFromScanner(s scanner) (*storage.CallRecord, error) {
	var rec storage.CallRecord
	var createdAt string
	err := s.Scan(&rec.ID, &rec.Tool, &rec.Worker, &rec.DurationMS,
		&rec.Status, &rec.Error, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &rec, nil
}

func scanCall(rows *sql.Rows) (*storage.CallRecord, error) {
	return scanCallFromScanner(rows)
}

func scanCallRow(row *sql.Row) (*storage.CallRecord, error) {
	return scanCallFromScanner(row)
}
