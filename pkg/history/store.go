// Package history keeps a local SQLite record of parsed reports so the risk
// level of a host can be followed across audit runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/user/lynisparse/pkg/lynis"
)

// Entry is one recorded parse.
type Entry struct {
	ID             string
	Hostname       string
	Source         string
	ParsedAt       time.Time
	RiskLevel      lynis.RiskLevel
	HardeningIndex *int
	Warnings       int
	Suggestions    int
	CriticalIssues int
}

// Store is backed by modernc.org/sqlite (pure Go, no CGO).
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id              TEXT PRIMARY KEY,
		hostname        TEXT NOT NULL DEFAULT '',
		source          TEXT NOT NULL,
		parsed_at       TEXT NOT NULL,
		risk_level      TEXT NOT NULL,
		hardening_index INTEGER,
		warnings        INTEGER NOT NULL DEFAULT 0,
		suggestions     INTEGER NOT NULL DEFAULT 0,
		critical_issues INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reports_parsed_at ON reports(parsed_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the summary of r, parsed from source, and returns the new row.
func (s *Store) Record(ctx context.Context, source string, r *lynis.ParsedReport) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := r.RiskSummary()
	e := Entry{
		ID:             uuid.NewString(),
		Hostname:       r.Metadata.Hostname,
		Source:         source,
		ParsedAt:       s.now().UTC().Truncate(time.Second),
		RiskLevel:      summary.RiskLevel,
		HardeningIndex: r.Score.HardeningIndex,
		Warnings:       len(r.Warnings),
		Suggestions:    len(r.Suggestions),
		CriticalIssues: summary.CriticalIssuesCount,
	}

	var index sql.NullInt64
	if e.HardeningIndex != nil {
		index = sql.NullInt64{Int64: int64(*e.HardeningIndex), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, hostname, source, parsed_at, risk_level, hardening_index, warnings, suggestions, critical_issues)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Hostname, e.Source, e.ParsedAt.Format(time.RFC3339), string(e.RiskLevel),
		index, e.Warnings, e.Suggestions, e.CriticalIssues,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert report: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit of 0 or less
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, hostname, source, parsed_at, risk_level, hardening_index, warnings, suggestions, critical_issues
		FROM reports ORDER BY parsed_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			parsedAt string
			risk     string
			index    sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Hostname, &e.Source, &parsedAt, &risk, &index, &e.Warnings, &e.Suggestions, &e.CriticalIssues); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		e.ParsedAt, _ = time.Parse(time.RFC3339, parsedAt)
		e.RiskLevel = lynis.RiskLevel(risk)
		if index.Valid {
			v := int(index.Int64)
			e.HardeningIndex = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
