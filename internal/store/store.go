// Package store persists extracted records into SQLite. Each run of a list
// through an extractor is one import; its records land in leads_raw tagged
// with the import id.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/akashicode/aprovados/internal/record"
)

// ErrEmptyPath is returned when Open is called without a database path.
var ErrEmptyPath = errors.New("sqlite path is empty")

const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id TEXT PRIMARY KEY,
	faculdade TEXT NOT NULL,
	ano INTEGER,
	source TEXT NOT NULL,
	extracted INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads_raw (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	import_id TEXT NOT NULL,
	faculdade TEXT NOT NULL,
	ano INTEGER,
	nome TEXT NOT NULL,
	curso TEXT NOT NULL,
	tipo TEXT,
	periodo TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY(import_id) REFERENCES imports(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_leads_raw_import ON leads_raw(import_id);
CREATE INDEX IF NOT EXISTS idx_leads_raw_faculdade_ano ON leads_raw(faculdade, ano);
`

// Import describes one extracted document.
type Import struct {
	// Faculdade is the institution name as given on the command line.
	Faculdade string
	// Ano is the admission year; zero is stored as NULL.
	Ano int
	// Source is the document path.
	Source string
}

// Store is a SQLite-backed sink for extracted records.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Open opens the database at path with WAL mode enabled and creates the
// schema when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// pragmas are per connection and writers would contend for the lock
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

// SaveImport records imp and its records in a single transaction and
// returns the new import id.
func (s *Store) SaveImport(ctx context.Context, imp Import, records []record.Record) (string, error) {
	now := s.now().UTC()
	id := s.newID(now)
	created := now.Format(time.RFC3339)

	var ano any
	if imp.Ano != 0 {
		ano = imp.Ano
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports(id, faculdade, ano, source, extracted, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		id, imp.Faculdade, ano, imp.Source, len(records), created,
	); err != nil {
		return "", fmt.Errorf("insert import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads_raw(import_id, faculdade, ano, nome, curso, tipo, periodo, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare lead insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, id, imp.Faculdade, ano, r.Nome, r.Curso, r.Tipo, r.Periodo, created); err != nil {
			return "", fmt.Errorf("insert lead %q: %w", r.Nome, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}
	return id, nil
}

// CountLeads returns how many leads an import stored. An empty importID
// counts every lead.
func (s *Store) CountLeads(ctx context.Context, importID string) (int, error) {
	var (
		n   int
		err error
	)
	if importID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads_raw`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads_raw WHERE import_id = ?`, importID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

// Leads returns the records of an import in insertion order.
func (s *Store) Leads(ctx context.Context, importID string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT nome, curso, COALESCE(tipo, ''), COALESCE(periodo, '') FROM leads_raw WHERE import_id = ? ORDER BY id`,
		importID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.Nome, &r.Curso, &r.Tipo, &r.Periodo); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
