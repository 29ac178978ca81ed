package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/scenetext/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

// DBName is the ledger file name inside the state directory.
const DBName = "ledger.db"

// Ensure Store implements the interface.
var _ driven.BuildLedger = (*Store)(nil)

// Store is the SQLite build ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the ledger in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: ledger directory is required", domain.ErrInvalidInput)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== File Hashes ====================

// Hash returns the hash last recorded for path.
func (s *Store) Hash(ctx context.Context, path string) (string, bool, error) {
	var sum string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM file_hashes WHERE path = ?`, path).Scan(&sum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying file hash: %w", err)
	}
	return sum, true, nil
}

// RecordHash stores the hash for path.
func (s *Store) RecordHash(ctx context.Context, path, sum string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_hashes (path, hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			updated_at = excluded.updated_at
	`, path, sum, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving file hash: %w", err)
	}
	return nil
}

// ==================== Runs ====================

// SaveRun stores or updates a run.
func (s *Store) SaveRun(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, target, started_at, finished_at, files, skipped, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			target = excluded.target,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			files = excluded.files,
			skipped = excluded.skipped,
			errors = excluded.errors
	`, run.ID, string(run.Kind), run.Target, toNanos(run.StartedAt), toNanos(run.FinishedAt),
		run.Files, run.Skipped, run.Errors)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Runs returns up to limit runs, newest first. A limit of zero or less returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, target, started_at, finished_at, files, skipped, errors
		FROM runs ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		var kind string
		var started, finished int64
		if err := rows.Scan(&r.ID, &kind, &r.Target, &started, &finished, &r.Files, &r.Skipped, &r.Errors); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Kind = domain.RunKind(kind)
		r.StartedAt = fromNanos(started)
		r.FinishedAt = fromNanos(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
