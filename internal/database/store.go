package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created in the data directory.
const FileName = "kakusu.db"

// Store is the SQLite database of one user.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool

	// Now overrides time.Now for stored timestamps and cache expiry.
	Now func() time.Time
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the Store in dbDir.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}
	if opts.Now != nil {
		s.now = opts.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	-- Finished analysis runs, stored whole as JSON
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		surname TEXT NOT NULL,
		char_count INTEGER NOT NULL,
		generated_at TEXT NOT NULL,
		total_patterns INTEGER NOT NULL,
		completed_patterns INTEGER NOT NULL,
		partial INTEGER NOT NULL DEFAULT 0,
		best_score REAL,
		best_characters TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_surname ON analysis_runs(surname);
	CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON analysis_runs(generated_at);

	-- Oracle verdicts keyed by a hash of oracle and query
	CREATE TABLE IF NOT EXISTS oracle_cache (
		cache_key TEXT PRIMARY KEY,
		oracle TEXT NOT NULL,
		surname TEXT NOT NULL,
		given_name TEXT NOT NULL,
		gender TEXT NOT NULL,
		verdicts_json TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_oracle ON oracle_cache(oracle);

	-- Given names indexed by per-character stroke counts
	CREATE TABLE IF NOT EXISTS names (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		yomi TEXT,
		chars INTEGER NOT NULL,
		strokes_1 INTEGER NOT NULL,
		strokes_2 INTEGER NOT NULL DEFAULT 0,
		strokes_3 INTEGER NOT NULL DEFAULT 0,
		total_strokes INTEGER NOT NULL,
		gender TEXT NOT NULL,
		source_url TEXT,
		scraped_at TEXT NOT NULL,
		UNIQUE(name, yomi, chars, strokes_1, strokes_2, strokes_3, gender)
	);

	CREATE INDEX IF NOT EXISTS idx_names_strokes ON names(chars, strokes_1, strokes_2, strokes_3);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// formatTimestamp is the inverse of parseTimestamp for values the Store writes.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that may appear in the
// database. More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries every known format and returns the zero time if
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
