package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Record keys owned by the stats aggregator.
const (
	KeyUserStats        = "userStats"
	KeyLatestAssessment = "latestAssessment"
)

// Store is the durable key/value store backing all cross-session state.
// Values are opaque JSON text; the store never interprets them.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "pathwise.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and avoids
	// "database is locked" between our own goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies every embedded migration not yet recorded in
// schema_version, in filename order, one transaction each.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	applied, err := s.AppliedMigrations()
	if err != nil {
		return fmt.Errorf("listing applied migrations: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		version, err := parseMigrationVersion(name)
		if err != nil {
			return err
		}
		if slices.Contains(applied, version) {
			continue
		}
		if err := s.applyMigration(version, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(version int, name string) (err error) {
	script, err := migrationsFS.ReadFile(path.Join("migrations", name))
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", version, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(string(script)); err != nil {
		return fmt.Errorf("applying migration %d: %w", version, err)
	}
	if _, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", version, err)
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Records ---

// GetRecord returns the raw value stored under key, or ErrNotFound.
func (s *Store) GetRecord(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// PutRecord stores value under key, replacing any previous value.
func (s *Store) PutRecord(key, value string) error {
	return s.PutRecords(map[string]string{key: value})
}

// PutRecords upserts every entry in one transaction: either all of them are
// written or none is.
func (s *Store) PutRecords(records map[string]string) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("put records: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(updatedAtLayout)
	for _, key := range slices.Sorted(maps.Keys(records)) {
		if _, err = tx.Exec(`
			INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, records[key], now,
		); err != nil {
			return fmt.Errorf("writing record %s: %w", key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("put records: commit: %w", err)
	}
	return nil
}

// updatedAtLayout is fixed width so updated_at sorts chronologically as text.
const updatedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordInfo describes a stored record without its value.
type RecordInfo struct {
	Key       string
	UpdatedAt time.Time
}

// ListRecords returns every stored key with its last write time, most
// recently written first.
func (s *Store) ListRecords() ([]RecordInfo, error) {
	rows, err := s.db.Query("SELECT key, updated_at FROM records ORDER BY updated_at DESC, key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordInfo
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at of %s: %w", key, err)
		}
		out = append(out, RecordInfo{Key: key, UpdatedAt: t})
	}
	return out, rows.Err()
}

// Purge deletes every record and reports how many were removed. Only the
// `data purge` command calls it.
func (s *Store) Purge() (int64, error) {
	res, err := s.db.Exec("DELETE FROM records")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
