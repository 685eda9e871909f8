package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Sentinel errors shared by every repository.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrVersionConflict means a concurrent writer saved the record first.
	// Callers reload and retry.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Store wraps the SQLite connection and hands out repositories.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn, applies recommended pragmas,
// and runs the idempotent schema migration.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying connection for raw queries.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Items returns the item catalog repository.
func (s *Store) Items() *ItemRepo { return &ItemRepo{db: s.db} }

// Scheduling returns the per-(user, item) scheduling repository.
func (s *Store) Scheduling() *SchedulingRepo { return &SchedulingRepo{db: s.db} }

// Statistics returns the cumulative review statistics repository.
func (s *Store) Statistics() *StatsRepo { return &StatsRepo{db: s.db} }

// Difficulty returns the per-(user, topic) difficulty repository.
func (s *Store) Difficulty() *DifficultyRepo { return &DifficultyRepo{db: s.db} }

// Adjustments returns the append-only difficulty adjustment log.
func (s *Store) Adjustments() *AdjustmentLog { return &AdjustmentLog{db: s.db} }

// Curves returns the forgetting-curve repository.
func (s *Store) Curves() *CurveRepo { return &CurveRepo{db: s.db} }

// Graph returns the prerequisite edge repository.
func (s *Store) Graph() *GraphRepo { return &GraphRepo{db: s.db} }

// Queues returns the precomputed queue repository.
func (s *Store) Queues() *QueueRepo { return &QueueRepo{db: s.db} }

// applyPragmas configures SQLite for single-writer local use.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ADAPT_DB environment variable
// 2. $XDG_DATA_HOME/adapt/adapt.db
// 3. ~/.local/share/adapt/adapt.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ADAPT_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "adapt", "adapt.db")
	return p, ensureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return ensureDir(path)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
