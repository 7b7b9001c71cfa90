package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Options configures a SQLiteStore.
type Options struct {
	// AllowArchivedProjectTasks permits creating tasks in archived
	// projects. Off by default: archived projects reject new tasks.
	AllowArchivedProjectTasks bool

	Logger *log.Logger
}

// SQLiteStore implements Store over a local SQLite database. Mutators
// are serialized by a write lock so concurrent updates never interleave
// partially; reads run concurrently against a consistent snapshot.
type SQLiteStore struct {
	db     *sqlx.DB
	path   string
	opts   Options
	logger *log.Logger

	// mu serializes the single logical writer.
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database at path and brings its
// schema to the version this build expects before returning. Opening
// an existing non-empty store at an older version first copies it to a
// timestamped backup; a store at a newer version is refused with a
// MigrationError and left untouched. No repository call is possible
// until migration has completed.
func Open(path string, opts Options) (*SQLiteStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A memory database exists per connection; keep the pool at one so
	// every caller sees the same store.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Connection-scoped pragmas only; nothing here mutates the file,
	// so a refused migration leaves it byte-for-byte intact.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, opts: opts, logger: logger}

	if err := s.Migrate(latestSchemaVersion); err != nil {
		db.Close()
		return nil, err
	}

	// WAL lets snapshot reads proceed while a write commits.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a write transaction under the store's write
// lock. The transaction rolls back in full unless fn succeeds and the
// commit goes through. Lock contention is retried once.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.runTx(ctx, fn)
	if isBusy(err) {
		s.logger.Warn("retrying transaction after lock contention")
		err = s.runTx(ctx, fn)
	}
	return err
}

func (s *SQLiteStore) runTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
