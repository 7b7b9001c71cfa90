package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel repository errors. All are about the caller's input, not
// transient failure, so they carry no retry semantics.
var (
	// ErrNotFound reports that no task or project has the given id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName reports that an active project already uses the name.
	ErrDuplicateName = errors.New("project name already in use")

	// ErrInvalidProjectRef reports that a task references a project
	// that does not exist or does not accept tasks.
	ErrInvalidProjectRef = errors.New("project does not exist or is archived")
)

// MigrationError reports a failed or refused schema migration. It is
// fatal at startup: the application must not run against a store it
// cannot verify. Any backup made before the attempt is preserved for
// manual recovery.
type MigrationError struct {
	// Step is the migration version that failed, or the current schema
	// version when the store is newer than this build supports.
	Step  int
	Cause error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("schema migration step %d: %v", e.Step, e.Cause)
}

func (e *MigrationError) Unwrap() error { return e.Cause }

// StorageError wraps a lower-level I/O or driver fault. No raw driver
// error crosses the repository boundary.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// translate converts an internal error into one of the repository's
// error kinds. Sentinels and context errors pass through; anything
// else becomes a StorageError tagged with the operation.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInvalidProjectRef) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// isBusy reports whether err is SQLite lock contention, the one
// transient class worth a single retry.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked")
}

// isUniqueViolation reports whether err is a unique-constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
