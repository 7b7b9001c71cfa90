package testutil

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/soulplanner/soulplanner/internal/store"
)

// NewTestStore creates an in-memory store with all migrations applied.
// It is closed automatically when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return NewTestStoreAt(t, ":memory:", store.Options{})
}

// NewTestStoreAt creates a store at path with the given options, logging
// discarded, closed on test cleanup.
func NewTestStoreAt(t *testing.T, path string, opts store.Options) *store.SQLiteStore {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	s, err := store.Open(path, opts)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
