package store

import (
	"context"
	"fmt"
	"os"
	"time"
)

// latestSchemaVersion is the schema version this build expects.
const latestSchemaVersion = 3

// migration holds a single additive schema migration with its target
// version and SQL. Migrations never drop columns or tables, so older
// data is never silently lost.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations. Versions are
// sequential starting from 1; each step runs in its own transaction.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	state      TEXT NOT NULL DEFAULT 'active' CHECK(state IN ('active', 'archived')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_active_name
	ON projects(name) WHERE state = 'active';

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	project_id      TEXT NOT NULL REFERENCES projects(id),
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	owner           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'Not Started',
	priority        TEXT NOT NULL DEFAULT 'Medium',
	due_date        TEXT,
	estimated_hours REAL,
	tags            TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS task_history (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	field      TEXT NOT NULL,
	old_value  TEXT NOT NULL DEFAULT '',
	new_value  TEXT NOT NULL DEFAULT '',
	changed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_history_task_id ON task_history(task_id);

ALTER TABLE projects ADD COLUMN color TEXT NOT NULL DEFAULT '';

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}

// CurrentVersion reports the schema version recorded in the store, 0
// when the store is fresh or predates versioning.
func (s *SQLiteStore) CurrentVersion(ctx context.Context) (int, error) {
	var tableCount int
	err := s.db.GetContext(ctx, &tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return 0, translate("reading schema version", err)
	}
	if tableCount == 0 {
		return 0, nil
	}

	var version int
	err = s.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return 0, translate("reading schema version", err)
	}
	return version, nil
}

// Migrate brings the schema from its current version to target,
// applying the pending steps in order. Before mutating an existing
// non-empty file store it copies the file to a timestamped backup next
// to it; if a step fails, the original file is restored from that
// backup and the failure is reported as a MigrationError. A store
// whose version exceeds target is refused without being touched.
//
// Migrate runs synchronously during Open, before the repository
// accepts any call, so it never races with other access.
func (s *SQLiteStore) Migrate(target int) error {
	ctx := context.Background()

	current, err := s.CurrentVersion(ctx)
	if err != nil {
		return &MigrationError{Step: 0, Cause: err}
	}
	if current > target {
		return &MigrationError{
			Step:  current,
			Cause: fmt.Errorf("store schema version %d is newer than supported version %d", current, target),
		}
	}
	if current == target {
		return nil
	}

	backupPath, err := s.backupBeforeMigrate()
	if err != nil {
		return &MigrationError{Step: current, Cause: fmt.Errorf("creating backup: %w", err)}
	}
	if backupPath != "" {
		s.logger.Info("backed up store before migration", "backup", backupPath)
	}

	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}
		if err := s.applyStep(ctx, m); err != nil {
			if backupPath != "" {
				if restoreErr := copyFile(backupPath, s.path); restoreErr != nil {
					s.logger.Error("restoring store from backup failed",
						"backup", backupPath, "error", restoreErr)
				}
			}
			return &MigrationError{Step: m.version, Cause: err}
		}
		s.logger.Info("applied schema migration", "version", m.version)
	}

	return nil
}

func (s *SQLiteStore) applyStep(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	return tx.Commit()
}

// backupBeforeMigrate copies an existing non-empty file store to a
// timestamped sibling path and returns that path. Fresh or in-memory
// stores need no backup and yield "".
func (s *SQLiteStore) backupBeforeMigrate() (string, error) {
	if s.path == "" || s.path == ":memory:" {
		return "", nil
	}
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}

	backupPath := fmt.Sprintf("%s.backup-%s", s.path, time.Now().UTC().Format("20060102-150405"))
	if err := copyFile(s.path, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}
