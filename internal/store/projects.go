package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soulplanner/soulplanner/internal/model"
)

// CreateProject inserts a new active project. The name must be
// non-empty and unique among active projects; archived projects do not
// block reuse of their name.
func (s *SQLiteStore) CreateProject(ctx context.Context, name, color string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, fmt.Errorf("project name must not be empty")
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     color,
		State:     model.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM projects WHERE name = ? AND state = ?",
			name, model.ProjectActive)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateName
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, state, created_at, updated_at, color)
			VALUES (?, ?, ?, ?, ?, ?)`,
			project.ID, project.Name, project.State,
			project.CreatedAt, project.UpdatedAt, project.Color,
		)
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	})
	if err != nil {
		return model.Project{}, translate("creating project", err)
	}
	return project, nil
}

// ArchiveProject moves a project to the archived state. Its tasks stay
// in the store but drop out of default task views.
func (s *SQLiteStore) ArchiveProject(ctx context.Context, id string) (model.Project, error) {
	return s.setProjectState(ctx, id, model.ProjectArchived)
}

// RestoreProject moves an archived project back to the active state.
// Restoring fails with ErrDuplicateName if another active project has
// taken the name in the meantime.
func (s *SQLiteStore) RestoreProject(ctx context.Context, id string) (model.Project, error) {
	return s.setProjectState(ctx, id, model.ProjectActive)
}

func (s *SQLiteStore) setProjectState(ctx context.Context, id string, state model.ProjectState) (model.Project, error) {
	var project model.Project
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE projects SET state = ?, updated_at = ? WHERE id = ?",
			state, time.Now().UTC(), id)
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		project, err = getProjectTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.Project{}, translate("updating project state", err)
	}
	return project, nil
}

// DeleteProject permanently removes a project, its tasks, and their
// history in one transaction. It returns the ids of the removed tasks
// so callers can report each one gone.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) ([]string, error) {
	var taskIDs []string
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &taskIDs,
			"SELECT id FROM tasks WHERE project_id = ?", id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM task_history
			WHERE task_id IN (SELECT id FROM tasks WHERE project_id = ?)`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM tasks WHERE project_id = ?", id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate("deleting project", err)
	}
	return taskIDs, nil
}

// GetProjectByID retrieves a single project.
func (s *SQLiteStore) GetProjectByID(ctx context.Context, id string) (model.Project, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT id, name, state, created_at, updated_at, color FROM projects WHERE id = ?", id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, translate("getting project", err)
	}
	return project, nil
}

// GetProjects retrieves projects ordered by name, active only unless
// includeArchived is set.
func (s *SQLiteStore) GetProjects(ctx context.Context, includeArchived bool) ([]model.Project, error) {
	query := "SELECT id, name, state, created_at, updated_at, color FROM projects"
	var args []interface{}
	if !includeArchived {
		query += " WHERE state = ?"
		args = append(args, model.ProjectActive)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, translate("querying projects", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, translate("querying projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("querying projects", err)
	}
	return projects, nil
}

func getProjectTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Project, error) {
	row := tx.QueryRowxContext(ctx,
		"SELECT id, name, state, created_at, updated_at, color FROM projects WHERE id = ?", id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	return project, err
}

// scanProject scans a project row in column order.
func scanProject(row interface{ Scan(dest ...interface{}) error }) (model.Project, error) {
	var (
		p     model.Project
		state string
	)
	err := row.Scan(&p.ID, &p.Name, &state, &p.CreatedAt, &p.UpdatedAt, &p.Color)
	if err != nil {
		return model.Project{}, err
	}
	p.State = model.ProjectState(state)
	return p, nil
}
