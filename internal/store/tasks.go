package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soulplanner/soulplanner/internal/model"
	"github.com/soulplanner/soulplanner/internal/validate"
)

const taskColumns = `id, project_id, title, description, notes, owner,
	status, priority, due_date, estimated_hours, tags, created_at, updated_at`

// CreateTask inserts a validated task, assigning its id and timestamps.
// The referenced project must exist and accept tasks; archived projects
// reject new tasks unless the store was opened with
// AllowArchivedProjectTasks.
func (s *SQLiteStore) CreateTask(ctx context.Context, v validate.ValidatedTask) (model.Task, error) {
	task := newTask(v)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkProjectRef(ctx, tx, v.ProjectID); err != nil {
			return err
		}
		return insertTask(ctx, tx, task)
	})
	if err != nil {
		return model.Task{}, translate("creating task", err)
	}
	return task, nil
}

// ImportTasks inserts a batch of validated tasks in one transaction.
// If any insert fails, none of the batch is persisted.
func (s *SQLiteStore) ImportTasks(ctx context.Context, vs []validate.ValidatedTask) ([]model.Task, error) {
	if len(vs) == 0 {
		return nil, nil
	}

	tasks := make([]model.Task, len(vs))
	for i, v := range vs {
		tasks[i] = newTask(v)
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for i, v := range vs {
			if err := s.checkProjectRef(ctx, tx, v.ProjectID); err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
			if err := insertTask(ctx, tx, tasks[i]); err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate("importing tasks", err)
	}
	return tasks, nil
}

// UpdateTask replaces the mutable fields of a task with the validated
// values, bumps updated_at, and records one history row per changed
// field. Concurrent updates to the same task serialize; the last
// committed one wins in full, never a merge.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, v validate.ValidatedTask) (model.Task, error) {
	var updated model.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTaskTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if v.ProjectID != current.ProjectID {
			if err := s.checkProjectRef(ctx, tx, v.ProjectID); err != nil {
				return err
			}
		}

		updated = current
		applyValidated(&updated, v)
		updated.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE tasks SET
				project_id = ?, title = ?, description = ?, notes = ?, owner = ?,
				status = ?, priority = ?, due_date = ?, estimated_hours = ?, tags = ?,
				updated_at = ?
			WHERE id = ?`,
			updated.ProjectID, updated.Title, updated.Description, updated.Notes, updated.Owner,
			updated.Status, updated.Priority, updated.DueDate, updated.EstimatedHours,
			strings.Join(updated.Tags, ","), updated.UpdatedAt,
			id,
		)
		if err != nil {
			return err
		}

		return recordChanges(ctx, tx, current, updated)
	})
	if err != nil {
		return model.Task{}, translate("updating task", err)
	}
	return updated, nil
}

// DeleteTask removes a task and its history. Deleting an id that is
// already gone returns ErrNotFound.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM task_history WHERE task_id = ?", id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translate("deleting task", err)
}

// GetTaskByID retrieves a single task.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, translate("getting task", err)
	}
	return task, nil
}

// ListTasks returns a snapshot of the task table, newest first. The
// snapshot is consistent as of the call: it never observes a write that
// commits while it is being read.
func (s *SQLiteStore) ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var args []interface{}

	switch {
	case q.ProjectID != nil:
		query += " WHERE project_id = ?"
		args = append(args, *q.ProjectID)
	case !q.IncludeArchivedProjects:
		query += " WHERE project_id IN (SELECT id FROM projects WHERE state = ?)"
		args = append(args, model.ProjectActive)
	}
	query += " ORDER BY created_at DESC"

	return s.queryTasks(ctx, query, args...)
}

// ListOverdueTasks returns tasks due strictly before today (YYYY-MM-DD)
// that are not done, soonest due first.
func (s *SQLiteStore) ListOverdueTasks(ctx context.Context, today string) ([]model.Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+` FROM tasks
			WHERE due_date IS NOT NULL AND due_date < ? AND status != ?
			ORDER BY due_date`,
		today, model.StatusDone)
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, translate("querying tasks", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, translate("querying tasks", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("querying tasks", err)
	}
	return tasks, nil
}

// checkProjectRef verifies that a project exists and currently accepts
// new tasks.
func (s *SQLiteStore) checkProjectRef(ctx context.Context, tx *sqlx.Tx, projectID string) error {
	var state string
	err := tx.GetContext(ctx, &state,
		"SELECT state FROM projects WHERE id = ?", projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidProjectRef
	}
	if err != nil {
		return err
	}
	if model.ProjectState(state) == model.ProjectArchived && !s.opts.AllowArchivedProjectTasks {
		return ErrInvalidProjectRef
	}
	return nil
}

func newTask(v validate.ValidatedTask) model.Task {
	now := time.Now().UTC()
	return model.Task{
		ID:             uuid.New().String(),
		ProjectID:      v.ProjectID,
		Title:          v.Title,
		Description:    v.Description,
		Notes:          v.Notes,
		Owner:          v.Owner,
		Status:         v.Status,
		Priority:       v.Priority,
		DueDate:        v.DueDate,
		EstimatedHours: v.EstimatedHours,
		Tags:           v.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func applyValidated(t *model.Task, v validate.ValidatedTask) {
	t.ProjectID = v.ProjectID
	t.Title = v.Title
	t.Description = v.Description
	t.Notes = v.Notes
	t.Owner = v.Owner
	t.Status = v.Status
	t.Priority = v.Priority
	t.DueDate = v.DueDate
	t.EstimatedHours = v.EstimatedHours
	t.Tags = v.Tags
}

func insertTask(ctx context.Context, tx *sqlx.Tx, t model.Task) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, project_id, title, description, notes, owner,
			status, priority, due_date, estimated_hours, tags,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.Notes, t.Owner,
		t.Status, t.Priority, t.DueDate, t.EstimatedHours, strings.Join(t.Tags, ","),
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func getTaskTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Task, error) {
	row := tx.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return task, err
}

// scanTask scans a task row in taskColumns order.
func scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task     model.Task
		status   string
		priority string
		tags     string
	)
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Notes, &task.Owner,
		&status, &priority, &task.DueDate, &task.EstimatedHours, &tags,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	task.Status = model.Status(status)
	task.Priority = model.Priority(priority)
	if tags != "" {
		task.Tags = strings.Split(tags, ",")
	}
	return task, nil
}

// formatFloat renders an optional number for history rows.
func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
