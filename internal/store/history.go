package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soulplanner/soulplanner/internal/model"
)

// recordChanges writes one task_history row per field that differs
// between the stored task and its replacement. Called inside the
// update transaction so history commits or rolls back with the update.
func recordChanges(ctx context.Context, tx *sqlx.Tx, prev, next model.Task) error {
	changedAt := time.Now().UTC()
	for _, c := range diffTasks(prev, next) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_history (id, task_id, field, old_value, new_value, changed_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), prev.ID, c.Field, c.OldValue, c.NewValue, changedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func diffTasks(prev, next model.Task) []model.FieldChange {
	var changes []model.FieldChange
	add := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, model.FieldChange{Field: field, OldValue: oldVal, NewValue: newVal})
		}
	}

	add("project_id", prev.ProjectID, next.ProjectID)
	add("title", prev.Title, next.Title)
	add("description", prev.Description, next.Description)
	add("notes", prev.Notes, next.Notes)
	add("owner", prev.Owner, next.Owner)
	add("status", string(prev.Status), string(next.Status))
	add("priority", string(prev.Priority), string(next.Priority))
	add("due_date", derefString(prev.DueDate), derefString(next.DueDate))
	add("estimated_hours", formatFloat(prev.EstimatedHours), formatFloat(next.EstimatedHours))
	add("tags", strings.Join(prev.Tags, ","), strings.Join(next.Tags, ","))
	return changes
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetTaskHistory returns the recorded field changes for a task, newest
// first.
func (s *SQLiteStore) GetTaskHistory(ctx context.Context, taskID string) ([]model.FieldChange, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, task_id, field, old_value, new_value, changed_at
		FROM task_history WHERE task_id = ?
		ORDER BY changed_at DESC`, taskID)
	if err != nil {
		return nil, translate("querying task history", err)
	}
	defer rows.Close()

	var changes []model.FieldChange
	for rows.Next() {
		var c model.FieldChange
		err := rows.Scan(&c.ID, &c.TaskID, &c.Field, &c.OldValue, &c.NewValue, &c.ChangedAt)
		if err != nil {
			return nil, translate("querying task history", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("querying task history", err)
	}
	return changes, nil
}
