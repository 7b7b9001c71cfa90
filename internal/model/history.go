package model

import "time"

// FieldChange records a single field mutation on a task. One row is
// written per changed field on every update, so the full edit history
// of a task can be replayed.
type FieldChange struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	Field     string    `json:"field" db:"field"`
	OldValue  string    `json:"old_value" db:"old_value"`
	NewValue  string    `json:"new_value" db:"new_value"`
	ChangedAt time.Time `json:"changed_at" db:"changed_at"`
}
