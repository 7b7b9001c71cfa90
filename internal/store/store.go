package store

import (
	"context"

	"github.com/soulplanner/soulplanner/internal/model"
	"github.com/soulplanner/soulplanner/internal/validate"
)

// TaskQuery scopes a snapshot read of the task table.
type TaskQuery struct {
	// ProjectID restricts the snapshot to one project. When set, the
	// project's tasks are returned whether or not it is archived.
	ProjectID *string

	// IncludeArchivedProjects keeps tasks belonging to archived
	// projects in an unscoped snapshot. Default views exclude them.
	IncludeArchivedProjects bool
}

// Store is the persistence interface for projects and tasks. It is the
// only component that touches the underlying database handle; every
// other component works on snapshots or validated values.
//
// All mutating operations run inside a transaction and roll back in
// full on any failure. Reads return a snapshot consistent as of the
// moment of the call.
type Store interface {
	// Projects.

	CreateProject(ctx context.Context, name, color string) (model.Project, error)
	ArchiveProject(ctx context.Context, id string) (model.Project, error)
	RestoreProject(ctx context.Context, id string) (model.Project, error)

	// DeleteProject permanently removes the project and all of its
	// tasks in one transaction, returning the ids of the removed tasks.
	DeleteProject(ctx context.Context, id string) ([]string, error)

	GetProjectByID(ctx context.Context, id string) (model.Project, error)
	GetProjects(ctx context.Context, includeArchived bool) ([]model.Project, error)

	// Tasks. Writes accept only values typed by the validation engine.

	CreateTask(ctx context.Context, v validate.ValidatedTask) (model.Task, error)
	UpdateTask(ctx context.Context, id string, v validate.ValidatedTask) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (model.Task, error)
	ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error)
	ListOverdueTasks(ctx context.Context, today string) ([]model.Task, error)

	// ImportTasks inserts a batch in a single transaction,
	// all-or-nothing.
	ImportTasks(ctx context.Context, vs []validate.ValidatedTask) ([]model.Task, error)

	GetTaskHistory(ctx context.Context, taskID string) ([]model.FieldChange, error)

	// CurrentVersion reports the live schema version.
	CurrentVersion(ctx context.Context) (int, error)

	Close() error
}
