package tracker

import (
	"context"

	"github.com/soulplanner/soulplanner/internal/model"
	"github.com/soulplanner/soulplanner/internal/notify"
)

// CreateProject creates an active project and publishes ProjectChanged
// after commit.
func (t *Tracker) CreateProject(ctx context.Context, name, color string) (model.Project, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	project, err := t.store.CreateProject(ctx, name, color)
	if err != nil {
		return model.Project{}, mapErr(err)
	}
	t.notifier.Publish(notify.Event{Kind: notify.ProjectChanged, ProjectID: project.ID, Project: &project})
	return project, nil
}

// ArchiveProject soft-deletes a project. Its tasks remain but drop out
// of default views.
func (t *Tracker) ArchiveProject(ctx context.Context, id string) (model.Project, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	project, err := t.store.ArchiveProject(ctx, id)
	if err != nil {
		return model.Project{}, mapErr(err)
	}
	t.notifier.Publish(notify.Event{Kind: notify.ProjectChanged, ProjectID: project.ID, Project: &project})
	return project, nil
}

// RestoreProject returns an archived project to the active state.
func (t *Tracker) RestoreProject(ctx context.Context, id string) (model.Project, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	project, err := t.store.RestoreProject(ctx, id)
	if err != nil {
		return model.Project{}, mapErr(err)
	}
	t.notifier.Publish(notify.Event{Kind: notify.ProjectChanged, ProjectID: project.ID, Project: &project})
	return project, nil
}

// DeleteProject hard-deletes a project and cascades to its tasks. After
// the transaction commits it publishes one TaskDeleted per removed task
// followed by ProjectChanged.
func (t *Tracker) DeleteProject(ctx context.Context, id string) error {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	taskIDs, err := t.store.DeleteProject(ctx, id)
	if err != nil {
		return mapErr(err)
	}

	t.logger.Info("project deleted", "id", id, "tasks_removed", len(taskIDs))
	for _, taskID := range taskIDs {
		t.notifier.Publish(notify.Event{Kind: notify.TaskDeleted, TaskID: taskID, ProjectID: id})
	}
	t.notifier.Publish(notify.Event{Kind: notify.ProjectChanged, ProjectID: id})
	return nil
}

// Projects lists projects, active only unless includeArchived is set.
func (t *Tracker) Projects(ctx context.Context, includeArchived bool) ([]model.Project, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	projects, err := t.store.GetProjects(ctx, includeArchived)
	if err != nil {
		return nil, mapErr(err)
	}
	return projects, nil
}
