package tracker

import (
	"context"

	"github.com/soulplanner/soulplanner/internal/model"
	"github.com/soulplanner/soulplanner/internal/notify"
	"github.com/soulplanner/soulplanner/internal/validate"
)

// ImportResult reports the outcome of an asynchronous bulk import.
type ImportResult struct {
	Tasks []model.Task
	Err   error
}

// ImportTasks validates and persists a batch of tasks in a single
// transaction. If any input is invalid or any insert fails, nothing is
// persisted. One TaskCreated event is published per task after the
// batch commits.
func (t *Tracker) ImportTasks(ctx context.Context, inputs []validate.TaskInput) ([]model.Task, error) {
	vs := make([]validate.ValidatedTask, 0, len(inputs))
	for _, in := range inputs {
		v, fieldErrs := validate.Validate(in)
		if fieldErrs != nil {
			return nil, &validate.Error{Fields: fieldErrs}
		}
		vs = append(vs, v)
	}

	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	tasks, err := t.store.ImportTasks(ctx, vs)
	if err != nil {
		return nil, mapErr(err)
	}

	t.logger.Info("tasks imported", "count", len(tasks))
	for i := range tasks {
		task := tasks[i]
		t.notifier.Publish(notify.Event{Kind: notify.TaskCreated, TaskID: task.ID, ProjectID: task.ProjectID, Task: &task})
	}
	return tasks, nil
}

// ImportTasksAsync runs ImportTasks on its own goroutine so a large
// batch never blocks the caller's event loop. Completion is delivered
// twice over: the change events fire through the notifier as usual,
// and the returned channel yields a single ImportResult.
func (t *Tracker) ImportTasksAsync(ctx context.Context, inputs []validate.TaskInput) <-chan ImportResult {
	done := make(chan ImportResult, 1)
	go func() {
		tasks, err := t.ImportTasks(ctx, inputs)
		if err != nil {
			t.logger.Error("bulk import failed", "error", err)
		}
		done <- ImportResult{Tasks: tasks, Err: err}
		close(done)
	}()
	return done
}
