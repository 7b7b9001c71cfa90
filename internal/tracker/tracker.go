// Package tracker is the command layer the presentation code talks to.
// Every mutation follows the same path: validate the raw input, run the
// repository transaction, and publish a change event only after the
// transaction has committed. Nothing is published on rollback.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soulplanner/soulplanner/internal/model"
	"github.com/soulplanner/soulplanner/internal/notify"
	"github.com/soulplanner/soulplanner/internal/query"
	"github.com/soulplanner/soulplanner/internal/store"
	"github.com/soulplanner/soulplanner/internal/validate"
)

// ErrTimeout reports that a store operation exceeded the configured
// per-operation timeout.
var ErrTimeout = errors.New("operation timed out")

// Options configures a Tracker.
type Options struct {
	// OpTimeout bounds each store operation; zero means unbounded.
	OpTimeout time.Duration

	Logger *log.Logger

	// Now supplies the current time. Defaults to time.Now; tests
	// override it to pin "today".
	Now func() time.Time
}

// Tracker wires the validation engine, the repository, and the change
// notifier together.
type Tracker struct {
	store     store.Store
	notifier  *notify.Notifier
	logger    *log.Logger
	opTimeout time.Duration
	now       func() time.Time
}

// New returns a Tracker over the given store and notifier.
func New(s store.Store, n *notify.Notifier, opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		store:     s,
		notifier:  n,
		logger:    logger,
		opTimeout: opts.OpTimeout,
		now:       now,
	}
}

// today returns the current date in due-date form.
func (t *Tracker) today() string {
	return t.now().UTC().Format(model.DueDateLayout)
}

// opCtx applies the per-operation timeout when one is configured.
func (t *Tracker) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.opTimeout)
}

// mapErr translates a store error for presentation. Deadline overruns
// surface as ErrTimeout instead of a raw context error.
func mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// CreateTask validates the raw form input, persists the task, and
// publishes TaskCreated after commit. Validation failures return a
// *validate.Error carrying every field error; no partial task is
// created.
func (t *Tracker) CreateTask(ctx context.Context, in validate.TaskInput) (model.Task, error) {
	v, fieldErrs := validate.Validate(in)
	if fieldErrs != nil {
		return model.Task{}, &validate.Error{Fields: fieldErrs}
	}

	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	task, err := t.store.CreateTask(ctx, v)
	if err != nil {
		return model.Task{}, mapErr(err)
	}

	t.logger.Info("task created", "id", task.ID, "project", task.ProjectID)
	t.notifier.Publish(notify.Event{Kind: notify.TaskCreated, TaskID: task.ID, ProjectID: task.ProjectID, Task: &task})
	return task, nil
}

// UpdateTask validates the replacement state, applies it, and publishes
// TaskUpdated after commit.
func (t *Tracker) UpdateTask(ctx context.Context, id string, in validate.TaskInput) (model.Task, error) {
	v, fieldErrs := validate.Validate(in)
	if fieldErrs != nil {
		return model.Task{}, &validate.Error{Fields: fieldErrs}
	}

	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	task, err := t.store.UpdateTask(ctx, id, v)
	if err != nil {
		return model.Task{}, mapErr(err)
	}

	t.notifier.Publish(notify.Event{Kind: notify.TaskUpdated, TaskID: task.ID, ProjectID: task.ProjectID, Task: &task})
	return task, nil
}

// SetTaskCompleted reconciles the completion checkbox with the status:
// checking moves the task to Done, unchecking a done task moves it back
// to Not Started. The status is authoritative; no separate completed
// flag is stored.
func (t *Tracker) SetTaskCompleted(ctx context.Context, id string, completed bool) (model.Task, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	current, err := t.store.GetTaskByID(ctx, id)
	if err != nil {
		return model.Task{}, mapErr(err)
	}
	if current.Completed() == completed {
		return current, nil
	}

	status := model.StatusDone
	if !completed {
		status = model.StatusNotStarted
	}

	v := taskToValidated(current)
	v.Status = status
	task, err := t.store.UpdateTask(ctx, id, v)
	if err != nil {
		return model.Task{}, mapErr(err)
	}

	t.notifier.Publish(notify.Event{Kind: notify.TaskUpdated, TaskID: task.ID, ProjectID: task.ProjectID, Task: &task})
	return task, nil
}

// DeleteTask removes a task and publishes TaskDeleted after commit.
func (t *Tracker) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	if err := t.store.DeleteTask(ctx, id); err != nil {
		return mapErr(err)
	}
	t.notifier.Publish(notify.Event{Kind: notify.TaskDeleted, TaskID: id})
	return nil
}

// ListTasks returns a snapshot for the presentation layer to filter and
// sort through the query package.
func (t *Tracker) ListTasks(ctx context.Context, q store.TaskQuery) ([]model.Task, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	tasks, err := t.store.ListTasks(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	return tasks, nil
}

// OverdueTasks returns tasks due before today that are not completed.
func (t *Tracker) OverdueTasks(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	tasks, err := t.store.ListOverdueTasks(ctx, t.today())
	if err != nil {
		return nil, mapErr(err)
	}
	return tasks, nil
}

// TaskHistory returns the recorded field changes for a task, newest
// first.
func (t *Tracker) TaskHistory(ctx context.Context, taskID string) ([]model.FieldChange, error) {
	ctx, cancel := t.opCtx(ctx)
	defer cancel()

	changes, err := t.store.GetTaskHistory(ctx, taskID)
	if err != nil {
		return nil, mapErr(err)
	}
	return changes, nil
}

// Statistics aggregates the current snapshot, optionally scoped to one
// project.
func (t *Tracker) Statistics(ctx context.Context, projectID *string) (model.Statistics, error) {
	tasks, err := t.ListTasks(ctx, store.TaskQuery{ProjectID: projectID})
	if err != nil {
		return model.Statistics{}, err
	}
	return query.Aggregate(tasks, t.today()), nil
}

func taskToValidated(task model.Task) validate.ValidatedTask {
	return validate.ValidatedTask{
		ProjectID:      task.ProjectID,
		Title:          task.Title,
		Description:    task.Description,
		Notes:          task.Notes,
		Owner:          task.Owner,
		Status:         task.Status,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		EstimatedHours: task.EstimatedHours,
		Tags:           task.Tags,
	}
}
