package model

import (
	"fmt"
	"time"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusStuck      Status = "Stuck"
	StatusDone       Status = "Done"
)

// Statuses lists all statuses in workflow order. Sorting by status
// follows this order, not the alphabetic one.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusStuck, StatusDone}

// ParseStatus returns the Status for s, or an error if s is not one of
// the enumerated values. Unknown values are never coerced to a default.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Rank returns the position of s in workflow order. Unknown statuses
// rank after all known ones.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return len(Statuses)
}

// Priority is the urgency level of a task, ordered Low < Medium < High < Urgent.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Priorities lists all priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority returns the Priority for s, or an error if s is not one
// of the enumerated values.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Rank returns the position of p in ascending priority order. Unknown
// priorities rank after all known ones.
func (p Priority) Rank() int {
	for i, pr := range Priorities {
		if pr == p {
			return i
		}
	}
	return len(Priorities)
}

// DueDateLayout is the accepted format for task due dates.
const DueDateLayout = "2006-01-02"

// Task is a single trackable unit of work belonging to a project.
type Task struct {
	ID          string   `json:"id" db:"id"`
	ProjectID   string   `json:"project_id" db:"project_id"`
	Title       string   `json:"title" db:"title"`
	Description string   `json:"description" db:"description"`
	Notes       string   `json:"notes" db:"notes"`
	Owner       string   `json:"owner" db:"owner"`
	Status      Status   `json:"status" db:"status"`
	Priority    Priority `json:"priority" db:"priority"`

	// DueDate is the due date in YYYY-MM-DD form, nil when unset.
	DueDate *string `json:"due_date,omitempty" db:"due_date"`

	// EstimatedHours is the non-negative effort estimate, nil when unset.
	EstimatedHours *float64 `json:"estimated_hours,omitempty" db:"estimated_hours"`

	// Tags is the normalized tag set: trimmed, deduplicated,
	// first-occurrence order.
	Tags []string `json:"tags,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the task is done. The status is the single
// source of truth; there is no independently stored completed flag.
func (t Task) Completed() bool {
	return t.Status == StatusDone
}

// Overdue reports whether the task's due date is strictly before today
// (YYYY-MM-DD) and the task is not completed. Tasks without a due date
// are never overdue.
func (t Task) Overdue(today string) bool {
	if t.DueDate == nil || t.Completed() {
		return false
	}
	return *t.DueDate < today
}
