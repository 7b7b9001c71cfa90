package model

import (
	"fmt"
	"time"
)

// ProjectState is the lifecycle state of a project. Archiving is the
// soft delete: the project and its tasks stay in the store but drop out
// of default views. Hard deletion removes the project and cascades to
// its tasks.
type ProjectState string

const (
	ProjectActive   ProjectState = "active"
	ProjectArchived ProjectState = "archived"
)

// ParseProjectState returns the ProjectState for s, or an error for
// anything outside the enumerated values.
func ParseProjectState(s string) (ProjectState, error) {
	switch ProjectState(s) {
	case ProjectActive, ProjectArchived:
		return ProjectState(s), nil
	}
	return "", fmt.Errorf("unknown project state %q", s)
}

// Project is a named grouping for tasks. Names are unique among active
// projects.
type Project struct {
	ID        string       `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Color     string       `json:"color" db:"color"`
	State     ProjectState `json:"state" db:"state"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// Active reports whether the project is in its active lifecycle state.
func (p Project) Active() bool {
	return p.State == ProjectActive
}
