// Package validate checks raw task form input and produces typed values
// ready for persistence. It is pure: no I/O, no clock, no store access.
// The repository only accepts a ValidatedTask, so unvalidated input
// cannot reach storage by construction.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/soulplanner/soulplanner/internal/model"
)

// Field bounds. Lengths are in characters, not bytes.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
	MaxNotesLen       = 5000
	MaxOwnerLen       = 50
	MaxTagsLen        = 200
	MaxEstimatedHours = 1000
)

// TaskInput is the raw, untyped form input for creating or editing a
// task. Every field arrives as the string the user typed.
type TaskInput struct {
	ProjectID      string
	Title          string
	Description    string
	Notes          string
	Owner          string
	Status         string
	Priority       string
	DueDate        string
	EstimatedHours string
	Tags           string
}

// ValidatedTask is the typed result of a successful validation. Only
// this package constructs it, and only the repository consumes it.
type ValidatedTask struct {
	ProjectID      string
	Title          string
	Description    string
	Notes          string
	Owner          string
	Status         model.Status
	Priority       model.Priority
	DueDate        *string
	EstimatedHours *float64
	Tags           []string
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Error bundles the full list of field errors from one validation pass.
// It is always recoverable: the form stays open and the input is kept.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	reasons := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		reasons[i] = f.Error()
	}
	return "invalid task input: " + strings.Join(reasons, "; ")
}

// Validate checks every field of in and returns either a fully typed
// task ready for persistence or the complete, ordered list of field
// errors. It never stops at the first failure.
//
// Empty status and priority default to Not Started and Medium; any
// non-empty unrecognized value is rejected, never coerced.
func Validate(in TaskInput) (ValidatedTask, []FieldError) {
	var errs []FieldError
	out := ValidatedTask{
		ProjectID:   strings.TrimSpace(in.ProjectID),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Notes:       in.Notes,
		Owner:       strings.TrimSpace(in.Owner),
	}

	if out.Title == "" {
		errs = append(errs, FieldError{"title", "is required"})
	} else if utf8.RuneCountInString(out.Title) > MaxTitleLen {
		errs = append(errs, FieldError{"title", fmt.Sprintf("must be %d characters or less", MaxTitleLen)})
	}

	if utf8.RuneCountInString(in.Description) > MaxDescriptionLen {
		errs = append(errs, FieldError{"description", fmt.Sprintf("must be %d characters or less", MaxDescriptionLen)})
	}
	if utf8.RuneCountInString(in.Notes) > MaxNotesLen {
		errs = append(errs, FieldError{"notes", fmt.Sprintf("must be %d characters or less", MaxNotesLen)})
	}
	if utf8.RuneCountInString(out.Owner) > MaxOwnerLen {
		errs = append(errs, FieldError{"owner", fmt.Sprintf("must be %d characters or less", MaxOwnerLen)})
	}

	out.Status = model.StatusNotStarted
	if s := strings.TrimSpace(in.Status); s != "" {
		status, err := model.ParseStatus(s)
		if err != nil {
			errs = append(errs, FieldError{"status", fmt.Sprintf("must be one of %v", model.Statuses)})
		} else {
			out.Status = status
		}
	}

	out.Priority = model.PriorityMedium
	if p := strings.TrimSpace(in.Priority); p != "" {
		priority, err := model.ParsePriority(p)
		if err != nil {
			errs = append(errs, FieldError{"priority", fmt.Sprintf("must be one of %v", model.Priorities)})
		} else {
			out.Priority = priority
		}
	}

	if d := strings.TrimSpace(in.DueDate); d != "" {
		due, err := ParseDueDate(d)
		if err != nil {
			errs = append(errs, FieldError{"due_date", "must be a date in YYYY-MM-DD format"})
		} else {
			out.DueDate = &due
		}
	}

	if h := strings.TrimSpace(in.EstimatedHours); h != "" {
		hours, err := strconv.ParseFloat(h, 64)
		switch {
		case err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0:
			errs = append(errs, FieldError{"estimated_hours", "must be a non-negative number"})
		case hours > MaxEstimatedHours:
			errs = append(errs, FieldError{"estimated_hours", fmt.Sprintf("must be %d or less", MaxEstimatedHours)})
		default:
			out.EstimatedHours = &hours
		}
	}

	if utf8.RuneCountInString(in.Tags) > MaxTagsLen {
		errs = append(errs, FieldError{"tags", fmt.Sprintf("must be %d characters or less", MaxTagsLen)})
	} else {
		out.Tags = NormalizeTags(in.Tags)
	}

	if errs != nil {
		return ValidatedTask{}, errs
	}
	return out, nil
}

// ParseDueDate parses a due date in YYYY-MM-DD form and returns it in
// canonical form.
func ParseDueDate(s string) (string, error) {
	t, err := time.Parse(model.DueDateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(model.DueDateLayout), nil
}

// NormalizeTags splits a comma-separated tags field into the canonical
// tag set: entries trimmed, empties dropped, duplicates collapsed with
// first-occurrence order preserved. Returns nil for no tags.
func NormalizeTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
