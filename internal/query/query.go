// Package query filters, sorts, paginates, and aggregates in-memory
// task snapshots. Every function is a pure function of its input; the
// current filter and sort are explicit arguments, never ambient state.
package query

import (
	"math"
	"strings"

	"github.com/soulplanner/soulplanner/internal/model"
)

// Filter is a composable predicate set over a task snapshot. Zero-value
// fields are inactive; active predicates combine with logical AND.
type Filter struct {
	// Search matches case-insensitively as a substring of title,
	// description, owner, or notes.
	Search string

	// Statuses keeps tasks whose status is in the set. Empty keeps all.
	Statuses []model.Status

	// Priorities keeps tasks whose priority is in the set. Empty keeps all.
	Priorities []model.Priority

	// DueFrom and DueTo bound the due date (inclusive, YYYY-MM-DD).
	// When either is set, tasks without a due date are excluded.
	DueFrom string
	DueTo   string
}

// Empty reports whether no predicate is active.
func (f Filter) Empty() bool {
	return f.Search == "" && len(f.Statuses) == 0 && len(f.Priorities) == 0 &&
		f.DueFrom == "" && f.DueTo == ""
}

// Apply returns the tasks matching every active predicate of f, in
// their input order. An empty filter returns the input unchanged.
func Apply(tasks []model.Task, f Filter) []model.Task {
	if f.Empty() {
		return tasks
	}
	var out []model.Task
	for _, t := range tasks {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t model.Task, f Filter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.Owner), needle) &&
			!strings.Contains(strings.ToLower(t.Notes), needle) {
			return false
		}
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.DueFrom != "" || f.DueTo != "" {
		if t.DueDate == nil {
			return false
		}
		if f.DueFrom != "" && *t.DueDate < f.DueFrom {
			return false
		}
		if f.DueTo != "" && *t.DueDate > f.DueTo {
			return false
		}
	}
	return true
}

func containsStatus(set []model.Status, s model.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []model.Priority, p model.Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

// Paginate returns the page of tasks at offset with at most limit
// entries. A limit of 0 means no limit.
func Paginate(tasks []model.Task, offset, limit int) []model.Task {
	if offset >= len(tasks) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	end := len(tasks)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return tasks[offset:end]
}

// Aggregate computes snapshot statistics. today is the current date in
// YYYY-MM-DD form, passed explicitly so the result is a pure function
// of its arguments.
func Aggregate(tasks []model.Task, today string) model.Statistics {
	stats := model.Statistics{StatusCounts: make(map[model.Status]int, len(model.Statuses))}
	for _, s := range model.Statuses {
		stats.StatusCounts[s] = 0
	}
	for _, t := range tasks {
		stats.Total++
		stats.StatusCounts[t.Status]++
		if t.Completed() {
			stats.Completed++
		}
		if t.Overdue(today) {
			stats.Overdue++
		}
	}
	if stats.Total > 0 {
		stats.CompletionPercent = int(math.Round(100 * float64(stats.Completed) / float64(stats.Total)))
	}
	return stats
}
