package query

import (
	"sort"
	"strings"

	"github.com/soulplanner/soulplanner/internal/model"
)

// SortKey names a sortable task column.
type SortKey string

const (
	SortTitle     SortKey = "title"
	SortOwner     SortKey = "owner"
	SortStatus    SortKey = "status"
	SortPriority  SortKey = "priority"
	SortDueDate   SortKey = "due_date"
	SortEstimated SortKey = "estimated_hours"
	SortCreated   SortKey = "created_at"
)

// SortSpec is an explicit sort request: which key and which direction.
type SortSpec struct {
	Key  SortKey
	Desc bool
}

// NextSort returns the spec after a request for key: a repeated request
// on the current key flips the direction, a new key starts ascending.
func NextSort(current SortSpec, key SortKey) SortSpec {
	if current.Key == key {
		return SortSpec{Key: key, Desc: !current.Desc}
	}
	return SortSpec{Key: key}
}

// Sort returns a new slice with the tasks ordered by spec. The sort is
// stable, so ties keep their input order. Absent owners, due dates, and
// estimates sort after present values in either direction.
func Sort(tasks []model.Task, spec SortSpec) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return taskLess(out[i], out[j], spec)
	})
	return out
}

func taskLess(a, b model.Task, spec SortSpec) bool {
	switch spec.Key {
	case SortTitle:
		return directed(strings.ToLower(a.Title) < strings.ToLower(b.Title),
			strings.ToLower(b.Title) < strings.ToLower(a.Title), spec.Desc)
	case SortOwner:
		return lessAbsentLast(a.Owner == "", b.Owner == "",
			strings.ToLower(a.Owner), strings.ToLower(b.Owner), spec.Desc)
	case SortStatus:
		return directed(a.Status.Rank() < b.Status.Rank(), b.Status.Rank() < a.Status.Rank(), spec.Desc)
	case SortPriority:
		return directed(a.Priority.Rank() < b.Priority.Rank(), b.Priority.Rank() < a.Priority.Rank(), spec.Desc)
	case SortDueDate:
		av, bv := "", ""
		if a.DueDate != nil {
			av = *a.DueDate
		}
		if b.DueDate != nil {
			bv = *b.DueDate
		}
		return lessAbsentLast(a.DueDate == nil, b.DueDate == nil, av, bv, spec.Desc)
	case SortEstimated:
		switch {
		case a.EstimatedHours == nil:
			return false
		case b.EstimatedHours == nil:
			return true
		}
		return directed(*a.EstimatedHours < *b.EstimatedHours, *b.EstimatedHours < *a.EstimatedHours, spec.Desc)
	default: // SortCreated
		return directed(a.CreatedAt.Before(b.CreatedAt), b.CreatedAt.Before(a.CreatedAt), spec.Desc)
	}
}

// directed picks the ascending or descending comparison result.
func directed(asc, desc, wantDesc bool) bool {
	if wantDesc {
		return desc
	}
	return asc
}

// lessAbsentLast compares string keys where an absent value always
// sorts after every present one, regardless of direction.
func lessAbsentLast(aAbsent, bAbsent bool, a, b string, desc bool) bool {
	switch {
	case aAbsent:
		return false
	case bAbsent:
		return true
	}
	return directed(a < b, b < a, desc)
}
