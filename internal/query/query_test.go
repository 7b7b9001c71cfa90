package query

import (
	"reflect"
	"testing"
	"time"

	"github.com/soulplanner/soulplanner/internal/model"
)

func strp(s string) *string { return &s }

func floatp(f float64) *float64 { return &f }

func task(title string) model.Task {
	return model.Task{Title: title, Status: model.StatusNotStarted, Priority: model.PriorityMedium}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestApplyEmptyFilterReturnsInput(t *testing.T) {
	tasks := []model.Task{task("a"), task("b")}
	got := Apply(tasks, Filter{})
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("empty filter changed the input: %v", titles(got))
	}
}

func TestApplySearch(t *testing.T) {
	tasks := []model.Task{
		{Title: "Fix login bug"},
		{Title: "Docs", Description: "document the LOGIN flow"},
		{Title: "Sprint", Owner: "LoginTeam"},
		{Title: "Misc", Notes: "ask about login tokens"},
		{Title: "Unrelated"},
	}
	got := Apply(tasks, Filter{Search: "login"})
	if len(got) != 4 {
		t.Fatalf("search matched %d tasks (%v), want 4", len(got), titles(got))
	}
	for _, task := range got {
		if task.Title == "Unrelated" {
			t.Errorf("search matched a task with no occurrence")
		}
	}
}

func TestApplyPredicatesCombineWithAnd(t *testing.T) {
	tasks := []model.Task{
		{Title: "a", Status: model.StatusDone, Priority: model.PriorityHigh},
		{Title: "b", Status: model.StatusDone, Priority: model.PriorityLow},
		{Title: "c", Status: model.StatusStuck, Priority: model.PriorityHigh},
	}
	got := Apply(tasks, Filter{
		Statuses:   []model.Status{model.StatusDone},
		Priorities: []model.Priority{model.PriorityHigh},
	})
	if len(got) != 1 || got[0].Title != "a" {
		t.Errorf("got %v, want [a]", titles(got))
	}
}

func TestApplyDateRange(t *testing.T) {
	tasks := []model.Task{
		{Title: "early", DueDate: strp("2026-01-05")},
		{Title: "mid", DueDate: strp("2026-02-10")},
		{Title: "late", DueDate: strp("2026-03-20")},
		{Title: "undated"},
	}

	got := Apply(tasks, Filter{DueFrom: "2026-02-01", DueTo: "2026-02-28"})
	if len(got) != 1 || got[0].Title != "mid" {
		t.Errorf("range: got %v, want [mid]", titles(got))
	}

	// An open-ended bound still excludes undated tasks.
	got = Apply(tasks, Filter{DueFrom: "2026-02-01"})
	if !reflect.DeepEqual(titles(got), []string{"mid", "late"}) {
		t.Errorf("from-only: got %v, want [mid late]", titles(got))
	}
}

func TestSortPriorityStable(t *testing.T) {
	tasks := []model.Task{
		{Title: "first urgent", Priority: model.PriorityUrgent},
		{Title: "low", Priority: model.PriorityLow},
		{Title: "second urgent", Priority: model.PriorityUrgent},
		{Title: "medium", Priority: model.PriorityMedium},
	}

	got := Sort(tasks, SortSpec{Key: SortPriority})
	want := []string{"low", "medium", "first urgent", "second urgent"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("got %v, want %v", titles(got), want)
	}

	// The input order is untouched.
	if tasks[0].Title != "first urgent" {
		t.Errorf("Sort mutated its input")
	}
}

func TestSortStatusUsesDeclaredOrder(t *testing.T) {
	tasks := []model.Task{
		{Title: "d", Status: model.StatusDone},
		{Title: "i", Status: model.StatusInProgress},
		{Title: "s", Status: model.StatusStuck},
		{Title: "n", Status: model.StatusNotStarted},
	}
	got := Sort(tasks, SortSpec{Key: SortStatus})
	want := []string{"n", "i", "s", "d"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("got %v, want %v", titles(got), want)
	}
}

func TestSortAbsentValuesLast(t *testing.T) {
	tasks := []model.Task{
		{Title: "no due"},
		{Title: "march", DueDate: strp("2026-03-01")},
		{Title: "jan", DueDate: strp("2026-01-01")},
	}

	asc := Sort(tasks, SortSpec{Key: SortDueDate})
	if !reflect.DeepEqual(titles(asc), []string{"jan", "march", "no due"}) {
		t.Errorf("asc: got %v", titles(asc))
	}

	desc := Sort(tasks, SortSpec{Key: SortDueDate, Desc: true})
	if !reflect.DeepEqual(titles(desc), []string{"march", "jan", "no due"}) {
		t.Errorf("desc: absent dates must still sort last, got %v", titles(desc))
	}

	owners := []model.Task{
		{Title: "anon"},
		{Title: "zoe's", Owner: "zoe"},
		{Title: "al's", Owner: "al"},
	}
	got := Sort(owners, SortSpec{Key: SortOwner})
	if !reflect.DeepEqual(titles(got), []string{"al's", "zoe's", "anon"}) {
		t.Errorf("owners: got %v", titles(got))
	}

	hours := []model.Task{
		{Title: "unestimated"},
		{Title: "big", EstimatedHours: floatp(8)},
		{Title: "small", EstimatedHours: floatp(0.5)},
	}
	got = Sort(hours, SortSpec{Key: SortEstimated})
	if !reflect.DeepEqual(titles(got), []string{"small", "big", "unestimated"}) {
		t.Errorf("hours: got %v", titles(got))
	}
}

func TestSortCreatedAt(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{Title: "newer", CreatedAt: base.Add(time.Hour)},
		{Title: "older", CreatedAt: base},
	}
	got := Sort(tasks, SortSpec{Key: SortCreated, Desc: true})
	if !reflect.DeepEqual(titles(got), []string{"newer", "older"}) {
		t.Errorf("got %v", titles(got))
	}
}

func TestNextSortToggles(t *testing.T) {
	spec := NextSort(SortSpec{}, SortPriority)
	if spec.Key != SortPriority || spec.Desc {
		t.Fatalf("new key should start ascending, got %+v", spec)
	}
	spec = NextSort(spec, SortPriority)
	if !spec.Desc {
		t.Fatalf("repeat should flip to descending, got %+v", spec)
	}
	spec = NextSort(spec, SortPriority)
	if spec.Desc {
		t.Fatalf("third request should flip back to ascending, got %+v", spec)
	}
	spec = NextSort(spec, SortTitle)
	if spec.Key != SortTitle || spec.Desc {
		t.Fatalf("switching key should reset to ascending, got %+v", spec)
	}
}

func TestPaginate(t *testing.T) {
	tasks := []model.Task{task("a"), task("b"), task("c"), task("d")}

	if got := Paginate(tasks, 0, 0); len(got) != 4 {
		t.Errorf("limit 0 means no limit, got %d", len(got))
	}
	if got := Paginate(tasks, 1, 2); !reflect.DeepEqual(titles(got), []string{"b", "c"}) {
		t.Errorf("page: got %v", titles(got))
	}
	if got := Paginate(tasks, 10, 2); got != nil {
		t.Errorf("offset past end: got %v, want nil", titles(got))
	}
}

func TestAggregate(t *testing.T) {
	today := "2026-02-15"
	tasks := []model.Task{
		{Title: "done", Status: model.StatusDone},
		{Title: "overdue", Status: model.StatusInProgress, DueDate: strp("2026-02-01")},
		{Title: "future", Status: model.StatusNotStarted, DueDate: strp("2026-03-01")},
		{Title: "stuck", Status: model.StatusStuck},
	}

	stats := Aggregate(tasks, today)
	if stats.Total != 4 || stats.Completed != 1 || stats.Overdue != 1 {
		t.Errorf("got total=%d completed=%d overdue=%d", stats.Total, stats.Completed, stats.Overdue)
	}
	if stats.CompletionPercent != 25 {
		t.Errorf("CompletionPercent: got %d, want 25", stats.CompletionPercent)
	}
	if stats.StatusCounts[model.StatusStuck] != 1 || stats.StatusCounts[model.StatusInProgress] != 1 {
		t.Errorf("StatusCounts: got %v", stats.StatusCounts)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, "2026-02-15")
	if stats.Total != 0 || stats.CompletionPercent != 0 {
		t.Errorf("empty set: got %+v", stats)
	}
	if len(stats.StatusCounts) != len(model.Statuses) {
		t.Errorf("StatusCounts should cover every status, got %v", stats.StatusCounts)
	}
}

func TestAggregateDoneDueYesterdayNotOverdue(t *testing.T) {
	tasks := []model.Task{
		{Title: "done late", Status: model.StatusDone, DueDate: strp("2026-02-01")},
	}
	stats := Aggregate(tasks, "2026-02-15")
	if stats.Overdue != 0 {
		t.Errorf("completed tasks are never overdue, got %d", stats.Overdue)
	}
}
