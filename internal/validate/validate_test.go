package validate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/soulplanner/soulplanner/internal/model"
)

func TestValidateAccepts(t *testing.T) {
	in := TaskInput{
		ProjectID:      "p1",
		Title:          "  Write report  ",
		Description:    "quarterly numbers",
		Notes:          "check with finance",
		Owner:          "dana",
		Status:         "In Progress",
		Priority:       "High",
		DueDate:        "2026-03-01",
		EstimatedHours: "2.5",
		Tags:           "work, q1",
	}

	v, errs := Validate(in)
	if errs != nil {
		t.Fatalf("Validate returned errors: %v", errs)
	}
	if v.Title != "Write report" {
		t.Errorf("Title: got %q, want trimmed", v.Title)
	}
	if v.Status != model.StatusInProgress || v.Priority != model.PriorityHigh {
		t.Errorf("Status/Priority: got %v/%v", v.Status, v.Priority)
	}
	if v.DueDate == nil || *v.DueDate != "2026-03-01" {
		t.Errorf("DueDate: got %v", v.DueDate)
	}
	if v.EstimatedHours == nil || *v.EstimatedHours != 2.5 {
		t.Errorf("EstimatedHours: got %v", v.EstimatedHours)
	}
	if !reflect.DeepEqual(v.Tags, []string{"work", "q1"}) {
		t.Errorf("Tags: got %v", v.Tags)
	}
}

func TestValidateDefaults(t *testing.T) {
	v, errs := Validate(TaskInput{ProjectID: "p1", Title: "t"})
	if errs != nil {
		t.Fatalf("Validate returned errors: %v", errs)
	}
	if v.Status != model.StatusNotStarted {
		t.Errorf("default status: got %v", v.Status)
	}
	if v.Priority != model.PriorityMedium {
		t.Errorf("default priority: got %v", v.Priority)
	}
	if v.DueDate != nil || v.EstimatedHours != nil || v.Tags != nil {
		t.Errorf("optional fields should be unset: %+v", v)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name       string
		in         TaskInput
		wantFields []string
	}{
		{
			name:       "empty title and negative hours",
			in:         TaskInput{ProjectID: "p1", Title: "   ", EstimatedHours: "-2"},
			wantFields: []string{"title", "estimated_hours"},
		},
		{
			name:       "title too long",
			in:         TaskInput{ProjectID: "p1", Title: strings.Repeat("x", 201)},
			wantFields: []string{"title"},
		},
		{
			name:       "description too long",
			in:         TaskInput{ProjectID: "p1", Title: "t", Description: strings.Repeat("d", 5001)},
			wantFields: []string{"description"},
		},
		{
			name:       "notes too long",
			in:         TaskInput{ProjectID: "p1", Title: "t", Notes: strings.Repeat("n", 5001)},
			wantFields: []string{"notes"},
		},
		{
			name:       "owner too long",
			in:         TaskInput{ProjectID: "p1", Title: "t", Owner: strings.Repeat("o", 51)},
			wantFields: []string{"owner"},
		},
		{
			name:       "unknown status not coerced",
			in:         TaskInput{ProjectID: "p1", Title: "t", Status: "Paused"},
			wantFields: []string{"status"},
		},
		{
			name:       "unknown priority not coerced",
			in:         TaskInput{ProjectID: "p1", Title: "t", Priority: "Critical"},
			wantFields: []string{"priority"},
		},
		{
			name:       "malformed due date",
			in:         TaskInput{ProjectID: "p1", Title: "t", DueDate: "31/12/2026"},
			wantFields: []string{"due_date"},
		},
		{
			name:       "impossible due date",
			in:         TaskInput{ProjectID: "p1", Title: "t", DueDate: "2026-02-30"},
			wantFields: []string{"due_date"},
		},
		{
			name:       "non-numeric hours",
			in:         TaskInput{ProjectID: "p1", Title: "t", EstimatedHours: "lots"},
			wantFields: []string{"estimated_hours"},
		},
		{
			name:       "infinite hours",
			in:         TaskInput{ProjectID: "p1", Title: "t", EstimatedHours: "Inf"},
			wantFields: []string{"estimated_hours"},
		},
		{
			name:       "hours over cap",
			in:         TaskInput{ProjectID: "p1", Title: "t", EstimatedHours: "1001"},
			wantFields: []string{"estimated_hours"},
		},
		{
			name:       "tags field too long",
			in:         TaskInput{ProjectID: "p1", Title: "t", Tags: strings.Repeat("a,", 101)},
			wantFields: []string{"tags"},
		},
		{
			name: "multiple failures all reported",
			in: TaskInput{
				ProjectID:      "p1",
				Title:          "",
				Status:         "???",
				Priority:       "???",
				DueDate:        "soon",
				EstimatedHours: "NaN",
			},
			wantFields: []string{"title", "status", "priority", "due_date", "estimated_hours"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, errs := Validate(tt.in)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for i, want := range tt.wantFields {
				if errs[i].Field != want {
					t.Errorf("error %d: got field %q, want %q", i, errs[i].Field, want)
				}
			}
			if v.Title != "" || v.ProjectID != "" || v.Tags != nil {
				t.Errorf("failed validation must not yield a partial task: %+v", v)
			}
		})
	}
}

func TestValidateBoundsCountCharactersNotBytes(t *testing.T) {
	// Two bytes per rune in UTF-8; 200 of them are 200 characters,
	// not 400.
	title := strings.Repeat("é", MaxTitleLen)
	owner := strings.Repeat("ü", MaxOwnerLen)

	v, errs := Validate(TaskInput{ProjectID: "p1", Title: title, Owner: owner})
	if errs != nil {
		t.Fatalf("multibyte input at the bound rejected: %v", errs)
	}
	if v.Title != title || v.Owner != owner {
		t.Errorf("multibyte fields altered: %+v", v)
	}

	_, errs = Validate(TaskInput{ProjectID: "p1", Title: strings.Repeat("é", MaxTitleLen+1)})
	if len(errs) != 1 || errs[0].Field != "title" {
		t.Errorf("one character over the bound: got %v, want a title error", errs)
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"  ,  , ", nil},
		{"a", []string{"a"}},
		{"a, b,,a , c", []string{"a", "b", "c"}},
		{"b,a,b", []string{"b", "a"}},
	}
	for _, tt := range tests {
		if got := NormalizeTags(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeTags(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Fields: []FieldError{
		{"title", "is required"},
		{"estimated_hours", "must be a non-negative number"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "title") || !strings.Contains(msg, "estimated_hours") {
		t.Errorf("error message should name every field: %q", msg)
	}
}
