package model

// Statistics summarizes a task set for dashboard display.
type Statistics struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`

	// Overdue counts tasks due before today that are not completed.
	Overdue int `json:"overdue"`

	// CompletionPercent is completed/total rounded to the nearest
	// integer percent, 0 when the set is empty.
	CompletionPercent int `json:"completion_percent"`

	// StatusCounts holds the number of tasks per status, with an entry
	// for every enumerated status.
	StatusCounts map[Status]int `json:"status_counts"`
}
