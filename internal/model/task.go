package model

import (
	"time"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Rank orders statuses for sorting.
func (s Status) Rank() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}

// Frequency is how often a recurring task repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

// Recurrence describes how a task's due date projects forward.
// DaysInterval is only meaningful for FrequencyCustom. EndDate is kept as
// supplied and parsed when the next occurrence is computed.
type Recurrence struct {
	Frequency    Frequency `json:"frequency"`
	DaysInterval int       `json:"daysInterval,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
}

// Task represents a unit of work in the system.
type Task struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Status       Status      `json:"status"`
	Priority     Priority    `json:"priority"`
	DueDate      time.Time   `json:"dueDate"`
	Tags         []string    `json:"tags"`
	Recurrence   *Recurrence `json:"recurrence,omitempty"`
	Dependencies []string    `json:"dependencies"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// IsDone reports whether the task is completed.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

// DependsOn reports whether id is one of the task's dependencies.
func (t *Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot alias the stored slices.
func (t Task) Clone() Task {
	out := t
	out.Tags = append([]string{}, t.Tags...)
	out.Dependencies = append([]string{}, t.Dependencies...)
	if t.Recurrence != nil {
		r := *t.Recurrence
		out.Recurrence = &r
	}
	return out
}

// Statistics is an aggregate view over the whole collection.
type Statistics struct {
	Total           int              `json:"total"`
	ByStatus        map[Status]int   `json:"byStatus"`
	ByPriority      map[Priority]int `json:"byPriority"`
	Overdue         int              `json:"overdue"`
	CompletionRate  int              `json:"completionRate"`
	CompletedCount  int              `json:"completedCount"`
	PendingCount    int              `json:"pendingCount"`
	InProgressCount int              `json:"inProgressCount"`
}

// UpcomingOccurrence pairs a recurring task with its projected next due date.
type UpcomingOccurrence struct {
	Task           Task      `json:"task"`
	NextOccurrence time.Time `json:"nextOccurrence"`
	DaysUntilNext  int       `json:"daysUntilNext"`
}

// CompletionCheck is the result of evaluating the dependency gate.
type CompletionCheck struct {
	CanComplete bool     `json:"canComplete"`
	BlockedBy   []string `json:"blockedBy,omitempty"`
}
