package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrMalformedRecord = errors.New("malformed record")
)

// Status represents the lifecycle state of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ValidStatuses lists all valid status values in lifecycle order
var ValidStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// IsValidStatus checks if a string is a valid status
func IsValidStatus(s string) bool {
	for _, st := range ValidStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// ParseStatus converts s to a Status, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if !IsValidStatus(s) {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidStatus, s, StatusList())
	}
	return Status(s), nil
}

// StatusList joins the valid statuses for messages, e.g. "pending, in_progress, completed"
func StatusList() string {
	names := make([]string, len(ValidStatuses))
	for i, st := range ValidStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// Label returns the status as title-cased words, e.g. "In Progress"
func (s Status) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// Priority levels. Any integer is accepted; these are the named ones.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// PriorityLabel names the well-known priority values
func PriorityLabel(p int) string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("p%d", p)
	}
}

// Task is a single tracked work item
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	DueDate     string    `json:"due_date"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// String renders the task for log records
func (t *Task) String() string {
	return fmt.Sprintf("ID: %d, Title: %s, Description: %s, Priority: %d, Due: %s, Status: %s",
		t.ID, t.Title, t.Description, t.Priority, t.DueDate, t.Status)
}

// SortOrder selects the ordering of ListTasks results
type SortOrder int

const (
	SortByID SortOrder = iota
	SortByPriority
	SortByDueDate
)

// ParseSortOrder maps the list command option (0, 1, 2) to a SortOrder.
// Unknown values fall back to SortByID.
func ParseSortOrder(n int) SortOrder {
	switch SortOrder(n) {
	case SortByPriority, SortByDueDate:
		return SortOrder(n)
	default:
		return SortByID
	}
}

// ListOptions filters and orders ListTasks results
type ListOptions struct {
	Sort   SortOrder
	Status Status // empty means all statuses
}

// SortTasks orders tasks in place. Ties keep id order.
func SortTasks(tasks []*Task, order SortOrder) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	switch order {
	case SortByPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority < tasks[j].Priority
		})
	case SortByDueDate:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].DueDate < tasks[j].DueDate
		})
	}
}

// FilterTasks returns the tasks matching opts, ordered by opts.Sort
func FilterTasks(tasks []*Task, opts ListOptions) []*Task {
	out := []*Task{}
	for _, t := range tasks {
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		out = append(out, t)
	}
	SortTasks(out, opts.Sort)
	return out
}
