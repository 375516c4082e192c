package commands

import (
	"time"

	"tasktracker/storage"
)

// now is replaced in tests
var now = time.Now

func init() {
	Register(&Command{
		Name:        "/today",
		Description: "List open tasks due today",
		Handler: func(args string) (bool, error) {
			today := dateOnly(now())
			return false, listTasksInRange("today", today, today.AddDate(0, 0, 1))
		},
	})

	Register(&Command{
		Name:        "/tomorrow",
		Description: "List open tasks due tomorrow",
		Handler: func(args string) (bool, error) {
			today := dateOnly(now())
			return false, listTasksInRange("tomorrow", today.AddDate(0, 0, 1), today.AddDate(0, 0, 2))
		},
	})

	Register(&Command{
		Name:        "/week",
		Description: "List open tasks due this week (Monday through Sunday)",
		Handler: func(args string) (bool, error) {
			weekStart := startOfWeek(dateOnly(now()))
			return false, listTasksInRange("this week", weekStart, weekStart.AddDate(0, 0, 7))
		},
	})

	Register(&Command{
		Name:        "/overdue",
		Description: "List open tasks whose due date has passed",
		Handler: func(args string) (bool, error) {
			return false, listTasksInRange("before today", time.Time{}, dateOnly(now()))
		},
	})
}

// dateOnly extracts just the year, month, day as a comparable date in local timezone
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// startOfWeek returns the Monday of the week containing the given time
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is day 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// listTasksInRange lists unfinished tasks due in [start, end), ordered by due date.
// Tasks without a parseable due date are skipped.
func listTasksInRange(label string, start, end time.Time) error {
	tasks, err := GetStore().ListTasks(storage.ListOptions{Sort: storage.SortByDueDate})
	if err != nil {
		return err
	}

	var filtered []*storage.Task
	for _, t := range tasks {
		if t.Status == storage.StatusCompleted {
			continue
		}
		due, err := time.ParseInLocation(DateLayout, t.DueDate, time.Local)
		if err != nil {
			continue
		}
		if !due.Before(start) && due.Before(end) {
			filtered = append(filtered, t)
		}
	}

	if len(filtered) == 0 {
		outf("No tasks due %s\n", label)
		return nil
	}

	outf("Tasks due %s:\n", label)
	if err := writeTable(filtered); err != nil {
		return err
	}
	outf("Total: %d\n", len(filtered))
	return nil
}
