package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasktracker/storage"
)

// DateLayout is the accepted due date format.
const DateLayout = "2006-01-02"

func init() {
	Register(&Command{
		Name:        "/add",
		Description: "Add a new task",
		Params: []Param{
			{Name: "title", Description: "Short task title", Required: true},
			{Name: "description", Description: "Free text; may contain commas", Required: true},
			{Name: "priority", Description: "Integer priority, 1 is highest", Required: true},
			{Name: "due_date", Description: "Due date as YYYY-MM-DD", Required: true},
		},
		Handler: func(args string) (bool, error) {
			front, description, back, ok := splitOuter(args, 1, 2)
			if !ok {
				return false, usageError("add")
			}

			priority, dueDate, err := parsePriorityAndDue(back[0], back[1])
			if err != nil {
				return false, err
			}

			task, err := GetStore().CreateTask(front[0], description, priority, dueDate)
			if err != nil {
				return false, err
			}

			outf("Created task: %s (ID: %d)\n", task.Title, task.ID)
			return false, nil
		},
	})

	Register(&Command{
		Name:        "/update",
		Description: "Replace a task's title, description, priority and due date",
		Params: []Param{
			{Name: "id", Description: "The ID of the task to update", Required: true},
			{Name: "title", Description: "New title", Required: true},
			{Name: "description", Description: "New description; may contain commas", Required: true},
			{Name: "priority", Description: "New priority", Required: true},
			{Name: "due_date", Description: "New due date as YYYY-MM-DD", Required: true},
		},
		Handler: func(args string) (bool, error) {
			front, description, back, ok := splitOuter(args, 2, 2)
			if !ok {
				return false, usageError("update")
			}

			id, err := parseID(front[0])
			if err != nil {
				return false, err
			}
			priority, dueDate, err := parsePriorityAndDue(back[0], back[1])
			if err != nil {
				return false, err
			}

			if err := GetStore().UpdateTask(id, front[1], description, priority, dueDate); err != nil {
				return false, taskError(id, err)
			}

			outf("Updated task %d\n", id)
			return false, nil
		},
	})

	Register(&Command{
		Name:        "/delete",
		Description: "Delete a task",
		Params: []Param{
			{Name: "id", Description: "The ID of the task to delete", Required: true},
		},
		Handler: func(args string) (bool, error) {
			if args == "" {
				return false, usageError("delete")
			}

			id, err := parseID(args)
			if err != nil {
				return false, err
			}

			if err := GetStore().DeleteTask(id); err != nil {
				return false, taskError(id, err)
			}

			outf("Deleted task %d\n", id)
			return false, nil
		},
	})

	Register(&Command{
		Name:        "/status",
		Description: "Change a task's status",
		Params: []Param{
			{Name: "id", Description: "The ID of the task", Required: true},
			{Name: "status", Description: "pending, in_progress or completed", Required: true},
		},
		Handler: func(args string) (bool, error) {
			front, value, _, ok := splitOuter(args, 1, 0)
			if !ok || value == "" {
				return false, usageError("status")
			}

			id, err := parseID(front[0])
			if err != nil {
				return false, err
			}
			status, err := storage.ParseStatus(value)
			if err != nil {
				return false, err
			}

			if err := GetStore().SetTaskStatus(id, status); err != nil {
				return false, taskError(id, err)
			}

			task, err := GetStore().GetTask(id)
			if err != nil {
				return false, taskError(id, err)
			}
			outf("Task '%s' is now %s\n", task.Title, status.Label())
			return false, nil
		},
	})

	Register(&Command{
		Name:        "/list",
		Description: "List tasks (0 = by ID, 1 = by priority, 2 = by due date)",
		Params: []Param{
			{Name: "sort", Description: "Sort option 0, 1 or 2", Required: false},
		},
		Handler: func(args string) (bool, error) {
			order := storage.SortByID
			if args != "" {
				n, err := strconv.Atoi(args)
				if err != nil {
					return false, fmt.Errorf("invalid sort option %q", args)
				}
				order = storage.ParseSortOrder(n)
			}

			tasks, err := GetStore().ListTasks(storage.ListOptions{Sort: order})
			if err != nil {
				return false, err
			}

			if len(tasks) == 0 {
				outln("No tasks yet. Add one with " + GetByName("add").Usage())
				return false, nil
			}

			outln("Tasks:")
			return false, writeTable(tasks)
		},
	})

	Register(&Command{
		Name:        "/filter",
		Description: "List tasks with the given status",
		Params: []Param{
			{Name: "status", Description: "pending, in_progress or completed", Required: true},
		},
		Handler: func(args string) (bool, error) {
			if args == "" {
				return false, usageError("filter")
			}

			status, err := storage.ParseStatus(args)
			if err != nil {
				return false, err
			}

			tasks, err := GetStore().ListTasks(storage.ListOptions{Status: status})
			if err != nil {
				return false, err
			}

			if len(tasks) == 0 {
				outf("No tasks with status '%s'\n", status.Label())
				return false, nil
			}

			outf("Tasks with status '%s':\n", status.Label())
			return false, writeTable(tasks)
		},
	})

	Register(&Command{
		Name:        "/statuses",
		Description: "Show the available statuses",
		Handler: func(args string) (bool, error) {
			outln("Available statuses:")
			for i, s := range storage.ValidStatuses {
				outf("  %d. %-12s %s\n", i+1, s, s.Label())
			}
			return false, nil
		},
	})
}

// splitOuter takes head fields from the front of args and tail fields from
// the back, leaving whatever is in between (commas included) as middle.
func splitOuter(args string, head, tail int) (front []string, middle string, back []string, ok bool) {
	rest := args
	for range head {
		field, after, found := strings.Cut(rest, ArgSeparator)
		if !found {
			return nil, "", nil, false
		}
		front = append(front, strings.TrimSpace(field))
		rest = after
	}

	back = make([]string, tail)
	for i := tail - 1; i >= 0; i-- {
		idx := strings.LastIndex(rest, ArgSeparator)
		if idx < 0 {
			return nil, "", nil, false
		}
		back[i] = strings.TrimSpace(rest[idx+len(ArgSeparator):])
		rest = rest[:idx]
	}

	return front, strings.TrimSpace(rest), back, true
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task ID %q", s)
	}
	return id, nil
}

func parsePriorityAndDue(p, due string) (int, string, error) {
	priority, err := strconv.Atoi(p)
	if err != nil {
		return 0, "", fmt.Errorf("invalid priority %q", p)
	}
	if due != "" {
		if _, err := time.Parse(DateLayout, due); err != nil {
			return 0, "", fmt.Errorf("invalid due date %q (expected YYYY-MM-DD)", due)
		}
	}
	return priority, due, nil
}

// taskError gives a missing task a message naming its id, whatever the backend.
func taskError(id int, err error) error {
	if errors.Is(err, storage.ErrTaskNotFound) {
		return fmt.Errorf("no task with ID %d (%w)", id, storage.ErrTaskNotFound)
	}
	return err
}

func writeTable(tasks []*storage.Task) error {
	return formatter.WriteTable(out, tasks)
}
