package commands

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasktracker/logging"
	"tasktracker/storage"
	"tasktracker/table"
)

// setupTestStore installs a temporary JSON store for the duration of the test
func setupTestStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := storage.NewJSONStore(filepath.Join(t.TempDir(), "tasks.json"), logging.Discard)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	SetStore(store)
	SetFormatter(table.New())
	t.Cleanup(func() {
		store.Close()
		SetStore(nil)
	})
	return store
}

// run executes a command and returns its output, failing on dispatch errors
func run(t *testing.T, input string) string {
	t.Helper()

	_, output, err := ExecuteWithOutput(input)
	if err != nil {
		t.Fatalf("%s: %v", input, err)
	}
	return output
}

// failing executes a command that must fail and returns the text shown to the user
func failing(t *testing.T, input string) string {
	t.Helper()

	_, _, err := ExecuteWithOutput(input)
	if err == nil {
		t.Fatalf("%s: expected an error", input)
	}
	return ErrorText(err)
}

func TestAddCommand(t *testing.T) {
	store := setupTestStore(t)

	output := run(t, "add Groceries, milk, eggs, bread, 2, 2025-01-15")
	if output != "Created task: Groceries (ID: 1)" {
		t.Errorf("Expected creation message, got: %s", output)
	}

	task, err := store.GetTask(1)
	if err != nil {
		t.Fatalf("Task not stored: %v", err)
	}
	if task.Description != "milk, eggs, bread" || task.Priority != 2 || task.DueDate != "2025-01-15" {
		t.Errorf("Unexpected task fields: %+v", task)
	}
	if task.Status != storage.StatusPending {
		t.Errorf("Expected new task to be pending, got %s", task.Status)
	}

	// Leading slash is optional
	if output := run(t, "/add Second,desc,1,2025-02-01"); !strings.Contains(output, "(ID: 2)") {
		t.Errorf("Expected ID 2, got: %s", output)
	}
}

func TestAddCommandValidation(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		input string
		want  string
	}{
		{"add", "Usage: /add <title>,<description>,<priority>,<due_date>"},
		{"add title only", "Usage: /add"},
		{"add t,d,high,2025-01-01", `Error: invalid priority "high"`},
		{"add t,d,1,01/02/2025", `Error: invalid due date "01/02/2025"`},
		{"add t,d,1,2025-02-30", "Error: invalid due date"},
	}
	for _, tc := range tests {
		if output := failing(t, tc.input); !strings.Contains(output, tc.want) {
			t.Errorf("%q: expected output containing %q, got: %s", tc.input, tc.want, output)
		}
	}

	var usage *UsageError
	if _, err := Execute("add title only"); !errors.As(err, &usage) || usage.Usage != GetByName("add").Usage() {
		t.Errorf("Expected a UsageError for add, got: %v", err)
	}

	tasks, _ := store.ListTasks(storage.ListOptions{})
	if len(tasks) != 0 {
		t.Errorf("Invalid input should not create tasks, got %d", len(tasks))
	}

	// An empty due date is allowed
	if output := run(t, "add t,d,1,"); !strings.Contains(output, "Created task") {
		t.Errorf("Expected empty due date to be accepted, got: %s", output)
	}
}

func TestUpdateCommand(t *testing.T) {
	store := setupTestStore(t)
	run(t, "add Old,old desc,3,2025-01-01")

	output := run(t, "update 1, New, new, longer desc, 1, 2025-06-30")
	if output != "Updated task 1" {
		t.Errorf("Expected update message, got: %s", output)
	}

	task, _ := store.GetTask(1)
	if task.Title != "New" || task.Description != "new, longer desc" || task.Priority != 1 || task.DueDate != "2025-06-30" {
		t.Errorf("Unexpected task after update: %+v", task)
	}

	if output := failing(t, "update 9,a,b,1,2025-01-01"); output != "Error: no task with ID 9 (task not found)" {
		t.Errorf("Expected not-found message, got: %s", output)
	}
	if output := failing(t, "update x,a,b,1,2025-01-01"); !strings.Contains(output, `invalid task ID "x"`) {
		t.Errorf("Expected invalid ID message, got: %s", output)
	}
}

func TestDeleteCommand(t *testing.T) {
	store := setupTestStore(t)
	run(t, "add A,a,1,2025-01-01")
	run(t, "add B,b,1,2025-01-01")

	if output := run(t, "delete 1"); output != "Deleted task 1" {
		t.Errorf("Expected delete message, got: %s", output)
	}
	if _, err := store.GetTask(1); err == nil {
		t.Error("Task 1 should be gone")
	}

	_, err := Execute("delete 1")
	if !errors.Is(err, storage.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got: %v", err)
	}
	if output := failing(t, "delete 1"); output != "Error: no task with ID 1 (task not found)" {
		t.Errorf("Expected not-found message, got: %s", output)
	}
	if output := failing(t, "delete"); !strings.HasPrefix(output, "Usage: /delete <id>") {
		t.Errorf("Expected usage, got: %s", output)
	}
}

func TestStatusCommand(t *testing.T) {
	store := setupTestStore(t)
	run(t, "add Write report,quarterly,1,2025-01-01")

	output := run(t, "status 1, in_progress")
	if output != "Task 'Write report' is now In Progress" {
		t.Errorf("Expected status message, got: %s", output)
	}
	task, _ := store.GetTask(1)
	if task.Status != storage.StatusInProgress {
		t.Errorf("Expected in_progress, got %s", task.Status)
	}

	if output := failing(t, "status 1,done"); !strings.Contains(output, "invalid status") {
		t.Errorf("Expected invalid status error, got: %s", output)
	}
	task, _ = store.GetTask(1)
	if task.Status != storage.StatusInProgress {
		t.Errorf("Invalid status must not change the task, got %s", task.Status)
	}

	if output := failing(t, "status 5,completed"); output != "Error: no task with ID 5 (task not found)" {
		t.Errorf("Expected not-found message, got: %s", output)
	}
	if output := failing(t, "status 1"); !strings.HasPrefix(output, "Usage:") {
		t.Errorf("Expected usage, got: %s", output)
	}
}

func TestListCommand(t *testing.T) {
	setupTestStore(t)

	if output := run(t, "list"); !strings.HasPrefix(output, "No tasks yet") {
		t.Errorf("Expected empty message, got: %s", output)
	}

	run(t, "add Low,l,3,2025-01-01")
	run(t, "add High,h,1,2025-03-01")
	run(t, "add Mid,m,2,2025-02-01")

	rowOrder := func(output string) string {
		var ids []string
		for _, line := range strings.Split(output, "\n")[3:] {
			ids = append(ids, strings.TrimSpace(strings.SplitN(line, table.ColumnSeparator, 2)[0]))
		}
		return strings.Join(ids, ",")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"list", "1,2,3"},
		{"list 0", "1,2,3"},
		{"list 1", "2,3,1"},
		{"list 2", "1,3,2"},
		{"list 7", "1,2,3"},
	}
	for _, tc := range tests {
		output := run(t, tc.input)
		lines := strings.Split(output, "\n")
		if lines[0] != "Tasks:" || lines[1] != table.New().Header() {
			t.Fatalf("%s: expected title and header, got:\n%s", tc.input, output)
		}
		if got := rowOrder(output); got != tc.want {
			t.Errorf("%s: expected order %s, got %s", tc.input, tc.want, got)
		}
	}

	if output := failing(t, "list x"); !strings.Contains(output, `invalid sort option "x"`) {
		t.Errorf("Expected sort option error, got: %s", output)
	}
}

func TestFilterCommand(t *testing.T) {
	setupTestStore(t)
	run(t, "add A,a,1,2025-01-01")
	run(t, "add B,b,1,2025-01-01")
	run(t, "status 2,completed")

	output := run(t, "filter completed")
	if !strings.HasPrefix(output, "Tasks with status 'Completed':") {
		t.Errorf("Expected filter title, got: %s", output)
	}
	if lines := strings.Split(output, "\n"); len(lines) != 4 || !strings.HasPrefix(lines[3], "2   ") {
		t.Errorf("Expected only task 2, got:\n%s", output)
	}

	if output := run(t, "filter in_progress"); output != "No tasks with status 'In Progress'" {
		t.Errorf("Expected empty filter message, got: %s", output)
	}
	if output := failing(t, "filter later"); !strings.Contains(output, "invalid status") {
		t.Errorf("Expected invalid status error, got: %s", output)
	}
}

func TestStatusesCommand(t *testing.T) {
	output := run(t, "statuses")
	for _, want := range []string{"1. pending", "2. in_progress", "In Progress", "3. completed"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestChineseTable(t *testing.T) {
	setupTestStore(t)
	SetFormatter(table.New(table.WithLabels(table.ChineseLabels)))
	run(t, "add 任务标题示例,描述,2,2025-01-01")

	output := run(t, "list")
	if !strings.Contains(output, "标题") || !strings.Contains(output, "任务标题示例   ") {
		t.Errorf("Expected Chinese header and padded title, got:\n%s", output)
	}
}

func TestFailuresAreRecorded(t *testing.T) {
	setupTestStore(t)
	var recorded []string
	SetRecorder(logging.Func(func(msg string) { recorded = append(recorded, msg) }))
	defer SetRecorder(logging.Discard)

	failing(t, "add t,d,x,2025-01-01")
	if len(recorded) != 1 || !strings.HasPrefix(recorded[0], "add failed:") {
		t.Errorf("Expected one recorded failure, got %q", recorded)
	}
}

func TestScheduleCommands(t *testing.T) {
	setupTestStore(t)
	// Wednesday
	now = func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local) }
	defer func() { now = time.Now }()

	run(t, "add Past,p,1,2025-01-10")
	run(t, "add Today,t,1,2025-01-15")
	run(t, "add Tomorrow,t,1,2025-01-16")
	run(t, "add Sunday,s,1,2025-01-19")
	run(t, "add Next week,n,1,2025-01-20")
	run(t, "add Done today,d,1,2025-01-15")
	run(t, "add Undated,u,1,")
	run(t, "status 6,completed")

	tests := []struct {
		input string
		title string
		rows  int
	}{
		{"today", "Tasks due today:", 1},
		{"tomorrow", "Tasks due tomorrow:", 1},
		{"week", "Tasks due this week:", 3},
		{"overdue", "Tasks due before today:", 1},
	}
	for _, tc := range tests {
		output := run(t, tc.input)
		lines := strings.Split(output, "\n")
		if lines[0] != tc.title {
			t.Errorf("%s: expected title %q, got:\n%s", tc.input, tc.title, output)
			continue
		}
		// title, header, separator, rows, total
		if len(lines) != tc.rows+4 {
			t.Errorf("%s: expected %d rows, got:\n%s", tc.input, tc.rows, output)
		}
	}

	now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local) }
	if output := run(t, "today"); output != "No tasks due today" {
		t.Errorf("Expected nothing due, got: %s", output)
	}
}

func TestStartOfWeek(t *testing.T) {
	sunday := time.Date(2025, 1, 19, 0, 0, 0, 0, time.Local)
	if got := startOfWeek(sunday); got.Day() != 13 {
		t.Errorf("Expected Monday 13th for Sunday, got %v", got)
	}
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)
	if got := startOfWeek(monday); !got.Equal(monday) {
		t.Errorf("Expected Monday to map to itself, got %v", got)
	}
}
