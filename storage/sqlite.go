package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"tasktracker/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	task_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL DEFAULT 'Task',
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending'
	            CHECK (status IN ('pending', 'in_progress', 'completed')),
	priority    INTEGER NOT NULL DEFAULT 2,
	due_date    TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
`

const taskColumns = `task_id, title, description, status, priority, due_date, created_at, updated_at`

// SQLiteStore persists tasks in a SQLite table. Deleting a task renumbers the
// remaining ones to 1..N and resets the id counter to N+1.
type SQLiteStore struct {
	db  *sql.DB
	rec logging.Recorder
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the tasks table exists. The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string, rec logging.Recorder) (*SQLiteStore, error) {
	if rec == nil {
		rec = logging.Discard
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	rec.Record("database ready: " + dbPath)
	return &SQLiteStore{db: db, rec: rec}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	s.rec.Record("database closed")
	return s.db.Close()
}

// CreateTask inserts a new pending task.
func (s *SQLiteStore) CreateTask(title, description string, priority int, dueDate string) (*Task, error) {
	now := timeNow().UTC()
	res, err := s.db.Exec(`
		INSERT INTO tasks (title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?)`,
		title, description, string(StatusPending), priority, dueDate, now, now,
	)
	if err != nil {
		s.rec.Record("add task failed: " + err.Error())
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	s.rec.Record("added task: " + title)

	return &Task{
		ID:          int(id),
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(id int) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return t, err
}

// UpdateTask replaces a task's editable fields.
func (s *SQLiteStore) UpdateTask(id int, title, description string, priority int, dueDate string) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET title=?, description=?, priority=?, due_date=?, updated_at=?
		WHERE task_id=?`,
		title, description, priority, dueDate, timeNow().UTC(), id,
	)
	if err != nil {
		s.rec.Record("update task failed: " + err.Error())
		return fmt.Errorf("update task: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	s.rec.Record(fmt.Sprintf("updated task %d", id))
	return nil
}

// SetTaskStatus changes a task's status.
func (s *SQLiteStore) SetTaskStatus(id int, status Status) error {
	if !IsValidStatus(string(status)) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.db.Exec(`UPDATE tasks SET status=?, updated_at=? WHERE task_id=?`,
		string(status), timeNow().UTC(), id)
	if err != nil {
		s.rec.Record("update task status failed: " + err.Error())
		return fmt.Errorf("update task status: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	s.rec.Record(fmt.Sprintf("task %d status: %s", id, status))
	return nil
}

// DeleteTask removes a task and renumbers the rest. Both happen in one
// transaction, so a failed renumber leaves the task in place.
func (s *SQLiteStore) DeleteTask(id int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM tasks WHERE task_id=?`, id)
	if err != nil {
		s.rec.Record("delete task failed: " + err.Error())
		return fmt.Errorf("delete task: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}

	if err := renumber(tx); err != nil {
		s.rec.Record("renumber failed: " + err.Error())
		return fmt.Errorf("renumber tasks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.rec.Record(fmt.Sprintf("deleted task %d", id))
	return nil
}

// renumber assigns ids 1..N in ascending order of the current ids and sets
// the AUTOINCREMENT counter so the next insert gets N+1. Walking upward is
// safe: the i-th id is never below i, and ids below i are already taken by
// renumbered rows.
func renumber(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT task_id FROM tasks ORDER BY task_id`)
	if err != nil {
		return err
	}
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i, old := range ids {
		if old == i+1 {
			continue
		}
		if _, err := tx.Exec(`UPDATE tasks SET task_id=? WHERE task_id=?`, i+1, old); err != nil {
			return err
		}
	}
	_, err = tx.Exec(`UPDATE sqlite_sequence SET seq=? WHERE name='tasks'`, len(ids))
	return err
}

// NextID reports the id the next CreateTask will receive.
func (s *SQLiteStore) NextID() (int, error) {
	var seq int
	err := s.db.QueryRow(`SELECT seq FROM sqlite_sequence WHERE name='tasks'`).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read id counter: %w", err)
	}
	return seq + 1, nil
}

// ListTasks returns tasks matching opts.
func (s *SQLiteStore) ListTasks(opts ListOptions) ([]*Task, error) {
	q := strings.Builder{}
	q.WriteString("SELECT " + taskColumns + " FROM tasks")
	args := []any{}

	if opts.Status != "" {
		q.WriteString(" WHERE status=?")
		args = append(args, string(opts.Status))
	}
	switch opts.Sort {
	case SortByPriority:
		q.WriteString(" ORDER BY priority, task_id")
	case SortByDueDate:
		q.WriteString(" ORDER BY due_date, task_id")
	default:
		q.WriteString(" ORDER BY task_id")
	}

	rows, err := s.db.Query(q.String(), args...)
	if err != nil {
		s.rec.Record("list tasks failed: " + err.Error())
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var t Task
	var status string
	err := s.Scan(
		&t.ID, &t.Title, &t.Description, &status, &t.Priority, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	return &t, nil
}

func expectRow(res sql.Result, id int) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return nil
}
