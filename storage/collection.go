package storage

import (
	"fmt"
	"time"
)

// collection is the in-memory task list shared by the file-backed stores.
// Callers hold the store lock.
type collection struct {
	Tasks      []*Task `json:"tasks"`
	NextTaskID int     `json:"next_task_id"`
}

var timeNow = time.Now

func newCollection() *collection {
	return &collection{Tasks: []*Task{}, NextTaskID: 1}
}

// clone returns a deep copy that can be changed without touching c.
func (c *collection) clone() *collection {
	cp := &collection{Tasks: make([]*Task, len(c.Tasks)), NextTaskID: c.NextTaskID}
	for i, t := range c.Tasks {
		task := *t
		cp.Tasks[i] = &task
	}
	return cp
}

// add appends a task with the next id.
func (c *collection) add(title, description string, priority int, dueDate string) *Task {
	now := timeNow()
	task := &Task{
		ID:          c.NextTaskID,
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.NextTaskID++
	c.Tasks = append(c.Tasks, task)
	return task
}

// insert appends an already numbered task, keeping NextTaskID past it.
func (c *collection) insert(t *Task) {
	c.Tasks = append(c.Tasks, t)
	if t.ID >= c.NextTaskID {
		c.NextTaskID = t.ID + 1
	}
}

func (c *collection) find(id int) (*Task, error) {
	for _, t := range c.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
}

func (c *collection) remove(id int) (*Task, error) {
	for i, t := range c.Tasks {
		if t.ID == id {
			c.Tasks = append(c.Tasks[:i], c.Tasks[i+1:]...)
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
}

// list returns copies so callers cannot modify stored tasks.
func (c *collection) list(opts ListOptions) []*Task {
	out := FilterTasks(c.Tasks, opts)
	for i, t := range out {
		cp := *t
		out[i] = &cp
	}
	return out
}
