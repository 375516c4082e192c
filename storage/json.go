package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"tasktracker/logging"
)

// JSONStore implements Store using a JSON file
type JSONStore struct {
	filename string
	data     *collection
	rec      logging.Recorder
	mu       sync.RWMutex
}

// NewJSONStore creates or opens a JSON-backed store
func NewJSONStore(filename string, rec logging.Recorder) (*JSONStore, error) {
	if rec == nil {
		rec = logging.Discard
	}
	store := &JSONStore{
		filename: filename,
		data:     newCollection(),
		rec:      rec,
	}

	// Try to load existing file
	if _, err := os.Stat(filename); err == nil {
		if err := store.load(); err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
	}

	return store, nil
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, s.data); err != nil {
		return err
	}
	if s.data.Tasks == nil {
		s.data.Tasks = []*Task{}
	}
	// Older files may lack the counter or carry a stale one
	for _, t := range s.data.Tasks {
		if t.ID >= s.data.NextTaskID {
			s.data.NextTaskID = t.ID + 1
		}
		if t.Status == "" {
			t.Status = StatusPending
		}
	}
	if s.data.NextTaskID < 1 {
		s.data.NextTaskID = 1
	}
	return nil
}

func (s *JSONStore) save(c *collection) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filename, data, 0644)
}

// commit writes next and, only once it is on disk, makes it the live data
func (s *JSONStore) commit(next *collection) error {
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// CreateTask creates a new pending task
func (s *JSONStore) CreateTask(title, description string, priority int, dueDate string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	task := next.add(title, description, priority, dueDate)
	if err := s.commit(next); err != nil {
		return nil, err
	}
	s.rec.Record("added task: " + task.String())

	cp := *task
	return &cp, nil
}

// GetTask retrieves a task by ID
func (s *JSONStore) GetTask(id int) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.data.find(id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

// UpdateTask replaces a task's editable fields
func (s *JSONStore) UpdateTask(id int, title, description string, priority int, dueDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	t, err := next.find(id)
	if err != nil {
		return err
	}
	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueDate = dueDate
	t.UpdatedAt = timeNow()
	s.rec.Record("updated task: " + t.String())
	return s.commit(next)
}

// SetTaskStatus changes a task's status
func (s *JSONStore) SetTaskStatus(id int, status Status) error {
	if !IsValidStatus(string(status)) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	t, err := next.find(id)
	if err != nil {
		return err
	}
	t.Status = status
	t.UpdatedAt = timeNow()
	s.rec.Record(fmt.Sprintf("task %d status: %s", id, status))
	return s.commit(next)
}

// DeleteTask removes a task
func (s *JSONStore) DeleteTask(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	t, err := next.remove(id)
	if err != nil {
		return err
	}
	s.rec.Record("deleted task: " + t.String())
	return s.commit(next)
}

// ListTasks returns tasks matching opts
func (s *JSONStore) ListTasks(opts ListOptions) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.list(opts), nil
}

// Close closes the store
func (s *JSONStore) Close() error {
	// JSON store doesn't need cleanup, but interface requires it
	return nil
}
