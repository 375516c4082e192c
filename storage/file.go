package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"tasktracker/logging"
)

// LegacyTerminator is the two-character sequence older versions wrote in
// place of a newline.
const LegacyTerminator = `\n`

// FileStore implements Store using a flat file with one Encode record per line.
// Titles and statuses are not part of the record format: they last for the
// life of the process only.
type FileStore struct {
	filename string
	data     *collection
	codec    *Codec
	rec      logging.Recorder
	legacy   bool
	mu       sync.RWMutex
}

// FileOption configures a FileStore
type FileOption func(*FileStore)

// WithLegacyTerminator makes the store write LegacyTerminator after each
// record and split on it when reading, matching files written by older versions.
func WithLegacyTerminator() FileOption {
	return func(s *FileStore) { s.legacy = true }
}

// NewFileStore creates or opens a flat-file store
func NewFileStore(filename string, rec logging.Recorder, opts ...FileOption) (*FileStore, error) {
	if rec == nil {
		rec = logging.Discard
	}
	store := &FileStore{
		filename: filename,
		data:     newCollection(),
		codec:    NewCodec(rec),
		rec:      rec,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.load(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	return store, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.filename)
	if errors.Is(err, fs.ErrNotExist) {
		s.rec.Record("task file does not exist, starting a new one: " + s.filename)
		return nil
	}
	if err != nil {
		return err
	}

	for _, line := range s.splitRecords(string(raw)) {
		task := s.codec.Parse(line)
		if task.ID <= 0 {
			continue
		}
		if _, err := s.data.find(task.ID); err == nil {
			s.rec.Record(fmt.Sprintf("skipping duplicate task id %d", task.ID))
			continue
		}
		s.data.insert(&task)
	}
	s.rec.Record(fmt.Sprintf("loaded %d tasks from %s", len(s.data.Tasks), s.filename))
	return nil
}

func (s *FileStore) splitRecords(raw string) []string {
	if s.legacy {
		raw = strings.ReplaceAll(raw, LegacyTerminator, "\n")
	}
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func (s *FileStore) save(c *collection) error {
	terminator := "\n"
	if s.legacy {
		terminator = LegacyTerminator
	}

	var b strings.Builder
	for _, t := range c.Tasks {
		b.WriteString(s.codec.Encode(t))
		b.WriteString(terminator)
	}

	if err := os.WriteFile(s.filename, []byte(b.String()), 0644); err != nil {
		s.rec.Record("cannot save task file: " + err.Error())
		return err
	}
	s.rec.Record("tasks saved")
	return nil
}

// commit writes next and, only once it is on disk, makes it the live data
func (s *FileStore) commit(next *collection) error {
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// CreateTask creates a new pending task
func (s *FileStore) CreateTask(title, description string, priority int, dueDate string) (*Task, error) {
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
func (s *FileStore) GetTask(id int) (*Task, error) {
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
func (s *FileStore) UpdateTask(id int, title, description string, priority int, dueDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	t, err := next.find(id)
	if err != nil {
		return err
	}
	s.rec.Record("before update: " + t.String())
	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueDate = dueDate
	s.rec.Record("after update: " + t.String())
	return s.commit(next)
}

// SetTaskStatus changes a task's status
func (s *FileStore) SetTaskStatus(id int, status Status) error {
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
	s.rec.Record(fmt.Sprintf("task %d status: %s", id, status))
	return s.commit(next)
}

// DeleteTask removes a task. Remaining ids are left unchanged.
func (s *FileStore) DeleteTask(id int) error {
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
func (s *FileStore) ListTasks(opts ListOptions) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.list(opts), nil
}

// Close closes the store
func (s *FileStore) Close() error {
	// Every mutation is already on disk
	return nil
}
