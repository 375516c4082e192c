package storage

// Store defines the interface for task storage
// This allows swapping between the flat file, JSON, or SQLite backends
type Store interface {
	// Task operations
	CreateTask(title, description string, priority int, dueDate string) (*Task, error)
	GetTask(id int) (*Task, error)
	UpdateTask(id int, title, description string, priority int, dueDate string) error
	SetTaskStatus(id int, status Status) error
	DeleteTask(id int) error
	ListTasks(opts ListOptions) ([]*Task, error)

	// Lifecycle
	Close() error
}
