package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"tasktracker/logging"
	"tasktracker/storage"
	"tasktracker/table"
)

// ArgSeparator splits the fields of a command argument list.
const ArgSeparator = ","

// Param defines a parameter for a command
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Command represents a REPL command
type Command struct {
	Name        string
	Description string
	Handler     func(args string) (quit bool, err error)
	Params      []Param // comma-separated, in order
	Hidden      bool    // if true, not offered as a one-shot subcommand
}

// Usage renders the command with its parameters, e.g. "/status <id>,<status>"
func (c *Command) Usage() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		if p.Required {
			parts[i] = "<" + p.Name + ">"
		} else {
			parts[i] = "[" + p.Name + "]"
		}
	}
	return c.Name + " " + strings.Join(parts, ArgSeparator)
}

// ErrUnknownCommand is returned by Execute for a word that names no command.
var ErrUnknownCommand = errors.New("unknown command")

// UsageError reports arguments that do not fit a command's parameter list.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

func usageError(name string) error {
	return &UsageError{Usage: GetByName(name).Usage()}
}

// ErrorText renders an Execute error for the user.
func ErrorText(err error) string {
	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		return "Usage: " + usage.Usage
	case errors.Is(err, ErrUnknownCommand):
		return "Error: " + err.Error() + ". Type help for available commands."
	default:
		return "Error: " + err.Error()
	}
}

var (
	registry  = make(map[string]*Command)
	store     storage.Store
	formatter                  = table.New()
	recorder  logging.Recorder = logging.Discard
	out       io.Writer        = os.Stdout
)

// Register adds a command to the registry
func Register(cmd *Command) {
	registry[strings.ToLower(cmd.Name)] = cmd
}

// SetStore sets the global store for commands to use
func SetStore(s storage.Store) {
	store = s
}

// GetStore returns the global store
func GetStore() storage.Store {
	return store
}

// SetFormatter sets the table formatter used by list and filter
func SetFormatter(f *table.Formatter) {
	formatter = f
}

// SetRecorder sets where command failures are logged
func SetRecorder(r logging.Recorder) {
	recorder = r
}

// SetOutput redirects command output, os.Stdout by default
func SetOutput(w io.Writer) {
	out = w
}

// Execute runs a command line. The command word may be given with or without
// its leading "/"; everything after it is passed to the handler unchanged.
func Execute(input string) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, fmt.Errorf("empty command")
	}

	name, args, _ := strings.Cut(input, " ")
	cmd := GetByName(name)
	if cmd == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, strings.TrimPrefix(strings.ToLower(name), "/"))
	}

	quit, err := cmd.Handler(strings.TrimSpace(args))
	if err != nil {
		recorder.Record(fmt.Sprintf("%s failed: %v", strings.TrimPrefix(cmd.Name, "/"), err))
	}
	return quit, err
}

// ExecuteWithOutput runs a command and returns its captured output
func ExecuteWithOutput(input string) (quit bool, output string, err error) {
	old := out
	var buf bytes.Buffer
	out = &buf
	defer func() { out = old }()

	quit, err = Execute(input)
	return quit, strings.TrimSpace(buf.String()), err
}

// List returns all registered commands sorted by name
func List() []*Command {
	cmds := make([]*Command, 0, len(registry))
	for _, cmd := range registry {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

// GetByName returns a command by name (with or without leading /)
func GetByName(name string) *Command {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return registry[strings.ToLower(name)]
}

func outf(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}

func outln(a ...any) {
	fmt.Fprintln(out, a...)
}
