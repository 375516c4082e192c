package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"tasktracker/commands"
	"tasktracker/config"
	"tasktracker/logging"
	"tasktracker/storage"
	"tasktracker/table"
)

// historyFile holds REPL history inside the data directory.
const historyFile = ".tasktracker_history"

// overrides are command-line settings that win over the config file and
// environment. Empty fields are left alone.
type overrides struct {
	configPath string
	envFile    string
	backend    string
	dataDir    string
}

// app holds everything opened at startup and closed on exit.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  storage.Store
}

func loadConfig(o overrides) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if err := config.LoadEnv(cfg, o.envFile); err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openApp creates the data directory, the logger and the configured store,
// and installs them for the command registry.
func openApp(cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	a := &app{cfg: cfg}
	if cfg.LogFile != "" {
		logger, err := logging.OpenFile(cfg.Path(cfg.LogFile), logging.ParseLevel(cfg.LogLevel))
		if err != nil {
			return nil, err
		}
		a.logger = logger
	} else {
		a.logger = logging.New(io.Discard, logging.ParseLevel(cfg.LogLevel))
	}

	store, err := openStore(cfg, a.logger)
	if err != nil {
		a.logger.Error("failed to open store", "backend", cfg.Backend, "error", err)
		a.logger.Close()
		return nil, err
	}
	a.store = store

	formatter, err := newFormatter(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	commands.SetStore(store)
	commands.SetFormatter(formatter)
	commands.SetRecorder(a.logger)
	a.logger.Slog().Info("task tracker started", "backend", cfg.Backend, "path", cfg.StorePath())
	return a, nil
}

// openStore opens the backend named by cfg.Backend.
func openStore(cfg *config.Config, rec logging.Recorder) (storage.Store, error) {
	path := cfg.StorePath()
	switch cfg.Backend {
	case config.BackendSQLite:
		return storage.NewSQLiteStore(path, rec)
	case config.BackendJSON:
		return storage.NewJSONStore(path, rec)
	case config.BackendFile:
		var opts []storage.FileOption
		if cfg.LegacyNewline {
			opts = append(opts, storage.WithLegacyTerminator())
		}
		return storage.NewFileStore(path, rec, opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// newFormatter builds the table formatter from the display settings.
func newFormatter(cfg *config.Config) (*table.Formatter, error) {
	metric, ok := table.ParseMetric(cfg.WidthMode)
	if !ok {
		return nil, fmt.Errorf("unknown width_mode %q", cfg.WidthMode)
	}

	labels := table.EnglishLabels
	if cfg.Locale != "" {
		tag, err := language.Parse(cfg.Locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
		}
		labels = table.LabelsFor(tag)
	}

	opts := []table.Option{
		table.WithColumns(cfg.Columns),
		table.WithLabels(labels),
		table.WithMetric(metric),
	}
	if cfg.Color {
		opts = append(opts, table.WithHeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))))
	}
	return table.New(opts...), nil
}

// Close closes the store and then the log file.
func (a *app) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		commands.SetStore(nil)
	}
	if a.logger != nil {
		commands.SetRecorder(logging.Discard)
		a.logger.Record("task tracker stopped")
		if cerr := a.logger.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
