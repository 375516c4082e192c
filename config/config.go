// Package config defines the task tracker configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tasktracker/table"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Environment variables that override file settings.
const (
	EnvBackend   = "TASKTRACKER_BACKEND"
	EnvDataDir   = "TASKTRACKER_DATA_DIR"
	EnvLogFile   = "TASKTRACKER_LOG_FILE"
	EnvLogLevel  = "TASKTRACKER_LOG_LEVEL"
	EnvLocale    = "TASKTRACKER_LOCALE"
	EnvWidthMode = "TASKTRACKER_WIDTH_MODE"
	EnvLegacy    = "TASKTRACKER_LEGACY_NEWLINE"
)

// Config is the top-level task tracker configuration.
type Config struct {
	Backend       string        `json:"backend" yaml:"backend"` // "file", "sqlite", "json"
	DataDir       string        `json:"data_dir" yaml:"data_dir"`
	TasksFile     string        `json:"tasks_file" yaml:"tasks_file"`
	Database      string        `json:"database" yaml:"database"`
	JSONFile      string        `json:"json_file" yaml:"json_file"`
	LogFile       string        `json:"log_file" yaml:"log_file"` // empty disables logging
	LogLevel      string        `json:"log_level" yaml:"log_level"`
	Locale        string        `json:"locale" yaml:"locale"`         // BCP 47, e.g. "zh-CN"
	WidthMode     string        `json:"width_mode" yaml:"width_mode"` // "lead-byte", "east-asian"
	LegacyNewline bool          `json:"legacy_newline" yaml:"legacy_newline"`
	Color         bool          `json:"color" yaml:"color"`
	Columns       table.Columns `json:"columns" yaml:"columns"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:   BackendFile,
		DataDir:   ".",
		TasksFile: "tasks.txt",
		Database:  "tasks.db",
		JSONFile:  "tasks.json",
		LogFile:   "log.txt",
		LogLevel:  "info",
		Locale:    "en",
		WidthMode: table.LeadByte.String(),
		Columns:   table.DefaultColumns,
	}
}

// Load reads a YAML config file and returns the parsed configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads envFile (if it exists) into the process environment and
// applies the TASKTRACKER_* overrides to cfg. Variables already set in the
// environment win over the file.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env %s: %w", envFile, err)
		}
	}
	for key, dst := range map[string]*string{
		EnvBackend:   &cfg.Backend,
		EnvDataDir:   &cfg.DataDir,
		EnvLogFile:   &cfg.LogFile,
		EnvLogLevel:  &cfg.LogLevel,
		EnvLocale:    &cfg.Locale,
		EnvWidthMode: &cfg.WidthMode,
	} {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(EnvLegacy); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLegacy, err)
		}
		cfg.LegacyNewline = b
	}
	return nil
}

// Validate reports settings that cannot be used to start the tracker.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown backend %q (valid: file, sqlite, json)", c.Backend)
	}
	if _, ok := table.ParseMetric(c.WidthMode); !ok {
		return fmt.Errorf("unknown width_mode %q (valid: lead-byte, east-asian)", c.WidthMode)
	}
	if err := c.Columns.Validate(); err != nil {
		return err
	}
	return nil
}

// Path joins name onto the data directory unless name is already absolute.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// StorePath returns the data file used by the configured backend.
func (c *Config) StorePath() string {
	switch c.Backend {
	case BackendSQLite:
		return c.Path(c.Database)
	case BackendJSON:
		return c.Path(c.JSONFile)
	default:
		return c.Path(c.TasksFile)
	}
}
