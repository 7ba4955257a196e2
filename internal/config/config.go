// internal/config/config.go
//
// This package handles configuration and the .pmfx directory structure.
// A project that runs pmfx init gets a .pmfx/ folder holding config.yaml,
// the log file and the operation history.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory created in each project.
	Dir = ".pmfx"

	fileName = "config.yaml"
)

const defaultProjectConfigYAML = `# pmfx project configuration
version: 1

# Archive profile used when a command has to pick an output extension.
# pmf writes generic SBML entries, pmfx and fskx write PMF-ML entries.
profile: pmfx

# Add a readme.txt entry describing the archive layout on every write.
readme: true

log:
  # debug, info, warn or error
  level: info
  # Relative to .pmfx. Leave empty to log to stderr only.
  file: logs/pmfx.log

history:
  file: history.log
  # Number of entries shown by pmfx history.
  tail: 20
`

var validate = validator.New()

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file,omitempty"`
}

// HistoryConfig controls the operation history file.
type HistoryConfig struct {
	File string `yaml:"file" validate:"required"`
	Tail int    `yaml:"tail" validate:"gte=1,lte=1000"`
}

// ProjectConfig models .pmfx/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version" validate:"gte=1"`
	Profile string        `yaml:"profile" validate:"oneof=pmf pmfx fskx"`
	Readme  bool          `yaml:"readme"`
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
}

// Config holds the runtime configuration for pmfx.
type Config struct {
	// ProjectDir is the directory pmfx was run from.
	ProjectDir string

	// StateDir is ProjectDir/.pmfx.
	StateDir string

	Project ProjectConfig
}

// Init creates the .pmfx directory structure in projectDir and writes the
// default config when none exists.
//
// Structure created:
// .pmfx/
// ├── config.yaml
// └── logs/
func Init(projectDir string) error {
	stateDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return fmt.Errorf("config: ensure %s: %w", Dir, err)
	}
	return ensureProjectConfig(filepath.Join(stateDir, fileName))
}

// Load returns the configuration of projectDir. A missing config file yields
// the defaults.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location for the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, fileName)
}

// LogFile returns the absolute log file path, or "" when file logging is off.
func (c *Config) LogFile() string {
	return resolvePath(c.StateDir, c.Project.Log.File)
}

// HistoryFile returns the absolute path of the operation history.
func (c *Config) HistoryFile() string {
	return resolvePath(c.StateDir, c.Project.History.File)
}

// Extension returns the archive extension of the configured profile.
func (c *Config) Extension() string {
	return "." + c.Project.Profile
}

// Save writes the configuration back to .pmfx/config.yaml.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure %s: %w", Dir, err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Profile: "pmfx",
		Readme:  true,
		Log:     LogConfig{Level: "info", File: filepath.Join("logs", "pmfx.log")},
		History: HistoryConfig{File: "history.log", Tail: 20},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Profile) == "" {
		pc.Profile = "pmfx"
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = "info"
	}
	if strings.TrimSpace(pc.History.File) == "" {
		pc.History.File = "history.log"
	}
	if pc.History.Tail == 0 {
		pc.History.Tail = 20
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Profile = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(pc.Profile)), ".")
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	if pc.Log.Level == "warning" {
		pc.Log.Level = "warn"
	}
	pc.Log.File = strings.TrimSpace(pc.Log.File)
	pc.History.File = strings.TrimSpace(pc.History.File)
}

func (pc *ProjectConfig) validate() error {
	err := validate.Struct(pc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := yamlPath(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// yamlPath turns a validator namespace such as ProjectConfig.Log.Level into
// the yaml key path log.level.
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
