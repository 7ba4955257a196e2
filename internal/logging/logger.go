package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/kingrea/pmfarchive/internal/config"
)

// Logger is a leveled logger that also appends to .pmfx/logs/pmfx.log so
// users can inspect skipped entries after a command has finished.
type Logger struct {
	*log.Logger
	file *os.File
}

// New builds the logger described by cfg. Output goes to stderr and, when a
// log file is configured, to that file as well.
func New(cfg *config.Config, stderr io.Writer) (*Logger, error) {
	level, err := log.ParseLevel(cfg.Project.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var file *os.File
	out := stderr
	if path := cfg.LogFile(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		out = io.MultiWriter(stderr, file)
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "pmfx",
	})
	return &Logger{Logger: logger, file: file}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard)}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
