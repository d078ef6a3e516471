// Package logging builds the daemon's zerolog logger. Every sink renders
// human-readable lines; the activity sink keeps the recent ones in memory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	appDir          = "imember"
	DefaultLogFile  = "imember.log"
	activityTimeFmt = "2006-01-02 15:04:05"
)

// Logger owns the zerolog logger and the resources behind its sinks.
type Logger struct {
	zlog    zerolog.Logger
	level   zerolog.Level
	file    *os.File
	writers []io.Writer
	mu      sync.Mutex
}

type Option func(*Logger) error

// WithConsole logs to w, colored when w is a terminal.
func WithConsole(w *os.File) Option {
	return func(l *Logger) error {
		l.writers = append(l.writers, zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    !term.IsTerminal(int(w.Fd())),
		})
		return nil
	}
}

// WithLevelName sets the minimum level from its name ("debug", "info", ...).
func WithLevelName(name string) Option {
	return func(l *Logger) error {
		if name == "" {
			return nil
		}
		level, err := zerolog.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", name, err)
		}
		l.level = level
		return nil
	}
}

// WithFile appends to the file at path, creating its directory. An empty
// path uses DefaultFilePath; "-" disables file logging.
func WithFile(path string) Option {
	return func(l *Logger) error {
		if path == "-" {
			return nil
		}
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return err
			}
			path = p
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		l.writers = append(l.writers, zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
		return nil
	}
}

// WithActivity mirrors every line into w, typically an activity.Log.
func WithActivity(w io.Writer) Option {
	return func(l *Logger) error {
		l.writers = append(l.writers, zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: activityTimeFmt,
			NoColor:    true,
		})
		return nil
	}
}

// DefaultFilePath returns $XDG_STATE_HOME/imember/imember.log, falling back
// to ~/.local/state.
func DefaultFilePath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDir, DefaultLogFile), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", appDir, DefaultLogFile), nil
}

// New creates a logger from the given options. With no sink options the
// logger writes to stderr.
func New(opts ...Option) (*Logger, error) {
	l := &Logger{level: zerolog.InfoLevel}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to apply logger option: %w", err)
		}
	}
	if len(l.writers) == 0 {
		l.writers = append(l.writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	l.zlog = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).
		Level(l.level).
		With().
		Timestamp().
		Logger()
	return l, nil
}

// Zerolog returns the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
