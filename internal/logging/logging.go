// Package logging builds the process logger. The TUI owns the terminal, so
// logs always go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger is a session-scoped logger writing to a file
type Logger struct {
	*logrus.Entry
	file io.Closer
}

// New opens (or creates) path for appending and returns a logger at level.
// An empty path discards output.
func New(path, level string) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	base := &logrus.Logger{
		Out:   io.Discard,
		Level: lvl,
		Formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "01-02 15:04:05.000",
		},
		Hooks:    make(logrus.LevelHooks),
		ExitFunc: os.Exit,
	}

	l := &Logger{}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		base.Out = f
		l.file = f
	}

	l.Entry = base.WithField("session", uuid.NewString())
	return l, nil
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
