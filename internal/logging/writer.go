package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Writer is an io.Writer implementation that forwards child process output to slog.
// Vendor tools (aws, docker, git, conda, checkers) write freely to their
// stdout/stderr; Writer turns each chunk into structured log lines.
type Writer struct {
	logger *slog.Logger
	level  Level
}

// NewWriter constructs a Writer bound to the provided logger, logging at info level.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger, level: LevelInfo}
}

// NewWriterAt constructs a Writer that logs each line at the given level.
// Child stderr is routed through warn without failing the run.
func NewWriterAt(logger *slog.Logger, level Level) *Writer {
	return &Writer{logger: logger, level: level}
}

// Write logs the given bytes line by line at the configured level.
func (w *Writer) Write(p []byte) (int, error) {
	if w.logger != nil {
		for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
			if line == "" {
				continue
			}
			w.logger.Log(context.Background(), slog.Level(w.level), "tool output", "line", line)
		}
	}
	return len(p), nil
}
