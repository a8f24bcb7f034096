// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog.Logger that is passed to all components.
type Logger struct {
	*slog.Logger
}

// New returns a new Logger with the given level that writes to stderr.
func New(level slog.Level) *Logger {
	return NewLogger(level)
}

// NewLogger returns a new Logger with the given level. If an output is provided, the logger
// writes to it instead of stderr.
func NewLogger(level slog.Level, output ...io.Writer) *Logger {
	var out io.Writer = os.Stderr
	if len(output) > 0 && output[0] != nil {
		out = output[0]
	}
	return &Logger{slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))}
}

// With returns a Logger that includes the given attributes in every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// Err returns a slog attribute for the given error.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
