// Package logger builds the zerolog loggers used across the dashboard core.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger for the given environment. Development gets
// a coloured console writer; every other environment emits JSON suitable
// for log shipping. The level string accepts trace, debug, info, warn and
// error, falling back to info for anything else.
func New(env, level string) zerolog.Logger {
	return NewWithOutput(env, level, os.Stdout)
}

// NewWithOutput is New with an explicit destination, used by tests to
// capture log lines.
func NewWithOutput(env, level string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", "dashboard-core").
		Logger()
}

// Component returns a child logger tagged with the subsystem name, so
// session store and event bus lines are distinguishable in aggregate.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
