// Package logger implements ports.Logger on top of zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a ZeroLogger.
type Options struct {
	Level  string
	Format string // json or console
	Output io.Writer
}

// ZeroLogger routes structured fields to a zerolog.Logger.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New creates a ZeroLogger from options.
func New(opts Options) *ZeroLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zl := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
	return &ZeroLogger{zl: zl}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZeroLogger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

// Zerolog exposes the underlying logger for components that log natively
// (HTTP access log, supervisor events).
func (l *ZeroLogger) Zerolog() zerolog.Logger {
	return l.zl
}

// With returns a child logger that always carries fields.
func (l *ZeroLogger) With(fields map[string]interface{}) *ZeroLogger {
	return &ZeroLogger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.zl.Error().Err(err).Fields(fields).Msg(msg)
}

// ParseLevel converts a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
