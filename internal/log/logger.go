// Package log configures slog output for the autocommit binary. Terminal
// output is compact and coloured; JSON output suits log collectors.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/helixml/autocommit/internal/config"
)

// Logger pairs the configured handler with a slog.Logger built on it.
type Logger struct {
	handler slog.Handler
	logger  *slog.Logger
}

// NewLogger builds the stderr logger selected by LOG_FORMAT and LOG_LEVEL.
// Colour is dropped when NO_COLOR is set.
func NewLogger(cfg config.AppConfig) *Logger {
	return newLogger(os.Stderr, cfg.LogFormat(), cfg.LogLevel(), os.Getenv("NO_COLOR") != "")
}

// NewLoggerWithWriter builds an uncoloured logger writing to w.
func NewLoggerWithWriter(w io.Writer, format config.LogFormat, level string) *Logger {
	return newLogger(w, format, level, true)
}

func newLogger(w io.Writer, format config.LogFormat, level string, plain bool) *Logger {
	lvl := parseLevel(level)

	handler := slog.Handler(newTerminalHandler(w, lvl, plain))
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return &Logger{handler: handler, logger: slog.New(handler)}
}

// parseLevel falls back to info for anything it does not recognise.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Handler returns the configured handler.
func (l *Logger) Handler() slog.Handler {
	return l.handler
}

// Slog returns the logger passed to autocommit.New.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// Configure builds the logger for cfg and makes it the slog default, so
// packages that fall back to slog.Default() share its output.
func Configure(cfg config.AppConfig) *Logger {
	l := NewLogger(cfg)
	slog.SetDefault(l.logger)
	return l
}
