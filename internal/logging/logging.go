package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"

	"urbannest/internal/config"
)

// Logger bundles the process logger with the resources it owns
type Logger struct {
	*slog.Logger
	fluent *fluent.Fluent
}

// Close flushes and closes the Fluent Bit client when one is active
func (l *Logger) Close() error {
	if l.fluent == nil {
		return nil
	}
	return l.fluent.Close()
}

// New builds the stdout logger and, when enabled, fans records out to Fluent Bit.
// A nil writer means os.Stdout.
func New(cfg config.LoggingConfig, fluentCfg config.FluentConfig, w io.Writer) (*Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	handler := newStdoutHandler(cfg, w)

	if !fluentCfg.Enabled {
		return &Logger{Logger: slog.New(handler)}, nil
	}

	if fluentCfg.TagPrefix == "" {
		return nil, errors.New("fluent tag prefix is required")
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: fluentCfg.Host,
		FluentPort: fluentCfg.Port,
		TagPrefix:  fluentCfg.TagPrefix,
		Async:      true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fluent client")
	}

	fh := NewFluentHandler(client, ParseLevel(fluentCfg.Level))
	return &Logger{Logger: slog.New(NewFanout(handler, fh)), fluent: client}, nil
}

func newStdoutHandler(cfg config.LoggingConfig, w io.Writer) slog.Handler {
	level := ParseLevel(cfg.Level)
	switch {
	case strings.EqualFold(cfg.Format, "json"):
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case cfg.Color:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02 15:04:05",
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
