// Package logbridge adapts slog records onto a logrus logger so the library's
// structured diagnostics share the CLI's operator-facing output.
package logbridge

import (
	"context"
	"log/slog"

	"github.com/sirupsen/logrus"
)

// Handler is a slog.Handler forwarding records to a logrus logger.
type Handler struct {
	logger *logrus.Logger
	attrs  []slog.Attr
}

// New creates a Handler writing to logger.
func New(logger *logrus.Logger) *Handler {
	return &Handler{logger: logger}
}

// Enabled reports whether the logrus logger would emit at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsLevelEnabled(logrusLevel(level))
}

// Handle forwards one record with its attributes as logrus fields.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make(logrus.Fields, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		fields[attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields[attr.Key] = attr.Value.Any()
		return true
	})
	h.logger.WithFields(fields).Log(logrusLevel(record.Level), record.Message)
	return nil
}

// WithAttrs returns a handler that includes attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{logger: h.logger, attrs: merged}
}

// WithGroup returns the handler unchanged; group nesting is flattened.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func logrusLevel(level slog.Level) logrus.Level {
	switch {
	case level >= slog.LevelError:
		return logrus.ErrorLevel
	case level >= slog.LevelWarn:
		return logrus.WarnLevel
	case level >= slog.LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
