package logger

import (
	"context"
	"errors"
	"log/slog"
)

// TeeHandler fans a record out to several handlers. A record is handled by
// every handler whose level admits it.
type TeeHandler struct {
	handlers []slog.Handler
}

// NewTeeHandler creates a fanout over the provided handlers.
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

// Enabled reports whether any wrapped handler accepts the level.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// WithAttrs propagates the attributes to every wrapped handler.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		handlers[i] = next.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: handlers}
}

// WithGroup propagates the group to every wrapped handler.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		handlers[i] = next.WithGroup(name)
	}
	return &TeeHandler{handlers: handlers}
}

// Handle delegates to every handler that accepts the record's level.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if !next.Enabled(ctx, record.Level) {
			continue
		}
		if err := next.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
