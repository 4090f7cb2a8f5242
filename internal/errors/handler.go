package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/dev-abubakarsharif/chatdotfun/pkg/logger"
)

// Handler logs application errors, forwards the severe ones to Sentry, and
// yields the string that goes back to the user.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

// NewHandler constructs an error handler. Sentry reporting is a no-op unless
// enabled.
func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle processes an error and returns the user-facing reply text.
func (h *Handler) Handle(ctx context.Context, err error) string {
	if err == nil {
		return ""
	}

	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []any{}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		attrs = append(attrs,
			slog.String("code", appErr.Code),
			slog.String("severity", string(appErr.Severity)),
			slog.Any("error", err),
		)
		h.log.Error("application error", attrs...)

		if h.sentryEnabled && (appErr.Severity == SeverityHigh || appErr.Severity == SeverityCritical) {
			h.sendToSentry(err)
		}

		if appErr.UserMessage != "" {
			return appErr.UserMessage
		}
		return "Something went wrong. Please try again."
	}

	attrs = append(attrs, slog.Any("error", err))
	h.log.Error("unexpected error", attrs...)

	if h.sentryEnabled {
		h.sendToSentry(err)
	}

	return "Something went wrong. Please try again."
}

func (h *Handler) sendToSentry(err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}
			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}
