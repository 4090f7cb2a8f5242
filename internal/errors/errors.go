// Package errors defines the application error taxonomy and the handler that
// turns failures into user-facing replies.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an internal message for logs and a separate message safe
// to send back to the user.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewStateError covers conversation-state failures such as a rejected FSM
// transition.
func NewStateError(msg string, cause error) *AppError {
	return &AppError{
		Code:        "E200",
		Message:     msg,
		UserMessage: "That action is not possible right now. Send 'menu' to start over.",
		Severity:    SeverityMedium,
		cause:       cause,
	}
}

// NewInternalError covers unexpected failures inside handlers.
func NewInternalError(cause error) *AppError {
	var underlying string
	if cause != nil {
		underlying = cause.Error()
	}

	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("internal error: %s", underlying),
		UserMessage: "Something went wrong on our side. Please try again.",
		Severity:    SeverityHigh,
		cause:       cause,
	}
}
