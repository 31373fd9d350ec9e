// Package assert provides internal invariant checks for the allocation
// engine.
//
// An assertion failure means the engine produced a result that violates its
// own contract (for example, a reconciled outcome that does not sum to the
// request total). That is a bug, not bad input, so failures are reported
// loudly: logged at error level and recorded on the active span.
package assert

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrAssertionFailed is the sentinel error for failed assertions.
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError represents a failed invariant with its origin.
type AssertionError struct {
	Message   string
	Component string
	Operation string
}

// Error returns the formatted assertion failure message.
func (e *AssertionError) Error() string {
	if e == nil {
		return ErrAssertionFailed.Error()
	}

	return "assertion failed: " + e.Message
}

// Unwrap returns the sentinel assertion error for errors.Is.
func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// Asserter evaluates invariants and emits telemetry on failure.
type Asserter struct {
	logger    *zap.Logger
	component string
}

// New creates an Asserter labeled with the owning component.
func New(logger *zap.Logger, component string) *Asserter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Asserter{logger: logger, component: component}
}

// That returns an error if ok is false.
func (a *Asserter) That(ctx context.Context, ok bool, operation, msg string, fields ...zap.Field) error {
	if ok {
		return nil
	}

	return a.fail(ctx, operation, msg, fields...)
}

// Never always returns an error. Use for code paths that should be
// unreachable.
func (a *Asserter) Never(ctx context.Context, operation, msg string, fields ...zap.Field) error {
	return a.fail(ctx, operation, msg, fields...)
}

func (a *Asserter) fail(ctx context.Context, operation, msg string, fields ...zap.Field) error {
	logFields := append([]zap.Field{
		zap.String("component", a.component),
		zap.String("operation", operation),
	}, fields...)
	a.logger.Error("ASSERTION FAILED: "+msg, logFields...)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("assertion.failed", trace.WithAttributes(
			attribute.String("assertion.message", msg),
			attribute.String("assertion.component", a.component),
			attribute.String("assertion.operation", operation),
		))
		span.SetStatus(codes.Error, "assertion failed in "+a.component+"/"+operation)
	}

	return &AssertionError{
		Message:   msg,
		Component: a.component,
		Operation: operation,
	}
}
