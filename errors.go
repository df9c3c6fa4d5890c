package riskgraph

import (
	"errors"
	"fmt"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/metrics"
)

// Sentinel errors for common engine error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrDuplicateEntity indicates an entity with the same identity
	// already exists in the graph store.
	ErrDuplicateEntity = graph.ErrDuplicateEntity

	// ErrUnknownUser indicates an operation referenced a user that is not
	// in the graph store.
	ErrUnknownUser = graph.ErrUnknownUser

	// ErrMetricsUnavailable indicates the graph metrics provider failed;
	// analysis continues with reduced confidence.
	ErrMetricsUnavailable = metrics.ErrUnavailable

	// ErrInvalidPolicy indicates the provided policy is invalid or
	// incomplete.
	ErrInvalidPolicy = errors.New("invalid policy")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindConfiguration represents errors related to engine configuration.
	KindConfiguration = "configuration"

	// KindExtraction represents errors that occur during signal extraction.
	KindExtraction = "extraction"

	// KindMetrics represents errors from the graph metrics provider.
	KindMetrics = "metrics"

	// KindDelivery represents errors delivering reports to sinks.
	KindDelivery = "delivery"

	// KindInternal represents internal engine errors.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
type Error struct {
	// Op is the operation that failed (e.g., "Engine.Run").
	Op string

	// Kind categorizes the error (e.g., KindValidation, KindDelivery).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include user IDs, sink names, or other debugging information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("riskgraph: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("riskgraph: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("riskgraph: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or on a prototype Error's Op and Kind.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the provided context added.
// This is useful for adding debugging information to errors.
func (e *Error) WithContext(ctx map[string]any) *Error {
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &Error{Op: e.Op, Kind: e.Kind, Err: e.Err, Context: merged}
}
