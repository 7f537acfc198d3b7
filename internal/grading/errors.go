package grading

import (
	"errors"
	"fmt"
)

// Common grading errors
var (
	// ErrRemoteCall is returned when the grading model request fails at the
	// transport level. Grading has no partial-success mode: any failure here
	// is fatal for the run.
	ErrRemoteCall = errors.New("grading model call failed")

	// ErrInvalidReport is returned when the model response does not match
	// the grading report schema.
	ErrInvalidReport = errors.New("grading model response does not match report schema")

	// ErrMissingAPIKey is returned when no API key is configured for the
	// grading endpoint.
	ErrMissingAPIKey = errors.New("missing API key: set GROQ_API_KEY environment variable")

	// ErrEmptyTranscript is returned when there is no student text to grade.
	ErrEmptyTranscript = errors.New("student transcript is empty")
)

// GradingError wraps errors with additional context about the grading failure.
type GradingError struct {
	// Op is the operation that failed (e.g., "Grade").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *GradingError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("grading: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("grading: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *GradingError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *GradingError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapGradingError wraps an error as a GradingError if it isn't already one.
func WrapGradingError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var gErr *GradingError
	if errors.As(err, &gErr) {
		return err // Already wrapped
	}

	return &GradingError{Op: op, Err: err, Details: details}
}
