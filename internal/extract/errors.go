package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrEmptyBatch is returned when ExtractBatch is called with no images.
	ErrEmptyBatch = errors.New("extraction batch contains no images")

	// ErrRemoteCall is returned when the vision model request fails at the
	// transport level (network fault, HTTP error, empty choice list).
	ErrRemoteCall = errors.New("vision model call failed")

	// ErrUnparsableResponse is returned when the model response contains no
	// parsable extraction array. Callers may treat this as recoverable for a
	// single batch: the batch contributes zero records and the run continues.
	ErrUnparsableResponse = errors.New("vision model response is not parsable as extraction records")

	// ErrMissingAPIKey is returned when no API key is configured for the
	// extraction endpoint.
	ErrMissingAPIKey = errors.New("missing API key: set GROQ_API_KEY environment variable")
)

// ExtractionError wraps errors with additional context about the failed call.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "ExtractBatch").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("extract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var exErr *ExtractionError
	if errors.As(err, &exErr) {
		return err // Already wrapped
	}

	return &ExtractionError{Op: op, Err: err, Details: details}
}
