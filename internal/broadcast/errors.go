package broadcast

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream matches every UpstreamError.
	ErrUpstream = errors.New("video platform call failed")

	// ErrMalformedRequest is returned by DecodeRequest for payloads that are not JSON objects.
	ErrMalformedRequest = errors.New("malformed request")
)

// ValidationError rejects a request before any network call is made.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Field {
	case "privacy_status":
		return fmt.Sprintf("Invalid privacy status: %s", e.Value)
	case "action":
		return "Invalid or missing 'action'. Must be 'create' or 'end'."
	}
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UpstreamError wraps a failed video platform call with the step that made it.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
