package action

import (
	"errors"
	"fmt"
)

// Signal is the failure carrier for domain-level failures. Returning a
// *Signal from a hook or the core operation requests an early Failure
// result; Run catches exactly this error type at the invocation boundary.
// A Signal exists only transiently during a single invocation.
type Signal struct {
	// Payload is the domain error the failure reports.
	Payload error
	// Frag is an optional metadata fragment merged into the instance
	// metadata when the signal is caught.
	Frag Meta
}

// Fail creates a failure signal with the given payload and metadata
// fragment. frag may be nil.
func Fail(payload error, frag Meta) *Signal {
	return &Signal{Payload: payload, Frag: frag}
}

// Failf creates a failure signal with a formatted payload and no metadata
// fragment.
func Failf(format string, args ...any) *Signal {
	return &Signal{Payload: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (s *Signal) Error() string {
	return fmt.Sprintf("action failure signal: %v", s.Payload)
}

// Unwrap returns the payload error.
func (s *Signal) Unwrap() error {
	return s.Payload
}

// IsSignal reports whether err is (or wraps) a failure signal.
func IsSignal(err error) bool {
	var s *Signal
	return errors.As(err, &s)
}

// AsSignal extracts the failure signal from err, if any.
func AsSignal(err error) (*Signal, bool) {
	var s *Signal
	ok := errors.As(err, &s)
	return s, ok
}
