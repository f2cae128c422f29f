package action

import (
	"errors"
	"fmt"
)

// Failure is the failure half of a Result: a domain error plus the
// metadata accumulated up to the point of failure. It implements error so
// MustRun can hand it back through an error return when the failure was
// constructed directly rather than through the signal mechanism.
type Failure struct {
	Err  error
	Meta Meta
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("action failure: %v", f.Err)
}

// Unwrap returns the underlying domain error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// IsFailure reports whether err is (or wraps) a *Failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Result is the two-variant outcome of an invocation: Success carrying a
// value or Failure carrying an error. Both variants carry metadata.
type Result[T any] struct {
	value   T
	meta    Meta
	failure *Failure
}

// NewSuccess constructs a Success result outside the engine. Its metadata
// starts empty; the engine overlays the instance metadata when the result
// passes through Run.
func NewSuccess[T any](v T) Result[T] {
	return Result[T]{value: v, meta: Meta{}}
}

// NewFailure constructs a Failure result directly, without going through
// the signal mechanism. A result built this way carries no retained signal.
func NewFailure[T any](err error) Result[T] {
	meta := Meta{}
	return Result[T]{meta: meta, failure: &Failure{Err: err, Meta: meta}}
}

// OK reports whether the result is the Success variant.
func (r Result[T]) OK() bool {
	return r.failure == nil
}

// Value returns the success value; the zero value on a Failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure error, or nil on a Success.
func (r Result[T]) Err() error {
	if r.failure == nil {
		return nil
	}
	return r.failure.Err
}

// Meta returns the result metadata. It is never nil for results produced
// by the engine or by the package constructors.
func (r Result[T]) Meta() Meta {
	return r.meta
}

// Failure returns the failure variant, or nil on a Success.
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Unpack deconstructs the result by variant tag: the success value and a
// nil *Failure, or the zero value and the failure.
func (r Result[T]) Unpack() (T, *Failure) {
	return r.value, r.failure
}

// Erased is the type-erased view of a Result used by transports that
// handle heterogeneous actions.
type Erased struct {
	OK    bool
	Value any
	Err   error
	Meta  Meta
}

// Erase returns the type-erased view of the result.
func (r Result[T]) Erase() Erased {
	if r.failure != nil {
		return Erased{OK: false, Err: r.failure.Err, Meta: r.meta}
	}
	return Erased{OK: true, Value: r.value, Meta: r.meta}
}
