// Package action provides a small execution engine for interactors:
// single-purpose units of business logic with typed, validated inputs, a
// chain of before/after/around hooks composed around a core operation, and
// an explicit Success/Failure result carrying metadata.
//
// A Definition describes one action type: its property schema, its hook
// lists and its core operation. Definitions are assembled once, at program
// initialization, and are not safe for concurrent mutation afterwards.
// Derive copies a definition's schema, hooks and operation tables by value,
// so a derived definition and its parent never share hook lists.
//
// An Instance is created per invocation by Definition.New, which validates
// and coerces the supplied arguments against the schema before anything
// else runs. Each instance is intended for exactly one invocation on one
// goroutine: its metadata is mutable shared state with no internal locking,
// and reusing an instance across concurrent invocations is undefined
// behavior.
//
// Domain failures are requested by returning a *Signal from a hook or the
// core operation. Run catches exactly that error type and converts it into
// a Failure result; every other error is treated as a programming defect
// and is returned to the caller unmodified. Panics are never recovered.
package action
