package action

import (
	"errors"
	"fmt"
)

// Next is the continuation passed to an around hook, representing the rest
// of the chain (inner around hooks plus the core operation). An around
// hook may choose never to invoke it.
type Next func() error

// HookFunc is a before or after hook bound to the invocation instance.
type HookFunc func(*Instance) error

// AroundFunc is an around hook: it receives the instance and the
// continuation for the rest of the chain.
type AroundFunc func(*Instance, Next) error

// Hook registration errors, raised at registration time rather than
// deferred to invocation time.
var (
	// ErrHookConflict is returned when a registration supplies both an
	// inline hook and one or more named operations.
	ErrHookConflict = errors.New("hook registration: inline hook and named operations are mutually exclusive")
	// ErrHookEmpty is returned when a registration supplies neither an
	// inline hook nor a named operation.
	ErrHookEmpty = errors.New("hook registration: an inline hook or at least one named operation is required")
)

// UnknownOpError reports a named hook whose operation could not be
// resolved against the definition's operation table at call time. It is a
// programming defect, not a domain failure.
type UnknownOpError struct {
	Action string
	Kind   string // "before", "after" or "around"
	Op     string
}

// Error implements the error interface.
func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("action %q has no %s operation %q", e.Action, e.Kind, e.Op)
}

// hookRef is a tagged hook descriptor: either an inline closure or a
// reference to a named operation, never both.
type hookRef struct {
	fn HookFunc
	op string
}

// aroundRef is the around-hook counterpart of hookRef.
type aroundRef struct {
	fn AroundFunc
	op string
}

// hookSet holds the three ordered hook lists of one definition. Hooks
// execute in registration order within each kind.
type hookSet struct {
	before []hookRef
	after  []hookRef
	around []aroundRef
}

// clone copies the three lists by value so a derived definition owns
// independent lists: later mutation of either side never affects the other.
func (h *hookSet) clone() *hookSet {
	c := &hookSet{
		before: make([]hookRef, len(h.before)),
		after:  make([]hookRef, len(h.after)),
		around: make([]aroundRef, len(h.around)),
	}
	copy(c.before, h.before)
	copy(c.after, h.after)
	copy(c.around, h.around)
	return c
}

// appendHooks validates a before/after registration and appends to list.
func appendHooks(list []hookRef, fn HookFunc, ops []string) ([]hookRef, error) {
	if fn != nil && len(ops) > 0 {
		return list, ErrHookConflict
	}
	if fn == nil && len(ops) == 0 {
		return list, ErrHookEmpty
	}
	if fn != nil {
		return append(list, hookRef{fn: fn}), nil
	}
	for _, op := range ops {
		if op == "" {
			return list, fmt.Errorf("hook registration: operation name cannot be empty")
		}
		list = append(list, hookRef{op: op})
	}
	return list, nil
}

// appendAroundHooks validates an around registration and appends to list.
func appendAroundHooks(list []aroundRef, fn AroundFunc, ops []string) ([]aroundRef, error) {
	if fn != nil && len(ops) > 0 {
		return list, ErrHookConflict
	}
	if fn == nil && len(ops) == 0 {
		return list, ErrHookEmpty
	}
	if fn != nil {
		return append(list, aroundRef{fn: fn}), nil
	}
	for _, op := range ops {
		if op == "" {
			return list, fmt.Errorf("hook registration: operation name cannot be empty")
		}
		list = append(list, aroundRef{op: op})
	}
	return list, nil
}
