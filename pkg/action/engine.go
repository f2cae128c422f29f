package action

import (
	"errors"
	"fmt"
)

// ErrNoOutcome is the programming defect reported when the around chain
// returns normally but the core operation never ran and no around hook
// resolved a value.
var ErrNoOutcome = errors.New("around chain returned without a core result or a resolved value")

// Run executes the invocation: before hooks in registration order, then
// the around chain wrapped once around the core operation (first
// registered around hook outermost), then after hooks in registration
// order. After hooks run only if the chain returns normally.
//
// A *Signal returned anywhere in the chain is caught here and converted
// into a Failure result; Run itself returns a non-nil error only for
// programming defects, which propagate unmodified.
func (d *Definition[T]) Run(in *Instance) (Result[T], error) {
	if in == nil {
		return Result[T]{}, errors.New("action: nil instance")
	}
	if in.owner != any(d) {
		return Result[T]{}, fmt.Errorf("action: instance of %q run against definition %q", in.action, d.name)
	}

	for _, h := range d.hooks.before {
		if err := d.invokeHook(in, h, "before"); err != nil {
			return d.settle(in, err)
		}
	}

	var (
		res  Result[T]
		ran  bool
		next = Next(func() error {
			r, err := d.core(in)
			if err != nil {
				return err
			}
			res = r
			ran = true
			return nil
		})
	)
	// Wrap back to front so the first registered around hook ends up
	// outermost and the last sits adjacent to the core operation.
	for i := len(d.hooks.around) - 1; i >= 0; i-- {
		h := d.hooks.around[i]
		inner := next
		next = func() error { return d.invokeAround(in, h, inner) }
	}
	if err := next(); err != nil {
		return d.settle(in, err)
	}

	if !ran {
		if !in.hasResolved {
			return Result[T]{}, ErrNoOutcome
		}
		var v T
		if in.resolved != nil {
			typed, ok := in.resolved.(T)
			if !ok {
				return Result[T]{}, fmt.Errorf("action %q: resolved value of type %T does not satisfy the result type", d.name, in.resolved)
			}
			v = typed
		}
		res = Result[T]{value: v, meta: Meta{}}
	}

	// The instance metadata is the base; entries the core attached to the
	// result overlay it. The result then shares the live mapping, so
	// after-hook writes are visible on the returned result.
	in.meta.Merge(res.meta)
	res.meta = in.meta
	if res.failure != nil {
		res.failure.Meta = in.meta
	}

	for _, h := range d.hooks.after {
		if err := d.invokeHook(in, h, "after"); err != nil {
			return d.settle(in, err)
		}
	}
	return res, nil
}

// MustRun executes the invocation and unwraps the result: the success
// value on Success; the exact original *Signal as the error when the
// Failure retains one; the *Failure itself as the error when the Failure
// was constructed directly without the signal mechanism. Programming
// defects are returned as-is.
func (d *Definition[T]) MustRun(in *Instance) (T, error) {
	var zero T
	res, err := d.Run(in)
	if err != nil {
		return zero, err
	}
	if res.OK() {
		return res.value, nil
	}
	if sig, ok := res.meta[MetaSignal].(*Signal); ok {
		return zero, sig
	}
	return zero, res.failure
}

// Exec is the one-shot convenience: New followed by Run.
func (d *Definition[T]) Exec(args map[string]any) (Result[T], error) {
	in, err := d.New(args)
	if err != nil {
		return Result[T]{}, err
	}
	return d.Run(in)
}

// settle converts a raised failure signal into a Failure result carrying
// the instance metadata merged with the signal's fragment and the retained
// signal itself. Any other error is a programming defect and passes
// through untouched.
func (d *Definition[T]) settle(in *Instance, err error) (Result[T], error) {
	sig, ok := AsSignal(err)
	if !ok {
		return Result[T]{}, err
	}
	in.meta.Merge(sig.Frag)
	in.meta[MetaSignal] = sig
	return Result[T]{
		meta:    in.meta,
		failure: &Failure{Err: sig.Payload, Meta: in.meta},
	}, nil
}

// invokeHook runs one before/after hook, resolving a named descriptor
// against the operation table at call time.
func (d *Definition[T]) invokeHook(in *Instance, h hookRef, kind string) error {
	if h.fn != nil {
		return h.fn(in)
	}
	op, ok := d.ops[h.op]
	if !ok {
		return &UnknownOpError{Action: d.name, Kind: kind, Op: h.op}
	}
	return op(in)
}

// invokeAround runs one around hook with the continuation for the rest of
// the chain.
func (d *Definition[T]) invokeAround(in *Instance, h aroundRef, next Next) error {
	if h.fn != nil {
		return h.fn(in, next)
	}
	op, ok := d.aroundOps[h.op]
	if !ok {
		return &UnknownOpError{Action: d.name, Kind: "around", Op: h.op}
	}
	return op(in, next)
}

// Runnable is the type-erased view of a definition used by transports and
// registries that handle heterogeneous actions.
type Runnable interface {
	// Name returns the action name.
	Name() string
	// Description returns the action description.
	Description() string
	// Props returns the declared properties in declaration order.
	Props() []Prop
	// ExecAny constructs an instance from the arguments and runs it,
	// returning the type-erased outcome. Validation errors and programming
	// defects come back as the error.
	ExecAny(args map[string]any) (Erased, error)
}

// ExecAny implements Runnable.
func (d *Definition[T]) ExecAny(args map[string]any) (Erased, error) {
	res, err := d.Exec(args)
	if err != nil {
		return Erased{}, err
	}
	return res.Erase(), nil
}
