package action

import (
	"fmt"
)

// Core is the core operation of an action. It may return a Result built
// with NewSuccess or NewFailure, or return a *Signal error to request an
// early Failure through the signal mechanism. Any other error is a
// programming defect.
type Core[T any] func(*Instance) (Result[T], error)

// Definition describes one action type: name, property schema, hook lists,
// named-operation tables and the core operation. Definitions are built at
// initialization time and must not be mutated concurrently with Run.
type Definition[T any] struct {
	name      string
	desc      string
	schema    *Schema
	hooks     *hookSet
	ops       map[string]HookFunc
	aroundOps map[string]AroundFunc
	core      Core[T]
}

// Define creates a new action definition with the given name and core
// operation.
func Define[T any](name string, core Core[T]) *Definition[T] {
	return &Definition[T]{
		name:      name,
		schema:    NewSchema(),
		hooks:     &hookSet{},
		ops:       make(map[string]HookFunc),
		aroundOps: make(map[string]AroundFunc),
		core:      core,
	}
}

// Name returns the action name.
func (d *Definition[T]) Name() string {
	return d.name
}

// Describe sets a human-readable description and returns the definition
// for chaining.
func (d *Definition[T]) Describe(desc string) *Definition[T] {
	d.desc = desc
	return d
}

// Description returns the action description.
func (d *Definition[T]) Description() string {
	return d.desc
}

// Declare adds a property to the action schema and returns the definition
// for chaining. It panics on an invalid declaration; declarations happen
// at initialization time, like schema definition in an init block.
func (d *Definition[T]) Declare(name string, kind Kind, opts ...PropOption) *Definition[T] {
	d.schema.MustDeclare(name, kind, opts...)
	return d
}

// Props returns the declared properties in declaration order.
func (d *Definition[T]) Props() []Prop {
	return d.schema.Props()
}

// SetCore replaces the core operation. Intended for derived definitions
// that keep the parent's hooks and schema but implement their own
// operation.
func (d *Definition[T]) SetCore(core Core[T]) *Definition[T] {
	d.core = core
	return d
}

// Before registers a before hook: either an inline fn or one or more named
// operations, never both. Hooks run in registration order.
func (d *Definition[T]) Before(fn HookFunc, ops ...string) error {
	list, err := appendHooks(d.hooks.before, fn, ops)
	if err != nil {
		return err
	}
	d.hooks.before = list
	return nil
}

// After registers an after hook: either an inline fn or one or more named
// operations, never both.
func (d *Definition[T]) After(fn HookFunc, ops ...string) error {
	list, err := appendHooks(d.hooks.after, fn, ops)
	if err != nil {
		return err
	}
	d.hooks.after = list
	return nil
}

// Around registers an around hook: either an inline fn or one or more
// named operations, never both. The first registered around hook is the
// outermost wrapper of the chain.
func (d *Definition[T]) Around(fn AroundFunc, ops ...string) error {
	list, err := appendAroundHooks(d.hooks.around, fn, ops)
	if err != nil {
		return err
	}
	d.hooks.around = list
	return nil
}

// RegisterOp adds a named operation usable by before and after hooks.
// Named hooks are resolved against this table at call time.
func (d *Definition[T]) RegisterOp(name string, fn HookFunc) error {
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("operation %q cannot be nil", name)
	}
	if _, exists := d.ops[name]; exists {
		return fmt.Errorf("operation %q is already registered", name)
	}
	d.ops[name] = fn
	return nil
}

// RegisterAroundOp adds a named operation usable by around hooks. Three
// shapes are accepted, so a hook author can ignore the instance or even
// the continuation:
//
//	func() error
//	func(action.Next) error
//	func(*action.Instance, action.Next) error
func (d *Definition[T]) RegisterAroundOp(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}
	if _, exists := d.aroundOps[name]; exists {
		return fmt.Errorf("operation %q is already registered", name)
	}

	var wrapped AroundFunc
	switch f := fn.(type) {
	case AroundFunc:
		wrapped = f
	case func(*Instance, Next) error:
		wrapped = f
	case func(Next) error:
		wrapped = func(_ *Instance, next Next) error { return f(next) }
	case func() error:
		wrapped = func(_ *Instance, _ Next) error { return f() }
	default:
		return fmt.Errorf("operation %q has unsupported signature %T", name, fn)
	}
	d.aroundOps[name] = wrapped
	return nil
}

// Derive creates an independent child definition: the schema, the three
// hook lists and the operation tables are copied by value, so hooks
// registered on either side after derivation never appear on the other.
// The child starts with the parent's core operation; use SetCore to
// replace it.
func (d *Definition[T]) Derive(name string) *Definition[T] {
	child := &Definition[T]{
		name:      name,
		desc:      d.desc,
		schema:    d.schema.Clone(),
		hooks:     d.hooks.clone(),
		ops:       make(map[string]HookFunc, len(d.ops)),
		aroundOps: make(map[string]AroundFunc, len(d.aroundOps)),
		core:      d.core,
	}
	for k, v := range d.ops {
		child.ops[k] = v
	}
	for k, v := range d.aroundOps {
		child.aroundOps[k] = v
	}
	return child
}

// DeriveAs creates an independent child definition with a narrowed Success
// value type. Like Derive it copies the schema, hook lists and operation
// tables by value; the child uses the given core operation.
func DeriveAs[U, T any](parent *Definition[T], name string, core Core[U]) *Definition[U] {
	child := &Definition[U]{
		name:      name,
		desc:      parent.desc,
		schema:    parent.schema.Clone(),
		hooks:     parent.hooks.clone(),
		ops:       make(map[string]HookFunc, len(parent.ops)),
		aroundOps: make(map[string]AroundFunc, len(parent.aroundOps)),
		core:      core,
	}
	for k, v := range parent.ops {
		child.ops[k] = v
	}
	for k, v := range parent.aroundOps {
		child.aroundOps[k] = v
	}
	return child
}

// Instance is one invocation's aggregate: the validated property values
// and the metadata snapshot. Property values are fixed after construction;
// metadata is mutable. One instance serves exactly one invocation on one
// goroutine.
type Instance struct {
	action      string
	owner       any
	props       map[string]any
	meta        Meta
	resolved    any
	hasResolved bool
}

// New validates the supplied arguments against the schema and creates an
// instance. Validation failure is fatal: no hook runs and no metadata is
// populated. Immediately after construction the metadata contains the
// action name under MetaAction and a snapshot of the validated property
// values under MetaProps.
func (d *Definition[T]) New(args map[string]any) (*Instance, error) {
	props, err := d.schema.Validate(args)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]any, len(props))
	for k, v := range props {
		snapshot[k] = v
	}

	return &Instance{
		action: d.name,
		owner:  d,
		props:  props,
		meta: Meta{
			MetaAction: d.name,
			MetaProps:  snapshot,
		},
	}, nil
}

// NewPositional binds the values to the schema's positional properties in
// declaration order and creates an instance.
func (d *Definition[T]) NewPositional(vals ...any) (*Instance, error) {
	args, err := d.schema.BindPositional(vals)
	if err != nil {
		return nil, err
	}
	return d.New(args)
}

// Action returns the name of the action the instance belongs to.
func (in *Instance) Action() string {
	return in.action
}

// Prop returns the validated value of a property, or nil if the name is
// not declared.
func (in *Instance) Prop(name string) any {
	return in.props[name]
}

// Props returns a copy of the validated property values.
func (in *Instance) Props() map[string]any {
	out := make(map[string]any, len(in.props))
	for k, v := range in.props {
		out[k] = v
	}
	return out
}

// Meta returns the live metadata mapping. Hooks and the core operation may
// add or overwrite keys through it.
func (in *Instance) Meta() Meta {
	return in.meta
}

// SetMeta adds or overwrites one metadata key.
func (in *Instance) SetMeta(key string, v any) {
	in.meta[key] = v
}

// MetaValue returns one metadata entry.
func (in *Instance) MetaValue(key string) (any, bool) {
	v, ok := in.meta[key]
	return v, ok
}

// Resolve records an early result value for an around hook that chooses
// never to invoke its continuation. The value must satisfy the action's
// result type. If the core operation runs, its result takes precedence.
func (in *Instance) Resolve(v any) {
	in.resolved = v
	in.hasResolved = true
}

// PropAs returns a property value asserted to type T.
func PropAs[T any](in *Instance, name string) (T, bool) {
	v, ok := in.props[name]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
