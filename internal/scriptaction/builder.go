package scriptaction

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/budu/mu-action/pkg/action"
	"github.com/budu/mu-action/pkg/logger"
)

// Build turns one scripted action declaration into a runnable action.
func Build(spec Spec) (action.Runnable, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("scripted action name cannot be empty")
	}
	if spec.Body == "" {
		return nil, fmt.Errorf("scripted action %q has no body", spec.Name)
	}

	// Pre-validate declarations on a scratch schema so a malformed file
	// surfaces as an error instead of a panic out of Declare.
	scratch := action.NewSchema()
	for _, p := range spec.Props {
		kind, err := kindOf(p.Type)
		if err != nil {
			return nil, fmt.Errorf("scripted action %q, property %q: %w", spec.Name, p.Name, err)
		}
		if err := scratch.Declare(p.Name, kind, propOptions(p)...); err != nil {
			return nil, fmt.Errorf("scripted action %q: %w", spec.Name, err)
		}
	}

	d := action.Define(spec.Name, coreOf(spec)).Describe(spec.Description)
	for _, p := range spec.Props {
		kind, _ := kindOf(p.Type)
		d.Declare(p.Name, kind, propOptions(p)...)
	}

	for _, src := range spec.Before {
		src := src
		if err := d.Before(func(in *action.Instance) error {
			return runSnippet(spec.Name, src, in, nil)
		}); err != nil {
			return nil, err
		}
	}
	for _, src := range spec.Around {
		src := src
		if err := d.Around(func(in *action.Instance, next action.Next) error {
			return runSnippet(spec.Name, src, in, next)
		}); err != nil {
			return nil, err
		}
	}
	for _, src := range spec.After {
		src := src
		if err := d.After(func(in *action.Instance) error {
			return runSnippet(spec.Name, src, in, nil)
		}); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// BuildAll builds every action declared in a file.
func BuildAll(f *File) ([]action.Runnable, error) {
	out := make([]action.Runnable, 0, len(f.Actions))
	for _, spec := range f.Actions {
		a, err := Build(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// jsEnv is the per-snippet Goja environment. Each snippet runs in a fresh
// runtime; hooks and the core body communicate through the instance
// metadata, not through JS globals.
type jsEnv struct {
	vm      *goja.Runtime
	sig     *action.Signal
	nextErr error
}

func newEnv(in *action.Instance) *jsEnv {
	env := &jsEnv{vm: goja.New()}
	vm := env.vm

	vm.Set("props", in.Props())
	vm.Set("getMeta", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		v, ok := in.MetaValue(call.Arguments[0].String())
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(v)
	})
	vm.Set("setMeta", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) >= 2 {
			in.SetMeta(call.Arguments[0].String(), call.Arguments[1].Export())
		}
		return goja.Undefined()
	})
	vm.Set("resolve", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			in.Resolve(call.Arguments[0].Export())
		} else {
			in.Resolve(nil)
		}
		return goja.Undefined()
	})
	vm.Set("fail", func(call goja.FunctionCall) goja.Value {
		msg := "action failed"
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		frag := action.Meta{}
		if len(call.Arguments) > 1 {
			if m, ok := call.Arguments[1].Export().(map[string]any); ok {
				frag = action.Meta(m)
			}
		}
		env.sig = action.Fail(errors.New(msg), frag)
		// Thrown as a JS exception; RunString reports it and the recorded
		// signal takes precedence over the exception text.
		panic(vm.ToValue(msg))
	})

	console := vm.NewObject()
	logFn := func(emit func(string, ...interface{})) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			for _, arg := range call.Arguments {
				emit("js(%s): %v", in.Action(), arg.Export())
			}
			return goja.Undefined()
		}
	}
	console.Set("log", logFn(logger.Info))
	console.Set("debug", logFn(logger.Debug))
	console.Set("warn", logFn(logger.Warn))
	console.Set("error", logFn(logger.Error))
	vm.Set("console", console)

	return env
}

// bindProceed exposes the around-hook continuation as proceed().
func (env *jsEnv) bindProceed(next action.Next) {
	env.vm.Set("proceed", func(call goja.FunctionCall) goja.Value {
		if err := next(); err != nil {
			env.nextErr = err
			panic(env.vm.ToValue("proceed: " + err.Error()))
		}
		return goja.Undefined()
	})
}

// finish maps a RunString error to the engine's error taxonomy: a signal
// recorded by fail() or an error surfaced out of proceed() is returned
// as-is so the boundary sees the exact original value; any other JS
// exception is a programming defect.
func (env *jsEnv) finish(name string, err error) error {
	if err == nil {
		return nil
	}
	if env.sig != nil {
		return env.sig
	}
	if env.nextErr != nil {
		return env.nextErr
	}
	return fmt.Errorf("js error in action %q: %w", name, err)
}

// runSnippet executes one hook snippet against the instance. next is
// non-nil only for around hooks.
func runSnippet(name, src string, in *action.Instance, next action.Next) error {
	env := newEnv(in)
	if next != nil {
		env.bindProceed(next)
	}
	_, err := env.vm.RunString(src)
	return env.finish(name, err)
}

// coreOf builds the core operation running the body; the body's
// completion value becomes the success value.
func coreOf(spec Spec) action.Core[any] {
	return func(in *action.Instance) (action.Result[any], error) {
		env := newEnv(in)
		v, err := env.vm.RunString(spec.Body)
		if err != nil {
			return action.Result[any]{}, env.finish(spec.Name, err)
		}
		var out any
		if v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
			out = v.Export()
		}
		return action.NewSuccess(out), nil
	}
}
